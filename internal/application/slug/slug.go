// Package slug maps free-text guest names to URL-safe identifiers.
package slug

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	// \s is ASCII-only in RE2; \p{Z} adds NBSP and the other Unicode spaces.
	disallowed = regexp.MustCompile(`[^a-z0-9\s\p{Z}-]`)
	whitespace = regexp.MustCompile(`[\s\p{Z}]+`)
	hyphens    = regexp.MustCompile(`-+`)
	valid      = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Generate returns the candidate slug for name. "&" becomes "dan".
// An empty result means name had nothing usable; callers must reject it.
func Generate(name string) string {
	s := strings.TrimSpace(strings.ToLower(name))
	s = strings.ReplaceAll(s, "&", "dan")
	s = disallowed.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// EnsureUnique returns base if it is free, otherwise the first of base-1, base-2, ... not in existing.
func EnsureUnique(base string, existing map[string]struct{}) string {
	if _, taken := existing[base]; !taken {
		return base
	}
	for n := 1; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if _, taken := existing[candidate]; !taken {
			return candidate
		}
	}
}

// ToDisplayName is a lossy reverse of Generate, for display only.
func ToDisplayName(slug string) string {
	caser := cases.Title(language.Und)
	parts := strings.Split(slug, "-")
	for i, p := range parts {
		parts[i] = caser.String(p)
	}
	return strings.Join(parts, " ")
}

// IsValid reports whether s has the shape Generate produces.
func IsValid(s string) bool {
	return valid.MatchString(s)
}

// Set builds a lookup set from a slice of slugs.
func Set(slugs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		set[s] = struct{}{}
	}
	return set
}
