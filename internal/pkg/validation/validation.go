package validation

import (
	"regexp"
	"strings"
)

// Same shape as the admin UI check: something@something.tld
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Digits with optional leading + and common separators.
var phoneRe = regexp.MustCompile(`^\+?[0-9][0-9 \-().]{5,19}$`)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_.\-]{3,32}$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

func IsValidPhone(phone string) bool {
	return phoneRe.MatchString(strings.TrimSpace(phone))
}

func IsValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

// IsValidPassword requires at least 8 characters.
func IsValidPassword(password string) bool {
	return len(password) >= 8
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML escapes the five HTML specials for stored user text.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
