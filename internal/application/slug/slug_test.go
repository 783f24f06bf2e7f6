package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	cases := map[string]string{
		"Budi & Keluarga":         "budi-dan-keluarga",
		"Budi Santoso & Keluarga": "budi-santoso-dan-keluarga",
		"Dr. Ahmad (Teman SMA)":   "dr-ahmad-teman-sma",
		"  Sari  ":                "sari",
		"a -- b":                  "a-b",
		"--x--":                   "x",
		"snake_case":              "snakecase",
		"!!!":                     "",
		"":                        "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Generate(in), "input %q", in)
	}
}

func TestGenerate_UnicodeSpaces(t *testing.T) {
	cases := map[string]string{
		"Budi\u00a0Santoso":                "budi-santoso",
		"Tante\u2009Lia\u3000& Om":         "tante-lia-dan-om",
		"\u00a0Sari\u202f\u00a0Dewi\u00a0": "sari-dewi",
		"Rina\u2028Putri":                  "rina-putri",
	}
	for in, want := range cases {
		assert.Equal(t, want, Generate(in), "input %q", in)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	for _, name := range []string{"Budi & Keluarga", "Ibu Rina (Kantor)", "Pak RT 05"} {
		assert.Equal(t, Generate(name), Generate(name))
	}
}

func TestGenerate_OutputIsValidWhenNonEmpty(t *testing.T) {
	for _, name := range []string{"Budi & Keluarga", " - A  B - ", "x_y z", "Tante Lia & Om Dodi"} {
		s := Generate(name)
		if s != "" {
			assert.True(t, IsValid(s), "slug %q", s)
		}
	}
}

func TestEnsureUnique(t *testing.T) {
	assert.Equal(t, "budi", EnsureUnique("budi", Set(nil)))
	assert.Equal(t, "budi-1", EnsureUnique("budi", Set([]string{"budi"})))
	assert.Equal(t, "ahmad-2", EnsureUnique("ahmad", Set([]string{"ahmad", "ahmad-1"})))

	existing := Set([]string{"x", "x-1", "x-2", "x-4"})
	got := EnsureUnique("x", existing)
	_, taken := existing[got]
	assert.False(t, taken)
	assert.Equal(t, "x-3", got)
}

func TestToDisplayName(t *testing.T) {
	assert.Equal(t, "Budi Santoso Keluarga", ToDisplayName("budi-santoso-keluarga"))
	assert.Equal(t, "Sari", ToDisplayName("sari"))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("budi-dan-keluarga"))
	assert.True(t, IsValid("a1"))
	assert.False(t, IsValid("-a"))
	assert.False(t, IsValid("a--b"))
	assert.False(t, IsValid("Budi"))
	assert.False(t, IsValid(""))
}
