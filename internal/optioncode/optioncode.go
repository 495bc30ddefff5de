// Package optioncode derives stable dictionary value codes from free-text
// labels and validates option set code identifiers. All functions are pure.
package optioncode

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxLength bounds derived value codes.
const MaxLength = 30

var setCodePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// ValidSetCode reports whether code is a legal option set identifier
// (lowercase snake, leading letter).
func ValidSetCode(code string) bool {
	return setCodePattern.MatchString(code)
}

// Derive produces a value code from a display label: uppercased, with runs of
// characters outside A-Z, 0-9, and CJK collapsed to a single underscore,
// trimmed of leading and trailing underscores, and truncated to MaxLength.
func Derive(label string) string {
	upper := strings.ToUpper(strings.TrimSpace(label))
	var b strings.Builder
	lastUnderscore := false
	for _, r := range upper {
		switch {
		case (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || isCJK(r):
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	code := strings.Trim(b.String(), "_")
	if len([]rune(code)) > MaxLength {
		code = string([]rune(code)[:MaxLength])
		code = strings.TrimRight(code, "_")
	}
	return code
}

func isCJK(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r) ||
		unicode.Is(unicode.Hangul, r)
}
