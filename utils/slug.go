package utils

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify lowercases s, strips accents, drops anything that is not a letter,
// digit, space or hyphen and collapses runs of spaces/hyphens into one hyphen.
func Slugify(s string) string {
	decomposed := norm.NFKD.String(s)

	var sb strings.Builder
	pendingDash := false
	for _, r := range decomposed {
		switch {
		case r > unicode.MaxASCII:
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			if pendingDash && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingDash = false
			sb.WriteRune(unicode.ToLower(r))
		case r == ' ' || r == '-' || r == '\t':
			pendingDash = true
		}
	}
	return sb.String()
}
