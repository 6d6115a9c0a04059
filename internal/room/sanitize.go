package room

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	maxTextRunes     = 256
	maxUsernameRunes = 32
)

// sanitizeText normalizes s to NFC, strips control and format runes, folds other whitespace
// to a single space and truncates to limit runes.
func sanitizeText(s string, limit int) string {
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s))

	count := 0
	for _, r := range norm.NFC.String(s) {
		if count == limit {
			break
		}
		switch {
		case r == ' ':
		case unicode.IsSpace(r):
			r = ' '
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r), !unicode.IsPrint(r):
			continue
		}
		b.WriteRune(r)
		count++
	}

	return strings.TrimSpace(b.String())
}
