package match

import (
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Fold maps full-width punctuation and digits to ASCII and composes to NFC.
// Clipboard lines and template phrasings both go through it before they are
// compared.
func Fold(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return norm.NFC.String(width.Fold.String(s))
		}
	}
	return s
}
