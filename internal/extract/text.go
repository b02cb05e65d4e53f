package extract

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// foldLower lowercases with Turkish casing rules (İ→i, I→ı). Plain
// strings.ToLower turns İ into "i" plus a combining dot, which breaks every
// vocabulary match against OCR text from Turkish labels. A Caser carries
// internal state and is not safe for concurrent use, so each call gets its own.
func foldLower(s string) string {
	return cases.Lower(language.Turkish).String(s)
}
