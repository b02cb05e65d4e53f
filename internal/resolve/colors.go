package resolve

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Known color abbreviations, OCR shorthand and Turkish/English variants that
// appear on printed labels. Keys and values are lowercase.
var colorAbbreviations = map[string]string{
	"blk":  "black",
	"blck": "black",
	"wht":  "white",
	"gry":  "grey",
	"gr":   "grey",
	"grn":  "green",
	"nvy":  "navy",
	"brn":  "brown",
	"bge":  "beige",
	"brdo": "bordo",
	"syh":  "siyah",
	"byz":  "beyaz",
	"lcv":  "lacivert",
	"krmz": "kırmızı",
	"ysl":  "yeşil",
	"trncu": "turuncu",
}

// ColorsEquivalent reports whether two OCR-sourced color tokens name the same
// color. Rules, in order: identical after lowercasing; known abbreviation of
// one another; one a substring of the other (both at least 3 runes); edit
// distance at most 2 with length difference at most 2.
func ColorsEquivalent(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}

	if expanded, ok := colorAbbreviations[a]; ok && expanded == b {
		return true
	}
	if expanded, ok := colorAbbreviations[b]; ok && expanded == a {
		return true
	}

	if len([]rune(a)) >= 3 && len([]rune(b)) >= 3 {
		if strings.Contains(a, b) || strings.Contains(b, a) {
			return true
		}
	}

	lenDiff := len([]rune(a)) - len([]rune(b))
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff <= 2 && levenshtein.ComputeDistance(a, b) <= 2 {
		return true
	}

	return false
}
