package extract

import (
	"regexp"
	"strings"
)

// FieldStrategy derives one candidate field from raw recognized text. A
// strategy returns ok=false when it finds nothing; it never errors on
// malformed text.
type FieldStrategy interface {
	Field() string
	Extract(text string) (value string, ok bool)
}

type brandStrategy struct{}

var brandKeywordRe = regexp.MustCompile(`(?im)^\s*(?:marka|brand)\s*[:=]?\s*(\S[^\n]*?)\s*$`)

// An all-caps short line near the top of a label is almost always the brand.
var brandCapsRe = regexp.MustCompile(`^[A-ZÇĞİÖŞÜ][A-ZÇĞİÖŞÜ&'. ]{2,24}$`)

func (brandStrategy) Field() string { return "brand" }

func (brandStrategy) Extract(text string) (string, bool) {
	if m := brandKeywordRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	lines := splitLines(text)
	limit := 4
	if len(lines) < limit {
		limit = len(lines)
	}
	for _, line := range lines[:limit] {
		if brandCapsRe.MatchString(line) && !containsDigit(line) {
			return line, true
		}
	}
	return "", false
}

type codeStrategy struct{}

var (
	codeKeywordRe = regexp.MustCompile(`(?im)^\s*(?:ürün\s*kodu|urun\s*kodu|model|kod|code|ref)\s*[:=]?\s*([A-Za-z0-9][A-Za-z0-9/-]{1,19})\s*$`)
	codeShapeRe   = regexp.MustCompile(`\b([A-Z]{1,4}-?\d{2,6}(?:-\d{1,4})?)\b`)
)

func (codeStrategy) Field() string { return "code" }

func (codeStrategy) Extract(text string) (string, bool) {
	if m := codeKeywordRe.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(strings.TrimSpace(m[1])), true
	}
	if m := codeShapeRe.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return "", false
}

type colorStrategy struct{}

var colorKeywordRe = regexp.MustCompile(`(?im)^\s*(?:renk|color|colour)\s*[:=]?\s*(\S[^\n]*?)\s*$`)

// Color vocabulary the labels actually use, Turkish first.
var knownColors = []string{
	"siyah", "beyaz", "kırmızı", "kirmizi", "mavi", "lacivert", "yeşil", "yesil",
	"sarı", "sari", "turuncu", "mor", "pembe", "gri", "kahverengi", "bej", "ekru",
	"bordo", "haki", "vizon", "antrasit", "fuşya", "fusya",
	"black", "white", "red", "blue", "navy", "green", "yellow", "orange",
	"purple", "pink", "grey", "gray", "brown", "beige", "burgundy", "khaki",
}

func (colorStrategy) Field() string { return "color" }

func (colorStrategy) Extract(text string) (string, bool) {
	if m := colorKeywordRe.FindStringSubmatch(text); m != nil {
		return foldLower(strings.TrimSpace(m[1])), true
	}
	lowered := foldLower(text)
	for _, color := range knownColors {
		if containsWord(lowered, color) {
			return color, true
		}
	}
	return "", false
}

type sizeStrategy struct{}

var sizeRe = regexp.MustCompile(`(?im)^\s*(?:beden|size)\s*[:=]?\s*([A-Za-z0-9]{1,4}(?:\s*-\s*[A-Za-z0-9]{1,4})?)\s*$`)

func (sizeStrategy) Field() string { return "size" }

func (sizeStrategy) Extract(text string) (string, bool) {
	if m := sizeRe.FindStringSubmatch(text); m != nil {
		return strings.ToUpper(strings.TrimSpace(m[1])), true
	}
	return "", false
}

type materialStrategy struct{}

var (
	materialKeywordRe = regexp.MustCompile(`(?im)^\s*(?:kumaş|kumas|materyal|material|içerik|icerik)\s*[:=]?\s*(\S[^\n]*?)\s*$`)
	compositionRe     = regexp.MustCompile(`(?i)(%\s?\d{1,3}\s?(?:pamuk|cotton|polyester|viskon|viscose|elastan|elastane|keten|linen|yün|wool|akrilik|acrylic)(?:[ ,/+-]+%?\s?\d{0,3}\s?(?:pamuk|cotton|polyester|viskon|viscose|elastan|elastane|keten|linen|yün|wool|akrilik|acrylic))*)\b`)
)

func (materialStrategy) Field() string { return "material" }

func (materialStrategy) Extract(text string) (string, bool) {
	folded := foldLower(text)
	if m := materialKeywordRe.FindStringSubmatch(folded); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := compositionRe.FindStringSubmatch(folded); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func containsDigit(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0
}

func containsWord(text, word string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], word)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(word)
		beforeOK := start == 0 || !isWordByte(text[start-1])
		afterOK := end == len(text) || !isWordByte(text[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= '0' && b <= '9') || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
