package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Price candidate search. Four independent strategies scan the text, every hit
// becomes a scored candidate, and the best candidate wins only if it clears
// the acceptance threshold. The constants are behavior-parity values carried
// over from the production tuning; do not re-derive them.
const (
	priceBaseCurrencySymbol = 0.9
	priceBaseKeyword        = 0.8
	priceBaseIsolatedLine   = 0.6
	priceBaseCurrencyToken  = 0.4

	priceBonusInRange = 0.10
	priceBonusNearTop = 0.05

	pricePenaltyExcluded = 0.50

	priceAcceptThreshold = 0.5

	// Lines this close to the top of the label earn the near-top bonus.
	priceNearTopLines = 3
)

var (
	currencySymbolRe = regexp.MustCompile(`[₺$€£]\s*(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{1,2})?)|(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{1,2})?)\s*[₺$€£]`)
	priceKeywordRe   = regexp.MustCompile(`(?i)(?:fiyat|fiat|price|ücret|ucret|tutar)\s*[:=]?\s*(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{1,2})?)`)
	isolatedNumberRe = regexp.MustCompile(`^\s*(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{1,2})?)\s*$`)
	currencyTokenRe  = regexp.MustCompile(`(?i)\b(\d{1,3}(?:[.,]\d{3})*(?:[.,]\d{1,2})?)\s*(?:TL|TRY|USD|EUR|GBP)\b`)

	// Lines that look like prices but never are.
	excludedLineRes = []*regexp.Regexp{
		regexp.MustCompile(`\d+\s*-\s*\d+`),                       // size ranges: 38-40
		regexp.MustCompile(`\d{7,}`),                              // barcodes, EANs
		regexp.MustCompile(`(\+?\d[\d\s()-]{8,})`),                // phone numbers
		regexp.MustCompile(`\b\d{1,2}[./]\d{1,2}[./]\d{2,4}\b`),   // dates
		regexp.MustCompile(`(?i)\b(?:tel|gsm|phone|barkod|ean)\b`), // labelled noise
	}
)

type priceCandidate struct {
	value float64
	score float64
	line  int
}

// PriceRange is the plausible numeric window for the product type being
// ingested; candidates inside it earn a bonus.
type PriceRange struct {
	Min float64
	Max float64
}

func (r PriceRange) contains(v float64) bool {
	if r.Max <= 0 {
		return false
	}
	return v >= r.Min && v <= r.Max
}

// ExtractPrice runs the scored candidate search over the recognized text.
// It returns the winning price and its score, or ok=false when no candidate
// clears the acceptance threshold.
func ExtractPrice(text string, rng PriceRange) (price float64, score float64, ok bool) {
	lines := splitLines(foldLower(text))
	var candidates []priceCandidate

	for lineNo, line := range lines {
		candidates = append(candidates, scanLine(line, lineNo, currencySymbolStrategy)...)
		candidates = append(candidates, scanLine(line, lineNo, keywordStrategy)...)
		candidates = append(candidates, scanLine(line, lineNo, isolatedStrategy(rng))...)
		candidates = append(candidates, scanLine(line, lineNo, currencyTokenStrategy)...)
	}

	if len(candidates) == 0 {
		return 0, 0, false
	}

	for i := range candidates {
		c := &candidates[i]
		if rng.contains(c.value) {
			c.score += priceBonusInRange
		}
		if c.line < priceNearTopLines {
			c.score += priceBonusNearTop
		}
		if lineExcluded(lines[c.line]) {
			c.score -= pricePenaltyExcluded
		}
		if c.score > 1.0 {
			c.score = 1.0
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	top := candidates[0]
	if top.score < priceAcceptThreshold {
		return 0, 0, false
	}
	return top.value, top.score, true
}

type lineStrategy func(line string) []scoredMatch

type scoredMatch struct {
	raw  string
	base float64
}

func currencySymbolStrategy(line string) []scoredMatch {
	var out []scoredMatch
	for _, m := range currencySymbolRe.FindAllStringSubmatch(line, -1) {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		out = append(out, scoredMatch{raw: raw, base: priceBaseCurrencySymbol})
	}
	return out
}

func keywordStrategy(line string) []scoredMatch {
	var out []scoredMatch
	for _, m := range priceKeywordRe.FindAllStringSubmatch(line, -1) {
		out = append(out, scoredMatch{raw: m[1], base: priceBaseKeyword})
	}
	return out
}

func isolatedStrategy(rng PriceRange) lineStrategy {
	return func(line string) []scoredMatch {
		m := isolatedNumberRe.FindStringSubmatch(line)
		if m == nil {
			return nil
		}
		// A bare number only counts when it is plausible for the product type.
		if v, err := parseAmount(m[1]); err == nil && rng.contains(v) {
			return []scoredMatch{{raw: m[1], base: priceBaseIsolatedLine}}
		}
		return nil
	}
}

func currencyTokenStrategy(line string) []scoredMatch {
	var out []scoredMatch
	for _, m := range currencyTokenRe.FindAllStringSubmatch(line, -1) {
		out = append(out, scoredMatch{raw: m[1], base: priceBaseCurrencyToken})
	}
	return out
}

func scanLine(line string, lineNo int, strategy lineStrategy) []priceCandidate {
	var out []priceCandidate
	for _, match := range strategy(line) {
		value, err := parseAmount(match.raw)
		if err != nil {
			continue
		}
		out = append(out, priceCandidate{value: value, score: match.base, line: lineNo})
	}
	return out
}

func lineExcluded(line string) bool {
	for _, re := range excludedLineRes {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// parseAmount handles both "1.250,50" (Turkish) and "1,250.50" forms, as well
// as bare integers.
func parseAmount(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)

	lastComma := strings.LastIndex(raw, ",")
	lastDot := strings.LastIndex(raw, ".")

	switch {
	case lastComma > lastDot:
		raw = strings.ReplaceAll(raw, ".", "")
		raw = strings.Replace(raw, ",", ".", 1)
	case lastDot > lastComma:
		raw = strings.ReplaceAll(raw, ",", "")
		// "1.250" is a thousands separator on Turkish labels, not 1.25.
		if i := strings.LastIndex(raw, "."); i >= 0 && len(raw)-i-1 == 3 {
			raw = strings.ReplaceAll(raw, ".", "")
		}
	}

	return strconv.ParseFloat(raw, 64)
}
