package extract

import (
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/model"
)

// Field weights for the aggregate confidence score. Code, color and brand are
// the identity fields and dominate; the rest are nice-to-have.
var fieldWeights = map[string]float64{
	"code":     0.30,
	"color":    0.25,
	"brand":    0.25,
	"price":    0.10,
	"size":     0.05,
	"material": 0.05,
}

// Extractor turns raw recognized tag text into candidate field values. Every
// field is derived by its own strategy; a strategy finding nothing simply
// leaves the field missing. Extraction never fails on malformed text.
type Extractor struct {
	strategies []FieldStrategy
	priceRange PriceRange
}

func NewExtractor(priceRange PriceRange) *Extractor {
	return &Extractor{
		strategies: []FieldStrategy{
			brandStrategy{},
			codeStrategy{},
			colorStrategy{},
			sizeStrategy{},
			materialStrategy{},
		},
		priceRange: priceRange,
	}
}

// Extract runs every strategy plus the scored price search and assembles a
// candidate with an aggregate confidence and the list of fields it could not
// derive.
func (e *Extractor) Extract(text string) *model.ProductCandidate {
	candidate := &model.ProductCandidate{}
	fields := make(map[string]string, len(e.strategies))

	confidence := 0.0
	for _, strategy := range e.strategies {
		value, ok := strategy.Extract(text)
		if !ok {
			candidate.MissingFields = append(candidate.MissingFields, strategy.Field())
			continue
		}
		fields[strategy.Field()] = value
		confidence += fieldWeights[strategy.Field()]
	}

	if price, score, ok := ExtractPrice(text, e.priceRange); ok {
		candidate.Price = price
		candidate.PriceFound = true
		confidence += fieldWeights["price"] * score
	} else {
		candidate.MissingFields = append(candidate.MissingFields, "price")
	}

	candidate.Code = fields["code"]
	candidate.Color = fields["color"]
	candidate.Brand = fields["brand"]
	candidate.Size = fields["size"]
	candidate.Material = fields["material"]
	candidate.Confidence = confidence

	return candidate
}

// FieldMap is the flat representation stored in the extraction cache.
func FieldMap(c *model.ProductCandidate) map[string]string {
	m := make(map[string]string, 5)
	if c.Code != "" {
		m["code"] = c.Code
	}
	if c.Color != "" {
		m["color"] = c.Color
	}
	if c.Brand != "" {
		m["brand"] = c.Brand
	}
	if c.Size != "" {
		m["size"] = c.Size
	}
	if c.Material != "" {
		m["material"] = c.Material
	}
	return m
}
