package resolve

import (
	"context"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/logger"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/model"

	"github.com/rs/zerolog"
)

// ProductFinder is the slice of the repository the resolver needs.
type ProductFinder interface {
	// FindProductExact matches (code, color, brand) case-sensitively.
	FindProductExact(ctx context.Context, code, color, brand string) (int64, error)
	// FindProductFold matches (code, color, brand) case-insensitively.
	FindProductFold(ctx context.Context, code, color, brand string) (int64, error)
	// ListProductsByCodeBrand returns every product sharing the exact code and
	// brand, regardless of color.
	ListProductsByCodeBrand(ctx context.Context, code, brand string) ([]model.ProductRow, error)
}

// Resolver decides whether a candidate is a product we already know. Code and
// brand are high-confidence fields and are never fuzzy-matched; only the
// OCR-typo-prone color gets the fuzzy treatment.
type Resolver struct {
	finder ProductFinder
	log    zerolog.Logger
}

func NewResolver(finder ProductFinder) *Resolver {
	return &Resolver{
		finder: finder,
		log:    logger.With("resolver"),
	}
}

// Resolve returns the existing product id for (code, color, brand), or 0 to
// signal "create new". Matching order, first hit wins: exact, case-insensitive,
// fuzzy color with code and brand held exact. Ambiguity is never an error; the
// decision is logged for audit.
func (r *Resolver) Resolve(ctx context.Context, code, color, brand string) (int64, error) {
	id, err := r.finder.FindProductExact(ctx, code, color, brand)
	if err != nil {
		return 0, err
	}
	if id > 0 {
		r.log.Debug().Int64("product_id", id).Str("code", code).Msg("Resolved by exact match")
		return id, nil
	}

	id, err = r.finder.FindProductFold(ctx, code, color, brand)
	if err != nil {
		return 0, err
	}
	if id > 0 {
		r.log.Debug().Int64("product_id", id).Str("code", code).Msg("Resolved by case-insensitive match")
		return id, nil
	}

	rows, err := r.finder.ListProductsByCodeBrand(ctx, code, brand)
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		if ColorsEquivalent(color, row.Color) {
			r.log.Info().
				Int64("product_id", row.ID).
				Str("code", code).
				Str("candidate_color", color).
				Str("existing_color", row.Color).
				Msg("Resolved by fuzzy color match")
			return row.ID, nil
		}
	}

	r.log.Debug().Str("code", code).Str("color", color).Str("brand", brand).Msg("No match, creating new product")
	return 0, nil
}
