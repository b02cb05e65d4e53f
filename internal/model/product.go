package model

import (
	"strings"
	"time"
)

// ProductCandidate is the working unit of one resolution: a (code, color, brand)
// key plus every asset that belongs to it. Distinct candidates within a job must
// not share a GroupKey.
type ProductCandidate struct {
	Code          string
	Color         string
	Brand         string
	Size          string
	Material      string
	Price         float64
	PriceFound    bool
	Confidence    float64
	MissingFields []string
	Files         []*AssetFile
}

// GroupKey is the normalized identity used to merge candidates inside one job.
func (c *ProductCandidate) GroupKey() string {
	return strings.ToLower(strings.TrimSpace(c.Code)) + "|" +
		strings.ToLower(strings.TrimSpace(c.Color)) + "|" +
		strings.ToLower(strings.TrimSpace(c.Brand))
}

// PersistedImage is one (uploaded URL, role) pair destined for an image row.
type PersistedImage struct {
	Filename string
	URL      string
	Role     FileRole
}

// ResolvedProduct is the outcome of duplicate resolution: either a reference to
// an existing product row (ExistingID > 0) or an instruction to create one.
type ResolvedProduct struct {
	Candidate  *ProductCandidate
	ExistingID int64
	Images     []PersistedImage
}

type ProductRow struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Color     string    `json:"color" db:"color"`
	BrandID   int64     `json:"brand_id" db:"brand_id"`
	BrandName string    `json:"brand_name" db:"brand_name"`
	Size      string    `json:"size,omitempty" db:"size"`
	Material  string    `json:"material,omitempty" db:"material"`
	Price     float64   `json:"price,omitempty" db:"price"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PersistReport summarizes one batch transaction.
type PersistReport struct {
	ProductsCreated int `json:"products_created"`
	ImagesCreated   int `json:"images_created"`
}
