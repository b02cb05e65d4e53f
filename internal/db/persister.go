package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/logger"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/model"

	"github.com/rs/zerolog"
)

// Persister commits one job's resolved product graph in exactly one
// transaction. Remote uploads happen before the transaction opens; nothing
// inside it calls out over the network.
type Persister struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewPersister(db *sql.DB) *Persister {
	return &Persister{db: db, log: logger.With("persister")}
}

// Persist writes every resolved product and its image rows. The lookup-then-
// insert check runs inside the transaction so concurrent jobs cannot create
// two rows for the same (code, color, brand). Any error rolls the whole batch
// back; a job never commits a partial product graph.
func (p *Persister) Persist(ctx context.Context, products []*model.ResolvedProduct) (model.PersistReport, error) {
	report := model.PersistReport{}
	if len(products) == 0 {
		return report, nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return report, err
	}
	defer tx.Rollback()

	for _, resolved := range products {
		productID := resolved.ExistingID
		if productID == 0 {
			productID, err = p.lookupProduct(ctx, tx, resolved.Candidate)
			if err != nil {
				return model.PersistReport{}, err
			}
		}
		if productID == 0 {
			productID, err = p.insertProduct(ctx, tx, resolved.Candidate)
			if err != nil {
				return model.PersistReport{}, err
			}
			report.ProductsCreated++
		}

		created, err := p.insertImages(ctx, tx, productID, resolved.Images)
		if err != nil {
			return model.PersistReport{}, err
		}
		report.ImagesCreated += created
	}

	if err := tx.Commit(); err != nil {
		return model.PersistReport{}, err
	}

	p.log.Info().
		Int("products_created", report.ProductsCreated).
		Int("images_created", report.ImagesCreated).
		Msg("Batch persisted")
	return report, nil
}

func (p *Persister) lookupProduct(ctx context.Context, tx *sql.Tx, c *model.ProductCandidate) (int64, error) {
	query := `SELECT p.id FROM products p
			  JOIN brands b ON b.id = p.brand_id
			  WHERE p.code = ? AND p.color = ? AND b.name = ?
			  LIMIT 1`
	var id int64
	err := tx.QueryRowContext(ctx, query, c.Code, c.Color, c.Brand).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (p *Persister) insertProduct(ctx context.Context, tx *sql.Tx, c *model.ProductCandidate) (int64, error) {
	brandID, err := p.getOrCreateBrand(ctx, tx, c.Brand)
	if err != nil {
		return 0, err
	}

	query := `INSERT INTO products (code, color, brand_id, size, material, price, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, query, c.Code, c.Color, brandID, c.Size, c.Material, c.Price, time.Now())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (p *Persister) getOrCreateBrand(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM brands WHERE name = ? LIMIT 1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, err
	}

	result, err := tx.ExecContext(ctx, `INSERT INTO brands (name, created_at) VALUES (?, ?)`, name, time.Now())
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// insertImages skips any (product_id, filename) pair that already exists so a
// re-run of the same batch is idempotent.
func (p *Persister) insertImages(ctx context.Context, tx *sql.Tx, productID int64, images []model.PersistedImage) (int, error) {
	created := 0
	for _, img := range images {
		var existing int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM product_images WHERE product_id = ? AND filename = ? LIMIT 1`,
			productID, img.Filename).Scan(&existing)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO product_images (product_id, filename, url, role, created_at) VALUES (?, ?, ?, ?, ?)`,
			productID, img.Filename, img.URL, img.Role, time.Now())
		if err != nil {
			return 0, err
		}
		created++
	}
	return created, nil
}
