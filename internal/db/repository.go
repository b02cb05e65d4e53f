package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/model"
	pkgerrors "github.com/ilkeraydogduPofuduk/kolajBot-sub001/pkg/errors"
)

type Repository interface {
	CreateJob(ctx context.Context, job *model.IngestionJob) error
	GetJob(ctx context.Context, jobID string) (*model.IngestionJob, error)
	UpdateJobStatus(ctx context.Context, jobID string, status model.JobStatus) error
	UpdateJobProgress(ctx context.Context, jobID string, processed, failed int) error
	AppendJobLog(ctx context.Context, jobID string, entry string) error
	IsJobCancelled(ctx context.Context, jobID string) (bool, error)

	FindProductExact(ctx context.Context, code, color, brand string) (int64, error)
	FindProductFold(ctx context.Context, code, color, brand string) (int64, error)
	ListProductsByCodeBrand(ctx context.Context, code, brand string) ([]model.ProductRow, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateJob(ctx context.Context, job *model.IngestionJob) error {
	query := `INSERT INTO ingestion_jobs (id, owner, total_files, processed_files, failed_files, status, processing_log, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, job.ID, job.Owner, job.TotalFiles,
		job.ProcessedFiles, job.FailedFiles, job.Status, job.ProcessingLog, job.CreatedAt)
	return err
}

func (r *repository) GetJob(ctx context.Context, jobID string) (*model.IngestionJob, error) {
	query := `SELECT id, owner, total_files, processed_files, failed_files, status, processing_log, created_at, started_at, completed_at
			  FROM ingestion_jobs WHERE id = ?`

	var job model.IngestionJob
	err := r.db.QueryRowContext(ctx, query, jobID).Scan(
		&job.ID, &job.Owner, &job.TotalFiles, &job.ProcessedFiles, &job.FailedFiles,
		&job.Status, &job.ProcessingLog, &job.CreatedAt, &job.StartedAt, &job.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, pkgerrors.ErrJobNotFound
		}
		return nil, err
	}

	return &job, nil
}

// UpdateJobStatus moves a job along its state machine. Terminal states are
// immutable: the guard in the WHERE clause refuses to reopen a finished job.
func (r *repository) UpdateJobStatus(ctx context.Context, jobID string, status model.JobStatus) error {
	now := time.Now()

	if status == model.JobStatusProcessing {
		return r.markProcessing(ctx, jobID, now)
	}

	var query string
	var args []interface{}
	switch status {
	case model.JobStatusCompleted, model.JobStatusPartial, model.JobStatusFailed, model.JobStatusCancelled:
		query = `UPDATE ingestion_jobs SET status = ?, completed_at = ? WHERE id = ? AND status IN (?, ?)`
		args = []interface{}{status, now, jobID, model.JobStatusPending, model.JobStatusProcessing}
	default:
		query = `UPDATE ingestion_jobs SET status = ? WHERE id = ?`
		args = []interface{}{status, jobID}
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return pkgerrors.ErrJobFinished
	}
	return nil
}

// markProcessing claims a PENDING job, but a job already in PROCESSING is
// success, not error: the queue redelivers failed batches and they must be
// able to re-enter processing. MySQL reports zero affected rows for a no-op
// update, so the unchanged case is verified with a read instead of widening
// the WHERE guard.
func (r *repository) markProcessing(ctx context.Context, jobID string, now time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE ingestion_jobs SET status = ?, started_at = ? WHERE id = ? AND status = ?`,
		model.JobStatusProcessing, now, jobID, model.JobStatusPending)
	if err != nil {
		return err
	}
	if rows, err := result.RowsAffected(); err != nil || rows > 0 {
		return err
	}

	var current model.JobStatus
	if err := r.db.QueryRowContext(ctx, `SELECT status FROM ingestion_jobs WHERE id = ?`, jobID).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pkgerrors.ErrJobNotFound
		}
		return err
	}
	if current == model.JobStatusProcessing {
		return nil
	}
	return pkgerrors.ErrJobFinished
}

func (r *repository) UpdateJobProgress(ctx context.Context, jobID string, processed, failed int) error {
	query := `UPDATE ingestion_jobs SET processed_files = ?, failed_files = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, processed, failed, jobID)
	return err
}

func (r *repository) AppendJobLog(ctx context.Context, jobID string, entry string) error {
	query := `UPDATE ingestion_jobs SET processing_log = CONCAT(processing_log, ?, '\n') WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, entry, jobID)
	return err
}

func (r *repository) IsJobCancelled(ctx context.Context, jobID string) (bool, error) {
	query := `SELECT status FROM ingestion_jobs WHERE id = ?`
	var status model.JobStatus
	if err := r.db.QueryRowContext(ctx, query, jobID).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, pkgerrors.ErrJobNotFound
		}
		return false, err
	}
	return status == model.JobStatusCancelled, nil
}

// The products schema carries a unique key on (code, color, brand_id); these
// lookups ride that index. MySQL's default collation is case-insensitive, so
// the exact variant forces a binary comparison.
func (r *repository) FindProductExact(ctx context.Context, code, color, brand string) (int64, error) {
	query := `SELECT p.id FROM products p
			  JOIN brands b ON b.id = p.brand_id
			  WHERE BINARY p.code = ? AND BINARY p.color = ? AND BINARY b.name = ?
			  LIMIT 1`
	return r.scanProductID(ctx, query, code, color, brand)
}

func (r *repository) FindProductFold(ctx context.Context, code, color, brand string) (int64, error) {
	query := `SELECT p.id FROM products p
			  JOIN brands b ON b.id = p.brand_id
			  WHERE LOWER(p.code) = LOWER(?) AND LOWER(p.color) = LOWER(?) AND LOWER(b.name) = LOWER(?)
			  LIMIT 1`
	return r.scanProductID(ctx, query, code, color, brand)
}

func (r *repository) scanProductID(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repository) ListProductsByCodeBrand(ctx context.Context, code, brand string) ([]model.ProductRow, error) {
	query := `SELECT p.id, p.code, p.color, p.brand_id, b.name, p.created_at
			  FROM products p
			  JOIN brands b ON b.id = p.brand_id
			  WHERE LOWER(p.code) = LOWER(?) AND LOWER(b.name) = LOWER(?)`

	rows, err := r.db.QueryContext(ctx, query, code, brand)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []model.ProductRow
	for rows.Next() {
		var p model.ProductRow
		if err := rows.Scan(&p.ID, &p.Code, &p.Color, &p.BrandID, &p.BrandName, &p.CreatedAt); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
