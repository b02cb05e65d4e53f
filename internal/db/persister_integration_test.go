package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/model"
)

// Integration tests run against a real MySQL with the migrations applied.
// Set TEST_DATABASE_DSN to enable them, e.g.
// "root:secret@tcp(127.0.0.1:3306)/kolajbot_test?parseTime=true".
func integrationDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	conn, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	require.NoError(t, conn.Ping())
	t.Cleanup(func() {
		conn.Exec("DELETE FROM product_images")
		conn.Exec("DELETE FROM products")
		conn.Exec("DELETE FROM brands")
		conn.Exec("DELETE FROM ingestion_jobs")
		conn.Close()
	})
	return conn
}

func resolvedProduct(code, color, brand string, filenames ...string) *model.ResolvedProduct {
	images := make([]model.PersistedImage, 0, len(filenames))
	for _, name := range filenames {
		images = append(images, model.PersistedImage{
			Filename: name,
			URL:      "https://cdn.test/" + name,
			Role:     model.RoleProductImage,
		})
	}
	return &model.ResolvedProduct{
		Candidate: &model.ProductCandidate{Code: code, Color: color, Brand: brand, Price: 150},
		Images:    images,
	}
}

func TestPersistCreatesProductsAndImages(t *testing.T) {
	conn := integrationDB(t)
	persister := NewPersister(conn)

	report, err := persister.Persist(context.Background(), []*model.ResolvedProduct{
		resolvedProduct("AB-100", "siyah", "POFUDUK", "AB-100_1.jpg", "AB-100_2.jpg"),
		resolvedProduct("AB-200", "beyaz", "POFUDUK", "AB-200_1.jpg"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.ProductsCreated)
	assert.Equal(t, 3, report.ImagesCreated)

	// Both products share one brand row.
	var brands int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM brands`).Scan(&brands))
	assert.Equal(t, 1, brands)
}

func TestPersistIsIdempotentOnRerun(t *testing.T) {
	conn := integrationDB(t)
	persister := NewPersister(conn)

	batch := []*model.ResolvedProduct{
		resolvedProduct("AB-100", "siyah", "POFUDUK", "AB-100_1.jpg"),
	}

	_, err := persister.Persist(context.Background(), batch)
	require.NoError(t, err)

	report, err := persister.Persist(context.Background(), batch)
	require.NoError(t, err)
	assert.Zero(t, report.ProductsCreated)
	assert.Zero(t, report.ImagesCreated)
}

func TestPersistAttachesImagesToExistingProduct(t *testing.T) {
	conn := integrationDB(t)
	persister := NewPersister(conn)

	_, err := persister.Persist(context.Background(), []*model.ResolvedProduct{
		resolvedProduct("AB-100", "siyah", "POFUDUK", "AB-100_1.jpg"),
	})
	require.NoError(t, err)

	repo := NewRepository(conn)
	existingID, err := repo.FindProductExact(context.Background(), "AB-100", "siyah", "POFUDUK")
	require.NoError(t, err)
	require.Positive(t, existingID)

	next := resolvedProduct("AB-100", "siyah", "POFUDUK", "AB-100_3.jpg")
	next.ExistingID = existingID

	report, err := persister.Persist(context.Background(), []*model.ResolvedProduct{next})
	require.NoError(t, err)
	assert.Zero(t, report.ProductsCreated)
	assert.Equal(t, 1, report.ImagesCreated)
}

func TestJobStatusTransitions(t *testing.T) {
	conn := integrationDB(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	job := &model.IngestionJob{
		ID:         fmt.Sprintf("job-%d", time.Now().UnixNano()),
		Owner:      "test",
		TotalFiles: 2,
		Status:     model.JobStatusPending,
		CreatedAt:  time.Now(),
	}
	require.NoError(t, repo.CreateJob(ctx, job))

	require.NoError(t, repo.UpdateJobStatus(ctx, job.ID, model.JobStatusProcessing))
	require.NoError(t, repo.UpdateJobStatus(ctx, job.ID, model.JobStatusCompleted))

	// Terminal states are immutable.
	err := repo.UpdateJobStatus(ctx, job.ID, model.JobStatusCancelled)
	assert.Error(t, err)

	got, err := repo.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, got.Status)
}
