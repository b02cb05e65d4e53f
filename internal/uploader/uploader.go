package uploader

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/logger"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/model"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/storage"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/worker"

	"github.com/rs/zerolog"
)

// Uploader pushes asset batches to remote storage. Files sharing a destination
// directory go out sequentially over one logical session; distinct directories
// are separate units of work on the shared pool, so parallelism is capped by
// the pool's worker ceiling no matter how many files a batch carries.
type Uploader struct {
	store      storage.Storage
	pool       *worker.Pool
	retries    int
	retryDelay time.Duration
	log        zerolog.Logger
}

func New(store storage.Storage, pool *worker.Pool, retries int, retryDelay time.Duration) *Uploader {
	if retries <= 0 {
		retries = 3
	}
	return &Uploader{
		store:      store,
		pool:       pool,
		retries:    retries,
		retryDelay: retryDelay,
		log:        logger.With("uploader"),
	}
}

// Group is one destination directory and the files headed there.
type Group struct {
	Dir   string
	Files []*model.AssetFile
}

// UploadGroups uploads every group and returns one terminal result per file.
// A failed file never aborts its siblings; partial failure is the expected
// shape of the result, not an exception. The onResult callback, when set, is
// invoked as each file reaches a terminal state.
func (u *Uploader) UploadGroups(ctx context.Context, groups []Group, onResult func(model.UploadResult)) []model.UploadResult {
	var (
		mu      sync.Mutex
		results []model.UploadResult
		wg      sync.WaitGroup
	)

	record := func(r model.UploadResult) {
		mu.Lock()
		results = append(results, r)
		mu.Unlock()
		if onResult != nil {
			onResult(r)
		}
	}

	for _, group := range groups {
		g := group
		wg.Add(1)
		u.pool.Submit(func(ctx context.Context) error {
			defer wg.Done()
			u.uploadGroup(ctx, g, record)
			return nil
		})
	}

	wg.Wait()
	return results
}

func (u *Uploader) uploadGroup(ctx context.Context, group Group, record func(model.UploadResult)) {
	log := u.log.With().Str("dir", group.Dir).Logger()

	if err := u.store.EnsureDir(ctx, group.Dir); err != nil {
		log.Error().Err(err).Msg("Failed to create destination directory")
		for _, file := range group.Files {
			record(model.UploadResult{Filename: file.Filename, Success: false, Error: err.Error()})
		}
		return
	}

	for _, file := range group.Files {
		record(u.uploadFile(ctx, group.Dir, file, log))
	}
}

func (u *Uploader) uploadFile(ctx context.Context, dir string, file *model.AssetFile, log zerolog.Logger) model.UploadResult {
	key := dir + "/" + sanitizeFilename(file.Filename)

	var lastErr error
	for attempt := 1; attempt <= u.retries; attempt++ {
		err := u.store.Upload(ctx, key, bytes.NewReader(file.Data))
		if err == nil {
			log.Debug().Str("filename", file.Filename).Str("key", key).Msg("File uploaded")
			return model.UploadResult{Filename: file.Filename, Success: true, URL: u.store.PublicURL(key)}
		}
		lastErr = err
		log.Warn().Err(err).Str("filename", file.Filename).Int("attempt", attempt).Msg("Upload attempt failed")

		if attempt == u.retries {
			break
		}
		select {
		case <-ctx.Done():
			return model.UploadResult{Filename: file.Filename, Success: false, Error: ctx.Err().Error()}
		case <-time.After(u.retryDelay):
		}
	}

	return model.UploadResult{Filename: file.Filename, Success: false, Error: lastErr.Error()}
}
