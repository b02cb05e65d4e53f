package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/cache"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/config"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/db"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/extract"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/logger"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/model"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/storage"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/uploader"
	pkgerrors "github.com/ilkeraydogduPofuduk/kolajBot-sub001/pkg/errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Narrow collaborator slices so tests can fake each stage in isolation.
type (
	batchPersister interface {
		Persist(ctx context.Context, products []*model.ResolvedProduct) (model.PersistReport, error)
	}
	productResolver interface {
		Resolve(ctx context.Context, code, color, brand string) (int64, error)
	}
	assetUploader interface {
		UploadGroups(ctx context.Context, groups []uploader.Group, onResult func(model.UploadResult)) []model.UploadResult
	}
	batchEnqueuer interface {
		EnqueueBatch(ctx context.Context, msg model.BatchMessage) error
	}
)

// Coordinator owns the job state machine and the fan-out/fan-in of every
// pipeline stage: classify, extract, upload, resolve, persist.
type Coordinator struct {
	cfg        *config.Config
	repo       db.Repository
	store      storage.Storage
	cache      *cache.ExtractionCache
	recognizer extract.Recognizer
	extractor  *extract.Extractor
	validator  *extract.Validator
	resolver   productResolver
	uploader   assetUploader
	persister  batchPersister
	producer   batchEnqueuer
	log        zerolog.Logger
}

func NewCoordinator(
	cfg *config.Config,
	repo db.Repository,
	store storage.Storage,
	extractionCache *cache.ExtractionCache,
	recognizer extract.Recognizer,
	resolver productResolver,
	up assetUploader,
	persister batchPersister,
	producer batchEnqueuer,
) *Coordinator {
	return &Coordinator{
		cfg:        cfg,
		repo:       repo,
		store:      store,
		cache:      extractionCache,
		recognizer: recognizer,
		extractor: extract.NewExtractor(extract.PriceRange{
			Min: cfg.Pipeline.PriceRangeMin,
			Max: cfg.Pipeline.PriceRangeMax,
		}),
		validator: extract.NewValidator(cfg.Pipeline.MaxFileSize, cfg.Pipeline.AllowedExtensions),
		resolver:  resolver,
		uploader:  up,
		persister: persister,
		producer:  producer,
		log:       logger.With("coordinator"),
	}
}

// SubmitBatch validates the incoming files, stages the accepted ones to object
// storage, creates the job row and enqueues the batch for asynchronous
// processing. It returns as soon as the job is queued.
func (c *Coordinator) SubmitBatch(ctx context.Context, owner, brand string, files []*model.AssetFile) (string, error) {
	if len(files) == 0 {
		return "", pkgerrors.ErrEmptyBatch
	}

	jobID := uuid.NewString()
	log := c.log.With().Str("job_id", jobID).Logger()

	var (
		staged   []model.StagedFile
		rejected []string
	)
	for _, file := range files {
		if err := c.validator.Validate(file.Filename, int64(len(file.Data))); err != nil {
			rejected = append(rejected, fmt.Sprintf("rejected %s: %v", file.Filename, err))
			continue
		}

		role, _ := extract.Classify(file.Filename)
		key := c.cfg.Storage.StagingPrefix + "/" + jobID + "/" + file.Filename
		if err := c.store.Upload(ctx, key, bytes.NewReader(file.Data)); err != nil {
			// No job row exists yet, so nothing would ever clean these up.
			for _, s := range staged {
				if delErr := c.store.Delete(ctx, s.StagingKey); delErr != nil {
					log.Warn().Err(delErr).Str("key", s.StagingKey).Msg("Failed to delete staged file")
				}
			}
			return "", fmt.Errorf("failed to stage %s: %w", file.Filename, err)
		}
		staged = append(staged, model.StagedFile{Filename: file.Filename, StagingKey: key, Role: role})
	}

	job := &model.IngestionJob{
		ID:            jobID,
		Owner:         owner,
		TotalFiles:    len(files),
		FailedFiles:   len(rejected),
		Status:        model.JobStatusPending,
		ProcessingLog: strings.Join(rejected, "\n"),
		CreatedAt:     time.Now(),
	}
	if err := c.repo.CreateJob(ctx, job); err != nil {
		return "", fmt.Errorf("failed to create job: %w", err)
	}

	if len(staged) == 0 {
		// Every file was rejected up front; there is nothing to process.
		if err := c.repo.UpdateJobStatus(ctx, jobID, model.JobStatusFailed); err != nil {
			return "", err
		}
		log.Warn().Int("rejected", len(rejected)).Msg("Batch rejected in full")
		return jobID, nil
	}

	msg := model.BatchMessage{JobID: jobID, Owner: owner, Brand: brand, Files: staged}
	if err := c.producer.EnqueueBatch(ctx, msg); err != nil {
		return "", fmt.Errorf("failed to enqueue batch: %w", err)
	}

	log.Info().Int("total", len(files)).Int("rejected", len(rejected)).Msg("Batch submitted")
	return jobID, nil
}

// Process drives one queued batch through the whole pipeline. It is safe to
// call again for the same job after a crash: terminal jobs are skipped and
// persistence is idempotent.
func (c *Coordinator) Process(ctx context.Context, msg model.BatchMessage) error {
	log := c.log.With().Str("job_id", msg.JobID).Logger()

	job, err := c.repo.GetJob(ctx, msg.JobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		log.Warn().Str("status", string(job.Status)).Msg("Job already finished, skipping")
		return nil
	}

	if err := c.repo.UpdateJobStatus(ctx, msg.JobID, model.JobStatusProcessing); err != nil {
		return c.fail(ctx, msg, fmt.Errorf("failed to mark job processing: %w", err))
	}

	failed := job.FailedFiles
	processed := 0

	// Stage 1: pull staged files back out of object storage.
	files := make([]*model.AssetFile, 0, len(msg.Files))
	for _, staged := range msg.Files {
		data, err := c.downloadStaged(ctx, staged.StagingKey)
		if err != nil {
			log.Error().Err(err).Str("filename", staged.Filename).Msg("Failed to fetch staged file")
			failed++
			c.appendLog(ctx, msg.JobID, fmt.Sprintf("fetch failed %s: %v", staged.Filename, err))
			c.repo.UpdateJobProgress(ctx, msg.JobID, processed, failed)
			continue
		}
		files = append(files, &model.AssetFile{
			Filename:    staged.Filename,
			Data:        data,
			Role:        staged.Role,
			ContentHash: extract.ContentHash(data),
		})
	}

	// Stage 2: group files by filename stem and extract fields from each tag.
	candidates := c.buildCandidates(ctx, msg, files, log)

	if cancelled, _ := c.repo.IsJobCancelled(ctx, msg.JobID); cancelled {
		log.Info().Msg("Job cancelled before upload, discarding")
		c.cleanupStaging(ctx, msg)
		return nil
	}

	// Stage 3: upload, one directory group per candidate, progress after every
	// terminal file.
	now := time.Now()
	groups := make([]uploader.Group, 0, len(candidates))
	for _, cand := range candidates {
		groups = append(groups, uploader.Group{
			Dir:   uploader.DestinationDir(cand.Brand, msg.Owner, now, cand.Code, cand.Color),
			Files: cand.Files,
		})
	}

	resultsByName := make(map[string]model.UploadResult, len(files))
	var progressMu sync.Mutex
	progress := func(r model.UploadResult) {
		// The repo write stays inside the lock: concurrent groups otherwise
		// race their UPDATEs and a stale lower count can land last.
		progressMu.Lock()
		if r.Success {
			processed++
		} else {
			failed++
		}
		c.repo.UpdateJobProgress(ctx, msg.JobID, processed, failed)
		progressMu.Unlock()
		if !r.Success {
			c.appendLog(ctx, msg.JobID, fmt.Sprintf("upload failed %s: %s", r.Filename, r.Error))
		}
	}
	for _, r := range c.uploader.UploadGroups(ctx, groups, progress) {
		resultsByName[r.Filename] = r
	}

	// Cancellation checkpoint: uploads were allowed to finish, but nothing is
	// persisted for a cancelled job.
	if cancelled, _ := c.repo.IsJobCancelled(ctx, msg.JobID); cancelled {
		log.Info().Msg("Job cancelled before persistence, discarding upload results")
		c.cleanupStaging(ctx, msg)
		return nil
	}

	// Stage 4: resolve and persist in one transaction.
	resolved, err := c.resolveCandidates(ctx, candidates, resultsByName)
	if err != nil {
		return c.fail(ctx, msg, fmt.Errorf("resolution failed: %w", err))
	}

	if _, err := c.persister.Persist(ctx, resolved); err != nil {
		return c.fail(ctx, msg, fmt.Errorf("persistence failed: %w", err))
	}

	c.cleanupStaging(ctx, msg)

	// Finalize. Terminal status reflects the most specific known outcome.
	final := model.JobStatusCompleted
	switch {
	case failed > 0 && processed > 0:
		final = model.JobStatusPartial
	case failed > 0 && processed == 0:
		final = model.JobStatusFailed
	}
	if err := c.repo.UpdateJobStatus(ctx, msg.JobID, final); err != nil {
		return err
	}
	c.appendLog(ctx, msg.JobID, fmt.Sprintf("finished: %d processed, %d failed", processed, failed))

	log.Info().
		Str("status", string(final)).
		Int("processed", processed).
		Int("failed", failed).
		Msg("Job finished")
	return nil
}

// Status returns the outward-facing view of one job.
func (c *Coordinator) Status(ctx context.Context, jobID string) (*model.JobStatusResponse, error) {
	job, err := c.repo.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &model.JobStatusResponse{
		JobID:           job.ID,
		Status:          job.Status,
		TotalFiles:      job.TotalFiles,
		ProcessedFiles:  job.ProcessedFiles,
		FailedFiles:     job.FailedFiles,
		ProgressPercent: job.Progress() * 100,
		ProcessingLog:   job.ProcessingLog,
		UpdatedAt:       time.Now(),
	}, nil
}

// Cancel marks a job cancelled. Jobs already in a terminal state stay put.
func (c *Coordinator) Cancel(ctx context.Context, jobID string) error {
	return c.repo.UpdateJobStatus(ctx, jobID, model.JobStatusCancelled)
}

func (c *Coordinator) downloadStaged(ctx context.Context, key string) ([]byte, error) {
	reader, err := c.store.Download(ctx, key)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

// candidateGroup collects one stem's tag and product images before field
// extraction turns it into a ProductCandidate.
type candidateGroup struct {
	stem   string
	tag    *model.AssetFile
	images []*model.AssetFile
}

func (c *Coordinator) buildCandidates(ctx context.Context, msg model.BatchMessage, files []*model.AssetFile, log zerolog.Logger) []*model.ProductCandidate {
	groupOrder := make([]string, 0, len(files))
	groupsByStem := make(map[string]*candidateGroup)

	for _, file := range files {
		role, stem := extract.Classify(file.Filename)
		file.Role = role
		group, ok := groupsByStem[stem]
		if !ok {
			group = &candidateGroup{stem: stem}
			groupsByStem[stem] = group
			groupOrder = append(groupOrder, stem)
		}
		if role == model.RoleTag {
			group.tag = file
		} else {
			group.images = append(group.images, file)
		}
	}

	merged := make(map[string]*model.ProductCandidate)
	var order []string
	for _, stem := range groupOrder {
		group := groupsByStem[stem]

		var candidate *model.ProductCandidate
		if group.tag != nil {
			candidate = c.extractCandidate(ctx, group.tag, log)
		} else {
			candidate = &model.ProductCandidate{MissingFields: []string{"code", "color", "brand", "price"}}
		}

		// Fall back to filename and batch context for anything the tag could
		// not provide; the grouping key must never be empty.
		if candidate.Code == "" {
			candidate.Code = strings.ToUpper(group.stem)
		}
		if candidate.Brand == "" {
			candidate.Brand = msg.Brand
		}

		candidate.Files = group.files()

		key := candidate.GroupKey()
		if existing, ok := merged[key]; ok {
			// Two stems resolved to the same logical product; their assets
			// belong to one candidate.
			existing.Files = append(existing.Files, candidate.Files...)
			continue
		}
		merged[key] = candidate
		order = append(order, key)
	}

	candidates := make([]*model.ProductCandidate, 0, len(order))
	for _, key := range order {
		candidates = append(candidates, merged[key])
	}
	return candidates
}

func (g *candidateGroup) files() []*model.AssetFile {
	files := make([]*model.AssetFile, 0, len(g.images)+1)
	if g.tag != nil {
		files = append(files, g.tag)
	}
	return append(files, g.images...)
}

// extractCandidate serves tag text from the cache when the same image bytes
// have been seen before; only a miss costs an external recognition call.
func (c *Coordinator) extractCandidate(ctx context.Context, tag *model.AssetFile, log zerolog.Logger) *model.ProductCandidate {
	if cached, ok := c.cache.Get(ctx, tag.ContentHash); ok {
		log.Debug().Str("filename", tag.Filename).Msg("Extraction cache hit")
		return c.extractor.Extract(cached.Text)
	}

	start := time.Now()
	recognition, err := c.recognizer.Recognize(ctx, tag.Data)
	if err != nil {
		log.Error().Err(err).Str("filename", tag.Filename).Msg("Text recognition failed")
		return &model.ProductCandidate{MissingFields: []string{"code", "color", "brand", "price"}}
	}

	candidate := c.extractor.Extract(recognition.Text)
	c.cache.Put(ctx, tag.ContentHash, model.ExtractionResult{
		Text:        recognition.Text,
		Fields:      extract.FieldMap(candidate),
		Confidence:  candidate.Confidence,
		Method:      "external",
		ElapsedMS:   time.Since(start).Milliseconds(),
		ExtractedAt: time.Now(),
	})
	return candidate
}

func (c *Coordinator) resolveCandidates(ctx context.Context, candidates []*model.ProductCandidate, results map[string]model.UploadResult) ([]*model.ResolvedProduct, error) {
	var resolved []*model.ResolvedProduct
	for _, candidate := range candidates {
		images := make([]model.PersistedImage, 0, len(candidate.Files))
		for _, file := range candidate.Files {
			// The tag photo is archived next to its product on remote storage
			// but it is not a catalog image; only product shots become rows.
			if file.Role == model.RoleTag {
				continue
			}
			result, ok := results[file.Filename]
			if !ok || !result.Success {
				continue
			}
			images = append(images, model.PersistedImage{
				Filename: file.Filename,
				URL:      result.URL,
				Role:     file.Role,
			})
		}
		if len(images) == 0 {
			continue
		}

		existingID, err := c.resolver.Resolve(ctx, candidate.Code, candidate.Color, candidate.Brand)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, &model.ResolvedProduct{
			Candidate:  candidate,
			ExistingID: existingID,
			Images:     images,
		})
	}
	return resolved, nil
}

// fail finalizes the job only once the queue's attempt budget is spent, so a
// transient persistence error still gets its retries.
func (c *Coordinator) fail(ctx context.Context, msg model.BatchMessage, err error) error {
	c.appendLog(ctx, msg.JobID, err.Error())
	if msg.Attempts >= c.cfg.Redis.MaxJobAttempts {
		if statusErr := c.repo.UpdateJobStatus(ctx, msg.JobID, model.JobStatusFailed); statusErr != nil {
			c.log.Error().Err(statusErr).Str("job_id", msg.JobID).Msg("Failed to finalize job")
		}
	}
	return err
}

func (c *Coordinator) appendLog(ctx context.Context, jobID, entry string) {
	if err := c.repo.AppendJobLog(ctx, jobID, entry); err != nil {
		c.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to append job log")
	}
}

func (c *Coordinator) cleanupStaging(ctx context.Context, msg model.BatchMessage) {
	for _, staged := range msg.Files {
		if err := c.store.Delete(ctx, staged.StagingKey); err != nil {
			c.log.Warn().Err(err).Str("key", staged.StagingKey).Msg("Failed to delete staged file")
		}
	}
}
