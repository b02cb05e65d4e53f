package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/cache"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/config"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/logger"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/model"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/pipeline"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/queue"
	"github.com/ilkeraydogduPofuduk/kolajBot-sub001/internal/worker"
	pkgerrors "github.com/ilkeraydogduPofuduk/kolajBot-sub001/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Handler struct {
	coordinator *pipeline.Coordinator
	producer    *queue.Producer
	cache       *cache.ExtractionCache
	pool        *worker.Pool
	cfg         *config.Config
	log         zerolog.Logger
}

func NewHandler(
	coordinator *pipeline.Coordinator,
	producer *queue.Producer,
	extractionCache *cache.ExtractionCache,
	pool *worker.Pool,
	cfg *config.Config,
) *Handler {
	return &Handler{
		coordinator: coordinator,
		producer:    producer,
		cache:       extractionCache,
		pool:        pool,
		cfg:         cfg,
		log:         logger.With("api"),
	}
}

// SubmitBatch accepts a multipart batch of product photos and queues it for
// asynchronous processing. Responds 202 with the job id.
func (h *Handler) SubmitBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	owner := c.PostForm("owner")
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing owner"})
		return
	}
	brand := c.PostForm("brand")

	fileHeaders := form.File["files"]
	files := make([]*model.AssetFile, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		src, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file: " + header.Filename})
			return
		}
		data, err := io.ReadAll(src)
		src.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unreadable file: " + header.Filename})
			return
		}
		files = append(files, &model.AssetFile{Filename: header.Filename, Data: data})
	}

	jobID, err := h.coordinator.SubmitBatch(c.Request.Context(), owner, brand, files)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrEmptyBatch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Batch contains no files"})
			return
		}
		h.log.Error().Err(err).Msg("Failed to submit batch")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit batch"})
		return
	}

	h.log.Info().Str("job_id", jobID).Int("files", len(files)).Str("owner", owner).Msg("Batch accepted")

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": jobID,
	})
}

func (h *Handler) GetJobStatus(c *gin.Context) {
	jobID := c.Param("job_id")

	status, err := h.coordinator.Status(c.Request.Context(), jobID)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
			return
		}
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to get job status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *Handler) CancelJob(c *gin.Context) {
	jobID := c.Param("job_id")

	err := h.coordinator.Cancel(c.Request.Context(), jobID)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"job_id": jobID, "status": model.JobStatusCancelled})
	case errors.Is(err, pkgerrors.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
	case errors.Is(err, pkgerrors.ErrJobFinished):
		c.JSON(http.StatusConflict, gin.H{"error": "Job is already finished"})
	default:
		h.log.Error().Err(err).Str("job_id", jobID).Msg("Failed to cancel job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// GetStats serves the operational dashboard counters.
func (h *Handler) GetStats(c *gin.Context) {
	hits, misses := h.cache.Stats()

	depth, err := h.producer.Depth(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read queue depth")
		depth = -1
	}

	c.JSON(http.StatusOK, model.PipelineStats{
		CacheHits:     hits,
		CacheMisses:   misses,
		QueueDepth:    depth,
		ActiveWorkers: h.pool.Active(),
	})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.App.Name,
		"version": h.cfg.App.Version,
	})
}
