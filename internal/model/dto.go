package model

import "time"

// StagedFile is the queue-side reference to one submitted file, parked in object
// storage until the worker picks the job up.
type StagedFile struct {
	Filename   string   `json:"filename"`
	StagingKey string   `json:"staging_key"`
	Role       FileRole `json:"role"`
}

// BatchMessage is the unit of work on the ingestion queue. Attempts counts
// deliveries so the consumer can dead-letter instead of requeueing forever.
type BatchMessage struct {
	JobID    string       `json:"job_id"`
	Owner    string       `json:"owner"`
	Brand    string       `json:"brand"`
	Files    []StagedFile `json:"files"`
	Attempts int          `json:"attempts"`
}

type JobStatusResponse struct {
	JobID           string    `json:"job_id"`
	Status          JobStatus `json:"status"`
	TotalFiles      int       `json:"total_files"`
	ProcessedFiles  int       `json:"processed_files"`
	FailedFiles     int       `json:"failed_files"`
	ProgressPercent float64   `json:"progress_percent"`
	ProcessingLog   string    `json:"processing_log,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// RecognitionResult is what the external text-recognition service returns for
// one image.
type RecognitionResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// PipelineStats feeds the operational stats endpoint.
type PipelineStats struct {
	CacheHits     int64 `json:"cache_hits"`
	CacheMisses   int64 `json:"cache_misses"`
	QueueDepth    int64 `json:"queue_depth"`
	ActiveWorkers int64 `json:"active_workers"`
}
