package model

import "time"

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusPartial    JobStatus = "PARTIAL"
	JobStatusFailed     JobStatus = "FAILED"
	JobStatusCancelled  JobStatus = "CANCELLED"
)

// IsTerminal reports whether a job in this status may never change again.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusPartial, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// CanTransition enforces the monotonic job lifecycle:
// PENDING -> PROCESSING -> {COMPLETED | PARTIAL | FAILED | CANCELLED}.
// CANCELLED may also be reached directly from PENDING. PROCESSING re-enters
// itself so a redelivered batch can resume after a transient failure.
func (s JobStatus) CanTransition(to JobStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case JobStatusPending:
		return to == JobStatusProcessing || to == JobStatusCancelled || to == JobStatusFailed
	case JobStatusProcessing:
		return to == JobStatusProcessing || to.IsTerminal()
	}
	return false
}

type IngestionJob struct {
	ID             string     `json:"id" db:"id"`
	Owner          string     `json:"owner" db:"owner"`
	TotalFiles     int        `json:"total_files" db:"total_files"`
	ProcessedFiles int        `json:"processed_files" db:"processed_files"`
	FailedFiles    int        `json:"failed_files" db:"failed_files"`
	Status         JobStatus  `json:"status" db:"status"`
	ProcessingLog  string     `json:"processing_log,omitempty" db:"processing_log"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// Progress is the successfully processed fraction in [0, 1]. Failed files are
// reported separately and do not advance the bar.
func (j *IngestionJob) Progress() float64 {
	if j.TotalFiles == 0 {
		return 0
	}
	return float64(j.ProcessedFiles) / float64(j.TotalFiles)
}
