package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJobStatusTransitions(t *testing.T) {
	assert.True(t, JobStatusPending.CanTransition(JobStatusProcessing))
	assert.True(t, JobStatusPending.CanTransition(JobStatusCancelled))
	// A redelivered batch re-enters processing.
	assert.True(t, JobStatusProcessing.CanTransition(JobStatusProcessing))

	assert.True(t, JobStatusProcessing.CanTransition(JobStatusCompleted))
	assert.True(t, JobStatusProcessing.CanTransition(JobStatusPartial))
	assert.True(t, JobStatusProcessing.CanTransition(JobStatusFailed))
	assert.True(t, JobStatusProcessing.CanTransition(JobStatusCancelled))

	// No skipping pending straight to a success state.
	assert.False(t, JobStatusPending.CanTransition(JobStatusCompleted))
	assert.False(t, JobStatusPending.CanTransition(JobStatusPartial))
}

func TestTerminalStatesAreImmutable(t *testing.T) {
	for _, terminal := range []JobStatus{JobStatusCompleted, JobStatusPartial, JobStatusFailed, JobStatusCancelled} {
		assert.True(t, terminal.IsTerminal())
		assert.False(t, terminal.CanTransition(JobStatusProcessing), "reopened %s", terminal)
		assert.False(t, terminal.CanTransition(JobStatusPending), "reopened %s", terminal)
	}
}

func TestJobProgress(t *testing.T) {
	job := &IngestionJob{TotalFiles: 10, ProcessedFiles: 6, FailedFiles: 2}
	assert.InDelta(t, 0.6, job.Progress(), 1e-9)

	empty := &IngestionJob{}
	assert.Zero(t, empty.Progress())
}

func TestCandidateGroupKeyNormalizes(t *testing.T) {
	a := &ProductCandidate{Code: "AB-100", Color: "Siyah", Brand: "Pofuduk"}
	b := &ProductCandidate{Code: "ab-100 ", Color: " siyah", Brand: "POFUDUK"}
	assert.Equal(t, a.GroupKey(), b.GroupKey())

	c := &ProductCandidate{Code: "AB-100", Color: "beyaz", Brand: "Pofuduk"}
	assert.NotEqual(t, a.GroupKey(), c.GroupKey())
}
