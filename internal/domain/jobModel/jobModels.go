package jobModel

import (
	"context"
	"time"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// Terminal reports whether a status permits no further transitions.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job is one ingestion submission. Status is monotonic:
// PENDING -> PROCESSING -> {COMPLETED, FAILED}. The terminal state is set
// exactly once by the orchestrator that claimed the job.
type Job struct {
	Id          string    `json:"id"`
	Path        string    `json:"path"`
	TraceId     string    `json:"trace_id"`
	Status      JobStatus `json:"status"`
	Result      string    `json:"result,omitempty"`
	CreatedTime time.Time `json:"created_time"`
	EndTime     time.Time `json:"end_time,omitempty"`
}

// JobRegistry is durable state-machine storage for jobs. ClaimJob is an
// atomic compare-and-set so two workers never both process the same job; the
// loser gets apperrors.ErrConflict.
type JobRegistry interface {
	CreateJob(ctx context.Context, job Job) error
	ClaimJob(ctx context.Context, jobId string) (Job, error)
	FinalizeJob(ctx context.Context, jobId string, status JobStatus, result string) error
	GetJob(ctx context.Context, jobId string) (Job, bool)
	ListJobs(ctx context.Context) ([]Job, error)
}
