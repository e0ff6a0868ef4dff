package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/intigra/ragapi/internal/domain/apperrors"
	"github.com/intigra/ragapi/internal/domain/jobModel"
	"github.com/intigra/ragapi/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem JobRegistry")

// InMemoryJobRegistry is the fallback when redis is unavailable. Same
// transition rules as the redis registry, guarded by one mutex.
type InMemoryJobRegistry struct {
	jobMutex *sync.RWMutex
	jobMap   map[string]jobModel.Job
}

func InitInMemoryJobRegistry() *InMemoryJobRegistry {
	return &InMemoryJobRegistry{
		jobMutex: new(sync.RWMutex),
		jobMap:   make(map[string]jobModel.Job),
	}
}

func (r *InMemoryJobRegistry) CreateJob(ctx context.Context, job jobModel.Job) error {
	r.jobMutex.Lock()
	defer r.jobMutex.Unlock()
	r.jobMap[job.Id] = job
	inMemLogger.Debug("created job", "jobId", job.Id)
	return nil
}

func (r *InMemoryJobRegistry) ClaimJob(ctx context.Context, jobId string) (jobModel.Job, error) {
	r.jobMutex.Lock()
	defer r.jobMutex.Unlock()

	job, found := r.jobMap[jobId]
	if !found {
		return jobModel.Job{}, apperrors.NotFound("job", jobId)
	}
	if job.Status != jobModel.JobStatusPending {
		return jobModel.Job{}, apperrors.Wrap(apperrors.ErrConflict,
			"job "+jobId+" is already "+string(job.Status), nil)
	}
	job.Status = jobModel.JobStatusProcessing
	r.jobMap[jobId] = job
	return job, nil
}

func (r *InMemoryJobRegistry) FinalizeJob(ctx context.Context, jobId string, status jobModel.JobStatus, result string) error {
	if !status.Terminal() {
		return apperrors.Validation("finalize requires a terminal status, got %s", status)
	}

	r.jobMutex.Lock()
	defer r.jobMutex.Unlock()

	job, found := r.jobMap[jobId]
	if !found {
		return apperrors.NotFound("job", jobId)
	}
	if job.Status != jobModel.JobStatusProcessing {
		return apperrors.Wrap(apperrors.ErrConflict,
			"job "+jobId+" is "+string(job.Status)+", not PROCESSING", nil)
	}
	job.Status = status
	job.Result = result
	job.EndTime = time.Now().UTC()
	r.jobMap[jobId] = job
	return nil
}

func (r *InMemoryJobRegistry) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	r.jobMutex.RLock()
	defer r.jobMutex.RUnlock()
	job, found := r.jobMap[jobId]
	return job, found
}

func (r *InMemoryJobRegistry) ListJobs(ctx context.Context) ([]jobModel.Job, error) {
	r.jobMutex.RLock()
	defer r.jobMutex.RUnlock()

	jobs := make([]jobModel.Job, 0, len(r.jobMap))
	for _, job := range r.jobMap {
		jobs = append(jobs, job)
	}
	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedTime.After(jobs[j].CreatedTime)
	})
	return jobs, nil
}
