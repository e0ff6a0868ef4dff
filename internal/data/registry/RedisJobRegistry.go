package registry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/intigra/ragapi/internal/config"
	"github.com/intigra/ragapi/internal/data/redisStore"
	"github.com/intigra/ragapi/internal/domain/apperrors"
	"github.com/intigra/ragapi/internal/domain/jobModel"
	"github.com/intigra/ragapi/pkg/logger_i"
)

const jobIndexKey = "jobs:index"

// compareAndSwapScript replaces a job record only if it still holds the exact
// value the caller read. Transitions lose the race instead of overwriting.
const compareAndSwapScript = `
local raw = redis.call('GET', KEYS[1])
if raw ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`

// RedisJobRegistry keeps jobs as JSON values with a sorted-set index by
// creation time. Claim and finalize are compare-and-set, so exactly one
// worker wins a PENDING job and terminal states are written once.
type RedisJobRegistry struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisJobRegistry(ctx context.Context) *RedisJobRegistry {
	store := redisStore.GetRedisStore(ctx, config.RedisJobRegistryDB)
	if store == nil {
		return nil
	}
	return &RedisJobRegistry{
		store:  store,
		logger: logger_i.NewLogger("JobRegistry"),
	}
}

func jobKey(jobId string) string {
	return "job:" + jobId
}

func (r *RedisJobRegistry) CreateJob(ctx context.Context, job jobModel.Job) error {
	log := r.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "jobId", job.Id)

	data, err := json.Marshal(job)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "marshalling job", err)
	}
	if err := r.store.Set(ctx, jobKey(job.Id), data, config.RedisJobTTL); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "saving job", err)
	}
	if err := r.store.ZAdd(ctx, jobIndexKey, float64(job.CreatedTime.UnixNano()), job.Id); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "indexing job", err)
	}
	log.Debug("created job")
	return nil
}

func (r *RedisJobRegistry) ClaimJob(ctx context.Context, jobId string) (jobModel.Job, error) {
	log := r.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "jobId", jobId)

	raw, err := r.store.Get(ctx, jobKey(jobId))
	if r.store.IsNil(err) {
		return jobModel.Job{}, apperrors.NotFound("job", jobId)
	} else if err != nil {
		return jobModel.Job{}, apperrors.Wrap(apperrors.ErrDatabase, "reading job", err)
	}

	var job jobModel.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return jobModel.Job{}, apperrors.Wrap(apperrors.ErrDatabase, "unmarshalling job", err)
	}
	if job.Status != jobModel.JobStatusPending {
		return jobModel.Job{}, apperrors.Wrap(apperrors.ErrConflict,
			"job "+jobId+" is already "+string(job.Status), nil)
	}

	claimed := job
	claimed.Status = jobModel.JobStatusProcessing
	if err := r.swap(ctx, jobId, raw, claimed); err != nil {
		return jobModel.Job{}, err
	}
	log.Debug("claimed job")
	return claimed, nil
}

func (r *RedisJobRegistry) FinalizeJob(ctx context.Context, jobId string, status jobModel.JobStatus, result string) error {
	log := r.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "jobId", jobId)

	if !status.Terminal() {
		return apperrors.Validation("finalize requires a terminal status, got %s", status)
	}

	raw, err := r.store.Get(ctx, jobKey(jobId))
	if r.store.IsNil(err) {
		return apperrors.NotFound("job", jobId)
	} else if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "reading job", err)
	}

	var job jobModel.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "unmarshalling job", err)
	}
	if job.Status != jobModel.JobStatusProcessing {
		return apperrors.Wrap(apperrors.ErrConflict,
			"job "+jobId+" is "+string(job.Status)+", not PROCESSING", nil)
	}

	job.Status = status
	job.Result = result
	job.EndTime = time.Now().UTC()
	if err := r.swap(ctx, jobId, raw, job); err != nil {
		return err
	}
	log.Info("finalized job", "status", status)
	return nil
}

func (r *RedisJobRegistry) swap(ctx context.Context, jobId, oldRaw string, next jobModel.Job) error {
	data, err := json.Marshal(next)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "marshalling job", err)
	}
	res, err := r.store.Eval(ctx, compareAndSwapScript,
		[]string{jobKey(jobId)}, oldRaw, string(data), config.RedisJobTTL.Milliseconds())
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "swapping job state", err)
	}
	if n, ok := res.(int64); !ok || n != 1 {
		return apperrors.Wrap(apperrors.ErrConflict, "job "+jobId+" changed concurrently", nil)
	}
	return nil
}

func (r *RedisJobRegistry) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	var job jobModel.Job
	raw, err := r.store.Get(ctx, jobKey(jobId))
	if err != nil {
		return job, false
	}
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return job, false
	}
	return job, true
}

// ListJobs returns every live job, newest first. Index entries whose record
// expired are pruned as they are seen.
func (r *RedisJobRegistry) ListJobs(ctx context.Context) ([]jobModel.Job, error) {
	ids, err := r.store.ZRevRangeAll(ctx, jobIndexKey)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "listing job index", err)
	}

	jobs := make([]jobModel.Job, 0, len(ids))
	for _, id := range ids {
		job, found := r.GetJob(ctx, id)
		if !found {
			_ = r.store.ZRem(ctx, jobIndexKey, id)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// TestJobRegistry wires a registry over an injected store, for tests only.
func TestJobRegistry(store *redisStore.Store) *RedisJobRegistry {
	return &RedisJobRegistry{
		store:  store,
		logger: logger_i.NewLogger("test registry"),
	}
}
