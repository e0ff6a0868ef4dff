package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/intigra/ragapi/internal/config"
	jobmodel "github.com/intigra/ragapi/internal/domain/jobModel"
	"github.com/intigra/ragapi/internal/metrics"
)

// executeJob hands one queued job to the pipeline. The watchdog bound keeps a
// wedged extraction or embedding call from pinning a worker forever; the
// claim/finalize transitions inside the service keep state consistent even
// when the bound fires.
func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobWatchdogBound)
	defer cancel()

	logger.Debug("Processing job:", "job Id:", job.Id)
	_ragService.RunIngestionJob(ctx, job.Id)
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()
}
