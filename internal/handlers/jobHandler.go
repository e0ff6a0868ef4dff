package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/intigra/ragapi/internal/config"
	"github.com/intigra/ragapi/internal/domain/commonModels"
	"github.com/intigra/ragapi/internal/domain/jobModel"
	"github.com/intigra/ragapi/internal/job"
	"github.com/intigra/ragapi/internal/metrics"
	"github.com/intigra/ragapi/internal/rag"
	"github.com/intigra/ragapi/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logger_i.Logger
)

type JobHandler struct {
	service    *job.Service
	ragService rag.Service
}

func InitJobHandler(jobService *job.Service, ragService rag.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService, ragService: ragService}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})

}

func CreateNewJob(newJob newJobData) error {
	logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	logJH.Info("To create new job")
	return handlerInstance.pushToJobChannel(newJob)
}

func GetJobStatus(id string, traceId string) (result jobModel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.Registry.GetJob(ctxC, id)
	}
	return result, false
}

func ListAllJobs(traceId string) ([]jobModel.Job, error) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	return handlerInstance.service.Registry.ListJobs(ctxC)
}

func RunQuery(ctx context.Context, query string, topK int, documentId string) (commonModels.QueryResult, error) {
	return handlerInstance.ragService.ProcessQuery(ctx, query, topK, documentId)
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) error {

	_job := jobModel.Job{}
	_job.Id = newJob.id
	_job.Path = newJob.path
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.Status = jobModel.JobStatusPending

	//the job must be visible in the registry before a worker can claim it
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, newJob.traceId)
	if err := h.service.Registry.CreateJob(ctxC, _job); err != nil {
		logJH.Error("Could not register new job", "job id", _job.Id, "error", err)
		return err
	}

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new job")

	//ingestion involves batch processing which might take time - external system call
	//so every ingest job nudges the dispatcher; the pool shrinks again on idle
	metrics.StartDispatcherSignalCount() //metrics
	h.service.DispatcherChannel <- true

	return nil
}
