package adapter

import (
	"fmt"
	"time"

	"github.com/intigra/ragapi/internal/api"
	"github.com/intigra/ragapi/internal/domain/commonModels"
	"github.com/intigra/ragapi/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id), //pass "status/job.Id"
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Result: api.Result{
			Status: string(job.Status),
			Detail: job.Result,
		},
	}
}

func ToJobListResponse(jobs []jobModel.Job) api.JobListResponse {
	out := make([]api.JobResponse, len(jobs))
	for i, job := range jobs {
		out[i] = ToAPIResponse(job)
	}
	return api.JobListResponse{Jobs: out, Count: len(out)}
}

func ToQueryResponse(result commonModels.QueryResult) api.QueryResponse {
	sources := make([]api.QuerySource, len(result.Sources))
	for i, s := range result.Sources {
		sources[i] = api.QuerySource{
			DocumentId: s.DocumentId,
			ChunkId:    s.ChunkId,
			Score:      s.Score,
		}
	}
	return api.QueryResponse{
		Query:   result.Query,
		Answer:  result.Answer,
		Sources: sources,
		Metadata: api.QueryMetadata{
			RetrievalPoolSize:     result.Metadata.RetrievalPoolSize,
			FinalChunksUsed:       result.Metadata.FinalChunksUsed,
			ProcessingTimeSeconds: result.Metadata.ProcessingTimeSeconds,
		},
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
