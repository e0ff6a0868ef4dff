package mcpServer

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/intigra/ragapi/internal/config"
	"github.com/intigra/ragapi/internal/domain/apperrors"
)

// QueryInput is the input schema for the query tool.
type QueryInput struct {
	Query      string `json:"query" jsonschema:"the question to answer from the ingested documents"`
	TopK       int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks used for the answer (default 5)"`
	DocumentId string `json:"document_id,omitempty" jsonschema:"restrict retrieval to a single document"`
}

// QueryOutput is the output schema for the query tool.
type QueryOutput struct {
	Answer  string        `json:"answer"`
	Sources []QuerySource `json:"sources"`
	Count   int           `json:"count"`
}

// QuerySource is one chunk the answer was grounded on.
type QuerySource struct {
	DocumentId string  `json:"document_id"`
	ChunkId    string  `json:"chunk_id"`
	Score      float64 `json:"score"`
}

// JobStatusInput is the input schema for the job_status tool.
type JobStatusInput struct {
	JobId string `json:"job_id" jsonschema:"the ingestion job id returned by the ingest endpoint"`
}

// JobStatusOutput is the output schema for the job_status tool.
type JobStatusOutput struct {
	JobId  string `json:"job_id"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "query",
		Description: "Answer a question using the ingested documents",
	}, s.handleQuery)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "job_status",
		Description: "Look up the status of an ingestion job",
	}, s.handleJobStatus)
}

func (s *Server) handleQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QueryInput,
) (*mcp.CallToolResult, QueryOutput, error) {
	topK := input.TopK
	if topK <= 0 {
		topK = config.DefaultTopK
	}

	result, err := s.ragService.ProcessQuery(ctx, input.Query, topK, input.DocumentId)
	if err != nil {
		return nil, QueryOutput{}, err
	}

	output := QueryOutput{
		Answer:  result.Answer,
		Sources: make([]QuerySource, len(result.Sources)),
		Count:   len(result.Sources),
	}
	for i := range result.Sources {
		output.Sources[i] = QuerySource{
			DocumentId: result.Sources[i].DocumentId,
			ChunkId:    result.Sources[i].ChunkId,
			Score:      result.Sources[i].Score,
		}
	}

	return nil, output, nil
}

func (s *Server) handleJobStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input JobStatusInput,
) (*mcp.CallToolResult, JobStatusOutput, error) {
	job, found := s.registry.GetJob(ctx, input.JobId)
	if !found {
		return nil, JobStatusOutput{}, apperrors.NotFound("job", input.JobId)
	}

	return nil, JobStatusOutput{
		JobId:  job.Id,
		Status: string(job.Status),
		Result: job.Result,
	}, nil
}
