package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type Result struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty" example:"Processed: 3, Failed: 0, Time: 1.52s"`
}

type JobListResponse struct {
	Jobs  []JobResponse `json:"jobs"`
	Count int           `json:"count"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type QuerySource struct {
	DocumentId string  `json:"document_id"`
	ChunkId    string  `json:"chunk_id"`
	Score      float64 `json:"score"`
}

type QueryMetadata struct {
	RetrievalPoolSize     int     `json:"retrieval_pool_size"`
	FinalChunksUsed       int     `json:"final_chunks_used"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
}

type QueryResponse struct {
	Query    string        `json:"query"`
	Answer   string        `json:"answer"`
	Sources  []QuerySource `json:"sources"`
	Metadata QueryMetadata `json:"metadata"`
}

// requests---------------------

type IngestRequest struct {
	Path string `json:"path" validate:"required"`
}

type QueryRequest struct {
	Query      string `json:"query" validate:"required"`
	TopK       int    `json:"top_k,omitempty"`
	DocumentId string `json:"document_id,omitempty"`
}
