package commonModels

import "time"

type DocStatus string

const (
	DocStatusProcessing DocStatus = "processing"
	DocStatusCompleted  DocStatus = "completed"
	DocStatusFailed     DocStatus = "failed"
)

type DocType string

var (
	PDF  DocType = "PDF"
	DOCX DocType = "DOCX"
	TXT  DocType = "TXT"
	ERR  DocType = "ERROR"
)

type Document struct {
	Id         string    `json:"document_id"`
	FileName   string    `json:"file_name"`
	Source     string    `json:"source"`
	Size       int64     `json:"size"`
	Status     DocStatus `json:"status"`
	UploadTime time.Time `json:"upload_time"`
}

// DocChunk is an immutable slice of a document once committed. StorePath and
// RowNumber locate its vector row inside the per-document store file.
type DocChunk struct {
	ChunkId    string    `json:"chunk_id"`
	DocumentId string    `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Text       string    `json:"text"`
	Embedding  []float32 `json:"embedding,omitempty"`
	StorePath  string    `json:"store_path,omitempty"`
	RowNumber  int       `json:"row_number,omitempty"`
}

type SourceItem struct {
	DocumentId string  `json:"document_id"`
	ChunkId    string  `json:"chunk_id"`
	Score      float64 `json:"score"`
}

type QueryMetadata struct {
	RetrievalPoolSize     int     `json:"retrieval_pool_size"`
	FinalChunksUsed       int     `json:"final_chunks_used"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
}

// QueryResult is computed per request and never persisted.
type QueryResult struct {
	Query    string        `json:"query"`
	Answer   string        `json:"answer"`
	Sources  []SourceItem  `json:"sources"`
	Metadata QueryMetadata `json:"metadata"`
}
