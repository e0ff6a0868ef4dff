package rerank

import "context"

// Candidate is one retrieval hit moving through the rerank stage. Score is
// the cosine score on input and the cross-encoder score on output.
type Candidate struct {
	ChunkId    string
	DocumentId string
	Text       string
	Score      float64
}

// Reranker scores how well one passage answers the query. Higher is better.
type Reranker interface {
	Score(ctx context.Context, query string, passage string) (float64, error)
}
