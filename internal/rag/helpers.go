package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/intigra/ragapi/internal/config"
	"github.com/intigra/ragapi/internal/domain/commonModels"
	"github.com/intigra/ragapi/internal/metrics"
	"github.com/intigra/ragapi/internal/rag/rerank"
	"github.com/intigra/ragapi/internal/rag/retrieval"
)

func fallbackResult(query string, poolSize int, start time.Time) commonModels.QueryResult {
	return commonModels.QueryResult{
		Query:   query,
		Answer:  config.FallbackAnswer,
		Sources: []commonModels.SourceItem{},
		Metadata: commonModels.QueryMetadata{
			RetrievalPoolSize:     poolSize,
			FinalChunksUsed:       0,
			ProcessingTimeSeconds: time.Since(start).Seconds(),
		},
	}
}

func (s *service) executeEmbeddingStep(ctx context.Context, query string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("embedding", time.Since(start)) }()

	return s.embedder.GetEmbedding(ctx, query)
}

func (s *service) executeRetrievalStep(ctx context.Context, queryVec []float32, topK int, documentId string) ([]retrieval.Hit, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	return s.retriever.Retrieve(ctx, queryVec, topK, documentId)
}

func (s *service) executeRerankStep(ctx context.Context, query string, pool []retrieval.Hit, topK int) ([]rerank.Candidate, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("rerank", time.Since(start)) }()

	candidates := make([]rerank.Candidate, len(pool))
	for i, hit := range pool {
		candidates[i] = rerank.Candidate{
			ChunkId:    hit.ChunkId,
			DocumentId: hit.DocumentId,
			Text:       hit.Text,
			Score:      hit.Score,
		}
	}
	return s.ranker.Rerank(ctx, query, candidates, topK)
}

func (s *service) executeLLMStep(ctx context.Context, query string, kept []rerank.Candidate) (string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	// numbered so the model can cite passages by position
	matches := make([]string, len(kept))
	for i, candidate := range kept {
		matches[i] = fmt.Sprintf("[%d] %s", i+1, candidate.Text)
	}
	return s.llmProvider.Generate(ctx, query, matches)
}
