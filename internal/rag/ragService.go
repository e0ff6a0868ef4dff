package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/intigra/ragapi/internal/config"
	"github.com/intigra/ragapi/internal/domain/apperrors"
	"github.com/intigra/ragapi/internal/domain/commonModels"
	"github.com/intigra/ragapi/internal/domain/jobModel"
	"github.com/intigra/ragapi/internal/metrics"
	"github.com/intigra/ragapi/internal/rag/embedding"
	"github.com/intigra/ragapi/internal/rag/ingest"
	"github.com/intigra/ragapi/internal/rag/llm"
	"github.com/intigra/ragapi/internal/rag/rerank"
	"github.com/intigra/ragapi/internal/rag/retrieval"
	"github.com/intigra/ragapi/pkg/logger_i"
)

// Service is all the worker and the handlers see of the pipeline. The
// implementation stays private so callers cannot reach the underlying
// clients directly.
type Service interface {
	ProcessQuery(ctx context.Context, query string, topK int, documentId string) (commonModels.QueryResult, error)
	RunIngestionJob(ctx context.Context, jobId string)
}

// Retriever is the first ranking stage.
type Retriever interface {
	Retrieve(ctx context.Context, queryVec []float32, topK int, documentId string) ([]retrieval.Hit, error)
}

// Ranker is the second ranking stage.
type Ranker interface {
	Rerank(ctx context.Context, query string, candidates []rerank.Candidate, topK int) ([]rerank.Candidate, error)
}

// Ingestor processes every file under a job path.
type Ingestor interface {
	Run(ctx context.Context, path string) (ingest.Outcome, error)
}

type service struct {
	registry    jobModel.JobRegistry
	retriever   Retriever
	ranker      Ranker
	llmProvider llm.Provider
	embedder    embedding.Embedder
	ingestor    Ingestor
	logger      *logger_i.Logger
}

// NewService constructor
func NewService(registry jobModel.JobRegistry, retriever Retriever, ranker Ranker,
	llmProvider llm.Provider, em embedding.Embedder, ingestor Ingestor) Service {
	return &service{
		registry:    registry,
		retriever:   retriever,
		ranker:      ranker,
		llmProvider: llmProvider,
		embedder:    em,
		ingestor:    ingestor,
		logger:      logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) ProcessQuery(ctx context.Context, query string, topK int, documentId string) (commonModels.QueryResult, error) {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	query = strings.TrimSpace(query)
	if query == "" {
		return commonModels.QueryResult{}, apperrors.Validation("query must not be empty")
	}
	if topK <= 0 {
		return commonModels.QueryResult{}, apperrors.Validation("top_k must be positive, got %d", topK)
	}

	start := time.Now()
	processContext, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Embedding
	queryVec, err := s.executeEmbeddingStep(processContext, query)
	if err != nil {
		return commonModels.QueryResult{}, err
	}

	// Stage one: cosine over the whole snapshot
	pool, err := s.executeRetrievalStep(processContext, queryVec, topK, documentId)
	if err != nil {
		return commonModels.QueryResult{}, err
	}
	if len(pool) == 0 {
		inMethodLogger.Info("no candidates retrieved, returning fallback")
		return fallbackResult(query, 0, start), nil
	}

	// Stage two: cross-encoder rescoring
	kept, err := s.executeRerankStep(processContext, query, pool, topK)
	if err != nil {
		return commonModels.QueryResult{}, err
	}
	if len(kept) == 0 {
		inMethodLogger.Info("no candidate passed the confidence threshold, returning fallback")
		return fallbackResult(query, len(pool), start), nil
	}

	// Generation over the retained context
	answer, err := s.executeLLMStep(processContext, query, kept)
	if err != nil {
		return commonModels.QueryResult{}, err
	}

	sources := make([]commonModels.SourceItem, len(kept))
	for i, candidate := range kept {
		sources[i] = commonModels.SourceItem{
			DocumentId: candidate.DocumentId,
			ChunkId:    candidate.ChunkId,
			Score:      candidate.Score,
		}
	}

	return commonModels.QueryResult{
		Query:   query,
		Answer:  strings.TrimSpace(answer),
		Sources: sources,
		Metadata: commonModels.QueryMetadata{
			RetrievalPoolSize:     len(pool),
			FinalChunksUsed:       len(kept),
			ProcessingTimeSeconds: time.Since(start).Seconds(),
		},
	}, nil
}

// RunIngestionJob claims the job, processes its path and writes the terminal
// state. Losing the claim race means another worker owns the job, so the
// loser simply walks away.
func (s *service) RunIngestionJob(ctx context.Context, jobId string) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "jobId", jobId)

	job, err := s.registry.ClaimJob(ctx, jobId)
	if err != nil {
		log.Warn("could not claim job", "error", err)
		return
	}

	start := time.Now()
	outcome, err := s.ingestor.Run(ctx, job.Path)
	elapsed := time.Since(start)
	metrics.CaptureJobMetrics("ingestion", elapsed)

	status := jobModel.JobStatusCompleted
	var result string
	switch {
	case err != nil:
		status = jobModel.JobStatusFailed
		result = fmt.Sprintf("Error: %v", err)
	case outcome.Processed == 0:
		status = jobModel.JobStatusFailed
		result = formatOutcome(outcome, elapsed)
	default:
		result = formatOutcome(outcome, elapsed)
	}

	// the watchdog deadline may have expired by now; the terminal write must
	// still land or the job stays PROCESSING forever
	if err := s.registry.FinalizeJob(context.WithoutCancel(ctx), jobId, status, result); err != nil {
		log.Error("could not finalize job", "error", err)
		return
	}
	log.Info("job finished", "status", status, "result", result)
}

func formatOutcome(outcome ingest.Outcome, elapsed time.Duration) string {
	return fmt.Sprintf("Processed: %d, Failed: %d, Time: %.2fs",
		outcome.Processed, outcome.Failed, elapsed.Seconds())
}
