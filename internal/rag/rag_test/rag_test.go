package rag_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/intigra/ragapi/internal/config"
	"github.com/intigra/ragapi/internal/domain/apperrors"
	"github.com/intigra/ragapi/internal/domain/jobModel"
	"github.com/intigra/ragapi/internal/rag"
	"github.com/intigra/ragapi/internal/rag/ingest"
	"github.com/intigra/ragapi/internal/rag/rerank"
	"github.com/intigra/ragapi/internal/rag/retrieval"
)

func poolOf(ids ...string) []retrieval.Hit {
	hits := make([]retrieval.Hit, len(ids))
	for i, id := range ids {
		hits[i] = retrieval.Hit{ChunkId: id, DocumentId: "doc-1", Text: "passage " + id, Score: 0.9}
	}
	return hits
}

func newService(registry *MockRegistry, retriever *MockRetriever, ranker *MockRanker,
	provider *MockProvider, embedder *MockEmbedder, ingestor *MockIngestor) rag.Service {
	return rag.NewService(registry, retriever, ranker, provider, embedder, ingestor)
}

func TestProcessQueryHappyPath(t *testing.T) {
	retriever := &MockRetriever{
		OnRetrieve: func(ctx context.Context, vec []float32, topK int, documentId string) ([]retrieval.Hit, error) {
			return poolOf("a", "b", "c"), nil
		},
	}
	ranker := &MockRanker{
		OnRerank: func(ctx context.Context, query string, candidates []rerank.Candidate, topK int) ([]rerank.Candidate, error) {
			kept := []rerank.Candidate{candidates[1], candidates[0]}
			kept[0].Score = 0.8
			kept[1].Score = 0.4
			return kept, nil
		},
	}
	var prompt []string
	provider := &MockProvider{
		OnGenerate: func(ctx context.Context, query string, matches []string) (string, error) {
			prompt = matches
			return "  the answer  ", nil
		},
	}
	svc := newService(&MockRegistry{}, retriever, ranker, provider, &MockEmbedder{}, &MockIngestor{})

	result, err := svc.ProcessQuery(context.Background(), "what is it?", 5, "")
	if err != nil {
		t.Fatalf("ProcessQuery failed: %v", err)
	}

	if result.Answer != "the answer" {
		t.Errorf("expected trimmed answer, got %q", result.Answer)
	}
	if result.Metadata.RetrievalPoolSize != 3 || result.Metadata.FinalChunksUsed != 2 {
		t.Errorf("unexpected metadata: %+v", result.Metadata)
	}
	if result.Metadata.ProcessingTimeSeconds < 0 {
		t.Errorf("processing time must be non-negative, got %f", result.Metadata.ProcessingTimeSeconds)
	}
	if len(result.Sources) != 2 || result.Sources[0].ChunkId != "b" || result.Sources[1].ChunkId != "a" {
		t.Errorf("sources must follow rerank order, got %+v", result.Sources)
	}
	if result.Sources[0].Score != 0.8 {
		t.Errorf("source score must be the rerank score, got %f", result.Sources[0].Score)
	}
	if len(prompt) != 2 || !strings.HasPrefix(prompt[0], "[1] ") || !strings.HasPrefix(prompt[1], "[2] ") {
		t.Errorf("context passages must be numbered, got %v", prompt)
	}
}

func TestProcessQueryValidation(t *testing.T) {
	svc := newService(&MockRegistry{}, &MockRetriever{}, &MockRanker{}, &MockProvider{}, &MockEmbedder{}, &MockIngestor{})
	ctx := context.Background()

	if _, err := svc.ProcessQuery(ctx, "   ", 5, ""); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("blank query: expected validation error, got %v", err)
	}
	if _, err := svc.ProcessQuery(ctx, "ok", 0, ""); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("zero top_k: expected validation error, got %v", err)
	}
	if _, err := svc.ProcessQuery(ctx, "ok", -2, ""); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("negative top_k: expected validation error, got %v", err)
	}
}

func TestProcessQueryEmptyStoreFallback(t *testing.T) {
	ranker := &MockRanker{}
	provider := &MockProvider{}
	svc := newService(&MockRegistry{}, &MockRetriever{}, ranker, provider, &MockEmbedder{}, &MockIngestor{})

	result, err := svc.ProcessQuery(context.Background(), "anything", 5, "")
	if err != nil {
		t.Fatalf("ProcessQuery failed: %v", err)
	}
	if result.Answer != config.FallbackAnswer {
		t.Errorf("expected fallback answer, got %q", result.Answer)
	}
	if len(result.Sources) != 0 {
		t.Errorf("expected no sources, got %+v", result.Sources)
	}
	if result.Metadata.RetrievalPoolSize != 0 || result.Metadata.FinalChunksUsed != 0 {
		t.Errorf("unexpected metadata: %+v", result.Metadata)
	}
	if ranker.Calls != 0 || provider.Calls != 0 {
		t.Error("rerank and generation must be skipped when nothing is retrieved")
	}
}

func TestProcessQueryAllCandidatesDroppedFallback(t *testing.T) {
	retriever := &MockRetriever{
		OnRetrieve: func(ctx context.Context, vec []float32, topK int, documentId string) ([]retrieval.Hit, error) {
			return poolOf("a", "b", "c", "d"), nil
		},
	}
	ranker := &MockRanker{
		OnRerank: func(ctx context.Context, query string, candidates []rerank.Candidate, topK int) ([]rerank.Candidate, error) {
			return nil, nil
		},
	}
	provider := &MockProvider{}
	svc := newService(&MockRegistry{}, retriever, ranker, provider, &MockEmbedder{}, &MockIngestor{})

	result, err := svc.ProcessQuery(context.Background(), "anything", 5, "")
	if err != nil {
		t.Fatalf("ProcessQuery failed: %v", err)
	}
	if result.Answer != config.FallbackAnswer {
		t.Errorf("expected fallback answer, got %q", result.Answer)
	}
	if result.Metadata.RetrievalPoolSize != 4 {
		t.Errorf("fallback metadata must keep the pool size, got %+v", result.Metadata)
	}
	if provider.Calls != 0 {
		t.Error("generation must be skipped when every candidate is dropped")
	}
}

func TestProcessQueryPropagatesStepErrors(t *testing.T) {
	embedErr := errors.New("embedder down")
	embedder := &MockEmbedder{
		OnGetEmbedding: func(ctx context.Context, text string) ([]float32, error) {
			return nil, embedErr
		},
	}
	svc := newService(&MockRegistry{}, &MockRetriever{}, &MockRanker{}, &MockProvider{}, embedder, &MockIngestor{})

	if _, err := svc.ProcessQuery(context.Background(), "q", 5, ""); !errors.Is(err, embedErr) {
		t.Errorf("expected embedding error to propagate, got %v", err)
	}
}

func TestRunIngestionJobCompletes(t *testing.T) {
	var finalStatus jobModel.JobStatus
	var finalResult string
	registry := &MockRegistry{
		OnClaimJob: func(ctx context.Context, jobId string) (jobModel.Job, error) {
			return jobModel.Job{Id: jobId, Path: "/tmp/docs", Status: jobModel.JobStatusProcessing}, nil
		},
		OnFinalizeJob: func(ctx context.Context, jobId string, status jobModel.JobStatus, result string) error {
			finalStatus = status
			finalResult = result
			return nil
		},
	}
	ingestor := &MockIngestor{
		OnRun: func(ctx context.Context, path string) (ingest.Outcome, error) {
			return ingest.Outcome{Processed: 2, Failed: 1}, nil
		},
	}
	svc := newService(registry, &MockRetriever{}, &MockRanker{}, &MockProvider{}, &MockEmbedder{}, ingestor)

	svc.RunIngestionJob(context.Background(), "job-1")

	if finalStatus != jobModel.JobStatusCompleted {
		t.Errorf("partial success must complete the job, got %s", finalStatus)
	}
	if !strings.HasPrefix(finalResult, "Processed: 2, Failed: 1, Time: ") {
		t.Errorf("unexpected result string: %q", finalResult)
	}
}

func TestRunIngestionJobAllFilesFailed(t *testing.T) {
	var finalStatus jobModel.JobStatus
	registry := &MockRegistry{
		OnFinalizeJob: func(ctx context.Context, jobId string, status jobModel.JobStatus, result string) error {
			finalStatus = status
			return nil
		},
	}
	ingestor := &MockIngestor{
		OnRun: func(ctx context.Context, path string) (ingest.Outcome, error) {
			return ingest.Outcome{Processed: 0, Failed: 3}, nil
		},
	}
	svc := newService(registry, &MockRetriever{}, &MockRanker{}, &MockProvider{}, &MockEmbedder{}, ingestor)

	svc.RunIngestionJob(context.Background(), "job-2")

	if finalStatus != jobModel.JobStatusFailed {
		t.Errorf("zero processed files must fail the job, got %s", finalStatus)
	}
}

func TestRunIngestionJobBadPath(t *testing.T) {
	var finalStatus jobModel.JobStatus
	var finalResult string
	registry := &MockRegistry{
		OnFinalizeJob: func(ctx context.Context, jobId string, status jobModel.JobStatus, result string) error {
			finalStatus = status
			finalResult = result
			return nil
		},
	}
	ingestor := &MockIngestor{
		OnRun: func(ctx context.Context, path string) (ingest.Outcome, error) {
			return ingest.Outcome{}, apperrors.Validation("path does not exist")
		},
	}
	svc := newService(registry, &MockRetriever{}, &MockRanker{}, &MockProvider{}, &MockEmbedder{}, ingestor)

	svc.RunIngestionJob(context.Background(), "job-3")

	if finalStatus != jobModel.JobStatusFailed {
		t.Errorf("unusable path must fail the job, got %s", finalStatus)
	}
	if !strings.HasPrefix(finalResult, "Error: ") {
		t.Errorf("expected error result, got %q", finalResult)
	}
}

func TestRunIngestionJobLostClaim(t *testing.T) {
	finalized := false
	registry := &MockRegistry{
		OnClaimJob: func(ctx context.Context, jobId string) (jobModel.Job, error) {
			return jobModel.Job{}, apperrors.Wrap(apperrors.ErrConflict, "already claimed", nil)
		},
		OnFinalizeJob: func(ctx context.Context, jobId string, status jobModel.JobStatus, result string) error {
			finalized = true
			return nil
		},
	}
	ran := false
	ingestor := &MockIngestor{
		OnRun: func(ctx context.Context, path string) (ingest.Outcome, error) {
			ran = true
			return ingest.Outcome{}, nil
		},
	}
	svc := newService(registry, &MockRetriever{}, &MockRanker{}, &MockProvider{}, &MockEmbedder{}, ingestor)

	svc.RunIngestionJob(context.Background(), "job-4")

	if ran || finalized {
		t.Error("a lost claim must not process or finalize the job")
	}
}
