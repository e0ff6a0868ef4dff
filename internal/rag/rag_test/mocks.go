package rag_test

import (
	"context"

	"github.com/intigra/ragapi/internal/domain/jobModel"
	"github.com/intigra/ragapi/internal/rag/ingest"
	"github.com/intigra/ragapi/internal/rag/rerank"
	"github.com/intigra/ragapi/internal/rag/retrieval"
)

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, text)
	}
	return []float32{1, 0, 0, 0}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	vectors := make([][]float32, len(chunks))
	for i := range vectors {
		vectors[i] = []float32{1, 0, 0, 0}
	}
	return vectors, nil
}

// MockRetriever implements rag.Retriever
type MockRetriever struct {
	OnRetrieve func(ctx context.Context, queryVec []float32, topK int, documentId string) ([]retrieval.Hit, error)
	Calls      int
}

func (m *MockRetriever) Retrieve(ctx context.Context, queryVec []float32, topK int, documentId string) ([]retrieval.Hit, error) {
	m.Calls++
	if m.OnRetrieve != nil {
		return m.OnRetrieve(ctx, queryVec, topK, documentId)
	}
	return nil, nil
}

// MockRanker implements rag.Ranker
type MockRanker struct {
	OnRerank func(ctx context.Context, query string, candidates []rerank.Candidate, topK int) ([]rerank.Candidate, error)
	Calls    int
}

func (m *MockRanker) Rerank(ctx context.Context, query string, candidates []rerank.Candidate, topK int) ([]rerank.Candidate, error) {
	m.Calls++
	if m.OnRerank != nil {
		return m.OnRerank(ctx, query, candidates, topK)
	}
	return candidates, nil
}

// MockProvider implements llm.Provider
type MockProvider struct {
	OnGenerate func(ctx context.Context, query string, matches []string) (string, error)
	Calls      int
}

func (m *MockProvider) Generate(ctx context.Context, query string, matches []string) (string, error) {
	m.Calls++
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, query, matches)
	}
	return "mock answer", nil
}

// MockIngestor implements rag.Ingestor
type MockIngestor struct {
	OnRun func(ctx context.Context, path string) (ingest.Outcome, error)
}

func (m *MockIngestor) Run(ctx context.Context, path string) (ingest.Outcome, error) {
	if m.OnRun != nil {
		return m.OnRun(ctx, path)
	}
	return ingest.Outcome{}, nil
}

// MockRegistry implements jobModel.JobRegistry
type MockRegistry struct {
	OnCreateJob   func(ctx context.Context, job jobModel.Job) error
	OnClaimJob    func(ctx context.Context, jobId string) (jobModel.Job, error)
	OnFinalizeJob func(ctx context.Context, jobId string, status jobModel.JobStatus, result string) error
	OnGetJob      func(ctx context.Context, jobId string) (jobModel.Job, bool)
	OnListJobs    func(ctx context.Context) ([]jobModel.Job, error)
}

func (m *MockRegistry) CreateJob(ctx context.Context, job jobModel.Job) error {
	if m.OnCreateJob != nil {
		return m.OnCreateJob(ctx, job)
	}
	return nil
}

func (m *MockRegistry) ClaimJob(ctx context.Context, jobId string) (jobModel.Job, error) {
	if m.OnClaimJob != nil {
		return m.OnClaimJob(ctx, jobId)
	}
	return jobModel.Job{Id: jobId, Status: jobModel.JobStatusProcessing}, nil
}

func (m *MockRegistry) FinalizeJob(ctx context.Context, jobId string, status jobModel.JobStatus, result string) error {
	if m.OnFinalizeJob != nil {
		return m.OnFinalizeJob(ctx, jobId, status, result)
	}
	return nil
}

func (m *MockRegistry) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	if m.OnGetJob != nil {
		return m.OnGetJob(ctx, jobId)
	}
	return jobModel.Job{}, false
}

func (m *MockRegistry) ListJobs(ctx context.Context) ([]jobModel.Job, error) {
	if m.OnListJobs != nil {
		return m.OnListJobs(ctx)
	}
	return nil, nil
}
