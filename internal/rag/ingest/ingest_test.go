package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/intigra/ragapi/internal/domain/apperrors"
	"github.com/intigra/ragapi/internal/domain/commonModels"
)

// --- Mocks ---

type mockEmbedder struct {
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return nil, nil
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	vectors := make([][]float32, len(chunks))
	for i := range vectors {
		vectors[i] = []float32{1, 0, 0, 0}
	}
	return vectors, nil
}

type mockStore struct {
	mu       sync.Mutex
	created  []commonModels.Document
	commits  map[string][]commonModels.DocChunk
	failed   []string
	OnCommit func(ctx context.Context, documentId string, chunks []commonModels.DocChunk) error
}

func newMockStore() *mockStore {
	return &mockStore{commits: make(map[string][]commonModels.DocChunk)}
}

func (m *mockStore) CreateDocument(ctx context.Context, doc commonModels.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, doc)
	return nil
}

func (m *mockStore) SetDocumentStatus(ctx context.Context, documentId string, status commonModels.DocStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if status == commonModels.DocStatusFailed {
		m.failed = append(m.failed, documentId)
	}
	return nil
}

func (m *mockStore) Commit(ctx context.Context, documentId string, chunks []commonModels.DocChunk) error {
	if m.OnCommit != nil {
		if err := m.OnCommit(ctx, documentId, chunks); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commits[documentId] = chunks
	return nil
}

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture %s: %v", name, err)
	}
	return path
}

func fileExtractor(path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
}

// --- Unit Tests ---

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "a.txt", "x")
	writeFixture(t, dir, "b.pdf", "x")
	writeFixture(t, dir, "skip.png", "x")
	nested := filepath.Join(dir, "sub")
	if err := os.Mkdir(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeFixture(t, nested, "c.docx", "x")

	files, err := collectFiles(dir)
	if err != nil {
		t.Fatalf("collectFiles failed: %v", err)
	}
	if len(files) != 3 {
		t.Errorf("expected 3 ingestible files, got %d: %v", len(files), files)
	}
	for _, f := range files {
		if strings.HasSuffix(f, ".png") {
			t.Errorf("unsupported file was collected: %s", f)
		}
	}
}

func TestCollectFilesSinglePath(t *testing.T) {
	dir := t.TempDir()
	path := writeFixture(t, dir, "doc.txt", "content")

	files, err := collectFiles(path)
	if err != nil {
		t.Fatalf("collectFiles failed: %v", err)
	}
	if len(files) != 1 || files[0] != path {
		t.Errorf("expected just %s, got %v", path, files)
	}
}

func TestCollectFilesErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := collectFiles(""); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("empty path: expected validation error, got %v", err)
	}
	if _, err := collectFiles(filepath.Join(dir, "missing")); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("missing path: expected validation error, got %v", err)
	}
	if _, err := collectFiles(dir); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("empty dir: expected validation error, got %v", err)
	}

	unsupported := writeFixture(t, dir, "img.png", "x")
	if _, err := collectFiles(unsupported); !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("unsupported single file: expected validation error, got %v", err)
	}
}

func TestRunCommitsChunksPerFile(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "one.txt", "First document content for ingestion.")
	writeFixture(t, dir, "two.txt", "Second document content for ingestion.")

	store := newMockStore()
	o := NewOrchestrator(store, &mockEmbedder{}, fileExtractor)

	outcome, err := o.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Processed != 2 || outcome.Failed != 0 {
		t.Errorf("expected 2 processed / 0 failed, got %+v", outcome)
	}
	if len(store.commits) != 2 {
		t.Fatalf("expected 2 committed documents, got %d", len(store.commits))
	}
	for docId, chunks := range store.commits {
		for i, chunk := range chunks {
			if chunk.ChunkIndex != i {
				t.Errorf("doc %s: chunk %d has index %d", docId, i, chunk.ChunkIndex)
			}
			if chunk.DocumentId != docId {
				t.Errorf("doc %s: chunk carries document %s", docId, chunk.DocumentId)
			}
			if len(chunk.Embedding) == 0 {
				t.Errorf("doc %s: chunk %d has no embedding", docId, i)
			}
		}
	}
}

func TestRunFilesFailIndependently(t *testing.T) {
	dir := t.TempDir()
	good := writeFixture(t, dir, "good.txt", "Readable content.")
	bad := writeFixture(t, dir, "bad.txt", "Unreadable content.")

	store := newMockStore()
	extractor := func(path string) (string, error) {
		if path == bad {
			return "", errors.New("corrupt file")
		}
		return fileExtractor(path)
	}
	o := NewOrchestrator(store, &mockEmbedder{}, extractor)

	outcome, err := o.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Processed != 1 || outcome.Failed != 1 {
		t.Errorf("expected 1 processed / 1 failed, got %+v", outcome)
	}
	if len(store.failed) != 1 {
		t.Errorf("expected 1 document marked failed, got %d", len(store.failed))
	}
	if len(store.commits) != 1 {
		t.Errorf("expected 1 committed document, got %d", len(store.commits))
	}
	_ = good
}

func TestRunEmptyDocumentCountsAsFailed(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "blank.txt", "   \n\n  ")

	store := newMockStore()
	o := NewOrchestrator(store, &mockEmbedder{}, fileExtractor)

	outcome, err := o.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Processed != 0 || outcome.Failed != 1 {
		t.Errorf("expected 0 processed / 1 failed, got %+v", outcome)
	}
}

func TestRunCommitFailureCountsAsFailed(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "doc.txt", "Some content.")

	store := newMockStore()
	store.OnCommit = func(ctx context.Context, documentId string, chunks []commonModels.DocChunk) error {
		return errors.New("catalog unavailable")
	}
	o := NewOrchestrator(store, &mockEmbedder{}, fileExtractor)

	outcome, err := o.Run(context.Background(), dir)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if outcome.Processed != 0 || outcome.Failed != 1 {
		t.Errorf("expected 0 processed / 1 failed, got %+v", outcome)
	}
	if len(store.failed) != 1 {
		t.Errorf("expected document marked failed, got %v", store.failed)
	}
}

func TestRunInvalidPathIsJobLevelError(t *testing.T) {
	store := newMockStore()
	o := NewOrchestrator(store, &mockEmbedder{}, fileExtractor)

	_, err := o.Run(context.Background(), filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
