package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/intigra/ragapi/internal/domain/apperrors"
	"github.com/intigra/ragapi/internal/domain/commonModels"
)

const testDim = 4

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir(), testDim)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testDocument(id string) commonModels.Document {
	return commonModels.Document{
		Id:         id,
		FileName:   id + ".txt",
		Source:     "/tmp/" + id + ".txt",
		Size:       128,
		Status:     commonModels.DocStatusProcessing,
		UploadTime: time.Now().UTC(),
	}
}

func testChunks(documentId string, count int) []commonModels.DocChunk {
	chunks := make([]commonModels.DocChunk, count)
	for i := range chunks {
		chunks[i] = commonModels.DocChunk{
			ChunkId:    fmt.Sprintf("%s-chunk-%d", documentId, i),
			DocumentId: documentId,
			ChunkIndex: i,
			Text:       fmt.Sprintf("chunk %d of %s", i, documentId),
			Embedding:  []float32{float32(i), 1, 0, 0.5},
		}
	}
	return chunks
}

func TestCommitAndLoadAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateDocument(ctx, testDocument("doc-a")); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	chunks := testChunks("doc-a", 3)
	if err := store.Commit(ctx, "doc-a", chunks); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	snap, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if snap.Len() != 3 {
		t.Fatalf("expected 3 chunks in snapshot, got %d", snap.Len())
	}
	for i, chunk := range chunks {
		if snap.ChunkIds[i] != chunk.ChunkId {
			t.Errorf("chunk %d: expected id %s, got %s", i, chunk.ChunkId, snap.ChunkIds[i])
		}
		if snap.Texts[i] != chunk.Text {
			t.Errorf("chunk %d: expected text %q, got %q", i, chunk.Text, snap.Texts[i])
		}
		if snap.DocumentIds[i] != "doc-a" {
			t.Errorf("chunk %d: expected document doc-a, got %s", i, snap.DocumentIds[i])
		}
		for j := range chunk.Embedding {
			if snap.Matrix[i][j] != chunk.Embedding[j] {
				t.Fatalf("chunk %d: vector mismatch at %d", i, j)
			}
		}
	}
}

func TestCommitKeepsCountsInAgreement(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateDocument(ctx, testDocument("doc-a")); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if err := store.Commit(ctx, "doc-a", testChunks("doc-a", 5)); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	catalogRows, err := store.CountCatalogRows(ctx, "doc-a")
	if err != nil {
		t.Fatalf("CountCatalogRows failed: %v", err)
	}
	storeRows, err := store.CountStoreRows("doc-a")
	if err != nil {
		t.Fatalf("CountStoreRows failed: %v", err)
	}
	if catalogRows != 5 || storeRows != 5 {
		t.Errorf("expected 5 rows in both stores, got catalog=%d store=%d", catalogRows, storeRows)
	}
}

func TestCommitRejectsEmptyBatch(t *testing.T) {
	store := newTestStore(t)
	err := store.Commit(context.Background(), "doc-a", nil)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCommitRejectsDimensionMismatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateDocument(ctx, testDocument("doc-a")); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	chunks := testChunks("doc-a", 2)
	chunks[1].Embedding = []float32{1, 2}

	err := store.Commit(ctx, "doc-a", chunks)
	if !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if n, _ := store.CountCatalogRows(ctx, "doc-a"); n != 0 {
		t.Errorf("expected no catalog rows after rejected commit, got %d", n)
	}
}

func TestCommitRejectsDuplicateDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateDocument(ctx, testDocument("doc-a")); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if err := store.Commit(ctx, "doc-a", testChunks("doc-a", 2)); err != nil {
		t.Fatalf("first Commit failed: %v", err)
	}

	err := store.Commit(ctx, "doc-a", testChunks("doc-a", 2))
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}

	// The original commit stays intact.
	if n, _ := store.CountCatalogRows(ctx, "doc-a"); n != 2 {
		t.Errorf("expected 2 catalog rows, got %d", n)
	}
	if n, _ := store.CountStoreRows("doc-a"); n != 2 {
		t.Errorf("expected 2 store rows, got %d", n)
	}
}

func TestCommitRemovesVectorFileOnCatalogFailure(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateDocument(ctx, testDocument("doc-a")); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if err := store.Commit(ctx, "doc-a", testChunks("doc-a", 3)); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	// doc-b reuses doc-a's chunk ids, so the catalog insert hits the chunk_id
	// primary key and the whole commit must roll back.
	if err := store.CreateDocument(ctx, testDocument("doc-b")); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	colliding := testChunks("doc-a", 2)
	for i := range colliding {
		colliding[i].DocumentId = "doc-b"
	}
	err := store.Commit(ctx, "doc-b", colliding)
	if !errors.Is(err, apperrors.ErrDatabase) {
		t.Fatalf("expected database error, got %v", err)
	}

	if _, statErr := os.Stat(filepath.Join(store.dir, "doc-b.vec")); !os.IsNotExist(statErr) {
		t.Errorf("expected doc-b vector file to be removed, stat returned %v", statErr)
	}
	if n, _ := store.CountCatalogRows(ctx, "doc-b"); n != 0 {
		t.Errorf("expected no catalog rows for doc-b, got %d", n)
	}

	snap, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if snap.Len() != 3 {
		t.Errorf("expected snapshot to keep doc-a's 3 chunks, got %d", snap.Len())
	}
}

func TestLoadAllCachesUntilCommit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateDocument(ctx, testDocument("doc-a")); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if err := store.Commit(ctx, "doc-a", testChunks("doc-a", 2)); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	first, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	second, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if first != second {
		t.Error("expected cached snapshot to be reused between commits")
	}

	if err := store.CreateDocument(ctx, testDocument("doc-b")); err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if err := store.Commit(ctx, "doc-b", testChunks("doc-b", 2)); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	third, err := store.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if third == first {
		t.Error("expected a fresh snapshot after commit")
	}
	if third.Version <= first.Version {
		t.Errorf("expected version to advance, got %d then %d", first.Version, third.Version)
	}
	if third.Len() != 4 {
		t.Errorf("expected 4 chunks after second commit, got %d", third.Len())
	}
	// The old snapshot stays usable for in-flight readers.
	if first.Len() != 2 {
		t.Errorf("expected old snapshot to keep 2 chunks, got %d", first.Len())
	}
}

func TestNormalizedMatrix(t *testing.T) {
	snap := &Snapshot{
		Matrix: [][]float32{
			{3, 4, 0, 0},
			{0, 0, 0, 0},
		},
	}
	norm := snap.NormalizedMatrix()
	if norm[0][0] != 0.6 || norm[0][1] != 0.8 {
		t.Errorf("expected unit vector {0.6 0.8 0 0}, got %v", norm[0])
	}
	for _, f := range norm[1] {
		if f != 0 {
			t.Fatalf("expected zero vector to stay zero, got %v", norm[1])
		}
	}
	if again := snap.NormalizedMatrix(); &again[0][0] != &norm[0][0] {
		t.Error("expected normalized matrix to be computed once and shared")
	}
}

func TestSetDocumentStatusUnknownDocument(t *testing.T) {
	store := newTestStore(t)
	err := store.SetDocumentStatus(context.Background(), "missing", commonModels.DocStatusFailed)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected not found error, got %v", err)
	}
}
