package vectorstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/intigra/ragapi/internal/domain/apperrors"
	"github.com/intigra/ragapi/internal/domain/commonModels"
	"github.com/intigra/ragapi/pkg/logger_i"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	document_id TEXT PRIMARY KEY,
	file_name   TEXT NOT NULL,
	source      TEXT NOT NULL,
	file_size   INTEGER NOT NULL DEFAULT 0,
	status      TEXT NOT NULL,
	upload_time DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS chunks (
	chunk_id    TEXT PRIMARY KEY,
	document_id TEXT NOT NULL REFERENCES documents(document_id),
	chunk_index INTEGER NOT NULL,
	store_path  TEXT NOT NULL,
	row_number  INTEGER NOT NULL,
	created_at  DATETIME NOT NULL,
	UNIQUE(document_id, chunk_index)
);
CREATE INDEX IF NOT EXISTS idx_chunks_document ON chunks(document_id);
`

// Store persists chunk vectors in one columnar file per document and keeps a
// relational catalog of chunk locations in sqlite. A chunk is visible to
// retrieval only after both its vector rows and its catalog rows are durable.
type Store struct {
	db     *sql.DB
	dir    string
	dim    int
	logger *logger_i.Logger

	mu       sync.RWMutex
	snapshot *Snapshot
	version  uint64
}

func NewStore(dataDir string, dimension int) (*Store, error) {
	vecDir := filepath.Join(dataDir, "vectors")
	if err := os.MkdirAll(vecDir, 0o755); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "creating vector store directory", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "opening catalog", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "initializing catalog schema", err)
	}

	return &Store{
		db:     db,
		dir:    vecDir,
		dim:    dimension,
		logger: logger_i.NewLogger("vectorstore"),
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// CreateDocument records a document in the catalog with processing status.
func (s *Store) CreateDocument(ctx context.Context, doc commonModels.Document) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (document_id, file_name, source, file_size, status, upload_time)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		doc.Id, doc.FileName, doc.Source, doc.Size, commonModels.DocStatusProcessing, doc.UploadTime)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "inserting document", err)
	}
	return nil
}

func (s *Store) SetDocumentStatus(ctx context.Context, documentId string, status commonModels.DocStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET status = ? WHERE document_id = ?`, status, documentId)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "updating document status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("document", documentId)
	}
	return nil
}

// Commit stores every chunk of one document in a single operation. The vector
// file is published first with an atomic rename, then the catalog rows are
// inserted in one transaction. If the catalog write fails the vector file is
// removed again, so the two stores never disagree about what exists.
func (s *Store) Commit(ctx context.Context, documentId string, chunks []commonModels.DocChunk) error {
	if len(chunks) == 0 {
		return apperrors.Validation("commit requires at least one chunk")
	}
	// Re-committing a document would clobber its published vector file before
	// the catalog insert gets a chance to fail, so refuse it up front.
	existing, err := s.CountCatalogRows(ctx, documentId)
	if err != nil {
		return err
	}
	if existing > 0 {
		return apperrors.Wrap(apperrors.ErrConflict,
			fmt.Sprintf("document %s already committed", documentId), nil)
	}
	cols := fileColumns{
		ids:     make([]string, len(chunks)),
		texts:   make([]string, len(chunks)),
		vectors: make([][]float32, len(chunks)),
	}
	for i, chunk := range chunks {
		if len(chunk.Embedding) != s.dim {
			return apperrors.Validation("chunk %s has dimension %d, store expects %d",
				chunk.ChunkId, len(chunk.Embedding), s.dim)
		}
		cols.ids[i] = chunk.ChunkId
		cols.texts[i] = chunk.Text
		cols.vectors[i] = chunk.Embedding
	}

	storePath := filepath.Join(s.dir, documentId+".vec")
	if err := writeVectorFile(storePath, cols, s.dim); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "writing vector file", err)
	}

	if err := s.commitCatalog(ctx, documentId, storePath, chunks); err != nil {
		if rmErr := os.Remove(storePath); rmErr != nil {
			s.logger.Error("failed to remove vector file after catalog error",
				"documentId", documentId, "error", rmErr)
		}
		return err
	}

	s.invalidateSnapshot()
	s.logger.Info("committed document chunks", "documentId", documentId, "chunks", len(chunks))
	return nil
}

func (s *Store) commitCatalog(ctx context.Context, documentId, storePath string, chunks []commonModels.DocChunk) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "starting catalog transaction", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (chunk_id, document_id, chunk_index, store_path, row_number, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "preparing chunk insert", err)
	}
	defer stmt.Close()

	for row, chunk := range chunks {
		if _, err := stmt.ExecContext(ctx, chunk.ChunkId, documentId, chunk.ChunkIndex, storePath, row, now); err != nil {
			return apperrors.Wrap(apperrors.ErrDatabase, "inserting chunk row", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE documents SET status = ? WHERE document_id = ?`,
		commonModels.DocStatusCompleted, documentId); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "marking document completed", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(apperrors.ErrDatabase, "committing catalog transaction", err)
	}
	return nil
}

// LoadAll returns a snapshot of every committed chunk. Snapshots are cached
// and reused until the next commit, so concurrent queries share one copy.
func (s *Store) LoadAll(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	if snap := s.snapshot; snap != nil {
		s.mu.RUnlock()
		return snap, nil
	}
	version := s.version
	s.mu.RUnlock()

	snap, err := s.buildSnapshot(ctx, version)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot != nil && s.version == version {
		return s.snapshot, nil
	}
	if s.version == version {
		s.snapshot = snap
	}
	return snap, nil
}

func (s *Store) buildSnapshot(ctx context.Context, version uint64) (*Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chunk_id, document_id, store_path, row_number
		 FROM chunks ORDER BY document_id, chunk_index`)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "querying catalog", err)
	}
	defer rows.Close()

	type catalogRow struct {
		chunkId    string
		documentId string
		storePath  string
		rowNumber  int
	}
	var catalog []catalogRow
	for rows.Next() {
		var r catalogRow
		if err := rows.Scan(&r.chunkId, &r.documentId, &r.storePath, &r.rowNumber); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrDatabase, "scanning catalog row", err)
		}
		catalog = append(catalog, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabase, "iterating catalog rows", err)
	}

	snap := &Snapshot{
		Version:     version,
		ChunkIds:    make([]string, 0, len(catalog)),
		DocumentIds: make([]string, 0, len(catalog)),
		Texts:       make([]string, 0, len(catalog)),
		Matrix:      make([][]float32, 0, len(catalog)),
	}

	files := make(map[string]fileColumns)
	for _, r := range catalog {
		cols, ok := files[r.storePath]
		if !ok {
			loaded, dim, err := readVectorFile(r.storePath)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.ErrDatabase,
					fmt.Sprintf("loading vectors for document %s", r.documentId), err)
			}
			if dim != s.dim {
				return nil, apperrors.Wrap(apperrors.ErrDatabase,
					fmt.Sprintf("document %s has vector dimension %d, store expects %d", r.documentId, dim, s.dim), nil)
			}
			files[r.storePath] = loaded
			cols = loaded
		}
		if r.rowNumber < 0 || r.rowNumber >= len(cols.ids) {
			return nil, apperrors.Wrap(apperrors.ErrDatabase,
				fmt.Sprintf("catalog row %s points past vector file rows", r.chunkId), nil)
		}
		snap.ChunkIds = append(snap.ChunkIds, r.chunkId)
		snap.DocumentIds = append(snap.DocumentIds, r.documentId)
		snap.Texts = append(snap.Texts, cols.texts[r.rowNumber])
		snap.Matrix = append(snap.Matrix, cols.vectors[r.rowNumber])
	}
	return snap, nil
}

func (s *Store) invalidateSnapshot() {
	s.mu.Lock()
	s.snapshot = nil
	s.version++
	s.mu.Unlock()
}

// CountCatalogRows reports how many catalog rows exist for a document.
func (s *Store) CountCatalogRows(ctx context.Context, documentId string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks WHERE document_id = ?`, documentId).Scan(&n)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrDatabase, "counting catalog rows", err)
	}
	return n, nil
}

// CountStoreRows reports how many vector rows the document's file holds.
func (s *Store) CountStoreRows(documentId string) (int, error) {
	return readVectorFileRows(filepath.Join(s.dir, documentId+".vec"))
}
