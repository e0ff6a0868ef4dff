// Package ingest runs one ingestion job: walk the submitted path, extract,
// split, embed and commit each accepted file. Files fail independently, a
// single bad document never sinks the batch.
package ingest

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/intigra/ragapi/internal/adapter/utils"
	"github.com/intigra/ragapi/internal/config"
	"github.com/intigra/ragapi/internal/domain/commonModels"
	"github.com/intigra/ragapi/internal/metrics"
	"github.com/intigra/ragapi/internal/rag/embedding"
	"github.com/intigra/ragapi/internal/splitter"
	"github.com/intigra/ragapi/pkg/logger_i"
)

// DocumentStore is the slice of the vector store the ingestion side needs.
type DocumentStore interface {
	CreateDocument(ctx context.Context, doc commonModels.Document) error
	SetDocumentStatus(ctx context.Context, documentId string, status commonModels.DocStatus) error
	Commit(ctx context.Context, documentId string, chunks []commonModels.DocChunk) error
}

// Extractor turns a file path into plain text.
type Extractor func(path string) (string, error)

type Orchestrator struct {
	store     DocumentStore
	embedder  embedding.Embedder
	extractor Extractor
	logger    *logger_i.Logger
}

func NewOrchestrator(store DocumentStore, embedder embedding.Embedder, extractor Extractor) *Orchestrator {
	return &Orchestrator{
		store:     store,
		embedder:  embedder,
		extractor: extractor,
		logger:    logger_i.NewLogger("Document Ingestion"),
	}
}

// Outcome is what one job run produced.
type Outcome struct {
	Processed int
	Failed    int
}

// Run processes every acceptable file under the job path with a bounded pool
// of file workers. It returns an error only when the path itself is unusable;
// per-file failures are counted, not raised.
func (o *Orchestrator) Run(ctx context.Context, path string) (Outcome, error) {
	log := o.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	files, err := collectFiles(path)
	if err != nil {
		return Outcome{}, err
	}
	log.Info("starting ingestion", "path", path, "files", len(files))

	var processed, failed atomic.Int64
	var wg sync.WaitGroup
	slots := make(chan struct{}, config.FileWorkerCount)

	for _, file := range files {
		wg.Add(1)
		slots <- struct{}{}
		go func(file string) {
			defer wg.Done()
			defer func() { <-slots }()

			if ctx.Err() != nil {
				log.Error("file skipped, job deadline exceeded", "file", file)
				metrics.CountIngestedDocument("failed")
				failed.Add(1)
				return
			}
			if err := o.ingestFile(ctx, file); err != nil {
				log.Error("file ingestion failed", "file", file, "error", err)
				metrics.CountIngestedDocument("failed")
				failed.Add(1)
				return
			}
			metrics.CountIngestedDocument("processed")
			processed.Add(1)
		}(file)
	}
	wg.Wait()

	outcome := Outcome{Processed: int(processed.Load()), Failed: int(failed.Load())}
	log.Info("ingestion finished", "processed", outcome.Processed, "failed", outcome.Failed)
	return outcome, nil
}

// ingestFile runs the whole pipeline for one file. The document record is
// created before extraction so a failure still leaves a failed document in
// the catalog.
func (o *Orchestrator) ingestFile(ctx context.Context, path string) error {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	doc := commonModels.Document{
		Id:         utils.GetNewUUID(),
		FileName:   info.Name(),
		Source:     path,
		Size:       info.Size(),
		Status:     commonModels.DocStatusProcessing,
		UploadTime: time.Now().UTC(),
	}
	if err := o.store.CreateDocument(ctx, doc); err != nil {
		return err
	}

	chunks, err := o.prepareChunks(ctx, doc, path)
	if err != nil {
		o.markFailed(ctx, doc.Id)
		return err
	}

	if err := o.store.Commit(ctx, doc.Id, chunks); err != nil {
		o.markFailed(ctx, doc.Id)
		return err
	}
	metrics.CountCommittedChunks(len(chunks))
	return nil
}

func (o *Orchestrator) prepareChunks(ctx context.Context, doc commonModels.Document, path string) ([]commonModels.DocChunk, error) {
	text, err := o.extractor(path)
	if err != nil {
		return nil, err
	}

	pieces, err := splitter.Split(text, config.ChunkSize, config.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	vectors, err := o.embedder.BatchEmbedding(ctx, pieces)
	if err != nil {
		return nil, err
	}

	chunks := make([]commonModels.DocChunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = commonModels.DocChunk{
			ChunkId:    utils.GetNewUUID(),
			DocumentId: doc.Id,
			ChunkIndex: i,
			Text:       piece,
			Embedding:  vectors[i],
		}
	}
	return chunks, nil
}

func (o *Orchestrator) markFailed(ctx context.Context, documentId string) {
	// a cancelled job context must not stop the failure from being recorded
	ctx = context.WithoutCancel(ctx)
	if err := o.store.SetDocumentStatus(ctx, documentId, commonModels.DocStatusFailed); err != nil {
		o.logger.Error("could not mark document failed", "documentId", documentId, "error", err)
	}
}
