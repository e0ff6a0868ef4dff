// Package retrieval runs the first stage: cosine similarity of the query
// vector against every committed chunk, keeping the best pool of candidates
// for the reranker.
package retrieval

import (
	"context"
	"math"
	"sort"

	"github.com/intigra/ragapi/internal/config"
	"github.com/intigra/ragapi/internal/domain/apperrors"
	"github.com/intigra/ragapi/internal/vectorstore"
	"github.com/intigra/ragapi/pkg/logger_i"
)

// Hit is one scored chunk, ordered best first.
type Hit struct {
	ChunkId    string
	DocumentId string
	Text       string
	Score      float64
}

type Engine struct {
	store  *vectorstore.Store
	logger *logger_i.Logger
}

func NewEngine(store *vectorstore.Store) *Engine {
	return &Engine{
		store:  store,
		logger: logger_i.NewLogger("Retrieval Engine"),
	}
}

// Retrieve scores the query against the current snapshot and returns the top
// min(N, topK*multiplier) candidates, highest cosine first. Ties keep their
// store order, so identical corpora always produce identical pools. An empty
// documentId means no filter.
func (e *Engine) Retrieve(ctx context.Context, queryVec []float32, topK int, documentId string) ([]Hit, error) {
	log := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	snap, err := e.store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Len() == 0 {
		return nil, nil
	}
	if len(queryVec) != len(snap.Matrix[0]) {
		return nil, apperrors.Validation("query vector has dimension %d, store holds %d",
			len(queryVec), len(snap.Matrix[0]))
	}

	queryUnit := normalize(queryVec)
	matrix := snap.NormalizedMatrix()

	hits := make([]Hit, 0, snap.Len())
	for i := range matrix {
		if documentId != "" && snap.DocumentIds[i] != documentId {
			continue
		}
		hits = append(hits, Hit{
			ChunkId:    snap.ChunkIds[i],
			DocumentId: snap.DocumentIds[i],
			Text:       snap.Texts[i],
			Score:      dot(queryUnit, matrix[i]),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	pool := topK * config.PoolMultiplier
	if pool > len(hits) {
		pool = len(hits)
	}
	hits = hits[:pool]

	log.Debug("retrieved candidate pool", "corpus", snap.Len(), "pool", len(hits))
	return hits, nil
}

func normalize(vec []float32) []float64 {
	var sum float64
	for _, f := range vec {
		sum += float64(f) * float64(f)
	}
	out := make([]float64, len(vec))
	if sum == 0 {
		return out
	}
	norm := 1 / math.Sqrt(sum)
	for i, f := range vec {
		out[i] = float64(f) * norm
	}
	return out
}

func dot(query []float64, row []float32) float64 {
	var sum float64
	for i := range query {
		sum += query[i] * float64(row[i])
	}
	return sum
}
