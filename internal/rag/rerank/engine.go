package rerank

import (
	"context"
	"sort"

	"github.com/intigra/ragapi/internal/config"
	"github.com/intigra/ragapi/pkg/logger_i"
)

// Engine runs the second retrieval stage: every candidate is rescored by the
// cross-encoder, resorted, filtered by the confidence threshold and cut to
// topK. An empty result is a valid outcome, not an error.
type Engine struct {
	reranker  Reranker
	threshold float64
	logger    *logger_i.Logger
}

func NewEngine(reranker Reranker) *Engine {
	return &Engine{
		reranker:  reranker,
		threshold: config.ConfidenceThreshold,
		logger:    logger_i.NewLogger("Rerank Engine"),
	}
}

func (e *Engine) Rerank(ctx context.Context, query string, candidates []Candidate, topK int) ([]Candidate, error) {
	log := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	rescored := make([]Candidate, len(candidates))
	for i, candidate := range candidates {
		score, err := e.reranker.Score(ctx, query, candidate.Text)
		if err != nil {
			return nil, err
		}
		candidate.Score = score
		rescored[i] = candidate
	}

	// stable so candidates with equal scores keep their retrieval order
	sort.SliceStable(rescored, func(i, j int) bool {
		return rescored[i].Score > rescored[j].Score
	})

	kept := rescored[:0]
	for _, candidate := range rescored {
		if candidate.Score > e.threshold {
			kept = append(kept, candidate)
		}
	}
	if len(kept) > topK {
		kept = kept[:topK]
	}

	log.Debug("reranked candidates", "in", len(candidates), "kept", len(kept))
	return kept, nil
}
