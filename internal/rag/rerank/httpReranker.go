package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/intigra/ragapi/internal/config"
	"github.com/intigra/ragapi/internal/customHttpClient"
	"github.com/intigra/ragapi/internal/domain/apperrors"
)

// HTTPReranker talks to the cross-encoder service, one scoring call per
// query/passage pair.
type HTTPReranker struct {
	client  *http.Client
	baseURL string
}

type scoreRequest struct {
	Query   string `json:"query"`
	Passage string `json:"passage"`
}

type scoreResponse struct {
	Score float64 `json:"score"`
	Error string  `json:"error,omitempty"`
}

func NewHTTPReranker() *HTTPReranker {
	return &HTTPReranker{
		client:  customHttpClient.New(config.RerankRequestTimeout),
		baseURL: config.RerankServiceURL,
	}
}

func (r *HTTPReranker) Score(ctx context.Context, query string, passage string) (float64, error) {
	body, err := json.Marshal(scoreRequest{Query: query, Passage: passage})
	if err != nil {
		return 0, fmt.Errorf("marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrServiceUnavailable, "rerank service", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrServiceUnavailable, "reading rerank response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, apperrors.Wrap(apperrors.ErrServiceUnavailable,
			fmt.Sprintf("rerank service returned status %d: %s", resp.StatusCode, raw), nil)
	}

	var scored scoreResponse
	if err := json.Unmarshal(raw, &scored); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrServiceUnavailable, "decoding rerank response", err)
	}
	if scored.Error != "" {
		return 0, apperrors.Wrap(apperrors.ErrServiceUnavailable, "rerank service: "+scored.Error, nil)
	}
	return scored.Score, nil
}
