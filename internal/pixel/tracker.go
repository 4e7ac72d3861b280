package pixel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"leadsync/internal/models"
)

const maxResponseBytes = 64 << 10

// Result is what the pixel endpoint answered
type Result struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

// Tracker relays page views to the pixel endpoint
type Tracker struct {
	endpoint   string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// NewTracker creates a tracker. perSecond caps outbound relays across all
// customers; zero means unlimited.
func NewTracker(endpoint string, timeout time.Duration, perSecond float64, logger *zap.Logger) *Tracker {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	burst := 0
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
		burst = int(perSecond) + 1
	}
	return &Tracker{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, burst),
		logger:     logger,
	}
}

// Track posts one page view and returns the endpoint's response. Non-2xx
// responses are returned, not treated as errors; the snippet only logs them.
func (t *Tracker) Track(ctx context.Context, view models.PageView) (*Result, error) {
	if view.CustomerID == "" {
		return nil, ErrMissingCustomerID
	}
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("pixel relay throttled: %w", err)
	}

	body, err := json.Marshal(view)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal page view: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pixel request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read pixel response: %w", err)
	}

	t.logger.Info("pixel response",
		zap.String("customer_id", view.CustomerID),
		zap.String("page", view.Page),
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", data))

	return &Result{StatusCode: resp.StatusCode, Body: string(data)}, nil
}
