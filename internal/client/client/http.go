package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/docarchive/internal/client/models"
	"github.com/dmitrijs2005/docarchive/internal/netx"
)

// HTTPClient implements Client over the archive's JSON HTTP API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewHTTPClient returns a client for baseURL. A requestsPerSecond of zero
// disables rate limiting; burst below one is raised to one.
func NewHTTPClient(baseURL string, timeout time.Duration, requestsPerSecond float64, burst int) *HTTPClient {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if burst < 1 {
		burst = 1
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
	}
}

func (c *HTTPClient) ListDocs(ctx context.Context) ([]models.ListEntry, error) {
	var entries []models.ListEntry
	if err := c.getJSON(ctx, "/api/docs", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *HTTPClient) GetDetail(ctx context.Context, id int64) (models.Detail, error) {
	var d models.Detail
	if err := c.getJSON(ctx, fmt.Sprintf("/api/docs/%d", id), &d); err != nil {
		return models.Detail{}, err
	}
	return d, nil
}

func (c *HTTPClient) GetImage(ctx context.Context, id int64, index int) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/api/docs/%d/images/%d", id, index))
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, v any) error {
	body, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: GET %s: %v", ErrMalformedResponse, path, err)
	}
	return nil
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	body, err := netx.Get(ctx, c.http, c.baseURL+path)
	if err != nil {
		return nil, mapError(err)
	}
	return body, nil
}

// mapError converts netx failures into the package sentinels.
func mapError(err error) error {
	var se *netx.StatusError
	if errors.As(err, &se) {
		return fmt.Errorf("%w: %w", ErrUnexpectedStatus, se)
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
