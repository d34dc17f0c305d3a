package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"SiteProfiler/internal/domain"
	"SiteProfiler/internal/ports"
)

const (
	defaultTimeout = 15 * time.Second
	userAgent      = "SiteProfiler/1.0"

	// maxBodyBytes bounds how much markup one fetch can pull in.
	maxBodyBytes = 5 << 20
)

// HTTPFetcher implements ports.Fetcher over net/http. It performs exactly
// one request per call; retries are the orchestration layer's concern.
type HTTPFetcher struct {
	client *http.Client
}

var _ ports.Fetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher wires an HTTP client; a nil client gets the default
// timeout.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &HTTPFetcher{client: client}
}

// Fetch downloads one page. Transport failures and non-success statuses
// come back as *domain.NetworkError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
		return nil, &domain.NetworkError{URL: url, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &domain.NetworkError{URL: url, Err: err}
	}
	return body, nil
}
