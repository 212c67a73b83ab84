package vhlib

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// HTTPFetcher fetches http(s):// items with the reference downloader's
// retry/rate-limit/redirect policy (§4.10.1), single-stream since a queued
// artwork item is small enough not to need segmented fetching.
type HTTPFetcher struct {
	client    *http.Client
	retry     RetryConfig
	rateLimit int64 // bytes/sec across all concurrent fetches sharing this fetcher, 0 = unlimited
}

// NewHTTPFetcher builds a fetcher whose client enforces RedirectPolicy.
func NewHTTPFetcher(retry RetryConfig, rateLimit int64, maxRedirects int) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			CheckRedirect: RedirectPolicy(maxRedirects),
		},
		retry:     retry,
		rateLimit: rateLimit,
	}
}

func (h *HTTPFetcher) Fetch(ctx context.Context, rawURL string, w io.Writer) error {
	state := &RetryState{}
	for {
		err := h.attempt(ctx, rawURL, w)
		if err == nil {
			return nil
		}
		state.Attempts++
		state.LastError = err
		if !h.retry.ShouldRetry(state, err) {
			return err
		}
		if werr := h.retry.WaitForRetry(ctx, state, ClassifyError(err)); werr != nil {
			return werr
		}
	}
}

func (h *HTTPFetcher) attempt(ctx context.Context, rawURL string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status fetching %s: %s", rawURL, resp.Status)
	}
	var r io.Reader = resp.Body
	if h.rateLimit > 0 {
		r = NewRateLimitedReader(resp.Body, h.rateLimit)
	}
	_, err = io.Copy(w, r)
	return err
}

var _ Fetcher = (*HTTPFetcher)(nil)
