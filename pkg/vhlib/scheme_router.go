package vhlib

import (
	"context"
	"io"
	"net/url"
)

// Fetcher retrieves the content at rawURL and writes it to w, applying
// whatever retry/rate-limit policy it was configured with.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, w io.Writer) error
}

// SchemeRouter dispatches a download URL to the Fetcher registered for its
// scheme (§4.10.1), adapted from the reference's protocol dispatch so a
// grabber-supplied artwork URL is never restricted to http(s)://.
type SchemeRouter struct {
	fetchers map[string]Fetcher
}

// NewSchemeRouter returns an empty router; call Register for each scheme.
func NewSchemeRouter() *SchemeRouter {
	return &SchemeRouter{fetchers: make(map[string]Fetcher)}
}

// Register binds scheme (lowercase, no "://") to f.
func (r *SchemeRouter) Register(scheme string, f Fetcher) {
	r.fetchers[scheme] = f
}

// Fetch resolves rawURL's scheme and delegates to the registered Fetcher.
func (r *SchemeRouter) Fetch(ctx context.Context, rawURL string, w io.Writer) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	f, ok := r.fetchers[u.Scheme]
	if !ok {
		return ErrDownloadSchemeUnsupported
	}
	return f.Fetch(ctx, rawURL, w)
}
