package vhlib

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Adapted verbatim in spirit from pkg/warplib/redirect.go: the Downloader's
// http.Client reuses this CheckRedirect policy unchanged (§4.10.1).

const defaultMaxRedirects = 10

var (
	ErrTooManyRedirects      = errors.New("redirect loop detected")
	ErrCrossProtocolRedirect = errors.New("cross-protocol redirect not supported")
)

func isHTTPScheme(scheme string) bool { return scheme == "http" || scheme == "https" }

func isCrossOrigin(a, b *url.URL) bool { return a.Host != b.Host }

// RedirectPolicy returns a CheckRedirect enforcing a hop limit, refusing an
// http(s)->non-http downgrade, and stripping non-standard headers across a
// cross-origin hop.
func RedirectPolicy(maxRedirects int) func(*http.Request, []*http.Request) error {
	if maxRedirects <= 0 {
		maxRedirects = defaultMaxRedirects
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("%w: exceeded %d hops (last url: %s)", ErrTooManyRedirects, maxRedirects, via[len(via)-1].URL)
		}
		if len(via) == 0 {
			return nil
		}
		prev := via[len(via)-1]
		if isHTTPScheme(prev.URL.Scheme) && !isHTTPScheme(req.URL.Scheme) {
			return fmt.Errorf("%w: %s -> %s", ErrCrossProtocolRedirect, prev.URL.Scheme, req.URL.Scheme)
		}
		if isCrossOrigin(prev.URL, req.URL) {
			stripUnsafeHeaders(req)
		}
		return nil
	}
}

var safeHeaders = map[string]bool{
	"User-Agent":      true,
	"Accept":          true,
	"Accept-Language": true,
	"Accept-Encoding": true,
}

func stripUnsafeHeaders(req *http.Request) {
	for key := range req.Header {
		if !safeHeaders[http.CanonicalHeaderKey(key)] {
			req.Header.Del(key)
		}
	}
}
