package vhlib

import (
	"io"
	"sync"
	"time"
)

// Adapted from pkg/warplib/ratelimiter.go: a token-bucket reader, reused here
// to cap the combined byte rate of concurrent artwork/side-car fetches
// issued by the Downloader (§4.10.1) rather than a single segmented download.

// RateLimitedReader wraps an io.Reader with a token-bucket rate limit. A
// limit <= 0 means unlimited.
type RateLimitedReader struct {
	r        io.Reader
	limit    int64
	mu       sync.Mutex
	lastRead time.Time
	tokens   int64
}

// NewRateLimitedReader returns a reader capped at limit bytes/second.
func NewRateLimitedReader(r io.Reader, limit int64) *RateLimitedReader {
	return &RateLimitedReader{r: r, limit: limit, lastRead: time.Now()}
}

func (r *RateLimitedReader) Read(b []byte) (int, error) {
	if r.limit <= 0 {
		return r.r.Read(b)
	}

	r.mu.Lock()
	now := time.Now()
	elapsed := now.Sub(r.lastRead)
	r.lastRead = now
	r.tokens += int64(float64(r.limit) * elapsed.Seconds())
	if r.tokens > r.limit {
		r.tokens = r.limit
	}

	want := int64(len(b))
	if want > r.limit {
		want = r.limit
	}
	if r.tokens < want {
		needed := want - r.tokens
		wait := time.Duration(float64(time.Second) * float64(needed) / float64(r.limit))
		if wait > 0 {
			r.mu.Unlock()
			time.Sleep(wait)
			r.mu.Lock()
			now = time.Now()
			elapsed = now.Sub(r.lastRead)
			r.lastRead = now
			r.tokens += int64(float64(r.limit) * elapsed.Seconds())
			if r.tokens > r.limit {
				r.tokens = r.limit
			}
		}
	}

	readSize := int(want)
	if r.tokens > 0 && int64(readSize) > r.tokens {
		readSize = int(r.tokens)
	}
	if readSize <= 0 {
		readSize = 1
	}
	r.mu.Unlock()

	n, err := r.r.Read(b[:readSize])

	r.mu.Lock()
	r.tokens -= int64(n)
	r.mu.Unlock()
	return n, err
}

// SetLimit updates the rate limit dynamically.
func (r *RateLimitedReader) SetLimit(limit int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limit = limit
	if limit > 0 && r.tokens > limit {
		r.tokens = limit
	}
}

// RateLimitedReadCloser pairs a RateLimitedReader with the underlying Closer.
type RateLimitedReadCloser struct {
	*RateLimitedReader
	closer io.Closer
}

// NewRateLimitedReadCloser wraps rc with a shared rate limit.
func NewRateLimitedReadCloser(rc io.ReadCloser, limit int64) *RateLimitedReadCloser {
	return &RateLimitedReadCloser{RateLimitedReader: NewRateLimitedReader(rc, limit), closer: rc}
}

func (r *RateLimitedReadCloser) Close() error { return r.closer.Close() }
