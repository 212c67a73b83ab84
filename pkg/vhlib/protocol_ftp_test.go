package vhlib

import (
	"bytes"
	"net"
	"strconv"
	"testing"
	"time"
)

// closedPort returns a TCP port on localhost that was briefly listened on
// and then closed, so a connection attempt fails fast with "connection
// refused" instead of timing out.
func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port
}

func TestFTPFetcher_MalformedURL(t *testing.T) {
	f := NewFTPFetcher(time.Second)
	var buf bytes.Buffer
	if err := f.Fetch(t.Context(), "://bad", &buf); err == nil {
		t.Fatal("expected a parse error for a malformed URL")
	}
}

func TestFTPFetcher_DialFailureIsPropagated(t *testing.T) {
	f := NewFTPFetcher(500 * time.Millisecond)
	var buf bytes.Buffer
	port := closedPort(t)
	err := f.Fetch(t.Context(), "ftp://127.0.0.1:"+strconv.Itoa(port)+"/x.jpg", &buf)
	if err == nil {
		t.Fatal("expected a dial error against a closed port")
	}
}

func TestFTPFetcher_DefaultDialTimeoutAppliedWhenNonPositive(t *testing.T) {
	f := NewFTPFetcher(0)
	if f.dialTimeout != 10*time.Second {
		t.Fatalf("dialTimeout = %v, want the 10s default", f.dialTimeout)
	}
}
