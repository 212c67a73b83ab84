package vhlib

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTPFetcher fetches sftp:// items, the other half of the multi-protocol
// artwork fetch described in §4.10.1. Authentication is password-only here;
// key-based auth belongs to the Grabber credential surface (§3.1) and is out
// of scope for a single side-car fetch.
type SFTPFetcher struct {
	hostKeyCallback ssh.HostKeyCallback
}

// NewSFTPFetcher returns a fetcher using the given host-key verification
// policy (pass ssh.InsecureIgnoreHostKey() only for tests).
func NewSFTPFetcher(hostKeyCallback ssh.HostKeyCallback) *SFTPFetcher {
	return &SFTPFetcher{hostKeyCallback: hostKeyCallback}
}

func (f *SFTPFetcher) Fetch(ctx context.Context, rawURL string, w io.Writer) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	host := u.Host
	if u.Port() == "" {
		host += ":22"
	}
	user := "anonymous"
	var pass string
	if u.User != nil {
		user = u.User.Username()
		pass, _ = u.User.Password()
	}

	cfg := &ssh.ClientConfig{
		User:            user,
		Auth:            []ssh.AuthMethod{ssh.Password(pass)},
		HostKeyCallback: f.hostKeyCallback,
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return err
	}
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, host, cfg)
	if err != nil {
		return err
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	sc, err := sftp.NewClient(client)
	if err != nil {
		return err
	}
	defer sc.Close()

	rf, err := sc.Open(u.Path)
	if err != nil {
		return fmt.Errorf("sftp open %s: %w", u.Path, err)
	}
	defer rf.Close()
	_, err = io.Copy(w, rf)
	return err
}

var _ Fetcher = (*SFTPFetcher)(nil)
