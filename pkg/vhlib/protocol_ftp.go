package vhlib

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/jlaffaye/ftp"
)

// FTPFetcher fetches ftp:// items, registered on the SchemeRouter alongside
// HTTPFetcher so a grabber that resolves artwork to an FTP mirror is handled
// the same way (§4.10.1).
type FTPFetcher struct {
	dialTimeout time.Duration
}

// NewFTPFetcher returns a fetcher with the given connection timeout.
func NewFTPFetcher(dialTimeout time.Duration) *FTPFetcher {
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}
	return &FTPFetcher{dialTimeout: dialTimeout}
}

func (f *FTPFetcher) Fetch(ctx context.Context, rawURL string, w io.Writer) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	host := u.Host
	if u.Port() == "" {
		host += ":21"
	}
	conn, err := ftp.Dial(host, ftp.DialWithTimeout(f.dialTimeout), ftp.DialWithContext(ctx))
	if err != nil {
		return err
	}
	defer conn.Quit()

	if u.User != nil {
		pass, _ := u.User.Password()
		if err := conn.Login(u.User.Username(), pass); err != nil {
			return err
		}
	} else {
		if err := conn.Login("anonymous", "anonymous"); err != nil {
			return err
		}
	}

	r, err := conn.Retr(u.Path)
	if err != nil {
		return err
	}
	defer r.Close()
	_, err = io.Copy(w, r)
	return err
}

var _ Fetcher = (*FTPFetcher)(nil)
