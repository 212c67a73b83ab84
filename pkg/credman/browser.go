package credman

import (
	"fmt"

	"github.com/vaulth/vhindex/internal/cookies"
)

// ImportBrowserSession resolves the operator's browser session cookies for
// domain (§3.1's "Grabber HTTP auth" binding: a grabber plugin that needs an
// interactive login borrows the cookies the operator's own browser already
// holds, instead of asking for a password) and stores the resulting Cookie
// header as grabberID's secret in the vault, ready for GrabberCredential
// resolution at grabber init time.
func (v *GrabberVault) ImportBrowserSession(grabberID, domain string) (*cookies.CookieSource, error) {
	imported, source, err := cookies.DetectBrowserCookies(domain)
	if err != nil {
		return nil, fmt.Errorf("credman: importing browser session for %q: %w", grabberID, err)
	}
	header := cookies.BuildCookieHeader(imported)
	if header == "" {
		return nil, fmt.Errorf("credman: no cookies found for domain %q in %s", domain, source.Browser)
	}
	if err := v.Set(grabberID, header); err != nil {
		return nil, err
	}
	return source, nil
}

// ImportBrowserSessionFrom behaves like ImportBrowserSession but reads a
// specific cookie store file instead of auto-detecting one, for operators
// who keep a non-default browser profile.
func (v *GrabberVault) ImportBrowserSessionFrom(grabberID, sourcePath, domain string) (*cookies.CookieSource, error) {
	imported, source, err := cookies.ImportCookies(sourcePath, domain)
	if err != nil {
		return nil, fmt.Errorf("credman: importing browser session for %q: %w", grabberID, err)
	}
	header := cookies.BuildCookieHeader(imported)
	if header == "" {
		return nil, fmt.Errorf("credman: no cookies found for domain %q at %s", domain, sourcePath)
	}
	if err := v.Set(grabberID, header); err != nil {
		return nil, err
	}
	return source, nil
}
