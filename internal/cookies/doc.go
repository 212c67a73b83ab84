// Package cookies provides browser cookie import functionality for vhindex.
// It supports reading cookies from Firefox (moz_cookies SQLite), Chrome (cookies SQLite,
// unencrypted only), and Netscape text format cookie files. Cookies are imported
// in-memory and can be turned into a Cookie request header with
// BuildCookieHeader.
//
// This package neither persists nor logs cookie values; pkg/credman's
// ImportBrowserSession stores the built header, encrypted, as a grabber's
// vault secret (FR-023, FR-024).
package cookies
