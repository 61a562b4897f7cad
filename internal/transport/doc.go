// Package transport builds the HTTP client used to fetch storefront pages.
//
// By default requests go out directly. When a SOCKS5 proxy address is
// configured, every connection is dialed through it with
// golang.org/x/net/proxy. Site-specific headers (for example the cookie that
// unlocks a password-protected storefront) are injected by a RoundTripper so
// the fetcher does not need to know about them.
package transport
