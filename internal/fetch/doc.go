// Package fetch retrieves the storefront page a preview is built from.
//
// HTTPFetcher issues a single GET with a browser-like User-Agent and returns
// the body decoded to UTF-8. Any non-2xx status is returned as a
// *StatusError; there is no retry and no backoff. RenderFetcher loads the
// page in headless Chrome instead, for storefronts whose markup is built
// client-side.
package fetch
