// Package log provides a slog handler that masks secrets before they reach
// the log output.
//
// Storefront previews are often taken from password-protected shops, so the
// request cookies and headers that unlock them (storefront_digest,
// _secure_session_id, storefront access tokens) travel through the fetcher.
// SecureHandler masks them by attribute key, by value shape, and inside URL
// query strings, at every log level.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//	logger.Debug("request headers", "cookie", "storefront_digest=abc") // cookie=***REDACTED***
package log
