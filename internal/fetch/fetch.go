package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// DefaultUserAgent is a desktop Chrome user agent. Storefront platforms serve
// bot-specific or blocked responses to unfamiliar agents.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Fetcher retrieves a page as text.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Result, error)
}

// Result holds a fetched page.
type Result struct {
	// URL is the requested URL.
	URL string

	// HTML is the body decoded to UTF-8.
	HTML string

	// ContentType is the response Content-Type header.
	ContentType string

	// Charset is the encoding the body was decoded from.
	Charset string

	// StatusCode is the HTTP status. Zero for rendered pages.
	StatusCode int

	// Bytes is the body length as received, before decoding.
	Bytes int
}

// HTTPFetcher fetches pages with a plain HTTP GET.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// HTTPOption configures an HTTPFetcher.
type HTTPOption func(*HTTPFetcher)

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) HTTPOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(f *HTTPFetcher) {
		f.logger = logger
	}
}

// NewHTTPFetcher creates an HTTPFetcher. A nil client uses http.DefaultClient.
func NewHTTPFetcher(client *http.Client, opts ...HTTPOption) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	f := &HTTPFetcher{
		client:    client,
		userAgent: DefaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch issues one GET for rawURL.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", rawURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	f.logger.Debug("fetching page", "url", rawURL)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body from %s: %w", rawURL, err)
	}

	contentType := resp.Header.Get("Content-Type")
	text, name, err := decode(body, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s body from %s: %w", name, rawURL, err)
	}

	f.logger.Info("fetched page",
		"url", rawURL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"charset", name,
	)

	return &Result{
		URL:         rawURL,
		HTML:        text,
		ContentType: contentType,
		Charset:     name,
		StatusCode:  resp.StatusCode,
		Bytes:       len(body),
	}, nil
}

// decode converts body to UTF-8 using the Content-Type charset, a <meta>
// declaration, or content sniffing, in that order.
func decode(body []byte, contentType string) (string, string, error) {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" {
		return string(body), name, nil
	}
	text, err := transcode(body, enc)
	return text, name, err
}

func transcode(body []byte, enc encoding.Encoding) (string, error) {
	r := transform.NewReader(bytes.NewReader(body), enc.NewDecoder())
	out, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
