package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultRenderTimeout bounds a headless render.
const DefaultRenderTimeout = 60 * time.Second

// defaultSettleDelay gives client-side rendering time to finish after body is ready.
const defaultSettleDelay = 2 * time.Second

// RenderFetcher loads a page in headless Chrome and returns the rendered HTML.
// Chrome or Chromium must be installed.
type RenderFetcher struct {
	userAgent string
	timeout   time.Duration
	settle    time.Duration
	logger    *slog.Logger
}

// NewRenderFetcher creates a RenderFetcher. A zero timeout uses DefaultRenderTimeout.
func NewRenderFetcher(userAgent string, timeout time.Duration, logger *slog.Logger) *RenderFetcher {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RenderFetcher{
		userAgent: userAgent,
		timeout:   timeout,
		settle:    defaultSettleDelay,
		logger:    logger,
	}
}

// Fetch renders rawURL and returns the outer HTML of the document.
func (f *RenderFetcher) Fetch(ctx context.Context, rawURL string) (*Result, error) {
	f.logger.Debug("starting headless browser", "url", rawURL)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("disable-dev-shm-usage", true),
			chromedp.UserAgent(f.userAgent),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, f.timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(f.settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("browser rendering of %s failed: %w", rawURL, err)
	}

	f.logger.Info("rendered page", "url", rawURL, "bytes", len(html))

	return &Result{
		URL:         rawURL,
		HTML:        html,
		ContentType: "text/html; charset=utf-8",
		Charset:     "utf-8",
		Bytes:       len(html),
	}, nil
}
