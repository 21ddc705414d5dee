package fetcher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/ternarybob/arbor"

	"github.com/safkanlabs/safkan/internal/common"
)

// Browser owns one headless Chrome session. The source blocks plain HTTP
// scraping, so every page goes through a rendered browser context. One
// session is shared across a whole run to amortize startup cost; Close
// releases allocator and browser on every exit path.
type Browser struct {
	config common.SourceConfig
	logger arbor.ILogger

	browserCtx      context.Context
	browserCancel   context.CancelFunc
	allocatorCancel context.CancelFunc

	// last HTTP status observed for a top-level document
	lastDocStatus atomic.Int64

	mu      sync.Mutex
	started bool
}

// NewBrowser creates an unstarted browser session
func NewBrowser(config common.SourceConfig, logger arbor.ILogger) *Browser {
	return &Browser{
		config: config,
		logger: logger,
	}
}

// Start launches Chrome and verifies it responds
func (b *Browser) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.started {
		return fmt.Errorf("browser already started")
	}

	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.config.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", b.config.NoSandbox),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(b.config.UserAgent),
	)

	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)

	// Watch top-level document responses so callers can distinguish a
	// blocked response from a slow one.
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		if resp, ok := ev.(*network.EventResponseReceived); ok {
			if resp.Type == network.ResourceTypeDocument {
				b.lastDocStatus.Store(resp.Response.Status)
			}
		}
	})

	// Startup probe with timeout so a broken Chrome install fails fast
	probeCtx, probeCancel := context.WithTimeout(browserCtx, 30*time.Second)
	defer probeCancel()

	start := time.Now()
	if err := chromedp.Run(probeCtx, network.Enable(), chromedp.Navigate("about:blank")); err != nil {
		browserCancel()
		allocatorCancel()
		return fmt.Errorf("browser failed startup probe: %w", err)
	}

	b.browserCtx = browserCtx
	b.browserCancel = browserCancel
	b.allocatorCancel = allocatorCancel
	b.started = true

	b.logger.Info().
		Bool("headless", b.config.Headless).
		Dur("startup_time", time.Since(start)).
		Msg("Browser session started")

	return nil
}

// Render navigates to a URL and returns the rendered document HTML.
// waitSelector is the element that signals the data table has rendered.
// On selector timeout the partial DOM is returned with partial=true
// rather than failing, since callers tolerate empty result sets.
func (b *Browser) Render(ctx context.Context, url, waitSelector string) (html string, partial bool, err error) {
	b.mu.Lock()
	if !b.started {
		b.mu.Unlock()
		return "", false, fmt.Errorf("browser not started")
	}
	browserCtx := b.browserCtx
	b.mu.Unlock()

	b.lastDocStatus.Store(0)

	navCtx, navCancel := context.WithTimeout(browserCtx, b.config.PageTimeout)
	defer navCancel()

	// Stop if the run's own context is cancelled
	go func() {
		select {
		case <-ctx.Done():
			navCancel()
		case <-navCtx.Done():
		}
	}()

	if err := chromedp.Run(navCtx, chromedp.Navigate(url)); err != nil {
		if navCtx.Err() == context.DeadlineExceeded {
			return "", false, fmt.Errorf("navigating %s: %w", url, ErrTimeout)
		}
		return "", false, fmt.Errorf("navigating %s: %s: %w", url, err, ErrNetworkFailure)
	}

	if status := b.lastDocStatus.Load(); status == 403 || status == 429 {
		return "", false, fmt.Errorf("document status %d for %s: %w", status, url, ErrBotBlocked)
	}

	waitErr := chromedp.Run(navCtx,
		chromedp.WaitReady("body"),
		chromedp.WaitVisible(waitSelector, chromedp.ByQuery),
	)
	if waitErr == nil && b.config.RenderWait > 0 {
		// tables fill in after the selector appears
		waitErr = chromedp.Run(navCtx, chromedp.Sleep(b.config.RenderWait))
	}

	// Grab whatever DOM is present, even after a wait timeout. A fresh
	// short deadline is needed because navCtx may already be expired.
	extractCtx := navCtx
	var extractCancel context.CancelFunc
	if navCtx.Err() != nil {
		extractCtx, extractCancel = context.WithTimeout(browserCtx, 5*time.Second)
		defer extractCancel()
	}

	if err := chromedp.Run(extractCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", false, fmt.Errorf("extracting document %s: %s: %w", url, err, ErrNetworkFailure)
	}

	if waitErr != nil {
		b.logger.Debug().
			Str("url", url).
			Str("selector", waitSelector).
			Msg("Selector wait timed out, returning partial DOM")
		return html, true, nil
	}

	return html, false, nil
}

// Close releases the browser and its allocator
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.started {
		return nil
	}

	if b.browserCancel != nil {
		b.browserCancel()
	}
	if b.allocatorCancel != nil {
		b.allocatorCancel()
	}
	b.started = false

	b.logger.Debug().Msg("Browser session closed")
	return nil
}
