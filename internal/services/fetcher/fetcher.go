package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/safkanlabs/safkan/internal/common"
	"github.com/safkanlabs/safkan/internal/interfaces"
)

// pagePaths maps each page kind to the source's already-rendered data
// endpoint. Navigating straight to these skips the client-side search
// UI, which is the flakiest part of the site.
var pagePaths = map[interfaces.PageKind]string{
	interfaces.PageSummary:       "/tr/at/%s/genel-bilgi",
	interfaces.PageRaces:         "/tr/at/%s/kosu-sonuclari",
	interfaces.PageRegistrations: "/tr/at/%s/kayitli-oldugu-kosular",
	interfaces.PageGallops:       "/tr/at/%s/galop-bilgileri",
	interfaces.PagePedigree:      "/tr/at/%s/pedigri",
}

// pageSelectors is the element whose visibility signals the page's data
// table has rendered.
var pageSelectors = map[interfaces.PageKind]string{
	interfaces.PageSummary:       "div.at-profil",
	interfaces.PageRaces:         "table.kosular",
	interfaces.PageRegistrations: "table.kayitlar",
	interfaces.PageGallops:       "table.galoplar",
	interfaces.PagePedigree:      "table.pedigri",
}

// Fetcher implements interfaces.PageFetcher over one browser session.
// A rate limiter enforces the fixed inter-request delay between horses;
// the delay is a deliberate robustness trade-off against the source's
// anti-automation defenses, not a performance bug.
type Fetcher struct {
	config  common.SourceConfig
	browser *Browser
	limiter *rate.Limiter
	logger  arbor.ILogger
}

// New creates a fetcher and starts its browser session
func New(ctx context.Context, config common.SourceConfig, logger arbor.ILogger) (*Fetcher, error) {
	browser := NewBrowser(config, logger)
	if err := browser.Start(ctx); err != nil {
		return nil, fmt.Errorf("starting browser: %w", err)
	}

	delay := config.FetchDelay
	if delay <= 0 {
		delay = time.Second
	}

	return &Fetcher{
		config:  config,
		browser: browser,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		logger:  logger,
	}, nil
}

// Fetch acquires the rendered document for one horse/page
func (f *Fetcher) Fetch(ctx context.Context, externalRef string, kind interfaces.PageKind) (*interfaces.RenderedPage, error) {
	if externalRef == "" {
		return nil, fmt.Errorf("external reference is required")
	}

	path, ok := pagePaths[kind]
	if !ok {
		return nil, fmt.Errorf("unknown page kind %q", kind)
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	url := f.config.BaseURL + fmt.Sprintf(path, externalRef)
	start := time.Now()

	html, partial, err := f.browser.Render(ctx, url, pageSelectors[kind])
	if err != nil {
		return nil, err
	}

	f.logger.Debug().
		Str("external_ref", externalRef).
		Str("page_kind", string(kind)).
		Bool("partial", partial).
		Dur("duration", time.Since(start)).
		Msg("Page fetched")

	return &interfaces.RenderedPage{
		Kind:      kind,
		URL:       url,
		HTML:      html,
		Partial:   partial,
		FetchedAt: time.Now(),
	}, nil
}

// Close releases the browser session
func (f *Fetcher) Close() error {
	return f.browser.Close()
}
