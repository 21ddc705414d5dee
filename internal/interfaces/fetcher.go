package interfaces

import (
	"context"
	"time"
)

// PageKind identifies one of the source's per-horse data pages
type PageKind string

const (
	PageRaces         PageKind = "races"
	PageRegistrations PageKind = "registrations"
	PageGallops       PageKind = "gallops"
	PagePedigree      PageKind = "pedigree"
	PageSummary       PageKind = "summary"
)

// AllPageKinds lists the pages fetched for a full horse sync, in fetch order
var AllPageKinds = []PageKind{PageSummary, PageRaces, PageRegistrations, PageGallops, PagePedigree}

// RenderedPage is a browser-rendered HTML document for one horse/page.
// On timeout or missing selector the fetcher still returns whatever
// partial DOM was present; callers tolerate empty result sets.
type RenderedPage struct {
	Kind      PageKind
	URL       string
	HTML      string
	Partial   bool // render wait or selector timed out, DOM may be incomplete
	FetchedAt time.Time
}

// PageFetcher acquires rendered documents from the federation source.
// Implementations own the browser/session lifecycle: one headless
// browser context per run, released on Close regardless of exit path.
type PageFetcher interface {
	Fetch(ctx context.Context, externalRef string, kind PageKind) (*RenderedPage, error)
	Close() error
}
