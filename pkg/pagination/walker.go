package pagination

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for page walking.
var (
	pagesWalkedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_pages_walked_total",
		Help: "Total listing pages fetched by stage",
	}, []string{"stage"})

	pageCapReachedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_page_cap_reached_total",
		Help: "Listing walks stopped by the page-count safety cap, by stage",
	}, []string{"stage"})
)

// MaxPerPage is the upstream cap on listing page size.
const MaxPerPage = 100

// DefaultMaxPages is the default page-count safety cap per listing walk.
const DefaultMaxPages = 1000

// ClampPerPage bounds a requested page size to the upstream maximum,
// substituting the maximum when no size was requested.
func ClampPerPage(n int) int {
	if n <= 0 || n > MaxPerPage {
		return MaxPerPage
	}
	return n
}

// Page is the upstream listing envelope.
type Page struct {
	Data  []map[string]any `json:"data"`
	Links struct {
		Next *string `json:"next"`
	} `json:"links"`
}

// Fetcher is the subset of the upstream client the walker needs.
type Fetcher interface {
	GetJSON(ctx context.Context, stage, path string, out any) error
}

// Walker walks a cursor-paginated upstream listing page by page.
type Walker struct {
	fetcher  Fetcher
	maxPages int
}

// NewWalker creates a walker with the given page-count safety cap.
// A cap of zero or less selects DefaultMaxPages.
func NewWalker(fetcher Fetcher, maxPages int) *Walker {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Walker{fetcher: fetcher, maxPages: maxPages}
}

// Walk fetches pages starting at firstURL and passes each page's data slice
// to visit, following links.next until it is null, visit returns false, or
// the page cap is reached. The firstURL must already carry its query
// parameters, including the empty cursor parameter that engages cursor-based
// pagination upstream.
//
// Any non-success page fetch aborts the walk with the fetch error; results
// already passed to visit must be discarded by the caller, since a partial
// listing cannot be distinguished from a complete one.
func (w *Walker) Walk(ctx context.Context, stage, firstURL string, visit func(items []map[string]any) bool) error {
	url := firstURL

	for pageNum := 1; ; pageNum++ {
		if pageNum > w.maxPages {
			pageCapReachedTotal.WithLabelValues(stage).Inc()
			log.Warn().
				Str("stage", stage).
				Int("max_pages", w.maxPages).
				Msg("Page cap reached - stopping walk")
			return nil
		}

		var page Page
		if err := w.fetcher.GetJSON(ctx, stage, url, &page); err != nil {
			return err
		}
		pagesWalkedTotal.WithLabelValues(stage).Inc()

		log.Debug().
			Str("stage", stage).
			Int("page", pageNum).
			Int("items", len(page.Data)).
			Msg("Fetched listing page")

		if !visit(page.Data) {
			return nil
		}

		if page.Links.Next == nil || *page.Links.Next == "" {
			return nil
		}
		url = *page.Links.Next
	}
}
