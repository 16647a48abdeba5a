// Package pagination provides cursor-driven page walking and bounded per-id
// fan-out for the upstream charging-platform API.
//
// Listing endpoints return envelopes of the form
//
//	{ "data": [ ... ], "links": { "next": "https://..." | null } }
//
// and are walked strictly sequentially: each page's URL depends on the
// previous response, so there is no parallelism across pages of one listing.
// A page-count safety cap guards against a misbehaving upstream paginating
// forever.
//
// Per-id enrichment lookups (users, per-charge-point equipment) instead use
// FanOut, which issues requests in fixed-size concurrent batches so peak
// outstanding upstream load is bounded by the batch size. Individual failures
// are tolerated by omission; fan-out never fails a pipeline run.
//
// Example usage:
//
//	walker := pagination.NewWalker(apiClient, 0)
//	err := walker.Walk(ctx, "sessions", firstURL, func(items []map[string]any) bool {
//		collect(items)
//		return true
//	})
package pagination
