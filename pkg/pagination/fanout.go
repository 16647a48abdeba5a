package pagination

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
)

var fanoutFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "report_fanout_failures_total",
	Help: "Per-id fan-out fetches that failed and were skipped, by stage",
}, []string{"stage"})

// DefaultBatchSize bounds concurrent per-id requests within one fan-out batch.
const DefaultBatchSize = 6

// FanOut fetches entities for the given ids in fixed-size concurrent batches,
// awaiting each batch before starting the next so peak concurrency never
// exceeds the batch size. Duplicate ids are fetched once. A failing fetch is
// logged and skipped: its id is simply absent from the result map. FanOut
// never returns an error; enrichment is best-effort per id.
func FanOut[K comparable, V any](ctx context.Context, stage string, ids []K, batchSize int, fetch func(ctx context.Context, id K) (V, error)) map[K]V {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	seen := make(map[K]struct{}, len(ids))
	distinct := make([]K, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		distinct = append(distinct, id)
	}

	results := make(map[K]V, len(distinct))
	var mu sync.Mutex

	for start := 0; start < len(distinct); start += batchSize {
		end := start + batchSize
		if end > len(distinct) {
			end = len(distinct)
		}

		var wg sync.WaitGroup
		for _, id := range distinct[start:end] {
			wg.Add(1)
			go func(id K) {
				defer wg.Done()

				v, err := fetch(ctx, id)
				if err != nil {
					fanoutFailuresTotal.WithLabelValues(stage).Inc()
					log.Warn().
						Err(err).
						Str("stage", stage).
						Any("id", id).
						Msg("Per-id fetch failed - skipping")
					return
				}

				mu.Lock()
				results[id] = v
				mu.Unlock()
			}(id)
		}
		wg.Wait()
	}

	return results
}
