// Package metrics provides the centralized Prometheus metrics reference for
// the report pipeline. All metrics are defined in their respective packages
// (client, pagination, report) via promauto to maintain modularity and avoid
// circular dependencies.
//
// This package provides documentation and the registry reference.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry is the default Prometheus registry used by the pipeline.
// All metrics are automatically registered via promauto in their respective
// packages.
var Registry = prometheus.DefaultRegisterer

// Metrics Documentation
//
// Upstream Request Metrics (pkg/client):
//   - report_upstream_requests_total{stage, status} (Counter): Requests by
//     pipeline stage and HTTP status ("network_error" for transport failures)
//   - report_upstream_request_duration_seconds{stage} (Histogram): Request
//     duration by stage
//
// Pagination Metrics (pkg/pagination):
//   - report_pages_walked_total{stage} (Counter): Listing pages fetched
//   - report_page_cap_reached_total{stage} (Counter): Walks stopped by the
//     page-count safety cap
//   - report_fanout_failures_total{stage} (Counter): Per-id fetches that
//     failed and were skipped
//
// Pipeline Metrics (pkg/report):
//   - report_pipeline_runs_total{outcome} (Counter): Runs by outcome
//     (success, error)
//   - report_pipeline_duration_seconds (Histogram): Run duration
//   - report_sessions_collected (Histogram): Deduplicated sessions per run
//
// Example Prometheus Queries:
//
//   # Upstream error rate by stage
//   sum by (stage) (rate(report_upstream_requests_total{status=~"5.."}[5m]))
//
//   # Share of runs failing
//   rate(report_pipeline_runs_total{outcome="error"}[15m]) /
//   rate(report_pipeline_runs_total[15m])
//
//   # P95 upstream latency
//   histogram_quantile(0.95, rate(report_upstream_request_duration_seconds_bucket[5m]))
//
//   # Enrichment degradation (skipped per-id lookups)
//   rate(report_fanout_failures_total[5m])
