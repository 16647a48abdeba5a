package report

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/chargewatch/session-report/pkg/pagination"
)

// Prometheus metrics for pipeline runs.
var (
	pipelineRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "report_pipeline_runs_total",
		Help: "Total report pipeline runs by outcome",
	}, []string{"outcome"})

	pipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "report_pipeline_duration_seconds",
		Help:    "Report pipeline run duration in seconds",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
	})

	sessionsCollected = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "report_sessions_collected",
		Help:    "Deduplicated sessions collected per pipeline run",
		Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000},
	})
)

// Pipeline stage names, surfaced on listing failures so callers can tell
// which join was compromised.
const (
	StageSessions         = "sessions"
	StageChargePoints     = "charge-points"
	StageLocations        = "locations"
	StageUsers            = "users"
	StageIdTags           = "id-tags"
	StageEvses            = "evses"
	StageChargePointEvses = "charge-point-evses"
)

// Pipeline produces denormalized per-session reports from the upstream API.
// A Pipeline is stateless and safe for concurrent Run calls: all per-run
// caches live on the run object created per invocation.
type Pipeline struct {
	api       pagination.Fetcher
	batchSize int
	logger    zerolog.Logger
}

// New creates a pipeline over the given upstream API client.
func New(api pagination.Fetcher) *Pipeline {
	return &Pipeline{
		api:       api,
		batchSize: pagination.DefaultBatchSize,
		logger:    log.With().Str("component", "report-pipeline").Logger(),
	}
}

// run holds all state for one pipeline invocation: the session universe,
// the per-id caches each resolver fills, and the embedded-equipment index
// captured as a byproduct of the charge-point walk. Nothing here survives
// the invocation.
type run struct {
	api     pagination.Fetcher
	walker  *pagination.Walker
	perPage int
	batch   int
	logger  zerolog.Logger

	sessions []*Session
	seen     map[string]struct{}

	chargePoints map[string]*ChargePoint
	locations    map[string]*Location
	users        map[int64]*User
	tagUsers     map[string]int64
	equipment    map[string]*Equipment
	embedded     map[string]map[string]any
}

// Run executes the full pipeline for one request. Listing failures in the
// session collector or the charge-point/location walks abort the run with an
// *client.UpstreamError; per-id enrichment failures degrade to absent
// attributes and never fail the run.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Report, error) {
	start := time.Now()
	defer func() {
		pipelineDuration.Observe(time.Since(start).Seconds())
	}()

	r := &run{
		api:          p.api,
		walker:       pagination.NewWalker(p.api, req.MaxPages),
		perPage:      pagination.ClampPerPage(req.PerPage),
		batch:        p.batchSize,
		logger:       p.logger,
		seen:         make(map[string]struct{}),
		chargePoints: make(map[string]*ChargePoint),
		locations:    make(map[string]*Location),
		users:        make(map[int64]*User),
		tagUsers:     make(map[string]int64),
		equipment:    make(map[string]*Equipment),
		embedded:     make(map[string]map[string]any),
	}

	if err := r.collectSessions(ctx, req); err != nil {
		pipelineRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	sessionsCollected.Observe(float64(len(r.sessions)))

	if len(r.sessions) == 0 {
		p.logger.Info().Msg("No sessions in window - skipping enrichment")
		pipelineRunsTotal.WithLabelValues("success").Inc()
		return &Report{Count: 0, Data: []map[string]any{}}, nil
	}

	if err := r.resolveChargePoints(ctx); err != nil {
		pipelineRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if err := r.resolveLocations(ctx); err != nil {
		pipelineRunsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	r.resolveIdentity(ctx)
	r.resolveEquipment(ctx)

	result := r.aggregate()

	p.logger.Info().
		Int("sessions", result.Count).
		Int("charge_points", len(r.chargePoints)).
		Int("locations", len(r.locations)).
		Int("users", len(r.users)).
		Int("evses", len(r.equipment)).
		Dur("duration", time.Since(start)).
		Msg("Report complete")
	pipelineRunsTotal.WithLabelValues("success").Inc()

	return result, nil
}
