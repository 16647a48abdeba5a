// Command report-server exposes the charging-session report pipeline over a
// small HTTP surface.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/chargewatch/session-report/internal/config"
	"github.com/chargewatch/session-report/pkg/client"
	"github.com/chargewatch/session-report/pkg/logging"
	"github.com/chargewatch/session-report/pkg/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup(logging.DefaultConfig())
		fallback := logging.NewLogger("report-server")
		fallback.Fatal().Err(err).Msg("Configuration error")
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.Log.Level),
		Pretty: cfg.Log.Pretty,
	}).With().Str("component", "report-server").Logger()

	api, err := client.New(client.Config{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create upstream client")
	}

	pipeline := report.New(api)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/reports/charging-sessions", reportHandler(pipeline, cfg, logger))

	addr := ":" + cfg.Server.Port
	logger.Info().
		Str("addr", addr).
		Str("upstream", cfg.API.BaseURL).
		Msg("Starting report server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// reportHandler parses the report request, runs the pipeline, and maps
// pipeline errors to response statuses: malformed bodies never reach the
// upstream, listing failures surface the failing stage as a 502 payload.
func reportHandler(pipeline *report.Pipeline, cfg *config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
			return
		}

		var req report.Request
		if len(strings.TrimSpace(string(body))) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request body"})
				return
			}
		}
		if req.PerPage == 0 {
			req.PerPage = cfg.Report.PerPage
		}
		if req.MaxPages == 0 {
			req.MaxPages = cfg.Report.MaxPages
		}

		result, err := pipeline.Run(r.Context(), req)
		if err != nil {
			if ue, ok := client.AsUpstream(err); ok {
				writeJSON(w, http.StatusBadGateway, map[string]any{
					"stage":  ue.Stage,
					"status": ue.StatusCode,
					"url":    ue.URL,
					"body":   ue.Body,
				})
				return
			}
			logger.Error().Err(err).Msg("Report run failed")
			writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "report failed"})
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
