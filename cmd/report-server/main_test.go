package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/chargewatch/session-report/internal/config"
	"github.com/chargewatch/session-report/internal/testutil"
	"github.com/chargewatch/session-report/pkg/client"
	"github.com/chargewatch/session-report/pkg/report"
)

func newTestHandler(t *testing.T, mock *testutil.MockAPI) http.HandlerFunc {
	t.Helper()

	api, err := client.New(client.Config{BaseURL: mock.URL(), Token: "test-token"})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	cfg := &config.Config{}
	return reportHandler(report.New(api), cfg, zerolog.Nop())
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if string(body) != "OK" {
		t.Errorf("Expected body 'OK', got %s", string(body))
	}
}

func TestReportHandler_MethodNotAllowed(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	handler := newTestHandler(t, mock)

	req := httptest.NewRequest("GET", "/reports/charging-sessions", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Status = %d, want 405", w.Code)
	}
	if mock.TotalRequests() != 0 {
		t.Errorf("Upstream requests = %d, want 0", mock.TotalRequests())
	}
}

func TestReportHandler_InvalidBody(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	handler := newTestHandler(t, mock)

	req := httptest.NewRequest("POST", "/reports/charging-sessions", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", w.Code)
	}
	if mock.TotalRequests() != 0 {
		t.Errorf("Upstream requests = %d, want 0 (reject before any upstream call)", mock.TotalRequests())
	}
}

func TestReportHandler_UpstreamFailureMapsTo502(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetStatus("/charging-sessions", http.StatusServiceUnavailable, `{"error": "maintenance"}`)
	handler := newTestHandler(t, mock)

	req := httptest.NewRequest("POST", "/reports/charging-sessions", strings.NewReader("{}"))
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("Status = %d, want 502", w.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Failed to decode error payload: %v", err)
	}
	if payload["stage"] != report.StageSessions {
		t.Errorf("stage = %v, want %q", payload["stage"], report.StageSessions)
	}
	if payload["status"] != float64(http.StatusServiceUnavailable) {
		t.Errorf("status = %v, want 503", payload["status"])
	}
	if payload["url"] == "" || payload["url"] == nil {
		t.Error("url missing from error payload")
	}
	if payload["body"] != `{"error": "maintenance"}` {
		t.Errorf("body = %v", payload["body"])
	}
}

func TestReportHandler_Success(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetListing("/charging-sessions", []map[string]any{
		{"id": "s1", "energy": 2500},
	})
	handler := newTestHandler(t, mock)

	// An empty body is a valid request: no filters, defaults everywhere.
	req := httptest.NewRequest("POST", "/reports/charging-sessions", strings.NewReader(""))
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var payload struct {
		Count int              `json:"count"`
		Data  []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if payload.Count != 1 {
		t.Errorf("count = %d, want 1", payload.Count)
	}
	if payload.Data[0]["kwh"] != 2.5 {
		t.Errorf("kwh = %v, want 2.5", payload.Data[0]["kwh"])
	}
}
