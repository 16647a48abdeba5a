// Package testutil provides a configurable mock of the upstream
// charging-platform API for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
)

// MockAPI is a configurable mock upstream server. Listing paths serve
// cursor-paginated envelopes; entity paths serve single objects. Requests
// are counted per path so tests can assert which resources were consulted.
type MockAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	requests map[string]int

	LastAuthHeader string
}

// NewMockAPI creates a mock upstream server. Unconfigured paths return 404.
func NewMockAPI() *MockAPI {
	mock := &MockAPI{
		handlers: make(map[string]http.HandlerFunc),
		requests: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests[r.URL.Path]++
		mock.LastAuthHeader = r.Header.Get("Authorization")
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "not found"}`))
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockAPI) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockAPI) Close() {
	m.server.Close()
}

// SetHandler sets a custom handler for a specific path.
func (m *MockAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetListingPages configures a path to serve the given pages as a
// cursor-paginated listing: the empty cursor selects the first page and each
// page links to the next via links.next.
func (m *MockAPI) SetListingPages(path string, pages ...[]map[string]any) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		idx := 0
		if cursor := r.URL.Query().Get("cursor"); cursor != "" {
			n, err := strconv.Atoi(cursor)
			if err != nil || n < 0 || n >= len(pages) {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error": "bad cursor"}`))
				return
			}
			idx = n
		}

		envelope := map[string]any{
			"data":  pages[idx],
			"links": map[string]any{"next": nil},
		}
		if idx+1 < len(pages) {
			envelope["links"] = map[string]any{
				"next": fmt.Sprintf("%s%s?cursor=%d", m.server.URL, path, idx+1),
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(envelope)
	})
}

// SetListing configures a path to serve all items on a single page.
func (m *MockAPI) SetListing(path string, items []map[string]any) {
	m.SetListingPages(path, items)
}

// SetEntity configures a per-id endpoint. When wrapped is true the entity is
// served as {"data": {...}}, matching deployments that envelope entity
// lookups.
func (m *MockAPI) SetEntity(path string, entity map[string]any, wrapped bool) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		var payload any = entity
		if wrapped {
			payload = map[string]any{"data": entity}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	})
}

// SetStatus configures a path to respond with a fixed status and body.
func (m *MockAPI) SetStatus(path string, statusCode int, body string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		w.Write([]byte(body))
	})
}

// RequestCount returns the number of requests made to a path.
func (m *MockAPI) RequestCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[path]
}

// TotalRequests returns the number of requests made to all paths.
func (m *MockAPI) TotalRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.requests {
		total += n
	}
	return total
}
