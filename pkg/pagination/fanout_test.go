package pagination

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFanOut_FetchesAllIDs(t *testing.T) {
	ids := []int64{1, 2, 3, 4, 5, 6, 7}

	results := FanOut(context.Background(), "users", ids, 3, func(ctx context.Context, id int64) (string, error) {
		return fmt.Sprintf("user-%d", id), nil
	})

	if len(results) != len(ids) {
		t.Fatalf("Results = %d entries, want %d", len(results), len(ids))
	}
	for _, id := range ids {
		if results[id] != fmt.Sprintf("user-%d", id) {
			t.Errorf("results[%d] = %q", id, results[id])
		}
	}
}

func TestFanOut_BoundsConcurrency(t *testing.T) {
	ids := make([]int, 20)
	for i := range ids {
		ids[i] = i
	}

	var inFlight, peak int64
	var mu sync.Mutex

	FanOut(context.Background(), "users", ids, 4, func(ctx context.Context, id int) (int, error) {
		cur := atomic.AddInt64(&inFlight, 1)
		mu.Lock()
		if cur > peak {
			peak = cur
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return id, nil
	})

	if peak > 4 {
		t.Errorf("Peak concurrency = %d, want <= 4", peak)
	}
	if peak == 0 {
		t.Error("Fetch function never ran")
	}
}

func TestFanOut_FailuresOmitted(t *testing.T) {
	ids := []string{"a", "b", "c"}

	results := FanOut(context.Background(), "evses", ids, 2, func(ctx context.Context, id string) (string, error) {
		if id == "b" {
			return "", fmt.Errorf("status 404")
		}
		return "evse-" + id, nil
	})

	if len(results) != 2 {
		t.Fatalf("Results = %d entries, want 2", len(results))
	}
	if _, present := results["b"]; present {
		t.Error("Failed id present in results")
	}
	if results["a"] != "evse-a" || results["c"] != "evse-c" {
		t.Errorf("Unexpected results: %v", results)
	}
}

func TestFanOut_DeduplicatesIDs(t *testing.T) {
	var calls int64

	results := FanOut(context.Background(), "users", []int{7, 7, 7, 9}, 8, func(ctx context.Context, id int) (int, error) {
		atomic.AddInt64(&calls, 1)
		return id * 10, nil
	})

	if calls != 2 {
		t.Errorf("Fetch calls = %d, want 2 (duplicates collapsed)", calls)
	}
	if results[7] != 70 || results[9] != 90 {
		t.Errorf("Unexpected results: %v", results)
	}
}

func TestFanOut_EmptyIDs(t *testing.T) {
	calls := 0
	results := FanOut(context.Background(), "users", nil, 6, func(ctx context.Context, id int) (int, error) {
		calls++
		return id, nil
	})
	if calls != 0 || len(results) != 0 {
		t.Errorf("Expected no fetches for empty id set, got %d calls, %d results", calls, len(results))
	}
}
