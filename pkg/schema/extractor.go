// Package schema extracts canonical fields from raw upstream payloads that
// vary in shape across deployments.
//
// Upstream resources of the same logical type do not share one authoritative
// schema: a location's latitude may arrive as "latitude", "lat" or nested
// under a "coordinates" object depending on the tenant. Every resolver
// therefore reads fields through an ordered list of candidate key paths; the
// first path yielding a non-nil value wins. The candidate lists are the
// explicit, testable contract for that tolerance.
package schema

import (
	"math"
	"strconv"
	"strings"
)

// Extract returns the value at the first candidate path that resolves to a
// non-nil value, or nil if none do. Paths are dot-separated key sequences
// ("coordinates.latitude"); a missing intermediate object short-circuits to
// nil rather than panicking. A nil object yields nil.
func Extract(obj map[string]any, paths ...string) any {
	if obj == nil {
		return nil
	}
	for _, path := range paths {
		if v := lookup(obj, path); v != nil {
			return v
		}
	}
	return nil
}

func lookup(obj map[string]any, path string) any {
	cur := any(obj)
	for _, seg := range strings.Split(path, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur = m[seg]
		if cur == nil {
			return nil
		}
	}
	return cur
}

// StringValue extracts the first candidate path holding a string value.
func StringValue(obj map[string]any, paths ...string) (string, bool) {
	for _, path := range paths {
		if s, ok := lookup(obj, path).(string); ok {
			return s, true
		}
	}
	return "", false
}

// NumberValue extracts the first candidate path holding a numeric value.
// JSON decoding yields float64; numeric strings are accepted as well since
// some upstream deployments serialize numbers as strings.
func NumberValue(obj map[string]any, paths ...string) (float64, bool) {
	for _, path := range paths {
		if f, ok := AsNumber(lookup(obj, path)); ok {
			return f, true
		}
	}
	return 0, false
}

// AsNumber coerces a raw value into a finite float64.
func AsNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// PositiveInt coerces a raw value into a positive integer identifier.
// Fractional or non-positive numbers do not qualify.
func PositiveInt(v any) (int64, bool) {
	f, ok := AsNumber(v)
	if !ok || f <= 0 || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}
