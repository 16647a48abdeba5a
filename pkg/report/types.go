// Package report implements the charging-session report pipeline: it walks
// the upstream sessions listing and enriches every session with charge-point,
// location, holder-identity, and equipment attributes joined from independent
// upstream resources.
package report

import (
	"math"
	"strconv"
)

// Request carries the caller's report parameters. Timestamps are passed to
// the upstream filter parameters verbatim.
type Request struct {
	StartedAfter     string `json:"startedAfter,omitempty"`
	StartedBefore    string `json:"startedBefore,omitempty"`
	EndedAfter       string `json:"endedAfter,omitempty"`
	EndedBefore      string `json:"endedBefore,omitempty"`
	TariffSnapshotID string `json:"tariffSnapshotId,omitempty"`

	// PerPage is the upstream listing page size, capped at the upstream
	// maximum of 100. Zero selects the maximum.
	PerPage int `json:"perPage,omitempty"`

	// MaxPages is the page-count safety cap per listing walk.
	MaxPages int `json:"maxPages,omitempty"`
}

// Report is the final enriched collection.
type Report struct {
	Count int              `json:"count"`
	Data  []map[string]any `json:"data"`
}

// Session is one deduplicated upstream charging-session record with its
// identity and energy fields normalized. Fields holds the original record
// plus the raw-value snapshots; everything else is merged in by the
// aggregator at the end of a run.
type Session struct {
	Key           string
	ChargePointID string
	EvseID        string
	UserID        int64 // 0 means no known holder
	IdTag         string
	Label         string
	KWh           float64
	Fields        map[string]any
}

// ChargePoint is the subset of a charge-point record the report needs.
type ChargePoint struct {
	ID         string
	Name       *string
	LocationID string
}

// Location carries the postal and geographic attributes of a location.
// Every field is independently optional upstream.
type Location struct {
	ID        string
	Name      *string
	Address   *string
	City      *string
	Country   *string
	Latitude  *float64
	Longitude *float64
}

// User is a resolved session holder. Name is the derived display name:
// the explicit name field, else "first last" joined with a space.
type User struct {
	ID    int64
	Name  *string
	Email *string
}

// Equipment describes one EVSE: classification, connector standards, and
// maximum power in kilowatts.
type Equipment struct {
	ID         string
	Type       *string
	Connectors []string
	MaxPowerKW *float64
}

// round3 rounds to 3 decimal places, the precision of the kWh conversion.
func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

// stringify renders a raw identifier value as a comparable string. Numeric
// identifiers are formatted without an exponent so "42" and 42 compare equal.
func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(s, 10)
	case int:
		return strconv.Itoa(s)
	default:
		return ""
	}
}
