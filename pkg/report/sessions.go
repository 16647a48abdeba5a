package report

import (
	"context"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/chargewatch/session-report/pkg/schema"
)

// collectSessions walks the sessions listing and builds the deduplicated,
// identity-normalized session universe every later resolver operates on.
func (r *run) collectSessions(ctx context.Context, req Request) error {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(r.perPage))
	q.Set("cursor", "")
	q.Set("include", "authorization")
	if req.StartedAfter != "" {
		q.Set("filter[started_after]", req.StartedAfter)
	}
	if req.StartedBefore != "" {
		q.Set("filter[started_before]", req.StartedBefore)
	}
	if req.EndedAfter != "" {
		q.Set("filter[ended_after]", req.EndedAfter)
	}
	if req.EndedBefore != "" {
		q.Set("filter[ended_before]", req.EndedBefore)
	}
	if req.TariffSnapshotID != "" {
		q.Set("filter[tariff_snapshot_id]", req.TariffSnapshotID)
	}

	return r.walker.Walk(ctx, StageSessions, "/charging-sessions?"+q.Encode(), func(items []map[string]any) bool {
		for _, raw := range items {
			r.addSession(raw)
		}
		return true
	})
}

// addSession normalizes one raw session record and admits it unless its
// identifier was already seen. Records without any stable identifier get a
// generated key: with no correlation key they can never be deduplicated
// against each other.
func (r *run) addSession(raw map[string]any) {
	key := stringify(schema.Extract(raw, sessionIDKeys...))
	if key == "" {
		key = uuid.NewString()
	} else if _, dup := r.seen[key]; dup {
		return
	}
	r.seen[key] = struct{}{}

	s := &Session{
		Key:           key,
		ChargePointID: stringify(schema.Extract(raw, sessionChargePointKeys...)),
		EvseID:        stringify(schema.Extract(raw, sessionEvseKeys...)),
		KWh:           kilowattHours(raw),
	}

	// Holder id: a finite positive integer at the top level wins, then the
	// included authorization block, then the zero sentinel.
	if uid, ok := schema.PositiveInt(schema.Extract(raw, sessionUserIDKeys...)); ok {
		s.UserID = uid
	} else if uid, ok := schema.PositiveInt(schema.Extract(raw, sessionAuthUserIDKeys...)); ok {
		s.UserID = uid
	}

	if tag, ok := schema.StringValue(raw, sessionIdTagKeys...); ok && tag != "" {
		s.IdTag = tag
	} else if tag, ok := schema.StringValue(raw, sessionAuthIdTagKeys...); ok && tag != "" {
		s.IdTag = tag
	}

	if label, ok := schema.StringValue(raw, sessionLabelKeys...); ok {
		s.Label = label
	}

	fields := make(map[string]any, len(raw)+2)
	for k, v := range raw {
		fields[k] = v
	}
	// Keep the unresolved top-level values so normalization loses nothing.
	fields["rawUserId"] = schema.Extract(raw, sessionUserIDKeys...)
	fields["rawIdTag"] = schema.Extract(raw, sessionIdTagKeys...)
	s.Fields = fields

	r.sessions = append(r.sessions, s)
}

// kilowattHours converts the session's watt-hour energy reading to kWh
// rounded to 3 decimal places: top-level energy first, then the nested
// cumulative meter total, else zero.
func kilowattHours(raw map[string]any) float64 {
	if wh, ok := schema.NumberValue(raw, sessionEnergyKeys...); ok {
		return round3(wh / 1000)
	}
	if wh, ok := schema.NumberValue(raw, sessionEnergyTotalKeys...); ok {
		return round3(wh / 1000)
	}
	return 0
}
