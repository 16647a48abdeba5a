package report

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/chargewatch/session-report/pkg/pagination"
	"github.com/chargewatch/session-report/pkg/schema"
)

// resolveEquipment resolves EVSE attributes through a three-tier fallback,
// each tier consulted only for ids the earlier tiers missed:
//  1. equipment embedded in the charge-point payloads already fetched,
//  2. each referencing charge point's own EVSE sub-listing,
//  3. the global EVSE listing.
//
// Every tier is best-effort; ids no tier can resolve stay unresolved.
func (r *run) resolveEquipment(ctx context.Context) {
	needed := make(map[string]struct{})
	evseChargePoint := make(map[string]string)
	for _, s := range r.sessions {
		if s.EvseID == "" {
			continue
		}
		needed[s.EvseID] = struct{}{}
		if s.ChargePointID != "" {
			evseChargePoint[s.EvseID] = s.ChargePointID
		}
	}

	for id := range needed {
		if raw, ok := r.embedded[id]; ok {
			r.equipment[id] = parseEquipment(id, raw)
			delete(needed, id)
		}
	}
	if len(needed) == 0 {
		return
	}

	var cpIDs []string
	for id := range needed {
		if cpID := evseChargePoint[id]; cpID != "" {
			cpIDs = append(cpIDs, cpID)
		}
	}
	// The needed set is only read during the fan-out; results are merged
	// back sequentially afterwards.
	found := pagination.FanOut(ctx, StageChargePointEvses, cpIDs, r.batch, func(ctx context.Context, cpID string) (map[string]map[string]any, error) {
		return r.walkChargePointEvses(ctx, cpID, needed)
	})
	for _, byID := range found {
		for id, raw := range byID {
			if _, done := r.equipment[id]; done {
				continue
			}
			r.equipment[id] = parseEquipment(id, raw)
			delete(needed, id)
		}
	}
	if len(needed) == 0 {
		return
	}

	// Global fallback. Some deployments do not expose this resource at all;
	// a failure here leaves the remaining ids unresolved.
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(r.perPage))
	q.Set("cursor", "")
	err := r.walker.Walk(ctx, StageEvses, "/evses?"+q.Encode(), func(items []map[string]any) bool {
		for _, raw := range items {
			id := stringify(schema.Extract(raw, evseIDKeys...))
			if id == "" {
				continue
			}
			if _, want := needed[id]; !want {
				continue
			}
			r.equipment[id] = parseEquipment(id, raw)
			delete(needed, id)
		}
		return len(needed) > 0
	})
	if err != nil {
		r.logger.Warn().
			Err(err).
			Int("unresolved", len(needed)).
			Msg("Global EVSE listing unavailable - leaving ids unresolved")
	}
}

// walkChargePointEvses walks one charge point's EVSE sub-listing, collecting
// raw payloads for still-needed ids until all are found or the sub-listing
// is exhausted.
func (r *run) walkChargePointEvses(ctx context.Context, cpID string, needed map[string]struct{}) (map[string]map[string]any, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(r.perPage))
	q.Set("cursor", "")
	path := fmt.Sprintf("/charge-points/%s/evses?%s", url.PathEscape(cpID), q.Encode())

	collected := make(map[string]map[string]any)
	err := r.walker.Walk(ctx, StageChargePointEvses, path, func(items []map[string]any) bool {
		for _, raw := range items {
			id := stringify(schema.Extract(raw, evseIDKeys...))
			if id == "" {
				continue
			}
			if _, want := needed[id]; !want {
				continue
			}
			collected[id] = raw
		}
		return len(collected) < len(needed)
	})
	if err != nil {
		return nil, err
	}
	return collected, nil
}

// parseEquipment extracts the report attributes from a raw EVSE payload:
// classification, the de-duplicated set of connector standards, and maximum
// power in kilowatts (converted from a watt field when no kilowatt field is
// present).
func parseEquipment(id string, raw map[string]any) *Equipment {
	eq := &Equipment{ID: id}

	if t, ok := schema.StringValue(raw, evseTypeKeys...); ok && t != "" {
		eq.Type = &t
	}

	if list, ok := schema.Extract(raw, connectorListKeys...).([]any); ok {
		seen := make(map[string]struct{})
		for _, item := range list {
			conn, ok := item.(map[string]any)
			if !ok {
				continue
			}
			std, ok := schema.StringValue(conn, connectorStandardKeys...)
			if !ok || std == "" {
				continue
			}
			if _, dup := seen[std]; dup {
				continue
			}
			seen[std] = struct{}{}
			eq.Connectors = append(eq.Connectors, std)
		}
	}

	if kw, ok := schema.NumberValue(raw, evsePowerKWKeys...); ok {
		eq.MaxPowerKW = &kw
	} else if w, ok := schema.NumberValue(raw, evsePowerWattKeys...); ok {
		kw := w / 1000
		eq.MaxPowerKW = &kw
	}

	return eq
}
