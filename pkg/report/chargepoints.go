package report

import (
	"context"
	"net/url"
	"strconv"

	"github.com/chargewatch/session-report/pkg/schema"
)

// resolveChargePoints walks the charge-point listing until every charge
// point referenced by the session set has been found or the listing is
// exhausted. The upstream resource offers no server-side id filter, so the
// walk scans page by page and stops early once nothing is still wanted.
// Embedded EVSE payloads are indexed on the way as the first equipment tier.
func (r *run) resolveChargePoints(ctx context.Context) error {
	wanted := make(map[string]struct{})
	for _, s := range r.sessions {
		if s.ChargePointID != "" {
			wanted[s.ChargePointID] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	q := url.Values{}
	q.Set("per_page", strconv.Itoa(r.perPage))
	q.Set("cursor", "")

	return r.walker.Walk(ctx, StageChargePoints, "/charge-points?"+q.Encode(), func(items []map[string]any) bool {
		for _, raw := range items {
			id := stringify(schema.Extract(raw, chargePointIDKeys...))
			if id == "" {
				continue
			}
			if _, want := wanted[id]; !want {
				continue
			}
			delete(wanted, id)

			cp := &ChargePoint{
				ID:         id,
				LocationID: stringify(schema.Extract(raw, chargePointLocationKeys...)),
			}
			if name, ok := schema.StringValue(raw, chargePointNameKeys...); ok {
				cp.Name = &name
			}
			r.chargePoints[id] = cp
			r.captureEmbeddedEvses(raw)
		}
		return len(wanted) > 0
	})
}

// captureEmbeddedEvses indexes equipment objects embedded in a charge-point
// payload by their own id.
func (r *run) captureEmbeddedEvses(raw map[string]any) {
	list, ok := schema.Extract(raw, chargePointEvseListKeys...).([]any)
	if !ok {
		return
	}
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id := stringify(schema.Extract(obj, evseIDKeys...))
		if id == "" {
			continue
		}
		if _, have := r.embedded[id]; !have {
			r.embedded[id] = obj
		}
	}
}

// resolveLocations walks the location listing for every distinct locationId
// the resolved charge points reference, with the same early-stop strategy.
func (r *run) resolveLocations(ctx context.Context) error {
	wanted := make(map[string]struct{})
	for _, cp := range r.chargePoints {
		if cp.LocationID != "" {
			wanted[cp.LocationID] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return nil
	}

	q := url.Values{}
	q.Set("per_page", strconv.Itoa(r.perPage))
	q.Set("cursor", "")

	return r.walker.Walk(ctx, StageLocations, "/locations?"+q.Encode(), func(items []map[string]any) bool {
		for _, raw := range items {
			id := stringify(schema.Extract(raw, locationIDKeys...))
			if id == "" {
				continue
			}
			if _, want := wanted[id]; !want {
				continue
			}
			delete(wanted, id)
			r.locations[id] = parseLocation(id, raw)
		}
		return len(wanted) > 0
	})
}

func parseLocation(id string, raw map[string]any) *Location {
	loc := &Location{ID: id}
	if v, ok := schema.StringValue(raw, locationNameKeys...); ok {
		loc.Name = &v
	}
	if v, ok := schema.StringValue(raw, locationAddressKeys...); ok {
		loc.Address = &v
	}
	if v, ok := schema.StringValue(raw, locationCityKeys...); ok {
		loc.City = &v
	}
	if v, ok := schema.StringValue(raw, locationCountryKeys...); ok {
		loc.Country = &v
	}
	if v, ok := schema.NumberValue(raw, locationLatKeys...); ok {
		loc.Latitude = &v
	}
	if v, ok := schema.NumberValue(raw, locationLonKeys...); ok {
		loc.Longitude = &v
	}
	return loc
}
