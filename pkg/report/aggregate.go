package report

import "strings"

// aggregate merges every resolved attribute onto a shallow copy of each
// session's fields. The merge is additive: an attribute is written only when
// its key is not already present on the session, so upstream data is never
// overwritten. The one sanctioned exception is the normalized userId/idTag
// pair set by the collector. Output order is session discovery order.
func (r *run) aggregate() *Report {
	data := make([]map[string]any, 0, len(r.sessions))

	for _, s := range r.sessions {
		out := make(map[string]any, len(s.Fields)+12)
		for k, v := range s.Fields {
			out[k] = v
		}

		out["userId"] = s.UserID
		if s.IdTag != "" {
			out["idTag"] = s.IdTag
		}
		putIfAbsent(out, "kwh", s.KWh)

		if cp := r.chargePoints[s.ChargePointID]; cp != nil {
			putStr(out, "chargePointName", cp.Name)
			if cp.LocationID != "" {
				putIfAbsent(out, "locationId", cp.LocationID)
			}
			if loc := r.locations[cp.LocationID]; loc != nil {
				putStr(out, "locationName", loc.Name)
				putStr(out, "addressLine1", loc.Address)
				putStr(out, "city", loc.City)
				putStr(out, "country", loc.Country)
				putF64(out, "latitude", loc.Latitude)
				putF64(out, "longitude", loc.Longitude)
			}
		}

		user := r.holderFor(s)
		if name := holderName(s, user); name != "" {
			putIfAbsent(out, "holderName", name)
		}
		if user != nil {
			putStr(out, "holderEmail", user.Email)
		}

		if eq := r.equipment[s.EvseID]; eq != nil {
			putStr(out, "evseType", eq.Type)
			if len(eq.Connectors) > 0 {
				putIfAbsent(out, "connectorStandards", eq.Connectors)
			}
			putF64(out, "maxPowerKw", eq.MaxPowerKW)
		}

		data = append(data, out)
	}

	return &Report{Count: len(data), Data: data}
}

// holderName picks the session holder's display name: a non-blank label
// already on the session always wins, then the user's derived name, then
// the user's email.
func holderName(s *Session, user *User) string {
	if strings.TrimSpace(s.Label) != "" {
		return s.Label
	}
	if user != nil {
		if user.Name != nil && *user.Name != "" {
			return *user.Name
		}
		if user.Email != nil {
			return *user.Email
		}
	}
	return ""
}

func putIfAbsent(out map[string]any, key string, v any) {
	if _, exists := out[key]; exists {
		return
	}
	out[key] = v
}

func putStr(out map[string]any, key string, v *string) {
	if v == nil {
		return
	}
	putIfAbsent(out, key, *v)
}

func putF64(out map[string]any, key string, v *float64) {
	if v == nil {
		return
	}
	putIfAbsent(out, key, *v)
}
