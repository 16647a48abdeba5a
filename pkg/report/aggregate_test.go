package report

import "testing"

func strPtr(s string) *string { return &s }

func TestHolderName_Priority(t *testing.T) {
	tests := []struct {
		name    string
		session *Session
		user    *User
		want    string
	}{
		{
			name:    "existing label wins over fetched user",
			session: &Session{Label: "Fleet 7"},
			user:    &User{Name: strPtr("Ann Lee"), Email: strPtr("ann@example.com")},
			want:    "Fleet 7",
		},
		{
			name:    "blank label ignored",
			session: &Session{Label: "   "},
			user:    &User{Name: strPtr("Ann Lee")},
			want:    "Ann Lee",
		},
		{
			name:    "email fallback",
			session: &Session{},
			user:    &User{Email: strPtr("ann@example.com")},
			want:    "ann@example.com",
		},
		{
			name:    "no user no label",
			session: &Session{},
			user:    nil,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := holderName(tt.session, tt.user); got != tt.want {
				t.Errorf("holderName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAggregate_AdditiveMerge(t *testing.T) {
	r := newTestRun()
	r.sessions = []*Session{
		{
			Key:           "s1",
			ChargePointID: "cp1",
			UserID:        7,
			KWh:           1.5,
			Fields: map[string]any{
				"id":              "s1",
				"chargePointName": "Original Name",
				"userId":          "7-ish",
			},
		},
	}
	r.chargePoints["cp1"] = &ChargePoint{ID: "cp1", Name: strPtr("Resolved Name"), LocationID: "L1"}
	r.locations["L1"] = &Location{ID: "L1", Name: strPtr("Somewhere")}

	result := r.aggregate()
	out := result.Data[0]

	if out["chargePointName"] != "Original Name" {
		t.Errorf("chargePointName = %v, want original field preserved", out["chargePointName"])
	}
	if out["locationName"] != "Somewhere" {
		t.Errorf("locationName = %v, want resolved value added", out["locationName"])
	}
	// The normalized identity pair is the sanctioned overwrite.
	if out["userId"] != int64(7) {
		t.Errorf("userId = %v, want normalized 7", out["userId"])
	}
	if out["kwh"] != 1.5 {
		t.Errorf("kwh = %v, want 1.5", out["kwh"])
	}
}

func TestAggregate_NoFabricatedAttributes(t *testing.T) {
	r := newTestRun()
	r.sessions = []*Session{
		{Key: "s1", Fields: map[string]any{"id": "s1"}},
	}

	out := r.aggregate().Data[0]

	for _, key := range []string{
		"chargePointName", "locationId", "locationName", "addressLine1",
		"city", "country", "latitude", "longitude",
		"holderName", "holderEmail",
		"evseType", "connectorStandards", "maxPowerKw",
	} {
		if v, present := out[key]; present {
			t.Errorf("%s = %v, want absent for unresolvable session", key, v)
		}
	}
}
