package report

// Candidate key paths per logical field, evaluated in order by the schema
// extractor. Different tenant deployments of the upstream API serialize the
// same resource under different key names; these lists are the full known set
// and are expected to grow as new upstream shapes appear.
var (
	sessionIDKeys          = []string{"id", "uuid", "sessionId"}
	sessionChargePointKeys = []string{"chargePointId", "charge_point_id", "chargePoint.id"}
	sessionEvseKeys        = []string{"evseId", "evse_id", "evseUid", "evse.id"}

	// Identity fields appear at the top level or nested in the included
	// authorization block. The raw-value snapshot uses the top-level lists
	// only; resolution consults both in order.
	sessionUserIDKeys     = []string{"userId", "user_id"}
	sessionAuthUserIDKeys = []string{"authorization.userId", "authorization.user_id"}
	sessionIdTagKeys      = []string{"idTag", "id_tag"}
	sessionAuthIdTagKeys  = []string{"authorization.idTag", "authorization.tagId", "authorization.id_tag"}

	// Pre-existing holder label carried on the session record itself.
	sessionLabelKeys = []string{"userName", "user_name", "holder"}

	// Energy arrives in watt-hours, either top-level or as a nested
	// cumulative meter total.
	sessionEnergyKeys      = []string{"energy", "energyWh", "energy_wh"}
	sessionEnergyTotalKeys = []string{"energyMeter.totalWh", "totals.energy", "meter.total"}

	chargePointIDKeys       = []string{"id", "uuid"}
	chargePointNameKeys     = []string{"name", "displayName", "label", "identity"}
	chargePointLocationKeys = []string{"locationId", "location_id", "location.id"}
	chargePointEvseListKeys = []string{"evses", "equipment"}

	locationIDKeys      = []string{"id", "uuid"}
	locationNameKeys    = []string{"name", "displayName"}
	locationAddressKeys = []string{"address.line1", "address.street", "addressLine1", "address"}
	locationCityKeys    = []string{"address.city", "city"}
	locationCountryKeys = []string{"address.country", "country"}
	locationLatKeys     = []string{"coordinates.latitude", "latitude", "lat", "geo.lat"}
	locationLonKeys     = []string{"coordinates.longitude", "longitude", "lng", "lon", "geo.lng"}

	userNameKeys  = []string{"name", "displayName"}
	userFirstKeys = []string{"firstName", "first_name", "givenName"}
	userLastKeys  = []string{"lastName", "last_name", "familyName"}
	userEmailKeys = []string{"email", "emailAddress"}

	tagUserIDKeys = []string{"userId", "user_id"}

	evseIDKeys        = []string{"id", "uuid", "evseId"}
	evseTypeKeys      = []string{"type", "powerType", "category"}
	evsePowerKWKeys   = []string{"maxPowerKw", "max_power_kw"}
	evsePowerWattKeys = []string{"maxPower", "max_power", "maxElectricPower", "max_electric_power"}

	connectorListKeys     = []string{"connectors"}
	connectorStandardKeys = []string{"standard", "type"}
)
