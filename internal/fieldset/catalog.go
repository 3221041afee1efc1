// Package fieldset manages the named field profiles operators select at
// request time. The NERIS profile ships builtin; additional profiles come
// from a YAML file that can reload while the server runs.
package fieldset

// DefaultProfileName is used when a request names no profile.
const DefaultProfileName = "neris"

// NERISFields is the builtin NERIS incident schema, in submission order.
var NERISFields = []string{
	"incident_neris_id",
	"incident_internal_id",
	"incident_final_type",
	"incident_final_type_primary",
	"incident_special_modifier",
	"fire",
	"medical",
	"hazsit",
	"emerging_hazard",
	"tactic_timestamps",
	"incident_point",
	"incident_polygon",
	"incident_location",
	"incident_location_use",
	"incident_people_present",
	"incident_displaced_number",
	"incident_displaced_cause",
	"exposure",
	"rescue_ff",
	"rescue_nonff",
	"incident_rescue_animal",
	"incident_actions_taken",
	"incident_noaction",
	"unit_response",
	"risk_reduction",
	"incident_aid_direction",
	"incident_aid_type",
	"incident_aid_department_name",
	"incident_aid_nonfd",
	"incident_narrative_impediment",
	"incident_narrative_outcome",
	"parcel",
	"weather",
	"fire_suppression_appliance",
	"fire_water_supply",
	"fire_investigation_need",
	"fire_investigation_type",
	"structure_arrival_conditions",
	"structure_progression_conditions",
	"structure_damage",
	"structure_floor_of_origin",
	"structure_room_of_origin",
	"structure_fire_cause",
	"outside_fire_cause",
	"outside_fire_acres_burned",
}
