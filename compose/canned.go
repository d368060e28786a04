package compose

import "strings"

// Canned example plans used when no model is configured or the model call
// fails. Selected by keyword match on the goal text; each carries a fenced
// json block so it flows through the same parsing path as a live answer.

const cannedFirePlan = `Fire safety composition (example):

Smoke detection watches the kitchen sensor and raises an alert the moment
concentration climbs. Temperature monitoring corroborates the alert, alarm
notification fans it out, and emergency response takes over.

` + "```json" + `
{
  "services": [
    {"service_id": "smoke_detection", "role": "detector", "priority": 5, "inputs": ["smoke_level"], "outputs": ["smoke_alert"], "dependencies": []},
    {"service_id": "temperature_monitoring", "role": "corroborator", "priority": 4, "inputs": ["temperature"], "outputs": ["temperature_reading", "temperature_alert"], "dependencies": []},
    {"service_id": "alarm_notification", "role": "notifier", "priority": 5, "inputs": ["smoke_alert", "temperature_alert"], "outputs": ["notification"], "dependencies": ["smoke_detection", "temperature_monitoring"]},
    {"service_id": "emergency_response", "role": "responder", "priority": 5, "inputs": ["notification"], "outputs": ["emergency_action"], "dependencies": ["alarm_notification"]}
  ]
}
` + "```"

const cannedComfortPlan = `Comfort composition (example):

Temperature and humidity monitoring feed the HVAC controller, which keeps
the living space inside the comfort band.

` + "```json" + `
{
  "services": [
    {"service_id": "temperature_monitoring", "role": "sensor", "priority": 3, "inputs": ["temperature"], "outputs": ["temperature_reading", "temperature_alert"], "dependencies": []},
    {"service_id": "humidity_monitoring", "role": "sensor", "priority": 3, "inputs": ["humidity"], "outputs": ["humidity_reading"], "dependencies": []},
    {"service_id": "hvac_control", "role": "actuator", "priority": 4, "inputs": ["temperature_reading", "humidity_reading"], "outputs": ["hvac_command"], "dependencies": ["temperature_monitoring", "humidity_monitoring"]}
  ]
}
` + "```"

const cannedEnergyPlan = `Energy saving composition (example):

Occupancy detection drives both lighting and the energy manager so unused
rooms stop drawing power.

` + "```json" + `
{
  "services": [
    {"service_id": "occupancy_detection", "role": "sensor", "priority": 3, "inputs": ["motion"], "outputs": ["occupancy"], "dependencies": []},
    {"service_id": "lighting_control", "role": "actuator", "priority": 2, "inputs": ["light_level", "occupancy"], "outputs": ["lighting_command"], "dependencies": ["occupancy_detection"]},
    {"service_id": "hvac_control", "role": "actuator", "priority": 2, "inputs": ["temperature_reading", "humidity_reading"], "outputs": ["hvac_command"], "dependencies": []},
    {"service_id": "energy_management", "role": "coordinator", "priority": 3, "inputs": ["occupancy", "hvac_command"], "outputs": ["energy_report"], "dependencies": ["occupancy_detection", "hvac_control"]}
  ]
}
` + "```"

const cannedDefaultPlan = `General monitoring composition (example):

Baseline home monitoring: track temperature and occupancy and keep lights
matched to activity.

` + "```json" + `
{
  "services": [
    {"service_id": "temperature_monitoring", "role": "sensor", "priority": 3, "inputs": ["temperature"], "outputs": ["temperature_reading", "temperature_alert"], "dependencies": []},
    {"service_id": "occupancy_detection", "role": "sensor", "priority": 2, "inputs": ["motion"], "outputs": ["occupancy"], "dependencies": []},
    {"service_id": "lighting_control", "role": "actuator", "priority": 2, "inputs": ["light_level", "occupancy"], "outputs": ["lighting_command"], "dependencies": ["occupancy_detection"]}
  ]
}
` + "```"

// cannedResponse picks the example plan matching the goal's keywords.
func cannedResponse(goal string) string {
	lower := strings.ToLower(goal)
	switch {
	case strings.Contains(lower, "fire") || strings.Contains(goal, "火灾"):
		return cannedFirePlan
	case strings.Contains(lower, "comfort") || strings.Contains(goal, "舒适"):
		return cannedComfortPlan
	case strings.Contains(lower, "energy") || strings.Contains(goal, "节能"):
		return cannedEnergyPlan
	default:
		return cannedDefaultPlan
	}
}
