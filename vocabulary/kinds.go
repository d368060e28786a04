package vocabulary

import (
	"strings"
)

// PropertyKind classifies the observed property of a sensor. Classification
// is by case-insensitive substring match against the sensor or property
// identifier, the convention the sensor catalog's identifiers follow
// (e.g. "home:temperatureSensor_001").
type PropertyKind string

// Known property kinds.
const (
	KindTemperature PropertyKind = "temperature"
	KindHumidity    PropertyKind = "humidity"
	KindSmoke       PropertyKind = "smoke"
	KindMotion      PropertyKind = "motion"
	KindLight       PropertyKind = "light"
	KindUnknown     PropertyKind = "unknown"
)

// KindOf classifies an identifier (sensor id, property id, or property IRI)
// into a PropertyKind.
func KindOf(identifier string) PropertyKind {
	id := strings.ToLower(identifier)
	for _, kind := range []PropertyKind{KindTemperature, KindHumidity, KindSmoke, KindMotion, KindLight} {
		if strings.Contains(id, string(kind)) {
			return kind
		}
	}
	return KindUnknown
}

// Unit returns the conventional measurement unit for a property kind.
func (k PropertyKind) Unit() string {
	switch k {
	case KindTemperature:
		return "°C"
	case KindHumidity:
		return "%RH"
	case KindSmoke:
		return "ppm"
	case KindMotion:
		return "presence"
	case KindLight:
		return "lux"
	default:
		return ""
	}
}

// Interpret maps a raw value to a categorical label for the kind. The labels
// feed state-change detection: a sensor whose interpretation flips between
// two readings produces a StateChange event.
func (k PropertyKind) Interpret(value float64) string {
	switch k {
	case KindTemperature:
		switch {
		case value < 18:
			return "cold"
		case value > 28:
			return "hot"
		default:
			return "comfortable"
		}
	case KindHumidity:
		switch {
		case value < 40:
			return "dry"
		case value > 70:
			return "humid"
		default:
			return "comfortable"
		}
	case KindSmoke:
		switch {
		case value > 200:
			return "high concentration"
		case value > 100:
			return "moderate concentration"
		default:
			return "normal"
		}
	case KindMotion:
		if value > 0 {
			return "occupied"
		}
		return "vacant"
	case KindLight:
		switch {
		case value < 50:
			return "dim"
		case value > 500:
			return "bright"
		default:
			return "moderate"
		}
	default:
		return "normal"
	}
}
