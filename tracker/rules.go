package tracker

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/c360/semhome/errors"
	"github.com/c360/semhome/event"
)

// Comparator operators supported by rule conditions.
const (
	OpGreaterThan      = ">"
	OpLessThan         = "<"
	OpGreaterThanEqual = ">="
	OpLessThanEqual    = "<="
	OpEqual            = "=="
	OpNotEqual         = "!="
)

// equalityTolerance is the half-width used by == and != on floats.
const equalityTolerance = 0.01

// defaultConditionWindow is the history lookback, in seconds, for
// conditions that do not declare a duration.
const defaultConditionWindow = 300

// Condition is one clause of a complex-event rule. Sensor is matched as a
// substring against event sources. Duration is the lookback window in
// seconds for satisfying the clause from history; zero means the default
// five minutes.
type Condition struct {
	Sensor   string  `json:"sensor"`
	Operator string  `json:"operator"`
	Value    float64 `json:"value"`
	Duration int     `json:"duration,omitempty"`
}

// Validate checks the condition is well formed.
func (c Condition) Validate() error {
	if c.Sensor == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "tracker", "Condition.Validate", "sensor key is empty")
	}
	switch c.Operator {
	case OpGreaterThan, OpLessThan, OpGreaterThanEqual, OpLessThanEqual, OpEqual, OpNotEqual:
	default:
		return errors.WrapInvalid(errors.ErrInvalidConfig, "tracker", "Condition.Validate",
			fmt.Sprintf("unsupported operator %q", c.Operator))
	}
	if c.Duration < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "tracker", "Condition.Validate", "duration is negative")
	}
	return nil
}

// window returns the condition's lookback in milliseconds.
func (c Condition) window() int64 {
	if c.Duration > 0 {
		return int64(c.Duration) * 1000
	}
	return defaultConditionWindow * 1000
}

// satisfiedBy reports whether value meets the condition's comparator.
func (c Condition) satisfiedBy(value float64) bool {
	switch c.Operator {
	case OpGreaterThan:
		return value > c.Value
	case OpLessThan:
		return value < c.Value
	case OpGreaterThanEqual:
		return value >= c.Value
	case OpLessThanEqual:
		return value <= c.Value
	case OpEqual:
		return abs(value-c.Value) < equalityTolerance
	case OpNotEqual:
		return abs(value-c.Value) >= equalityTolerance
	default:
		return false
	}
}

// Rule is a named complex-event rule. All conditions must hold, each either
// on the triggering event or within its history window, for the rule to fire.
type Rule struct {
	Name       string      `json:"name"`
	Kind       event.Kind  `json:"kind"`
	Severity   string      `json:"severity"`
	Priority   string      `json:"priority"`
	Conditions []Condition `json:"conditions"`
}

// Validate checks the rule and all of its conditions.
func (r Rule) Validate() error {
	if r.Name == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "tracker", "Rule.Validate", "rule name is empty")
	}
	if len(r.Conditions) == 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "tracker", "Rule.Validate",
			fmt.Sprintf("rule %q has no conditions", r.Name))
	}
	for _, c := range r.Conditions {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// LoadRules reads a JSON rule file: {"rules": [...]}. Every rule is
// validated before the set is returned.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFatal(err, "tracker", "LoadRules", "reading rule file")
	}

	var doc struct {
		Rules []Rule `json:"rules"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapInvalid(err, "tracker", "LoadRules", "parsing rule file")
	}
	if len(doc.Rules) == 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "tracker", "LoadRules", "rule file declares no rules")
	}
	for _, r := range doc.Rules {
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}
	return doc.Rules, nil
}

// DefaultRules returns the built-in rule set: fire alarm on combined
// smoke and temperature, comfort control on hot-and-humid, energy saving
// on a sustained vacancy signal.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:     "fire_alarm",
			Kind:     event.KindFireAlarm,
			Severity: string(event.SeverityCritical),
			Priority: "high",
			Conditions: []Condition{
				{Sensor: "smoke", Operator: OpGreaterThan, Value: 150},
				{Sensor: "temperature", Operator: OpGreaterThan, Value: 30},
			},
		},
		{
			Name:     "comfort_control",
			Kind:     event.KindComfortControl,
			Severity: string(event.SeverityMedium),
			Priority: "medium",
			Conditions: []Condition{
				{Sensor: "temperature", Operator: OpGreaterThan, Value: 26},
				{Sensor: "humidity", Operator: OpGreaterThan, Value: 65},
			},
		},
		{
			Name:     "energy_saving",
			Kind:     event.KindEnergySaving,
			Severity: string(event.SeverityLow),
			Priority: "low",
			Conditions: []Condition{
				{Sensor: "motion", Operator: OpEqual, Value: 0, Duration: 1800},
			},
		},
	}
}

// ruleTemplate carries the fixed description and recommended actions
// attached to a rule's complex event.
type ruleTemplate struct {
	description string
	actions     []string
	extras      map[string]any
}

var ruleTemplates = map[string]ruleTemplate{
	"fire_alarm": {
		description: "fire risk detected: smoke and temperature both elevated",
		actions: []string{
			"evacuate occupants immediately",
			"contact fire services",
			"cut power and gas supply",
			"activate suppression system",
		},
	},
	"comfort_control": {
		description: "indoor comfort degraded: temperature and humidity out of range",
		actions: []string{
			"adjust air conditioning setpoint",
			"start dehumidifier or humidifier",
			"increase ventilation",
		},
		extras: map[string]any{
			"target_ranges": map[string]string{
				"temperature": "20-26 Cel",
				"humidity":    "40-60 %RH",
			},
		},
	},
	"energy_saving": {
		description: "no occupancy detected for an extended period, energy saving recommended",
		actions: []string{
			"dim lighting",
			"relax air conditioning setpoint",
			"power down non-essential devices",
			"enter standby mode",
		},
		extras: map[string]any{
			"estimated_savings": "15-30%",
		},
	},
}
