package event

import (
	"fmt"

	"github.com/c360/semhome/observe"
	"github.com/c360/semhome/vocabulary"
)

// threshold holds the fixed high/low bounds for one property kind. A nil
// bound means the side is not checked.
type threshold struct {
	high *float64
	low  *float64
}

func bound(v float64) *float64 { return &v }

// thresholds is the fixed per-category table. Keys are matched by the
// sensor's classified property kind; motion has no thresholds.
var thresholds = map[vocabulary.PropertyKind]threshold{
	vocabulary.KindTemperature: {high: bound(30), low: bound(15)},
	vocabulary.KindHumidity:    {high: bound(80), low: bound(30)},
	vocabulary.KindSmoke:       {high: bound(200)},
	vocabulary.KindLight:       {high: bound(1000), low: bound(10)},
}

// Deriver converts observations into semantic events.
type Deriver struct{}

// NewDeriver creates a deriver.
func NewDeriver() *Deriver {
	return &Deriver{}
}

// Derive produces the events for one observation: always one Reading, plus
// AnomalyDetected when the observation is flagged and ThresholdExceeded when
// the value crosses the fixed table. Reading comes first.
func (d *Deriver) Derive(obs observe.Observation) []Event {
	events := []Event{FromObservation(obs)}

	if obs.IsAnomaly {
		events = append(events, Event{
			ID:          NewID("anomaly"),
			Class:       ClassSemantic,
			Kind:        KindAnomalyDetected,
			Source:      obs.SensorID,
			Location:    obs.Location,
			Timestamp:   obs.ResultTime,
			Severity:    SeverityMedium,
			Value:       obs.Value,
			Description: fmt.Sprintf("anomalous value detected: %v %s", obs.Value, obs.Unit),
		})
	}

	events = append(events, d.checkThresholds(obs)...)
	return events
}

func (d *Deriver) checkThresholds(obs observe.Observation) []Event {
	bounds, ok := thresholds[obs.Property]
	if !ok {
		return nil
	}

	var events []Event

	if bounds.high != nil && obs.Value > *bounds.high {
		severity := SeverityMedium
		if obs.Property == vocabulary.KindSmoke {
			severity = SeverityHigh
		}
		events = append(events, thresholdEvent(obs, "high", *bounds.high, severity))
	}

	if bounds.low != nil && obs.Value < *bounds.low {
		events = append(events, thresholdEvent(obs, "low", *bounds.low, SeverityMedium))
	}

	return events
}

func thresholdEvent(obs observe.Observation, thresholdType string, bound float64, severity Severity) Event {
	return Event{
		ID:        NewID("threshold_" + thresholdType),
		Class:     ClassSemantic,
		Kind:      KindThresholdExceeded,
		Source:    obs.SensorID,
		Location:  obs.Location,
		Timestamp: obs.ResultTime,
		Severity:  severity,
		Value:     obs.Value,
		Description: fmt.Sprintf("%s threshold %v crossed with value %v %s",
			thresholdType, bound, obs.Value, obs.Unit),
		Details: map[string]any{
			"threshold_type":  thresholdType,
			"threshold_value": bound,
			"actual_value":    obs.Value,
		},
	}
}
