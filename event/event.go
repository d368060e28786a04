// Package event defines the semantic event model and the deriver that turns
// observations into events: one Reading per observation plus conditional
// ThresholdExceeded and AnomalyDetected events.
package event

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/c360/semhome/observe"
)

// Class groups events by their level of derivation.
type Class string

// Event classes.
const (
	ClassSemantic    Class = "SemanticEvent"
	ClassAtomic      Class = "AtomicSemanticEvent"
	ClassComplex     Class = "ComplexEvent"
	ClassCorrelation Class = "CorrelationEvent"
)

// Kind identifies what an event asserts.
type Kind string

// Event kinds. The first three are produced by the Deriver; the rest by the
// tracker's atomic, rule and correlation passes.
const (
	KindReading           Kind = "SensorReading"
	KindThresholdExceeded Kind = "ThresholdExceeded"
	KindAnomalyDetected   Kind = "AnomalyDetected"

	KindThresholdBreached Kind = "ThresholdBreached"
	KindAnomalyIdentified Kind = "AnomalyIdentified"
	KindStateChange       Kind = "StateChange"

	KindFireAlarm      Kind = "FireAlarmTriggered"
	KindComfortControl Kind = "ComfortControlNeeded"
	KindEnergySaving   Kind = "EnergySavingTriggered"

	KindTemporalCorrelation Kind = "TemporalCorrelation"
	KindSpatialCorrelation  Kind = "SpatialCorrelation"
	KindCausalCorrelation   Kind = "CausalCorrelation"
)

// Severity ranks how urgent an event is.
type Severity string

// Severity levels.
const (
	SeverityInfo     Severity = "info"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Event is one typed, timestamped fact derived from observations. Common
// fields are typed; kind-specific extras live in Details. Immutable once
// created.
type Event struct {
	ID        string   `json:"id"`
	Class     Class    `json:"class"`
	Kind      Kind     `json:"kind"`
	Source    string   `json:"source"` // sensor id, or the emitting component
	Location  string   `json:"location,omitempty"`
	Timestamp int64    `json:"timestamp"` // unix ms
	Severity  Severity `json:"severity"`

	// Reading events carry their observation payload.
	Value          float64 `json:"value,omitempty"`
	Quality        string  `json:"quality,omitempty"`
	Interpretation string  `json:"interpretation,omitempty"`

	// Complex/correlation events reference the events they derive from.
	TriggerEventID  string   `json:"trigger_event_id,omitempty"`
	RelatedEventIDs []string `json:"related_event_ids,omitempty"`

	Description string         `json:"description,omitempty"`
	Details     map[string]any `json:"details,omitempty"`
}

// IsReading reports whether the event is a base sensor reading.
func (e Event) IsReading() bool {
	return e.Kind == KindReading
}

// Detail returns a kind-specific extra, or nil when absent.
func (e Event) Detail(key string) any {
	if e.Details == nil {
		return nil
	}
	return e.Details[key]
}

// NewID builds a prefixed unique event id.
func NewID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString()[:8])
}

// FromObservation builds the base Reading event for an observation.
func FromObservation(obs observe.Observation) Event {
	return Event{
		ID:             NewID("event"),
		Class:          ClassSemantic,
		Kind:           KindReading,
		Source:         obs.SensorID,
		Location:       obs.Location,
		Timestamp:      obs.ResultTime,
		Severity:       SeverityInfo,
		Value:          obs.Value,
		Quality:        string(obs.Quality),
		Interpretation: obs.Interpretation(),
		Details: map[string]any{
			"observation_id": obs.ID,
			"property":       string(obs.Property),
			"unit":           obs.Unit,
		},
	}
}
