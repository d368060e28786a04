package tracker

import (
	"fmt"
	"strings"

	"github.com/c360/semhome/event"
)

const (
	// temporalWindowMs bounds how far back the temporal heuristic looks.
	temporalWindowMs = 5 * 60 * 1000
	// temporalMinMatches is the prior-event count needed to correlate.
	temporalMinMatches = 2

	// spatialLookback is the history depth the spatial heuristic scans.
	spatialLookback = 20
	// spatialMinMatches is the same-location count needed to correlate.
	spatialMinMatches = 3

	// causalLookback is the history depth the causal heuristic scans.
	causalLookback = 10
	// causalConfidence is a fixed placeholder until correlation evidence
	// is actually scored.
	causalConfidence = 0.7
)

// correlate runs the three correlation heuristics. Each emits at most one
// event; the passes are independent.
func (t *Tracker) correlate(evt event.Event) []event.Event {
	var correlations []event.Event
	if temporal := t.temporalCorrelation(evt); temporal != nil {
		correlations = append(correlations, *temporal)
	}
	if spatial := t.spatialCorrelation(evt); spatial != nil {
		correlations = append(correlations, *spatial)
	}
	if causal := t.causalCorrelation(evt); causal != nil {
		correlations = append(correlations, *causal)
	}
	for _, c := range correlations {
		if t.metrics != nil {
			t.metrics.CorrelationsTotal.WithLabelValues(c.Detail("correlation_type").(string)).Inc()
		}
	}
	return correlations
}

// temporalCorrelation fires when at least two prior events of the same kind
// occurred within the five-minute window ending at the trigger.
func (t *Tracker) temporalCorrelation(evt event.Event) *event.Event {
	if evt.Timestamp == 0 {
		return nil
	}
	cutoff := evt.Timestamp - temporalWindowMs

	var related []string
	snapshot := t.history.Snapshot()
	for i := len(snapshot) - 1; i >= 0; i-- {
		past := snapshot[i]
		if past.Timestamp != 0 && past.Timestamp < cutoff {
			break
		}
		if past.Kind == evt.Kind && past.ID != evt.ID {
			related = append(related, past.ID)
		}
	}
	if len(related) < temporalMinMatches {
		return nil
	}

	return &event.Event{
		ID:              event.NewID("temporal_correlation"),
		Class:           event.ClassCorrelation,
		Kind:            event.KindTemporalCorrelation,
		Source:          "tracker",
		Timestamp:       evt.Timestamp,
		Severity:        event.SeverityInfo,
		TriggerEventID:  evt.ID,
		RelatedEventIDs: related,
		Description: fmt.Sprintf("%d events of kind %s within %d seconds",
			len(related)+1, evt.Kind, temporalWindowMs/1000),
		Details: map[string]any{
			"correlation_type": "temporal",
			"window_seconds":   temporalWindowMs / 1000,
		},
	}
}

// spatialCorrelation fires when at least three of the last twenty history
// entries share the trigger's location.
func (t *Tracker) spatialCorrelation(evt event.Event) *event.Event {
	if evt.Location == "" {
		return nil
	}

	var related []string
	for _, past := range t.history.Recent(spatialLookback) {
		if past.Location == evt.Location && past.ID != evt.ID {
			related = append(related, past.ID)
		}
	}
	if len(related) < spatialMinMatches {
		return nil
	}

	return &event.Event{
		ID:              event.NewID("spatial_correlation"),
		Class:           event.ClassCorrelation,
		Kind:            event.KindSpatialCorrelation,
		Source:          "tracker",
		Location:        evt.Location,
		Timestamp:       evt.Timestamp,
		Severity:        event.SeverityInfo,
		TriggerEventID:  evt.ID,
		RelatedEventIDs: related,
		Description: fmt.Sprintf("high activity at %s: %d recent events",
			evt.Location, len(related)+1),
		Details: map[string]any{
			"correlation_type": "spatial",
		},
	}
}

// causalCorrelation links a temperature threshold crossing to the most
// recent humidity reading, stopping at the first match.
func (t *Tracker) causalCorrelation(evt event.Event) *event.Event {
	if evt.Kind != event.KindThresholdExceeded || !strings.Contains(strings.ToLower(evt.Source), "temperature") {
		return nil
	}

	for _, past := range t.history.Recent(causalLookback) {
		if past.Kind != event.KindReading || !strings.Contains(strings.ToLower(past.Source), "humidity") {
			continue
		}
		return &event.Event{
			ID:              event.NewID("causal_correlation"),
			Class:           event.ClassCorrelation,
			Kind:            event.KindCausalCorrelation,
			Source:          "tracker",
			Location:        evt.Location,
			Timestamp:       evt.Timestamp,
			Severity:        event.SeverityInfo,
			TriggerEventID:  evt.ID,
			RelatedEventIDs: []string{past.ID},
			Description:     "temperature excursion likely degrades overall comfort",
			Details: map[string]any{
				"correlation_type": "causal",
				"cause_event":      evt.ID,
				"confidence":       causalConfidence,
			},
		}
	}
	return nil
}
