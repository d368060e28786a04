// Package tracker maintains rolling sensor and location state and derives
// higher-level events from the semantic event stream: normalized atomic
// events, rule-based complex events, and temporal/spatial/causal
// correlations. A single Tracker instance owns all mutable state; there are
// no package-level registries.
package tracker

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/c360/semhome/event"
	"github.com/c360/semhome/metric"
	"github.com/c360/semhome/pkg/buffer"
)

// historyCapacity bounds the event history ring; the oldest entry is
// evicted first when full.
const historyCapacity = 1000

// Subscriber receives every derived event synchronously, in registration
// order. A panicking or erroring subscriber is logged and skipped; it never
// stops delivery to the others.
type Subscriber interface {
	Name() string
	HandleEvent(event.Event) error
}

// Tracker is the state tracker and correlator. Safe for concurrent use.
type Tracker struct {
	mu sync.Mutex

	history        buffer.Buffer[event.Event]
	sensorStates   map[string]*SensorState
	locationStates map[string]*LocationState
	rules          []Rule
	subscribers    []Subscriber

	processed int64
	fired     int64

	logger  *slog.Logger
	metrics *metric.Metrics
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithRules replaces the default rule set.
func WithRules(rules []Rule) Option {
	return func(t *Tracker) { t.rules = rules }
}

// WithLogger sets the tracker's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// WithMetrics wires the tracker's counters.
func WithMetrics(m *metric.Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

// New creates a tracker with the default rules unless overridden.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		sensorStates:   make(map[string]*SensorState),
		locationStates: make(map[string]*LocationState),
		rules:          DefaultRules(),
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.history = buffer.NewCircularBuffer[event.Event](historyCapacity,
		buffer.WithDropCallback[event.Event](func(event.Event) {
			if t.metrics != nil {
				t.metrics.HistoryDropped.Inc()
			}
		}))
	return t
}

// Subscribe registers a subscriber. Delivery order follows registration
// order.
func (t *Tracker) Subscribe(s Subscriber) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subscribers = append(t.subscribers, s)
}

// Process ingests one semantic event: records it, updates state, and runs
// the atomic, rule and correlation passes. The returned slice holds the
// derived events in that pass order; each is also delivered to every
// subscriber before Process returns. Best effort throughout: a malformed
// timestamp skips historical comparisons rather than failing the call.
func (t *Tracker) Process(evt event.Event) []event.Event {
	t.mu.Lock()

	_ = t.history.Write(evt)
	t.updateSensorState(evt)
	t.updateLocationState(evt)
	t.processed++

	derived := t.identifyAtomicEvents(evt)
	derived = append(derived, t.evaluateRules(evt)...)
	derived = append(derived, t.correlate(evt)...)

	t.fired += int64(len(derived))
	subscribers := make([]Subscriber, len(t.subscribers))
	copy(subscribers, t.subscribers)

	t.mu.Unlock()

	for _, d := range derived {
		if t.metrics != nil {
			t.metrics.EventsTotal.WithLabelValues(string(d.Kind), string(d.Severity)).Inc()
		}
		t.notify(subscribers, d)
	}
	return derived
}

func (t *Tracker) notify(subscribers []Subscriber, evt event.Event) {
	for _, s := range subscribers {
		t.deliver(s, evt)
	}
}

func (t *Tracker) deliver(s Subscriber, evt event.Event) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("subscriber panicked",
				"subscriber", s.Name(), "event_id", evt.ID, "panic", r)
			if t.metrics != nil {
				t.metrics.SubscriberErrors.WithLabelValues(s.Name()).Inc()
			}
		}
	}()
	if err := s.HandleEvent(evt); err != nil {
		t.logger.Warn("subscriber rejected event",
			"subscriber", s.Name(), "event_id", evt.ID, "error", err)
		if t.metrics != nil {
			t.metrics.SubscriberErrors.WithLabelValues(s.Name()).Inc()
		}
	}
}

func (t *Tracker) updateSensorState(evt event.Event) {
	if evt.Kind != event.KindReading || evt.Source == "" {
		return
	}
	state, ok := t.sensorStates[evt.Source]
	if !ok {
		state = &SensorState{SensorID: evt.Source, Trend: TrendStable}
		t.sensorStates[evt.Source] = state
	} else {
		state.Trend = trendOf(state.LastValue, evt.Value)
	}
	state.LastValue = evt.Value
	state.LastUpdate = evt.Timestamp
}

func (t *Tracker) updateLocationState(evt event.Event) {
	if evt.Location == "" {
		return
	}
	state, ok := t.locationStates[evt.Location]
	if !ok {
		state = &LocationState{
			Location: evt.Location,
			Sensors:  make(map[string]struct{}),
		}
		t.locationStates[evt.Location] = state
	}
	if evt.Source != "" {
		state.Sensors[evt.Source] = struct{}{}
	}
	state.LastActivity = evt.Timestamp
	state.EventCount++
}

// identifyAtomicEvents normalizes deriver output into atomic semantic
// events and detects interpretation changes on readings.
func (t *Tracker) identifyAtomicEvents(evt event.Event) []event.Event {
	var atomic []event.Event

	switch evt.Kind {
	case event.KindThresholdExceeded:
		actual, _ := evt.Detail("actual_value").(float64)
		bound, _ := evt.Detail("threshold_value").(float64)
		atomic = append(atomic, event.Event{
			ID:             "atomic_" + evt.ID,
			Class:          event.ClassAtomic,
			Kind:           event.KindThresholdBreached,
			Source:         evt.Source,
			Location:       evt.Location,
			Timestamp:      evt.Timestamp,
			Severity:       evt.Severity,
			TriggerEventID: evt.ID,
			Details: map[string]any{
				"threshold_type":  evt.Detail("threshold_type"),
				"threshold_value": bound,
				"actual_value":    actual,
				"deviation":       abs(actual - bound),
			},
		})

	case event.KindAnomalyDetected:
		atomic = append(atomic, event.Event{
			ID:             "atomic_" + evt.ID,
			Class:          event.ClassAtomic,
			Kind:           event.KindAnomalyIdentified,
			Source:         evt.Source,
			Location:       evt.Location,
			Timestamp:      evt.Timestamp,
			Severity:       evt.Severity,
			TriggerEventID: evt.ID,
			Details: map[string]any{
				"anomaly_type": "statistical",
				"description":  evt.Description,
			},
		})

	case event.KindReading:
		if change := t.detectStateChange(evt); change != nil {
			atomic = append(atomic, *change)
		}
	}

	return atomic
}

func (t *Tracker) detectStateChange(evt event.Event) *event.Event {
	if evt.Interpretation == "" {
		return nil
	}
	state, ok := t.sensorStates[evt.Source]
	if !ok {
		return nil
	}
	previous := state.LastInterpretation
	state.LastInterpretation = evt.Interpretation
	if previous == "" || previous == evt.Interpretation {
		return nil
	}
	return &event.Event{
		ID:             event.NewID("state_change"),
		Class:          event.ClassAtomic,
		Kind:           event.KindStateChange,
		Source:         evt.Source,
		Location:       evt.Location,
		Timestamp:      evt.Timestamp,
		Severity:       event.SeverityLow,
		TriggerEventID: evt.ID,
		Description:    fmt.Sprintf("%s moved from %s to %s", evt.Source, previous, evt.Interpretation),
		Details: map[string]any{
			"from_state": previous,
			"to_state":   evt.Interpretation,
		},
	}
}

// evaluateRules fires every rule whose conditions are all satisfied by the
// triggering event or by history within each condition's window.
func (t *Tracker) evaluateRules(evt event.Event) []event.Event {
	var complexEvents []event.Event
	for _, rule := range t.rules {
		if !t.conditionsSatisfied(evt, rule.Conditions) {
			continue
		}
		complexEvents = append(complexEvents, t.buildComplexEvent(evt, rule))
		if t.metrics != nil {
			t.metrics.RuleFiresTotal.WithLabelValues(rule.Name).Inc()
		}
		t.logger.Info("rule fired", "rule", rule.Name, "trigger", evt.ID, "location", evt.Location)
	}
	return complexEvents
}

func (t *Tracker) conditionsSatisfied(evt event.Event, conditions []Condition) bool {
	for _, condition := range conditions {
		if t.matchesCurrent(evt, condition) {
			continue
		}
		if !t.matchesHistory(evt, condition) {
			return false
		}
	}
	return true
}

func (t *Tracker) matchesCurrent(evt event.Event, condition Condition) bool {
	return evt.Kind == event.KindReading &&
		contains(evt.Source, condition.Sensor) &&
		condition.satisfiedBy(evt.Value)
}

// matchesHistory scans the ring newest-first for a reading that satisfies
// the condition inside its lookback window. Events without a usable
// timestamp are skipped rather than compared.
func (t *Tracker) matchesHistory(evt event.Event, condition Condition) bool {
	if evt.Timestamp == 0 {
		return false
	}
	cutoff := evt.Timestamp - condition.window()
	snapshot := t.history.Snapshot()
	for i := len(snapshot) - 1; i >= 0; i-- {
		past := snapshot[i]
		if past.ID == evt.ID || past.Kind != event.KindReading {
			continue
		}
		if past.Timestamp == 0 {
			continue
		}
		if past.Timestamp < cutoff {
			break
		}
		if contains(past.Source, condition.Sensor) && condition.satisfiedBy(past.Value) {
			return true
		}
	}
	return false
}

func (t *Tracker) buildComplexEvent(trigger event.Event, rule Rule) event.Event {
	template := ruleTemplates[rule.Name]
	details := map[string]any{
		"rule":                rule.Name,
		"description":         template.description,
		"recommended_actions": template.actions,
		"affected_sensors":    t.affectedSensors(rule),
	}
	for k, v := range template.extras {
		details[k] = v
	}
	return event.Event{
		ID:             event.NewID(rule.Name),
		Class:          event.ClassComplex,
		Kind:           rule.Kind,
		Source:         "tracker",
		Location:       trigger.Location,
		Timestamp:      trigger.Timestamp,
		Severity:       event.Severity(rule.Severity),
		TriggerEventID: trigger.ID,
		Description:    template.description,
		Details:        details,
	}
}

// affectedSensors lists known sensors whose id matches any of the rule's
// condition keys.
func (t *Tracker) affectedSensors(rule Rule) []string {
	var affected []string
	for id := range t.sensorStates {
		for _, condition := range rule.Conditions {
			if contains(id, condition.Sensor) {
				affected = append(affected, id)
				break
			}
		}
	}
	return affected
}

// SensorStates returns a copy of the current per-sensor state.
func (t *Tracker) SensorStates() map[string]SensorState {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]SensorState, len(t.sensorStates))
	for id, state := range t.sensorStates {
		out[id] = *state
	}
	return out
}

// LocationStates returns a copy of the current per-location state.
func (t *Tracker) LocationStates() map[string]LocationState {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]LocationState, len(t.locationStates))
	for loc, state := range t.locationStates {
		copied := *state
		copied.Sensors = make(map[string]struct{}, len(state.Sensors))
		for id := range state.Sensors {
			copied.Sensors[id] = struct{}{}
		}
		out[loc] = copied
	}
	return out
}

// RecentEvents returns up to n of the newest history entries, oldest first.
func (t *Tracker) RecentEvents(n int) []event.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.history.Recent(n)
}

// Stats summarizes tracker activity.
type Stats struct {
	Processed   int64 `json:"processed"`
	Derived     int64 `json:"derived"`
	HistorySize int   `json:"history_size"`
	Sensors     int   `json:"sensors"`
	Locations   int   `json:"locations"`
	Subscribers int   `json:"subscribers"`
}

// Stats returns a snapshot of tracker counters.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		Processed:   t.processed,
		Derived:     t.fired,
		HistorySize: t.history.Size(),
		Sensors:     len(t.sensorStates),
		Locations:   len(t.locationStates),
		Subscribers: len(t.subscribers),
	}
}

func contains(s, substr string) bool {
	return substr != "" && strings.Contains(s, substr)
}
