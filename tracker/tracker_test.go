package tracker

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semhome/catalog"
	"github.com/c360/semhome/event"
	"github.com/c360/semhome/observe"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).UnixMilli()

func reading(id, source, location string, value float64, ts int64) event.Event {
	return event.Event{
		ID:        id,
		Class:     event.ClassSemantic,
		Kind:      event.KindReading,
		Source:    source,
		Location:  location,
		Timestamp: ts,
		Severity:  event.SeverityInfo,
		Value:     value,
	}
}

func filterKind(events []event.Event, kind event.Kind) []event.Event {
	var out []event.Event
	for _, e := range events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func TestFireAlarmSmokeThenTemperature(t *testing.T) {
	tr := New()

	derived := tr.Process(reading("e1", "home:smokeSensor_001", "kitchen", 180, baseTime))
	assert.Empty(t, filterKind(derived, event.KindFireAlarm), "smoke alone must not fire")

	derived = tr.Process(reading("e2", "home:temperatureSensor_001", "living_room", 35, baseTime+1000))
	alarms := filterKind(derived, event.KindFireAlarm)
	require.Len(t, alarms, 1)

	alarm := alarms[0]
	assert.Equal(t, event.ClassComplex, alarm.Class)
	assert.Equal(t, event.SeverityCritical, alarm.Severity)
	assert.Equal(t, "e2", alarm.TriggerEventID)
	assert.Contains(t, alarm.Detail("recommended_actions"), "contact fire services")
}

func TestFireAlarmTemperatureThenSmoke(t *testing.T) {
	tr := New()

	derived := tr.Process(reading("e1", "home:temperatureSensor_001", "living_room", 35, baseTime))
	assert.Empty(t, filterKind(derived, event.KindFireAlarm))

	derived = tr.Process(reading("e2", "home:smokeSensor_001", "kitchen", 180, baseTime+1000))
	require.Len(t, filterKind(derived, event.KindFireAlarm), 1, "order must not matter inside the window")
}

func TestFireAlarmWindowExpiry(t *testing.T) {
	tr := New()

	tr.Process(reading("e1", "home:smokeSensor_001", "kitchen", 180, baseTime))
	// Six minutes later the smoke reading is outside the default window.
	derived := tr.Process(reading("e2", "home:temperatureSensor_001", "living_room", 35, baseTime+6*60*1000))
	assert.Empty(t, filterKind(derived, event.KindFireAlarm))
}

func TestComfortControlRule(t *testing.T) {
	tr := New()

	tr.Process(reading("e1", "home:humiditySensor_001", "living_room", 75, baseTime))
	derived := tr.Process(reading("e2", "home:temperatureSensor_001", "living_room", 28, baseTime+2000))

	comfort := filterKind(derived, event.KindComfortControl)
	require.Len(t, comfort, 1)
	assert.Equal(t, event.SeverityMedium, comfort[0].Severity)
	assert.NotNil(t, comfort[0].Detail("target_ranges"))
}

func TestEnergySavingOnVacancy(t *testing.T) {
	tr := New()

	derived := tr.Process(reading("e1", "home:motionSensor_001", "hallway", 0, baseTime))
	saving := filterKind(derived, event.KindEnergySaving)
	require.Len(t, saving, 1)
	assert.Equal(t, event.SeverityLow, saving[0].Severity)

	// With a prior vacancy reading inside the lookback, even an occupied
	// reading keeps the rule satisfied via history.
	derived = tr.Process(reading("e2", "home:motionSensor_001", "hallway", 1, baseTime+1000))
	assert.Len(t, filterKind(derived, event.KindEnergySaving), 1)

	fresh := New()
	derived = fresh.Process(reading("e3", "home:motionSensor_001", "hallway", 1, baseTime))
	assert.Empty(t, filterKind(derived, event.KindEnergySaving), "occupied with no vacancy history must not fire")
}

func TestEqualityToleranceInConditions(t *testing.T) {
	c := Condition{Sensor: "motion", Operator: OpEqual, Value: 0}
	assert.True(t, c.satisfiedBy(0.005))
	assert.False(t, c.satisfiedBy(0.02))

	ne := Condition{Sensor: "motion", Operator: OpNotEqual, Value: 0}
	assert.False(t, ne.satisfiedBy(0.005))
	assert.True(t, ne.satisfiedBy(0.02))
}

func TestThresholdBreachedReclassification(t *testing.T) {
	tr := New()

	derived := tr.Process(event.Event{
		ID:        "th1",
		Kind:      event.KindThresholdExceeded,
		Source:    "home:smokeSensor_001",
		Location:  "kitchen",
		Timestamp: baseTime,
		Severity:  event.SeverityHigh,
		Value:     250,
		Details: map[string]any{
			"threshold_type":  "high",
			"threshold_value": 200.0,
			"actual_value":    250.0,
		},
	})

	breached := filterKind(derived, event.KindThresholdBreached)
	require.Len(t, breached, 1)
	assert.Equal(t, "atomic_th1", breached[0].ID)
	assert.Equal(t, event.ClassAtomic, breached[0].Class)
	assert.Equal(t, 50.0, breached[0].Detail("deviation"))
}

func TestAnomalyIdentifiedReclassification(t *testing.T) {
	tr := New()

	derived := tr.Process(event.Event{
		ID:        "an1",
		Kind:      event.KindAnomalyDetected,
		Source:    "home:temperatureSensor_001",
		Timestamp: baseTime,
		Severity:  event.SeverityMedium,
	})

	identified := filterKind(derived, event.KindAnomalyIdentified)
	require.Len(t, identified, 1)
	assert.Equal(t, "statistical", identified[0].Detail("anomaly_type"))
}

func TestStateChangeDetection(t *testing.T) {
	tr := New()

	first := reading("e1", "home:temperatureSensor_001", "living_room", 22, baseTime)
	first.Interpretation = "comfortable"
	derived := tr.Process(first)
	assert.Empty(t, filterKind(derived, event.KindStateChange), "first interpretation sets the baseline")

	second := reading("e2", "home:temperatureSensor_001", "living_room", 29, baseTime+1000)
	second.Interpretation = "hot"
	derived = tr.Process(second)

	changes := filterKind(derived, event.KindStateChange)
	require.Len(t, changes, 1)
	assert.Equal(t, event.SeverityLow, changes[0].Severity)
	assert.Equal(t, "comfortable", changes[0].Detail("from_state"))
	assert.Equal(t, "hot", changes[0].Detail("to_state"))

	third := reading("e3", "home:temperatureSensor_001", "living_room", 29.5, baseTime+2000)
	third.Interpretation = "hot"
	derived = tr.Process(third)
	assert.Empty(t, filterKind(derived, event.KindStateChange), "same interpretation is not a change")
}

func TestSensorStateTrend(t *testing.T) {
	tr := New()

	tr.Process(reading("e1", "s1", "", 20, baseTime))
	tr.Process(reading("e2", "s1", "", 25, baseTime+1000))
	assert.Equal(t, TrendRising, tr.SensorStates()["s1"].Trend)

	tr.Process(reading("e3", "s1", "", 25.05, baseTime+2000))
	assert.Equal(t, TrendStable, tr.SensorStates()["s1"].Trend)

	tr.Process(reading("e4", "s1", "", 20, baseTime+3000))
	assert.Equal(t, TrendFalling, tr.SensorStates()["s1"].Trend)
}

func TestTemporalCorrelation(t *testing.T) {
	tr := New()

	tr.Process(event.Event{ID: "a1", Kind: event.KindAnomalyDetected, Source: "s1", Timestamp: baseTime})
	tr.Process(event.Event{ID: "a2", Kind: event.KindAnomalyDetected, Source: "s2", Timestamp: baseTime + 1000})
	derived := tr.Process(event.Event{ID: "a3", Kind: event.KindAnomalyDetected, Source: "s3", Timestamp: baseTime + 2000})

	temporal := filterKind(derived, event.KindTemporalCorrelation)
	require.Len(t, temporal, 1)
	assert.ElementsMatch(t, []string{"a1", "a2"}, temporal[0].RelatedEventIDs)
}

func TestTemporalCorrelationRespectsWindow(t *testing.T) {
	tr := New()

	tr.Process(event.Event{ID: "a1", Kind: event.KindAnomalyDetected, Source: "s1", Timestamp: baseTime})
	tr.Process(event.Event{ID: "a2", Kind: event.KindAnomalyDetected, Source: "s2", Timestamp: baseTime + 1000})
	// Trigger lands past the five-minute window of both priors.
	derived := tr.Process(event.Event{ID: "a3", Kind: event.KindAnomalyDetected, Source: "s3", Timestamp: baseTime + 10*60*1000})
	assert.Empty(t, filterKind(derived, event.KindTemporalCorrelation))
}

func TestSpatialCorrelation(t *testing.T) {
	tr := New()

	tr.Process(reading("e1", "s1", "kitchen", 1, baseTime))
	tr.Process(reading("e2", "s2", "kitchen", 2, baseTime+1000))
	tr.Process(reading("e3", "s3", "kitchen", 3, baseTime+2000))
	derived := tr.Process(reading("e4", "s4", "kitchen", 4, baseTime+3000))

	spatial := filterKind(derived, event.KindSpatialCorrelation)
	require.Len(t, spatial, 1)
	assert.Equal(t, "kitchen", spatial[0].Location)
	assert.Len(t, spatial[0].RelatedEventIDs, 3)
}

func TestCausalCorrelation(t *testing.T) {
	tr := New()

	tr.Process(reading("h1", "home:humiditySensor_001", "living_room", 55, baseTime))
	derived := tr.Process(event.Event{
		ID:        "th1",
		Kind:      event.KindThresholdExceeded,
		Source:    "home:temperatureSensor_001",
		Location:  "living_room",
		Timestamp: baseTime + 1000,
		Severity:  event.SeverityMedium,
		Details:   map[string]any{"threshold_type": "high", "threshold_value": 30.0, "actual_value": 35.0},
	})

	causal := filterKind(derived, event.KindCausalCorrelation)
	require.Len(t, causal, 1)
	assert.Equal(t, 0.7, causal[0].Detail("confidence"))
	assert.Equal(t, []string{"h1"}, causal[0].RelatedEventIDs)
}

func TestCausalRequiresTemperatureThreshold(t *testing.T) {
	tr := New()

	tr.Process(reading("h1", "home:humiditySensor_001", "living_room", 55, baseTime))
	derived := tr.Process(event.Event{
		ID:        "th1",
		Kind:      event.KindThresholdExceeded,
		Source:    "home:lightSensor_001",
		Timestamp: baseTime + 1000,
	})
	assert.Empty(t, filterKind(derived, event.KindCausalCorrelation))
}

func TestDerivedOrderAtomicRulesCorrelations(t *testing.T) {
	tr := New()

	tr.Process(reading("h1", "home:humiditySensor_001", "living_room", 55, baseTime))
	tr.Process(event.Event{ID: "p1", Kind: event.KindThresholdExceeded, Source: "other", Timestamp: baseTime + 100})
	tr.Process(event.Event{ID: "p2", Kind: event.KindThresholdExceeded, Source: "other", Timestamp: baseTime + 200})
	tr.Process(reading("t1", "home:temperatureSensor_001", "living_room", 35, baseTime+300))

	derived := tr.Process(event.Event{
		ID:        "th1",
		Kind:      event.KindThresholdExceeded,
		Source:    "home:temperatureSensor_001",
		Location:  "living_room",
		Timestamp: baseTime + 1000,
		Details:   map[string]any{"threshold_type": "high", "threshold_value": 30.0, "actual_value": 35.0},
	})

	require.NotEmpty(t, derived)
	assert.Equal(t, event.KindThresholdBreached, derived[0].Kind, "atomic events lead")
	last := derived[len(derived)-1]
	assert.Equal(t, event.ClassCorrelation, last.Class, "correlations trail")
}

func TestHistoryEviction(t *testing.T) {
	tr := New()
	for i := 0; i < historyCapacity+1; i++ {
		tr.Process(reading(fmt.Sprintf("e%d", i), "s1", "", float64(i), baseTime+int64(i)))
	}
	stats := tr.Stats()
	assert.Equal(t, historyCapacity, stats.HistorySize)
	assert.Equal(t, int64(historyCapacity+1), stats.Processed)

	recent := tr.RecentEvents(1)
	require.Len(t, recent, 1)
	assert.Equal(t, fmt.Sprintf("e%d", historyCapacity), recent[0].ID)
}

func TestMalformedTimestampSkipsHistory(t *testing.T) {
	tr := New()

	tr.Process(reading("e1", "home:smokeSensor_001", "kitchen", 180, baseTime))
	derived := tr.Process(reading("e2", "home:temperatureSensor_001", "living_room", 35, 0))
	assert.Empty(t, filterKind(derived, event.KindFireAlarm), "zero timestamp cannot anchor a window")
}

type recordingSubscriber struct {
	name   string
	events []event.Event
}

func (r *recordingSubscriber) Name() string { return r.name }

func (r *recordingSubscriber) HandleEvent(e event.Event) error {
	r.events = append(r.events, e)
	return nil
}

type panickySubscriber struct{}

func (panickySubscriber) Name() string { return "panicky" }

func (panickySubscriber) HandleEvent(event.Event) error { panic("boom") }

func TestSubscriberFanOutSurvivesPanic(t *testing.T) {
	tr := New()
	recorder := &recordingSubscriber{name: "recorder"}
	tr.Subscribe(panickySubscriber{})
	tr.Subscribe(recorder)

	derived := tr.Process(event.Event{
		ID:        "th1",
		Kind:      event.KindThresholdExceeded,
		Source:    "home:smokeSensor_001",
		Timestamp: baseTime,
		Details:   map[string]any{"threshold_type": "high", "threshold_value": 200.0, "actual_value": 250.0},
	})

	require.NotEmpty(t, derived)
	assert.Equal(t, derived, recorder.events, "later subscriber still receives every derived event")
}

func TestEndToEndFireAlarm(t *testing.T) {
	builder := observe.NewBuilder(catalog.Default())
	deriver := event.NewDeriver()
	tr := New()

	at := time.UnixMilli(baseTime)

	smokeObs, err := builder.Build("home:smokeSensor_001", 180, at)
	require.NoError(t, err)
	tempObs, err := builder.Build("home:temperatureSensor_001", 35, at.Add(time.Second))
	require.NoError(t, err)

	var alarms []event.Event
	for _, obs := range []observe.Observation{smokeObs, tempObs} {
		for _, evt := range deriver.Derive(obs) {
			alarms = append(alarms, filterKind(tr.Process(evt), event.KindFireAlarm)...)
		}
	}

	require.NotEmpty(t, alarms, "smoke 180 plus temperature 35 must raise a fire alarm")
	assert.Equal(t, event.SeverityCritical, alarms[0].Severity)
}

func TestRuleValidation(t *testing.T) {
	assert.Error(t, Rule{}.Validate())
	assert.Error(t, Rule{Name: "r"}.Validate())
	assert.Error(t, Rule{Name: "r", Conditions: []Condition{{Sensor: "s", Operator: "~"}}}.Validate())
	assert.NoError(t, Rule{Name: "r", Conditions: []Condition{{Sensor: "s", Operator: OpGreaterThan}}}.Validate())

	for _, rule := range DefaultRules() {
		assert.NoError(t, rule.Validate())
	}
}

func TestLoadRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"rules": [{
			"name": "freezer_watch",
			"kind": "ThresholdExceeded",
			"severity": "high",
			"priority": "high",
			"conditions": [{"sensor": "temperature", "operator": ">", "value": -10, "duration": 60}]
		}]
	}`), 0o600))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "freezer_watch", rules[0].Name)
	assert.Equal(t, 60, rules[0].Conditions[0].Duration)

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"rules": []}`), 0o600))
	_, err = LoadRules(bad)
	assert.Error(t, err)
}
