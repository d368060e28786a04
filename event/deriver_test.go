package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semhome/catalog"
	"github.com/c360/semhome/observe"
)

var deriveTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func buildObs(t *testing.T, sensorID string, value float64) observe.Observation {
	t.Helper()
	obs, err := observe.NewBuilder(catalog.Default()).Build(sensorID, value, deriveTime)
	require.NoError(t, err)
	return obs
}

func TestDeriveAlwaysEmitsReading(t *testing.T) {
	d := NewDeriver()
	events := d.Derive(buildObs(t, "home:temperatureSensor_001", 22))

	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, KindReading, e.Kind)
	assert.Equal(t, ClassSemantic, e.Class)
	assert.Equal(t, SeverityInfo, e.Severity)
	assert.Equal(t, "home:temperatureSensor_001", e.Source)
	assert.Equal(t, "living_room", e.Location)
	assert.Equal(t, 22.0, e.Value)
	assert.Equal(t, "comfortable", e.Interpretation)
	assert.Equal(t, "temperature", e.Detail("property"))
	assert.True(t, e.IsReading())
}

func TestSmokeHighThreshold(t *testing.T) {
	d := NewDeriver()
	events := d.Derive(buildObs(t, "home:smokeSensor_001", 250))

	require.Len(t, events, 2, "reading plus exactly one threshold event")

	te := events[1]
	assert.Equal(t, KindThresholdExceeded, te.Kind)
	assert.Equal(t, SeverityHigh, te.Severity)
	assert.Equal(t, "high", te.Detail("threshold_type"))
	assert.Equal(t, 200.0, te.Detail("threshold_value"))
	assert.Equal(t, 250.0, te.Detail("actual_value"))
}

func TestTemperatureThresholds(t *testing.T) {
	d := NewDeriver()

	events := d.Derive(buildObs(t, "home:temperatureSensor_001", 35))
	require.Len(t, events, 2)
	assert.Equal(t, "high", events[1].Detail("threshold_type"))
	assert.Equal(t, SeverityMedium, events[1].Severity, "only smoke-high is high severity")

	events = d.Derive(buildObs(t, "home:temperatureSensor_001", 10))
	require.Len(t, events, 2)
	assert.Equal(t, "low", events[1].Detail("threshold_type"))
	assert.Equal(t, SeverityMedium, events[1].Severity)
}

func TestMotionHasNoThresholds(t *testing.T) {
	d := NewDeriver()
	events := d.Derive(buildObs(t, "home:motionSensor_001", 1))
	assert.Len(t, events, 1)
}

func TestInBandValueEmitsOnlyReading(t *testing.T) {
	d := NewDeriver()
	for _, tt := range []struct {
		sensor string
		value  float64
	}{
		{"home:temperatureSensor_001", 22},
		{"home:humiditySensor_001", 55},
		{"home:smokeSensor_001", 20},
		{"home:lightSensor_001", 400},
	} {
		events := d.Derive(buildObs(t, tt.sensor, tt.value))
		assert.Len(t, events, 1, "sensor %s value %v", tt.sensor, tt.value)
	}
}

func TestAnomalyEventDerived(t *testing.T) {
	b := observe.NewBuilder(catalog.Default())
	for _, v := range []float64{22, 22.1, 21.9, 22, 22.05, 21.95} {
		_, err := b.Build("home:temperatureSensor_001", v, deriveTime)
		require.NoError(t, err)
	}
	obs, err := b.Build("home:temperatureSensor_001", 29.5, deriveTime)
	require.NoError(t, err)
	require.True(t, obs.IsAnomaly)

	events := NewDeriver().Derive(obs)
	require.Len(t, events, 2)
	assert.Equal(t, KindAnomalyDetected, events[1].Kind)
	assert.Equal(t, SeverityMedium, events[1].Severity)
}
