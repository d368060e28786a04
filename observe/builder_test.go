package observe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semhome/catalog"
	"github.com/c360/semhome/errors"
	"github.com/c360/semhome/vocabulary"
)

var buildTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestBuildUnknownSensor(t *testing.T) {
	b := NewBuilder(catalog.Default())
	_, err := b.Build("home:bogusSensor_001", 1, buildTime)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownSensor)
}

func TestBuildTagsSemantics(t *testing.T) {
	b := NewBuilder(catalog.Default())

	obs, err := b.Build("home:temperatureSensor_001", 23.5, buildTime)
	require.NoError(t, err)

	assert.Equal(t, "home:temperatureSensor_001", obs.SensorID)
	assert.Equal(t, 23.5, obs.Value)
	assert.Equal(t, "°C", obs.Unit)
	assert.Equal(t, "living_room", obs.Location)
	assert.Equal(t, vocabulary.KindTemperature, obs.Property)
	assert.Equal(t, vocabulary.SosaObservation, obs.TypeIRI)
	assert.Equal(t, "comfortable", obs.Interpretation())
	assert.Equal(t, buildTime.UnixMilli(), obs.ResultTime)
	assert.NotEmpty(t, obs.ID)
}

func TestQualityBands(t *testing.T) {
	// Temperature range is [-10,50]: span 60, inner 80% is [-4,44].
	tests := []struct {
		value float64
		want  Quality
	}{
		{20, QualityGood},
		{-4, QualityGood},
		{44, QualityGood},
		{-8, QualityFair},
		{48, QualityFair},
		{60, QualityPoor},
		{-20, QualityPoor},
	}

	for _, tt := range tests {
		b := NewBuilder(catalog.Default())
		obs, err := b.Build("home:temperatureSensor_001", tt.value, buildTime)
		require.NoError(t, err)
		assert.Equal(t, tt.want, obs.Quality, "value %v", tt.value)
	}
}

func TestInRangeNeverPoor(t *testing.T) {
	b := NewBuilder(catalog.Default())
	desc, _ := catalog.Default().Sensor("home:humiditySensor_001")

	for v := desc.Range.Min; v <= desc.Range.Max; v += 5 {
		obs, err := b.Build("home:humiditySensor_001", v, buildTime)
		require.NoError(t, err)
		assert.NotEqual(t, QualityPoor, obs.Quality, "value %v is in range", v)
	}
}

func TestConstantValueNeverAnomalous(t *testing.T) {
	b := NewBuilder(catalog.Default())

	for i := 0; i < 20; i++ {
		obs, err := b.Build("home:temperatureSensor_001", 22.0, buildTime)
		require.NoError(t, err)
		assert.False(t, obs.IsAnomaly, "iteration %d", i)
	}
}

func TestOutlierFlaggedAfterMinSamples(t *testing.T) {
	b := NewBuilder(catalog.Default())

	// Tight cluster around 22, then a wild outlier.
	for i, v := range []float64{21.9, 22.0, 22.1, 22.0, 21.8, 22.2} {
		obs, err := b.Build("home:temperatureSensor_001", v, buildTime)
		require.NoError(t, err)
		assert.False(t, obs.IsAnomaly, "sample %d", i)
	}

	obs, err := b.Build("home:temperatureSensor_001", 45.0, buildTime)
	require.NoError(t, err)
	assert.True(t, obs.IsAnomaly)
}

func TestNoAnomalyBeforeMinSamples(t *testing.T) {
	b := NewBuilder(catalog.Default())

	for _, v := range []float64{22, 22, 22} {
		_, err := b.Build("home:temperatureSensor_001", v, buildTime)
		require.NoError(t, err)
	}

	// Only 3 prior samples: even a wild value is not flagged yet.
	obs, err := b.Build("home:temperatureSensor_001", 49.0, buildTime)
	require.NoError(t, err)
	assert.False(t, obs.IsAnomaly)
}

func TestRecentAndSnapshot(t *testing.T) {
	b := NewBuilder(catalog.Default())

	_, err := b.Build("home:temperatureSensor_001", 21, buildTime)
	require.NoError(t, err)
	_, err = b.Build("home:humiditySensor_001", 55, buildTime)
	require.NoError(t, err)
	_, err = b.Build("home:temperatureSensor_001", 23, buildTime)
	require.NoError(t, err)

	recent := b.Recent(10)
	require.Len(t, recent, 3)
	assert.Equal(t, 23.0, recent[2].Value, "newest last")

	snap := b.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, 23.0, snap["home:temperatureSensor_001"].Value, "latest value wins")

	assert.Equal(t, 2, b.SampleCount("home:temperatureSensor_001"))
	assert.Equal(t, 0, b.SampleCount("home:smokeSensor_001"))
}
