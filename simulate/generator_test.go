package simulate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semhome/catalog"
	"github.com/c360/semhome/errors"
)

func fixedClock(hour int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 6, 1, hour, 30, 0, 0, time.UTC)
	}
}

func TestUnknownSensor(t *testing.T) {
	g := NewGenerator(catalog.Default())
	_, err := g.Reading("home:bogusSensor_001")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownSensor)
}

func TestSeededDeterminism(t *testing.T) {
	// Same seed, sensor and hour-of-day must yield the same value.
	for _, id := range []string{
		"home:temperatureSensor_001",
		"home:humiditySensor_001",
		"home:smokeSensor_001",
		"home:motionSensor_001",
		"home:lightSensor_001",
	} {
		g1 := NewGenerator(catalog.Default(), WithSeed(42), WithClock(fixedClock(14)))
		g2 := NewGenerator(catalog.Default(), WithSeed(42), WithClock(fixedClock(14)))

		v1, err := g1.Reading(id)
		require.NoError(t, err)
		v2, err := g2.Reading(id)
		require.NoError(t, err)
		assert.Equal(t, v1, v2, "sensor %s", id)
	}
}

func TestTemperatureBands(t *testing.T) {
	day := NewGenerator(catalog.Default(), WithSeed(1), WithClock(fixedClock(14)))
	night := NewGenerator(catalog.Default(), WithSeed(1), WithClock(fixedClock(23)))

	for i := 0; i < 100; i++ {
		v, err := day.Reading("home:temperatureSensor_001")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 22.0)
		assert.LessOrEqual(t, v, 30.0)

		v, err = night.Reading("home:temperatureSensor_001")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 20.0)
		assert.LessOrEqual(t, v, 28.0)
	}
}

func TestHumidityClamped(t *testing.T) {
	g := NewGenerator(catalog.Default(), WithSeed(7))
	for i := 0; i < 200; i++ {
		v, err := g.Reading("home:humiditySensor_001")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestSmokeMostlyLow(t *testing.T) {
	g := NewGenerator(catalog.Default(), WithSeed(3))

	low, spikes := 0, 0
	for i := 0; i < 1000; i++ {
		v, err := g.Reading("home:smokeSensor_001")
		require.NoError(t, err)
		if v >= 150 {
			spikes++
			assert.Less(t, v, 300.0)
		} else {
			low++
			assert.Less(t, v, 50.0)
		}
	}
	assert.Greater(t, low, spikes, "spikes must be the rare case")
	assert.Greater(t, spikes, 0, "1000 draws should include some spikes")
}

func TestMotionIsBinary(t *testing.T) {
	g := NewGenerator(catalog.Default(), WithSeed(5), WithClock(fixedClock(12)))
	for i := 0; i < 100; i++ {
		v, err := g.Reading("home:motionSensor_001")
		require.NoError(t, err)
		assert.Contains(t, []float64{0, 1}, v)
	}
}

func TestLightBands(t *testing.T) {
	tests := []struct {
		hour     int
		min, max float64
	}{
		{12, 300, 1000},
		{20, 50, 300},
		{2, 1, 50},
	}

	for _, tt := range tests {
		g := NewGenerator(catalog.Default(), WithSeed(9), WithClock(fixedClock(tt.hour)))
		for i := 0; i < 50; i++ {
			v, err := g.Reading("home:lightSensor_001")
			require.NoError(t, err)
			assert.GreaterOrEqual(t, v, tt.min, "hour %d", tt.hour)
			assert.Less(t, v, tt.max, "hour %d", tt.hour)
		}
	}
}
