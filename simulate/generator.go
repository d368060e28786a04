// Package simulate produces synthetic sensor values for the demo catalog.
// Each property kind has its own randomized formula, with the temperature,
// motion and light formulas modulated by the hour of day. The generator is
// non-deterministic by default; tests inject a fixed seed and clock.
package simulate

import (
	"math"
	"math/rand"
	"time"

	"github.com/c360/semhome/catalog"
	"github.com/c360/semhome/errors"
	"github.com/c360/semhome/vocabulary"
)

// Generator produces one synthetic value per sensor id.
type Generator struct {
	catalog *catalog.Catalog
	rng     *rand.Rand
	now     func() time.Time
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed fixes the random source, making generation deterministic for a
// given (seed, sensor, hour) triple.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed))
	}
}

// WithClock replaces the wall clock used for time-of-day modulation.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// NewGenerator creates a generator over the given catalog.
func NewGenerator(cat *catalog.Catalog, opts ...Option) *Generator {
	g := &Generator{
		catalog: cat,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Reading produces a synthetic value for the sensor id. Unknown sensor ids
// return ErrUnknownSensor.
func (g *Generator) Reading(sensorID string) (float64, error) {
	desc, ok := g.catalog.Sensor(sensorID)
	if !ok {
		return 0, errors.WrapInvalid(errors.ErrUnknownSensor, "Generator", "Reading", "lookup "+sensorID)
	}

	hour := g.now().Hour()

	switch desc.Kind() {
	case vocabulary.KindTemperature:
		return g.temperature(hour), nil
	case vocabulary.KindHumidity:
		return g.humidity(), nil
	case vocabulary.KindSmoke:
		return g.smoke(), nil
	case vocabulary.KindMotion:
		return g.motion(hour), nil
	case vocabulary.KindLight:
		return g.light(hour), nil
	default:
		return g.uniform(0, 100), nil
	}
}

// temperature is base 25.0 plus noise in [-3,+5], 2.0 lower at night
// (hours [22,24) and [0,6]).
func (g *Generator) temperature(hour int) float64 {
	variation := g.uniform(-3.0, 5.0)
	if hour >= 22 || hour <= 6 {
		variation -= 2.0
	}
	return round1(25.0 + variation)
}

// humidity is base 60.0 plus noise in [-15,+20], clamped to [0,100].
func (g *Generator) humidity() float64 {
	v := round1(60.0 + g.uniform(-15.0, 20.0))
	return math.Max(0, math.Min(100, v))
}

// smoke is usually low with a 5% chance of a spike in [150,300).
func (g *Generator) smoke() float64 {
	if g.rng.Float64() < 0.05 {
		return g.uniform(150, 300)
	}
	return g.uniform(0, 50)
}

// motion is 0/1 presence: P(1)=0.3 during hours [7,22], else 0.1.
func (g *Generator) motion(hour int) float64 {
	p := 0.1
	if hour >= 7 && hour <= 22 {
		p = 0.3
	}
	if g.rng.Float64() < p {
		return 1
	}
	return 0
}

// light draws from a time-banded range: day [300,1000), evening [50,300),
// night [1,50).
func (g *Generator) light(hour int) float64 {
	switch {
	case hour >= 6 && hour <= 18:
		return g.uniform(300, 1000)
	case hour >= 19 && hour <= 22:
		return g.uniform(50, 300)
	default:
		return g.uniform(1, 50)
	}
}

func (g *Generator) uniform(min, max float64) float64 {
	return min + g.rng.Float64()*(max-min)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
