package observe

import (
	"math"
	"sync"
	"time"

	"github.com/c360/semhome/catalog"
	"github.com/c360/semhome/errors"
	"github.com/c360/semhome/pkg/buffer"
	"github.com/c360/semhome/pkg/timestamp"
	"github.com/c360/semhome/vocabulary"
)

const (
	// sampleWindow is how many prior observations per sensor feed the
	// anomaly statistics.
	sampleWindow = 50

	// minSamples is the minimum number of prior observations required
	// before the 3-sigma rule applies.
	minSamples = 5

	// sigmaFactor is the 3-sigma anomaly threshold.
	sigmaFactor = 3.0

	// defaultRetention bounds the shared most-recent observation list.
	defaultRetention = 1000
)

// Builder validates raw readings against the catalog and wraps them into
// observations. It keeps a bounded per-sensor sample window for anomaly
// detection and a shared most-recent list for snapshot consumers.
type Builder struct {
	catalog *catalog.Catalog

	mu      sync.Mutex
	samples map[string]buffer.Buffer[float64]
	recent  buffer.Buffer[Observation]
}

// NewBuilder creates a builder over the given catalog.
func NewBuilder(cat *catalog.Catalog) *Builder {
	return &Builder{
		catalog: cat,
		samples: make(map[string]buffer.Buffer[float64]),
		recent:  buffer.NewCircularBuffer[Observation](defaultRetention),
	}
}

// Build wraps a raw (sensor, value, time) triple into an Observation.
//
// Out-of-range values are still recorded, tagged QualityPoor. The anomaly
// flag uses the 3-sigma rule over the sensor's bounded sample window and
// only applies once at least minSamples prior values exist. Unknown sensor
// ids fail.
func (b *Builder) Build(sensorID string, value float64, at time.Time) (Observation, error) {
	desc, ok := b.catalog.Sensor(sensorID)
	if !ok {
		return Observation{}, errors.WrapInvalid(errors.ErrUnknownSensor, "Builder", "Build", "lookup "+sensorID)
	}

	obs := Observation{
		ID:         newObservationID(sensorID),
		SensorID:   sensorID,
		Value:      value,
		Unit:       desc.Range.Unit,
		ResultTime: timestamp.ToUnixMs(at),
		Quality:    assessQuality(desc, value),
		Location:   desc.Location,
		Property:   desc.Kind(),
		TypeIRI:    vocabulary.SosaObservation,
	}

	b.mu.Lock()
	obs.IsAnomaly = b.isAnomaly(sensorID, value)
	b.record(sensorID, obs)
	b.mu.Unlock()

	return obs, nil
}

// assessQuality grades a value against the declared range: poor when outside
// it, good within the inner 80%, fair in the outer margins.
func assessQuality(desc catalog.SensorDescriptor, value float64) Quality {
	if !desc.Contains(value) {
		return QualityPoor
	}

	span := desc.Range.Max - desc.Range.Min
	if span <= 0 {
		return QualityGood
	}

	innerMin := desc.Range.Min + 0.1*span
	innerMax := desc.Range.Max - 0.1*span
	if value >= innerMin && value <= innerMax {
		return QualityGood
	}
	return QualityFair
}

// isAnomaly applies the 3-sigma rule against the sensor's prior samples.
// Caller must hold b.mu.
func (b *Builder) isAnomaly(sensorID string, value float64) bool {
	window, ok := b.samples[sensorID]
	if !ok {
		return false
	}

	values := window.Snapshot()
	if len(values) < minSamples {
		return false
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	stddev := math.Sqrt(variance / float64(len(values)))

	return math.Abs(value-mean) > sigmaFactor*stddev
}

// record appends the observation to the per-sensor window and the shared
// recent list. Caller must hold b.mu.
func (b *Builder) record(sensorID string, obs Observation) {
	window, ok := b.samples[sensorID]
	if !ok {
		window = buffer.NewCircularBuffer[float64](sampleWindow)
		b.samples[sensorID] = window
	}
	_ = window.Write(obs.Value)
	_ = b.recent.Write(obs)
}

// Recent returns the newest n observations across all sensors, oldest first.
func (b *Builder) Recent(n int) []Observation {
	return b.recent.Recent(n)
}

// Snapshot returns the latest observation per sensor, keyed by sensor id.
// Feeds the composition advisor's sensor snapshot.
func (b *Builder) Snapshot() map[string]Observation {
	out := make(map[string]Observation)
	for _, obs := range b.recent.Snapshot() {
		out[obs.SensorID] = obs
	}
	return out
}

// SampleCount returns how many prior samples are held for a sensor.
func (b *Builder) SampleCount(sensorID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	if window, ok := b.samples[sensorID]; ok {
		return window.Size()
	}
	return 0
}
