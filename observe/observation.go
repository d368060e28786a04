// Package observe builds structured observations from raw sensor readings:
// range validation, quality banding, and statistical anomaly tagging against
// a bounded per-sensor sample window.
package observe

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/c360/semhome/vocabulary"
)

// Quality grades how trustworthy an observation is relative to the sensor's
// declared range.
type Quality string

// Quality grades.
const (
	QualityGood Quality = "good"
	QualityFair Quality = "fair"
	QualityPoor Quality = "poor"
)

// Observation is one timestamped sensor reading. Immutable once built.
type Observation struct {
	ID         string  `json:"id"`
	SensorID   string  `json:"sensor_id"`
	Value      float64 `json:"value"`
	Unit       string  `json:"unit"`
	ResultTime int64   `json:"result_time"` // unix ms
	Quality    Quality `json:"quality"`
	IsAnomaly  bool    `json:"is_anomaly"`

	// Semantic tags resolved from the catalog at build time.
	Location string                  `json:"location"`
	Property vocabulary.PropertyKind `json:"property"`
	TypeIRI  string                  `json:"type"` // sosa:Observation
}

// Interpretation returns the categorical label for the observed value.
func (o Observation) Interpretation() string {
	return o.Property.Interpret(o.Value)
}

func newObservationID(sensorID string) string {
	return fmt.Sprintf("obs_%s_%s", sensorID, uuid.NewString()[:8])
}
