// Package catalog provides the static registry of sensor and service
// descriptors. The catalog is loaded once at startup from a JSON document
// and is read-only afterwards; a missing or corrupt document is the one
// fatal startup condition in the system.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/c360/semhome/errors"
	"github.com/c360/semhome/vocabulary"
)

// ValueRange declares the valid numeric range and unit of a sensor.
type ValueRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Unit string  `json:"unit"`
}

// SensorDescriptor describes one sensor. Immutable after load.
type SensorDescriptor struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Location string     `json:"location"`
	Observes string     `json:"observes"` // observed-property IRI or short name
	Range    ValueRange `json:"range"`
}

// Kind classifies the sensor's observed property.
func (d SensorDescriptor) Kind() vocabulary.PropertyKind {
	if kind := vocabulary.KindOf(d.ID); kind != vocabulary.KindUnknown {
		return kind
	}
	return vocabulary.KindOf(d.Observes)
}

// Contains reports whether a value lies inside the declared range.
func (d SensorDescriptor) Contains(value float64) bool {
	return value >= d.Range.Min && value <= d.Range.Max
}

// PlatformDescriptor describes a hub hosting one or more sensors.
type PlatformDescriptor struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Hosts    []string `json:"hosts"`
}

// ServiceDescriptor describes a predefined IoT service available for
// composition planning.
type ServiceDescriptor struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Inputs      []string `json:"inputs"`
	Outputs     []string `json:"outputs"`
}

// Document is the on-disk shape of the catalog.
type Document struct {
	Sensors   []SensorDescriptor   `json:"sensors"`
	Platforms []PlatformDescriptor `json:"platforms,omitempty"`
	Services  []ServiceDescriptor  `json:"services,omitempty"`
}

// Catalog is the loaded, read-only registry.
type Catalog struct {
	sensors   []SensorDescriptor
	platforms []PlatformDescriptor
	services  []ServiceDescriptor
	byID      map[string]SensorDescriptor
	svcByID   map[string]ServiceDescriptor
}

// Load reads a catalog document from a file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapFatal(errors.ErrCatalogNotFound, "Catalog", "Load", "open "+path)
		}
		return nil, errors.WrapFatal(err, "Catalog", "Load", "read "+path)
	}
	return Parse(data)
}

// Parse builds a catalog from raw JSON.
func Parse(data []byte) (*Catalog, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapFatal(err, "Catalog", "Parse", "decode document")
	}
	return New(doc)
}

// New builds a catalog from an in-memory document.
func New(doc Document) (*Catalog, error) {
	if len(doc.Sensors) == 0 {
		return nil, errors.WrapFatal(
			fmt.Errorf("document declares no sensors"),
			"Catalog", "New", "validate document")
	}

	c := &Catalog{
		sensors:   doc.Sensors,
		platforms: doc.Platforms,
		services:  doc.Services,
		byID:      make(map[string]SensorDescriptor, len(doc.Sensors)),
		svcByID:   make(map[string]ServiceDescriptor, len(doc.Services)),
	}

	for _, s := range doc.Sensors {
		if s.ID == "" {
			return nil, errors.WrapFatal(
				fmt.Errorf("sensor with empty id"),
				"Catalog", "New", "validate sensor")
		}
		if s.Range.Max < s.Range.Min {
			return nil, errors.WrapFatal(
				fmt.Errorf("sensor %s: range max %v below min %v", s.ID, s.Range.Max, s.Range.Min),
				"Catalog", "New", "validate sensor range")
		}
		if _, dup := c.byID[s.ID]; dup {
			return nil, errors.WrapFatal(
				fmt.Errorf("duplicate sensor id %s", s.ID),
				"Catalog", "New", "validate sensor")
		}
		c.byID[s.ID] = s
	}

	for _, svc := range doc.Services {
		if svc.ID == "" {
			return nil, errors.WrapFatal(
				fmt.Errorf("service with empty id"),
				"Catalog", "New", "validate service")
		}
		c.svcByID[svc.ID] = svc
	}

	return c, nil
}

// Sensor returns the descriptor for a sensor id.
func (c *Catalog) Sensor(id string) (SensorDescriptor, bool) {
	d, ok := c.byID[id]
	return d, ok
}

// Sensors returns all sensor descriptors in document order.
func (c *Catalog) Sensors() []SensorDescriptor {
	out := make([]SensorDescriptor, len(c.sensors))
	copy(out, c.sensors)
	return out
}

// SensorsByLocation returns the sensors declared at a location.
func (c *Catalog) SensorsByLocation(location string) []SensorDescriptor {
	var out []SensorDescriptor
	for _, s := range c.sensors {
		if s.Location == location {
			out = append(out, s)
		}
	}
	return out
}

// SensorsByKind returns the sensors observing a given property kind.
func (c *Catalog) SensorsByKind(kind vocabulary.PropertyKind) []SensorDescriptor {
	var out []SensorDescriptor
	for _, s := range c.sensors {
		if s.Kind() == kind {
			out = append(out, s)
		}
	}
	return out
}

// Service returns the descriptor for a service id.
func (c *Catalog) Service(id string) (ServiceDescriptor, bool) {
	d, ok := c.svcByID[id]
	return d, ok
}

// Services returns all service descriptors in document order.
func (c *Catalog) Services() []ServiceDescriptor {
	out := make([]ServiceDescriptor, len(c.services))
	copy(out, c.services)
	return out
}

// Platforms returns all platform descriptors in document order.
func (c *Catalog) Platforms() []PlatformDescriptor {
	out := make([]PlatformDescriptor, len(c.platforms))
	copy(out, c.platforms)
	return out
}

// Stats summarizes the catalog for status endpoints.
type Stats struct {
	Sensors    int            `json:"sensors"`
	Platforms  int            `json:"platforms"`
	Services   int            `json:"services"`
	ByLocation map[string]int `json:"by_location"`
	ByKind     map[string]int `json:"by_kind"`
}

// Stats returns summary counts of the catalog contents.
func (c *Catalog) Stats() Stats {
	stats := Stats{
		Sensors:    len(c.sensors),
		Platforms:  len(c.platforms),
		Services:   len(c.services),
		ByLocation: make(map[string]int),
		ByKind:     make(map[string]int),
	}
	for _, s := range c.sensors {
		stats.ByLocation[s.Location]++
		stats.ByKind[string(s.Kind())]++
	}
	return stats
}
