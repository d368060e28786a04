package tracker

// Trend labels for a sensor's value direction between consecutive readings.
const (
	TrendStable  = "stable"
	TrendRising  = "rising"
	TrendFalling = "falling"
)

// trendEpsilon is the minimum change treated as movement; smaller deltas
// read as stable.
const trendEpsilon = 0.1

// SensorState is the rolling per-sensor view maintained from Reading events.
type SensorState struct {
	SensorID           string  `json:"sensor_id"`
	LastValue          float64 `json:"last_value"`
	LastUpdate         int64   `json:"last_update"` // unix ms
	Trend              string  `json:"trend"`
	LastInterpretation string  `json:"last_interpretation,omitempty"`
}

// LocationState aggregates activity per location across all event kinds.
type LocationState struct {
	Location     string              `json:"location"`
	Sensors      map[string]struct{} `json:"-"`
	LastActivity int64               `json:"last_activity"` // unix ms
	EventCount   int                 `json:"event_count"`
}

// SensorIDs returns the sensors seen at this location.
func (ls *LocationState) SensorIDs() []string {
	ids := make([]string, 0, len(ls.Sensors))
	for id := range ls.Sensors {
		ids = append(ids, id)
	}
	return ids
}

func trendOf(previous, current float64) string {
	switch {
	case abs(current-previous) < trendEpsilon:
		return TrendStable
	case current > previous:
		return TrendRising
	default:
		return TrendFalling
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
