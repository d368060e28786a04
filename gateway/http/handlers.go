package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/c360/semhome/event"
	"github.com/c360/semhome/observe"
)

const defaultRecentLimit = 50

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("response encoding failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	if s.monitor == nil {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
		return
	}
	aggregate := s.monitor.AggregateHealth("semhome")
	status := http.StatusOK
	if aggregate.IsUnhealthy() {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, aggregate)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	body := map[string]any{
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
		"tracker":        s.tracker.Stats(),
		"catalog":        s.catalog.Stats(),
		"compositions":   len(s.advisor.History()),
		"ws_clients":     s.hub.ClientCount(),
	}
	if s.collector != nil {
		body["collector"] = map[string]any{
			"running": s.collector.IsRunning(),
			"sweeps":  s.collector.Sweeps(),
		}
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleSensors(w http.ResponseWriter, _ *http.Request) {
	latest := s.builder.Snapshot()
	type sensorView struct {
		ID       string               `json:"id"`
		Name     string               `json:"name"`
		Location string               `json:"location"`
		Property string               `json:"property"`
		Unit     string               `json:"unit"`
		Latest   *observe.Observation `json:"latest,omitempty"`
	}

	var out []sensorView
	for _, sensor := range s.catalog.Sensors() {
		view := sensorView{
			ID:       sensor.ID,
			Name:     sensor.Name,
			Location: sensor.Location,
			Property: string(sensor.Kind()),
			Unit:     sensor.Range.Unit,
		}
		if obs, ok := latest[sensor.ID]; ok {
			o := obs
			view.Latest = &o
		}
		out = append(out, view)
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSensor(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sensor, ok := s.catalog.Sensor(id)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown sensor id")
		return
	}

	body := map[string]any{"sensor": sensor}
	if obs, ok := s.builder.Snapshot()[id]; ok {
		body["latest"] = obs
	}
	if state, ok := s.tracker.SensorStates()[id]; ok {
		body["state"] = state
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleRecentEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}
	events := s.tracker.RecentEvents(limit)
	if events == nil {
		events = []event.Event{}
	}
	s.writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleCompositionHistory(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.advisor.History())
}

type compositionRequest struct {
	Goal        string   `json:"goal"`
	Constraints []string `json:"constraints,omitempty"`
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow() {
		s.writeError(w, http.StatusTooManyRequests, "composition rate limit exceeded")
		return
	}

	var req compositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "request body must be json")
		return
	}
	if req.Goal == "" {
		s.writeError(w, http.StatusBadRequest, "goal is required")
		return
	}

	snapshot := make(map[string]float64)
	for id, obs := range s.builder.Snapshot() {
		snapshot[id] = obs.Value
	}

	plan := s.advisor.Compose(r.Context(), req.Goal, snapshot, req.Constraints)
	s.writeJSON(w, http.StatusCreated, plan)
}
