package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semhome/catalog"
	"github.com/c360/semhome/compose"
	"github.com/c360/semhome/event"
	"github.com/c360/semhome/health"
	"github.com/c360/semhome/metric"
	"github.com/c360/semhome/observe"
	"github.com/c360/semhome/tracker"
)

func newTestServer(t *testing.T) (*Server, *tracker.Tracker, *observe.Builder) {
	t.Helper()
	cat := catalog.Default()
	builder := observe.NewBuilder(cat)
	tr := tracker.New()
	monitor := health.NewMonitor()
	monitor.UpdateHealthy("collector", "running")

	s := NewServer(ServerConfig{
		Addr:     ":0",
		Catalog:  cat,
		Builder:  builder,
		Tracker:  tr,
		Advisor:  compose.NewAdvisor(cat),
		Monitor:  monitor,
		Registry: metric.NewMetricsRegistry(),
	})
	return s, tr, builder
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var decoded map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &decoded)
	return rec, decoded
}

func TestHealthz(t *testing.T) {
	s, _, _ := newTestServer(t)
	rec, body := doJSON(t, s.routes(), http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
}

func TestHealthzUnhealthy(t *testing.T) {
	s, _, _ := newTestServer(t)
	s.monitor.UpdateUnhealthy("collector", "stopped")

	rec, _ := doJSON(t, s.routes(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStatus(t *testing.T) {
	s, tr, _ := newTestServer(t)
	tr.Process(event.Event{ID: "e1", Kind: event.KindReading, Source: "s1", Timestamp: 1})

	rec, body := doJSON(t, s.routes(), http.MethodGet, "/api/status", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "tracker")
	assert.Contains(t, body, "uptime_seconds")
}

func TestSensorsList(t *testing.T) {
	s, _, builder := newTestServer(t)
	_, err := builder.Build("home:temperatureSensor_001", 22, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/sensors", nil)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var sensors []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sensors))
	assert.Len(t, sensors, len(catalog.Default().Sensors()))

	var withLatest int
	for _, sv := range sensors {
		if _, ok := sv["latest"]; ok {
			withLatest++
		}
	}
	assert.Equal(t, 1, withLatest)
}

func TestSensorByID(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec, body := doJSON(t, s.routes(), http.MethodGet, "/api/sensors/home:smokeSensor_001", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "sensor")

	rec, _ = doJSON(t, s.routes(), http.MethodGet, "/api/sensors/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecentEvents(t *testing.T) {
	s, tr, _ := newTestServer(t)
	for i := 0; i < 5; i++ {
		tr.Process(event.Event{ID: event.NewID("e"), Kind: event.KindReading, Source: "s1", Timestamp: int64(i + 1)})
	}

	req := httptest.NewRequest(http.MethodGet, "/api/events/recent?limit=3", nil)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var events []event.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.Len(t, events, 3)

	rec, _ = doJSON(t, s.routes(), http.MethodGet, "/api/events/recent?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComposeEndpoint(t *testing.T) {
	s, _, _ := newTestServer(t)

	rec, body := doJSON(t, s.routes(), http.MethodPost, "/api/compositions", `{"goal": "fire safety"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, string(compose.StatusValidated), body["status"])

	rec, _ = doJSON(t, s.routes(), http.MethodPost, "/api/compositions", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doJSON(t, s.routes(), http.MethodPost, "/api/compositions", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestComposeRateLimit(t *testing.T) {
	cfg := ServerConfig{
		Addr:             ":0",
		Catalog:          catalog.Default(),
		Builder:          observe.NewBuilder(catalog.Default()),
		Tracker:          tracker.New(),
		Advisor:          compose.NewAdvisor(catalog.Default()),
		CompositionRPS:   0.001,
		CompositionBurst: 1,
	}
	limited := NewServer(cfg)

	rec, _ := doJSON(t, limited.routes(), http.MethodPost, "/api/compositions", `{"goal": "x"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = doJSON(t, limited.routes(), http.MethodPost, "/api/compositions", `{"goal": "x"}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestWebsocketFeed(t *testing.T) {
	s, tr, _ := newTestServer(t)
	tr.Subscribe(s.Hub())

	srv := httptest.NewServer(s.routes())
	defer srv.Close()
	defer s.Hub().Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Wait for registration before producing.
	deadline := time.Now().Add(time.Second)
	for s.Hub().ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, 1, s.Hub().ClientCount())

	tr.Process(event.Event{
		ID:        "th1",
		Kind:      event.KindThresholdExceeded,
		Source:    "home:smokeSensor_001",
		Timestamp: time.Now().UnixMilli(),
		Details:   map[string]any{"threshold_type": "high", "threshold_value": 200.0, "actual_value": 250.0},
	})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var evt event.Event
	require.NoError(t, json.Unmarshal(data, &evt))
	assert.Equal(t, event.KindThresholdBreached, evt.Kind)
}
