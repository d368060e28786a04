package metric

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semhome/errors"
)

func TestNewMetricsRegistry(t *testing.T) {
	reg := NewMetricsRegistry()
	require.NotNil(t, reg.CoreMetrics())
	require.NotNil(t, reg.PrometheusRegistry())

	reg.CoreMetrics().EventsTotal.WithLabelValues("Reading", "info").Inc()
	assert.Equal(t, float64(1), testutil.ToFloat64(
		reg.CoreMetrics().EventsTotal.WithLabelValues("Reading", "info")))
}

func TestRegisterDuplicate(t *testing.T) {
	reg := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "semhome",
		Name:      "test_counter_total",
		Help:      "test",
	})

	require.NoError(t, reg.Register("gateway", "test_counter", counter))

	err := reg.Register("gateway", "test_counter", counter)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestUnregister(t *testing.T) {
	reg := NewMetricsRegistry()

	gauge := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "semhome",
		Name:      "test_gauge",
		Help:      "test",
	})

	require.NoError(t, reg.Register("gateway", "test_gauge", gauge))
	assert.True(t, reg.Unregister("gateway", "test_gauge"))
	assert.False(t, reg.Unregister("gateway", "test_gauge"))

	// Re-registration after unregister must succeed.
	require.NoError(t, reg.Register("gateway", "test_gauge", gauge))
}
