package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorUpdateAndGet(t *testing.T) {
	m := NewMonitor()

	m.UpdateHealthy("collector", "running")
	status, ok := m.Get("collector")
	require.True(t, ok)
	assert.True(t, status.IsHealthy())
	assert.Equal(t, "collector", status.Component)
	assert.False(t, status.Timestamp.IsZero())

	_, ok = m.Get("missing")
	assert.False(t, ok)
}

func TestAggregateHealth(t *testing.T) {
	m := NewMonitor()

	agg := m.AggregateHealth("semhome")
	assert.True(t, agg.IsHealthy(), "empty monitor aggregates healthy")

	m.UpdateHealthy("collector", "running")
	m.UpdateHealthy("gateway", "listening")
	agg = m.AggregateHealth("semhome")
	assert.True(t, agg.IsHealthy())
	assert.Len(t, agg.SubStatuses, 2)

	m.UpdateDegraded("gateway", "slow subscribers")
	agg = m.AggregateHealth("semhome")
	assert.True(t, agg.IsDegraded())

	m.UpdateUnhealthy("collector", "loop stopped")
	agg = m.AggregateHealth("semhome")
	assert.True(t, agg.IsUnhealthy())

	m.Remove("collector")
	agg = m.AggregateHealth("semhome")
	assert.True(t, agg.IsDegraded(), "removal drops the unhealthy component")
}
