package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Second, cfg.Collector.SampleInterval.Std())
	assert.Equal(t, time.Second, cfg.Collector.DrainInterval.Std())
	assert.Equal(t, 10, cfg.Collector.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.Model.Timeout.Std())
	assert.Empty(t, cfg.NATS.URL, "NATS is off by default")
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"logging": {"level": "debug", "format": "text"},
		"collector": {"sample_interval": "2s", "batch_size": 5},
		"nats": {"url": "nats://localhost:4222"}
	}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 2*time.Second, cfg.Collector.SampleInterval.Std())
	assert.Equal(t, 5, cfg.Collector.BatchSize)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	// Untouched sections keep their defaults.
	assert.Equal(t, time.Second, cfg.Collector.DrainInterval.Std())
	assert.Equal(t, ":8090", cfg.HTTP.Addr)
}

func TestLoadEmptyFileKeepsDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load("/nonexistent/config.json")
	assert.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"logging": {"level": "verbose"}}`), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SEMHOME_NATS_URL", "nats://broker:4222")
	t.Setenv("SEMHOME_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "nats://broker:4222", cfg.NATS.URL)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestDurationJSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1m30s"`), &d))
	assert.Equal(t, 90*time.Second, d.Std())

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, d.Std())

	assert.Error(t, json.Unmarshal([]byte(`"soon"`), &d))

	out, err := json.Marshal(Duration(5 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, `"5s"`, string(out))
}
