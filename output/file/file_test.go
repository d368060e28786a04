package file

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/semhome/event"
)

func TestValidateRequiresDirectory(t *testing.T) {
	_, err := NewWriter(Config{})
	assert.Error(t, err)
}

func TestHandleEventAppendsJSONLines(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(Config{Directory: dir})
	require.NoError(t, err)
	defer w.Close()

	for i, kind := range []event.Kind{event.KindReading, event.KindFireAlarm} {
		require.NoError(t, w.HandleEvent(event.Event{
			ID:        event.NewID("test"),
			Kind:      kind,
			Timestamp: int64(i),
		}))
	}
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "events_")
	assert.Contains(t, entries[0].Name(), ".jsonl")

	f, err := os.Open(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var evt event.Event
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &evt), "each line is one event")
		lines++
	}
	assert.Equal(t, 2, lines)

	stats := w.Stats()
	assert.Equal(t, int64(2), stats.Written)
	assert.Zero(t, stats.Failures)
}

func TestHourlyRotation(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(Config{Directory: dir, FilePrefix: "dump"})
	require.NoError(t, err)
	defer w.Close()

	current := time.Date(2025, 6, 1, 12, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return current }

	require.NoError(t, w.HandleEvent(event.Event{ID: "a", Kind: event.KindReading}))

	current = current.Add(2 * time.Minute) // crosses into 13:00
	require.NoError(t, w.HandleEvent(event.Event{ID: "b", Kind: event.KindReading}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "dump_2025060112.jsonl", entries[0].Name())
	assert.Equal(t, "dump_2025060113.jsonl", entries[1].Name())
}
