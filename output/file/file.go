// Package file appends derived events to per-hour JSON Lines files. It is
// a best-effort history dump: write failures are counted and logged, never
// propagated, and the pipeline does not depend on it for correctness.
package file

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/semhome/errors"
	"github.com/c360/semhome/event"
)

const subscriberName = "filedump"

// Config for the file writer.
type Config struct {
	// Directory receiving the hourly files.
	Directory string

	// FilePrefix names the files; "events" yields "events_2025060112.jsonl".
	FilePrefix string

	Logger *slog.Logger
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Directory == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "file", "Validate", "directory is required")
	}
	return nil
}

// Writer appends events to the current hour's file, rotating on the hour
// boundary. Implements tracker.Subscriber.
type Writer struct {
	directory string
	prefix    string
	logger    *slog.Logger
	now       func() time.Time

	mu          sync.Mutex
	file        *os.File
	currentHour string

	written  atomic.Int64
	failures atomic.Int64
	bytesOut atomic.Int64
}

// NewWriter creates the output directory if needed and returns a writer.
func NewWriter(cfg Config) (*Writer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.FilePrefix == "" {
		cfg.FilePrefix = "events"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(cfg.Directory, 0o750); err != nil {
		return nil, errors.WrapFatal(err, "file", "NewWriter", "creating output directory")
	}

	return &Writer{
		directory: cfg.Directory,
		prefix:    cfg.FilePrefix,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Name implements tracker.Subscriber.
func (w *Writer) Name() string { return subscriberName }

// HandleEvent appends the event as one JSON line to the current hour file.
func (w *Writer) HandleEvent(evt event.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		w.failures.Add(1)
		return errors.WrapInvalid(err, "file", "HandleEvent", "encoding event")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.currentFile()
	if err != nil {
		w.failures.Add(1)
		w.logger.Error("hourly file unavailable", "error", err)
		return err
	}

	n, err := f.Write(append(data, '\n'))
	if err != nil {
		w.failures.Add(1)
		return errors.WrapTransient(err, "file", "HandleEvent", "appending event")
	}
	w.written.Add(1)
	w.bytesOut.Add(int64(n))
	return nil
}

// currentFile returns the open handle for the current hour, rotating when
// the hour changed. Caller holds w.mu.
func (w *Writer) currentFile() (*os.File, error) {
	hour := w.now().Format("2006010215")
	if w.file != nil && hour == w.currentHour {
		return w.file, nil
	}

	if w.file != nil {
		if err := w.file.Close(); err != nil {
			w.logger.Warn("closing hourly file failed", "file", w.currentHour, "error", err)
		}
	}

	path := filepath.Join(w.directory, fmt.Sprintf("%s_%s.jsonl", w.prefix, hour))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, errors.WrapTransient(err, "file", "currentFile", "opening hourly file")
	}

	w.file = f
	w.currentHour = hour
	w.logger.Info("rotated to new hourly file", "path", path)
	return f, nil
}

// Stats reports writer activity.
type Stats struct {
	Written  int64 `json:"written"`
	Failures int64 `json:"failures"`
	Bytes    int64 `json:"bytes"`
}

// Stats returns a snapshot of write counters.
func (w *Writer) Stats() Stats {
	return Stats{
		Written:  w.written.Load(),
		Failures: w.failures.Load(),
		Bytes:    w.bytesOut.Load(),
	}
}

// Close flushes and closes the current file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
