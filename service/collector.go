// Package service runs the data collection pipeline: a sampling loop that
// sweeps every catalog sensor on a fixed interval, and a drain loop that
// pulls queued observations in batches, derives their semantic events, and
// feeds them through the tracker. Both loops are cooperative and stop when
// the collector's context is canceled.
package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360/semhome/catalog"
	"github.com/c360/semhome/errors"
	"github.com/c360/semhome/event"
	"github.com/c360/semhome/health"
	"github.com/c360/semhome/metric"
	"github.com/c360/semhome/observe"
	"github.com/c360/semhome/simulate"
	"github.com/c360/semhome/tracker"
)

const componentName = "collector"

// Collector owns the sampling and drain loops.
type Collector struct {
	catalog   *catalog.Catalog
	generator *simulate.Generator
	builder   *observe.Builder
	deriver   *event.Deriver
	tracker   *tracker.Tracker

	queue chan observe.Observation

	sampleInterval time.Duration
	drainInterval  time.Duration
	batchSize      int

	running atomic.Bool
	cancel  context.CancelFunc
	group   *errgroup.Group

	sweeps  atomic.Int64
	dropped atomic.Int64

	logger  *slog.Logger
	metrics *metric.Metrics
	monitor *health.Monitor
}

// Options configures a Collector. Zero-value fields take the defaults
// noted per field.
type Options struct {
	SampleInterval time.Duration // default 5s
	DrainInterval  time.Duration // default 1s
	BatchSize      int           // default 10
	QueueSize      int           // default 256

	Logger  *slog.Logger
	Metrics *metric.Metrics
	Monitor *health.Monitor
}

// NewCollector wires the pipeline components into a collector.
func NewCollector(cat *catalog.Catalog, gen *simulate.Generator, builder *observe.Builder,
	deriver *event.Deriver, tr *tracker.Tracker, opts Options) *Collector {

	if opts.SampleInterval <= 0 {
		opts.SampleInterval = 5 * time.Second
	}
	if opts.DrainInterval <= 0 {
		opts.DrainInterval = time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 10
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Collector{
		catalog:        cat,
		generator:      gen,
		builder:        builder,
		deriver:        deriver,
		tracker:        tr,
		queue:          make(chan observe.Observation, opts.QueueSize),
		sampleInterval: opts.SampleInterval,
		drainInterval:  opts.DrainInterval,
		batchSize:      opts.BatchSize,
		logger:         opts.Logger,
		metrics:        opts.Metrics,
		monitor:        opts.Monitor,
	}
}

// Start launches the sampling and drain loops. Calling Start on a running
// collector is an error.
func (c *Collector) Start(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return errors.WrapInvalid(errors.ErrAlreadyStarted, "service", "Start", "starting collector")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.group, runCtx = errgroup.WithContext(runCtx)

	c.group.Go(func() error { return c.samplingLoop(runCtx) })
	c.group.Go(func() error { return c.drainLoop(runCtx) })

	if c.monitor != nil {
		c.monitor.UpdateHealthy(componentName, "sampling and drain loops running")
	}
	if c.metrics != nil {
		c.metrics.ComponentStatus.WithLabelValues(componentName).Set(1)
	}
	c.logger.Info("collector started",
		"sensors", len(c.catalog.Sensors()),
		"sample_interval", c.sampleInterval,
		"drain_interval", c.drainInterval,
		"batch_size", c.batchSize)
	return nil
}

// Stop cancels both loops and waits for them to drain out.
func (c *Collector) Stop() error {
	if !c.running.CompareAndSwap(true, false) {
		return nil
	}
	c.cancel()
	err := c.group.Wait()

	if c.monitor != nil {
		c.monitor.UpdateUnhealthy(componentName, "stopped")
	}
	if c.metrics != nil {
		c.metrics.ComponentStatus.WithLabelValues(componentName).Set(0)
	}
	c.logger.Info("collector stopped", "sweeps", c.sweeps.Load(), "dropped", c.dropped.Load())

	if stderrors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// IsRunning reports whether the loops are live.
func (c *Collector) IsRunning() bool {
	return c.running.Load()
}

// Sweeps returns the number of completed sampling sweeps.
func (c *Collector) Sweeps() int64 {
	return c.sweeps.Load()
}

func (c *Collector) samplingLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Sweep(ctx)
		}
	}
}

// Sweep samples every catalog sensor once and enqueues the resulting
// observations. Exported so demo mode can drive single sweeps directly.
func (c *Collector) Sweep(ctx context.Context) {
	start := time.Now()
	now := time.Now()

	for _, sensor := range c.catalog.Sensors() {
		value, err := c.generator.Reading(sensor.ID)
		if err != nil {
			// Unknown ids are skipped, never fatal.
			c.logger.Warn("no reading for sensor", "sensor", sensor.ID, "error", err)
			continue
		}
		obs, err := c.builder.Build(sensor.ID, value, now)
		if err != nil {
			c.logger.Warn("observation build failed", "sensor", sensor.ID, "error", err)
			continue
		}
		c.enqueue(ctx, obs)
	}

	c.sweeps.Add(1)
	if c.metrics != nil {
		c.metrics.SweepDuration.Observe(time.Since(start).Seconds())
		c.metrics.QueueDepth.Set(float64(len(c.queue)))
	}
}

// enqueue offers the observation to the drain loop without blocking the
// sweep; a full queue drops the observation.
func (c *Collector) enqueue(ctx context.Context, obs observe.Observation) {
	select {
	case c.queue <- obs:
	case <-ctx.Done():
	default:
		c.dropped.Add(1)
		c.logger.Warn("queue full, dropping observation", "sensor", obs.SensorID)
		if c.monitor != nil {
			c.monitor.UpdateDegraded(componentName, "work queue is full")
		}
	}
}

func (c *Collector) drainLoop(ctx context.Context) error {
	ticker := time.NewTicker(c.drainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Flush whatever is queued before exiting.
			c.DrainBatch()
			return ctx.Err()
		case <-ticker.C:
			c.DrainBatch()
			if c.metrics != nil {
				c.metrics.QueueDepth.Set(float64(len(c.queue)))
			}
		}
	}
}

// DrainBatch pulls up to one batch off the queue and pushes each
// observation through derivation and tracking, preserving FIFO order.
// Returns the number of observations processed.
func (c *Collector) DrainBatch() int {
	processed := 0
	for processed < c.batchSize {
		select {
		case obs := <-c.queue:
			c.dispatch(obs)
			processed++
		default:
			return processed
		}
	}
	return processed
}

func (c *Collector) dispatch(obs observe.Observation) {
	if c.metrics != nil {
		c.metrics.ObservationsTotal.WithLabelValues(obs.SensorID, string(obs.Quality)).Inc()
	}
	for _, evt := range c.deriver.Derive(obs) {
		c.tracker.Process(evt)
	}
}
