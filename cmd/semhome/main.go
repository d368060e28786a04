// Package main implements the semhome entry point: a smart-home pipeline
// that samples simulated sensors, derives semantic events, tracks state and
// correlations, and serves a dashboard gateway plus a composition advisor.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/c360/semhome/catalog"
	"github.com/c360/semhome/compose"
	"github.com/c360/semhome/config"
	"github.com/c360/semhome/event"
	gateway "github.com/c360/semhome/gateway/http"
	"github.com/c360/semhome/health"
	"github.com/c360/semhome/metric"
	"github.com/c360/semhome/observe"
	"github.com/c360/semhome/output/file"
	"github.com/c360/semhome/output/natspub"
	"github.com/c360/semhome/service"
	"github.com/c360/semhome/simulate"
	"github.com/c360/semhome/tracker"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semhome"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cliCfg := parseFlags()

	if cliCfg.ShowVersion {
		fmt.Printf("%s %s (build %s)\n", appName, Version, BuildTime)
		return nil
	}
	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil
	}
	if err := validateFlags(cliCfg); err != nil {
		return err
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return err
	}
	if cliCfg.Validate {
		logger.Info("configuration is valid")
		return nil
	}
	if cliCfg.Seed != 0 {
		cfg.Collector.Seed = cliCfg.Seed
	}

	app, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}
	defer app.close()

	switch cliCfg.Mode {
	case "demo":
		return app.runDemo()
	case "compose":
		return app.runCompose(cliCfg.Goal)
	default:
		return app.runPipeline(cfg)
	}
}

// app bundles the wired pipeline.
type app struct {
	catalog   *catalog.Catalog
	builder   *observe.Builder
	tracker   *tracker.Tracker
	advisor   *compose.Advisor
	collector *service.Collector
	gateway   *gateway.Server
	monitor   *health.Monitor
	logger    *slog.Logger

	fileWriter *file.Writer
	natsPub    *natspub.Publisher
}

func buildApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	registry := metric.NewMetricsRegistry()
	metrics := registry.CoreMetrics()
	monitor := health.NewMonitor()

	var genOpts []simulate.Option
	if cfg.Collector.Seed != 0 {
		genOpts = append(genOpts, simulate.WithSeed(cfg.Collector.Seed))
	}
	generator := simulate.NewGenerator(cat, genOpts...)
	builder := observe.NewBuilder(cat)
	deriver := event.NewDeriver()

	trackerOpts := []tracker.Option{
		tracker.WithLogger(logger.With("component", "tracker")),
		tracker.WithMetrics(metrics),
	}
	if cfg.RulesPath != "" {
		rules, err := tracker.LoadRules(cfg.RulesPath)
		if err != nil {
			return nil, err
		}
		trackerOpts = append(trackerOpts, tracker.WithRules(rules))
	}
	tr := tracker.New(trackerOpts...)

	a := &app{
		catalog: cat,
		builder: builder,
		tracker: tr,
		monitor: monitor,
		logger:  logger,
	}

	// Optional subscribers first so they see every derived event.
	if cfg.Output.Dir != "" {
		writer, err := file.NewWriter(file.Config{
			Directory: cfg.Output.Dir,
			Logger:    logger.With("component", "filedump"),
		})
		if err != nil {
			return nil, err
		}
		tr.Subscribe(writer)
		a.fileWriter = writer
	}

	if cfg.NATS.URL != "" {
		pub, err := natspub.New(natspub.Config{
			URL:           cfg.NATS.URL,
			SubjectPrefix: cfg.NATS.SubjectPrefix,
			MaxReconnects: cfg.NATS.MaxReconnects,
			ReconnectWait: cfg.NATS.ReconnectWait.Std(),
			Logger:        logger.With("component", "natspub"),
		})
		if err != nil {
			// The pipeline works without the broker; log and continue.
			logger.Warn("nats publisher unavailable", "error", err)
		} else {
			tr.Subscribe(pub)
			a.natsPub = pub
		}
	}

	var advisorOpts []compose.AdvisorOption
	advisorOpts = append(advisorOpts,
		compose.WithLogger(logger.With("component", "compose")),
		compose.WithMetrics(metrics),
	)
	if cfg.Model.APIKey != "" {
		completer, err := compose.NewChatCompleter(compose.ChatConfig{
			BaseURL: cfg.Model.BaseURL,
			APIKey:  cfg.Model.APIKey,
			Model:   cfg.Model.Model,
			Timeout: cfg.Model.Timeout.Std(),
		})
		if err != nil {
			return nil, err
		}
		advisorOpts = append(advisorOpts, compose.WithCompleter(completer))
		logger.Info("composition advisor using live model", "model", cfg.Model.Model)
	} else {
		logger.Info("no model credential configured, composition advisor serves canned plans")
	}
	a.advisor = compose.NewAdvisor(cat, advisorOpts...)

	a.collector = service.NewCollector(cat, generator, builder, deriver, tr, service.Options{
		SampleInterval: cfg.Collector.SampleInterval.Std(),
		DrainInterval:  cfg.Collector.DrainInterval.Std(),
		BatchSize:      cfg.Collector.BatchSize,
		QueueSize:      cfg.Collector.QueueSize,
		Logger:         logger.With("component", "collector"),
		Metrics:        metrics,
		Monitor:        monitor,
	})

	a.gateway = gateway.NewServer(gateway.ServerConfig{
		Addr:             cfg.HTTP.Addr,
		Catalog:          cat,
		Builder:          builder,
		Tracker:          tr,
		Advisor:          a.advisor,
		Collector:        a.collector,
		Monitor:          monitor,
		Registry:         registry,
		CompositionRPS:   cfg.HTTP.CompositionRPS,
		CompositionBurst: cfg.HTTP.CompositionBurst,
		Logger:           logger.With("component", "gateway"),
	})
	tr.Subscribe(a.gateway.Hub())

	return a, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(path)
}

func (a *app) close() {
	if a.fileWriter != nil {
		if err := a.fileWriter.Close(); err != nil {
			a.logger.Warn("closing file writer failed", "error", err)
		}
	}
	if a.natsPub != nil {
		a.natsPub.Close()
	}
}

// runPipeline runs the collector and gateway until interrupted.
func (a *app) runPipeline(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.collector.Start(ctx); err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error { return a.gateway.Start(groupCtx) })

	a.logger.Info("pipeline running", "http_addr", cfg.HTTP.Addr)
	err := group.Wait()

	if stopErr := a.collector.Stop(); stopErr != nil {
		a.logger.Warn("collector stop failed", "error", stopErr)
	}
	return err
}

// runDemo performs one deterministic sweep, drains it through the pipeline,
// prints the derived events, and asks for two example compositions.
func (a *app) runDemo() error {
	recorder := &printingSubscriber{}
	a.tracker.Subscribe(recorder)

	a.collector.Sweep(context.Background())
	for a.collector.DrainBatch() > 0 {
	}

	fmt.Printf("\n--- sweep: %d observations, %d derived events ---\n",
		len(a.builder.Snapshot()), recorder.count)
	stats := a.tracker.Stats()
	fmt.Printf("tracker: processed=%d derived=%d sensors=%d locations=%d\n\n",
		stats.Processed, stats.Derived, stats.Sensors, stats.Locations)

	for _, goal := range []string{"detect fire risk in the kitchen", "reduce energy use overnight"} {
		plan := a.advisor.Compose(context.Background(), goal, nil, nil)
		printPlan(plan)
	}
	return nil
}

// runCompose produces one plan for the given goal and prints it.
func (a *app) runCompose(goal string) error {
	snapshot := make(map[string]float64)
	for id, obs := range a.builder.Snapshot() {
		snapshot[id] = obs.Value
	}
	printPlan(a.advisor.Compose(context.Background(), goal, snapshot, nil))
	return nil
}

func printPlan(plan *compose.Plan) {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		fmt.Printf("plan %s: %v\n", plan.ID, err)
		return
	}
	fmt.Printf("%s\n\n", data)
}

type printingSubscriber struct {
	count int
}

func (p *printingSubscriber) Name() string { return "demo-printer" }

func (p *printingSubscriber) HandleEvent(evt event.Event) error {
	p.count++
	fmt.Printf("[%s] %s source=%s severity=%s\n", evt.Class, evt.Kind, evt.Source, evt.Severity)
	return nil
}
