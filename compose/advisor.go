package compose

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/c360/semhome/catalog"
	"github.com/c360/semhome/metric"
)

const (
	// historyCap bounds the composition history; on overflow the list is
	// trimmed to the newest historyKeep entries.
	historyCap  = 100
	historyKeep = 50
)

// Advisor produces composition plans. With no completer configured it
// serves keyword-selected canned examples; with one, it prompts the model
// and falls back to the same canned path on any failure. Safe for
// concurrent use.
type Advisor struct {
	mu        sync.Mutex
	catalog   *catalog.Catalog
	completer Completer
	history   []HistoryEntry

	logger  *slog.Logger
	metrics *metric.Metrics
	now     func() time.Time
}

// AdvisorOption configures an Advisor.
type AdvisorOption func(*Advisor)

// WithCompleter wires a live model-call collaborator.
func WithCompleter(c Completer) AdvisorOption {
	return func(a *Advisor) { a.completer = c }
}

// WithLogger sets the advisor's logger.
func WithLogger(logger *slog.Logger) AdvisorOption {
	return func(a *Advisor) { a.logger = logger }
}

// WithMetrics wires the advisor's counters.
func WithMetrics(m *metric.Metrics) AdvisorOption {
	return func(a *Advisor) { a.metrics = m }
}

// WithClock overrides the advisor's clock.
func WithClock(now func() time.Time) AdvisorOption {
	return func(a *Advisor) { a.now = now }
}

// NewAdvisor creates an advisor over the given catalog.
func NewAdvisor(cat *catalog.Catalog, opts ...AdvisorOption) *Advisor {
	a := &Advisor{
		catalog: cat,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Compose renders the prompt, obtains a response (model or canned),
// extracts and validates the structured plan, and records a history entry.
// It never returns an error: every failure mode degrades to a plan whose
// status says what happened.
func (a *Advisor) Compose(ctx context.Context, goal string, snapshot map[string]float64, constraints []string) *Plan {
	raw := a.respond(ctx, goal, snapshot, constraints)

	plan := &Plan{
		ID:        NewPlanID(),
		CreatedAt: a.now().UnixMilli(),
		Goal:      goal,
		RawOutput: raw,
	}

	p, err := extractPayload(raw)
	if err != nil {
		a.logger.Warn("composition payload unusable", "goal", goal, "error", err)
		plan.Status = StatusParsingFailed
		plan.Validation = Validation{IsValid: false, Errors: []string{"no decodable json payload in model output"}}
	} else {
		plan.Services = p.Services
		plan.Validation = validatePlan(a.catalog, p.Services)
		if plan.Validation.IsValid {
			plan.Status = StatusValidated
		} else {
			plan.Status = StatusValidationFailed
		}
	}

	a.record(plan)

	if a.metrics != nil {
		a.metrics.CompositionsTotal.Inc()
		a.metrics.CompositionStatus.WithLabelValues(string(plan.Status)).Inc()
	}
	a.logger.Info("composition produced",
		"plan_id", plan.ID, "goal", goal, "status", plan.Status,
		"services", len(plan.Services), "valid", plan.Validation.IsValid)
	return plan
}

// respond returns the model's answer, or the keyword-selected canned plan
// when no completer is configured or the call fails.
func (a *Advisor) respond(ctx context.Context, goal string, snapshot map[string]float64, constraints []string) string {
	if a.completer == nil {
		return cannedResponse(goal)
	}

	prompt, err := renderPrompt(a.catalog, goal, snapshot, constraints)
	if err != nil {
		a.logger.Error("prompt rendering failed", "goal", goal, "error", err)
		return cannedResponse(goal)
	}

	raw, err := a.completer.Complete(ctx, prompt)
	if err != nil {
		a.logger.Warn("model call failed, serving canned plan", "goal", goal, "error", err)
		if a.metrics != nil {
			a.metrics.ModelCallFailures.Inc()
		}
		return cannedResponse(goal)
	}
	return raw
}

func (a *Advisor) record(plan *Plan) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.history = append(a.history, HistoryEntry{
		PlanID:       plan.ID,
		CreatedAt:    plan.CreatedAt,
		Goal:         plan.Goal,
		Status:       plan.Status,
		IsValid:      plan.Validation.IsValid,
		ServiceCount: len(plan.Services),
	})
	if len(a.history) > historyCap {
		trimmed := make([]HistoryEntry, historyKeep)
		copy(trimmed, a.history[len(a.history)-historyKeep:])
		a.history = trimmed
	}
}

// History returns a copy of the recorded composition entries, oldest first.
func (a *Advisor) History() []HistoryEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]HistoryEntry, len(a.history))
	copy(out, a.history)
	return out
}
