package reconcile

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	opserrors "github.com/de-tools/ops-atlas/pkg/errors"
	"github.com/de-tools/ops-atlas/pkg/metrics"
	"github.com/de-tools/ops-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Enumerator lists the resources a run will reconcile. Enumeration
// failure is fatal for the whole run.
type Enumerator interface {
	List(ctx context.Context, filter domain.Filter) ([]domain.ResourceDescriptor, error)
}

// Reconciler brings one resource to its desired state and reports what
// it did. Implementations must not panic across resources; the engine
// still guards each call so one bad item cannot sink the batch.
type Reconciler interface {
	Operation() string
	Reconcile(ctx context.Context, target domain.ResourceDescriptor) domain.ActionOutcome
}

// Engine drives an enumerate-then-reconcile run. Each resource is
// processed independently; outcomes keep enumeration order even when
// the bounded worker pool is enabled.
type Engine struct {
	workers int
}

// NewEngine creates an engine with the given worker count. Anything
// below 2 means strictly sequential processing.
func NewEngine(workers int) *Engine {
	if workers < 1 {
		workers = 1
	}
	return &Engine{workers: workers}
}

// Run enumerates resources and reconciles every one of them, producing
// exactly one outcome per resource.
func (e *Engine) Run(
	ctx context.Context,
	enumerator Enumerator,
	reconciler Reconciler,
	filter domain.Filter,
) (domain.RunSummary, error) {
	logger := zerolog.Ctx(ctx)
	operation := reconciler.Operation()

	started := time.Now()
	metrics.RunsTotal.WithLabelValues(operation).Inc()

	resources, err := enumerator.List(ctx, filter)
	if err != nil {
		return domain.RunSummary{}, opserrors.NewTransportError("enumerate", err)
	}
	logger.Info().
		Str("operation", operation).
		Int("resources", len(resources)).
		Msg("enumeration complete")

	outcomes := make([]domain.ActionOutcome, len(resources))

	if e.workers > 1 {
		e.runPooled(ctx, reconciler, resources, outcomes)
	} else {
		for i, target := range resources {
			outcomes[i] = e.reconcileOne(ctx, reconciler, target)
		}
	}

	for _, o := range outcomes {
		metrics.OutcomesTotal.WithLabelValues(operation, string(o.Status)).Inc()
	}
	metrics.RunDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())

	summary := domain.RunSummary{
		StartedAt:  started,
		FinishedAt: time.Now(),
		Outcomes:   outcomes,
	}

	created, skipped, failed := summary.Counts()
	logger.Info().
		Str("operation", operation).
		Int("created", created).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("run complete")

	return summary, nil
}

func (e *Engine) runPooled(
	ctx context.Context,
	reconciler Reconciler,
	resources []domain.ResourceDescriptor,
	outcomes []domain.ActionOutcome,
) {
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup

	for i, target := range resources {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, target domain.ResourceDescriptor) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes[i] = e.reconcileOne(ctx, reconciler, target)
		}(i, target)
	}

	wg.Wait()
}

func (e *Engine) reconcileOne(
	ctx context.Context,
	reconciler Reconciler,
	target domain.ResourceDescriptor,
) (outcome domain.ActionOutcome) {
	logger := zerolog.Ctx(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Str("resource", target.Name).
				Msg("reconciler panic recovered")
			outcome = domain.ActionOutcome{
				Target: target,
				Status: domain.StatusFailed,
				Detail: fmt.Sprintf("panic: %v", r),
			}
		}
	}()

	outcome = reconciler.Reconcile(ctx, target)

	event := logger.Info()
	if outcome.Status == domain.StatusFailed {
		event = logger.Error()
	}
	event.
		Str("resource", target.Name).
		Str("status", string(outcome.Status)).
		Str("detail", outcome.Detail).
		Msg("resource reconciled")

	return outcome
}

// StaticEnumerator yields a fixed descriptor list. Used when the target
// set comes from the command line or a file instead of the provider.
type StaticEnumerator struct {
	Resources []domain.ResourceDescriptor
}

// List returns the fixed descriptor set; the filter is ignored.
func (s StaticEnumerator) List(_ context.Context, _ domain.Filter) ([]domain.ResourceDescriptor, error) {
	return s.Resources, nil
}
