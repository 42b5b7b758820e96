package revalidate

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/folio/internal/logger"
)

// Invalidator drops whatever it caches for the given paths.
// Invalidating a path that is not cached must succeed.
type Invalidator interface {
	Name() string
	Invalidate(ctx context.Context, paths []string) error
}

// Report summarises one dispatch. Errors is keyed by invalidator name.
type Report struct {
	Paths    []string
	Errors   map[string]error
	Duration time.Duration
}

// OK reports whether every invalidator succeeded.
func (r Report) OK() bool { return len(r.Errors) == 0 }

// Dispatcher fans a path set out to every invalidator.
type Dispatcher struct {
	invalidators []Invalidator
	logger       logger.Logger
}

func NewDispatcher(log logger.Logger, invalidators ...Invalidator) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Dispatcher{invalidators: invalidators, logger: log}
}

// Invalidate waits for every invalidator and never fails the caller;
// individual failures are logged and returned in the report.
func (d *Dispatcher) Invalidate(ctx context.Context, paths []string) Report {
	start := time.Now()
	report := Report{Paths: Normalize(paths)}
	if len(report.Paths) == 0 || len(d.invalidators) == 0 {
		report.Duration = time.Since(start)
		return report
	}

	var (
		mu   sync.Mutex
		errs = make(map[string]error)
	)

	// Plain errgroup, not WithContext: one failing invalidator must not cancel the others.
	var g errgroup.Group
	for _, inv := range d.invalidators {
		g.Go(func() error {
			if err := inv.Invalidate(ctx, report.Paths); err != nil {
				mu.Lock()
				errs[inv.Name()] = err
				mu.Unlock()
				d.logger.Warn("⚠️ revalidation failed",
					logger.String("invalidator", inv.Name()),
					logger.Strings("paths", report.Paths),
					logger.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		report.Errors = errs
	}
	report.Duration = time.Since(start)

	d.logger.Debug("revalidated",
		logger.Strings("paths", report.Paths),
		logger.Int("invalidators", len(d.invalidators)),
		logger.Int("failed", len(errs)),
		logger.Duration("duration", report.Duration))

	return report
}
