package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/folio/internal/logger"
	"github.com/MrSnakeDoc/folio/internal/workspace"
)

const (
	// DefaultIdleThreshold is how long an unused dashboard session survives
	DefaultIdleThreshold = 2 * time.Hour
)

// PageIndex is the part of the page cache the collector prunes
type PageIndex interface {
	PruneIndex(ctx context.Context) (int, error)
}

// GarbageCollector closes idle sessions and prunes the page cache index
type GarbageCollector struct {
	registry  *workspace.Registry
	pages     PageIndex
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	stopCh    chan struct{}
	stopOnce  sync.Once
	started   atomic.Bool
	done      chan struct{}
}

// NewGarbageCollector creates a new garbage collector. pages may be nil.
func NewGarbageCollector(
	registry *workspace.Registry,
	pages PageIndex,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *GarbageCollector {
	if threshold == 0 {
		threshold = DefaultIdleThreshold
	}

	return &GarbageCollector{
		registry:  registry,
		pages:     pages,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start runs one collection, then collects every interval until Stop or ctx ends
func (gc *GarbageCollector) Start(ctx context.Context) error {
	gc.Collect(ctx)

	gc.started.Store(true)
	ticker := time.NewTicker(gc.interval)
	go func() {
		defer close(gc.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				gc.Collect(ctx)
			case <-gc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the collector and waits for its goroutine
func (gc *GarbageCollector) Stop() {
	gc.stopOnce.Do(func() { close(gc.stopCh) })
	if gc.started.Load() {
		<-gc.done
	}
}

// Collect runs both passes and returns how many items each removed
func (gc *GarbageCollector) Collect(ctx context.Context) (sessions int, pages int) {
	sessions = gc.collectSessions(time.Now())
	pages = gc.collectPages(ctx)

	if sessions+pages > 0 {
		gc.logger.Info("🧹 garbage collection completed",
			logger.Int("sessions_closed", sessions),
			logger.Int("index_entries_pruned", pages))
	} else {
		gc.logger.Debug("no items to garbage collect")
	}
	return sessions, pages
}

func (gc *GarbageCollector) collectSessions(now time.Time) int {
	evicted := gc.registry.EvictIdle(now, gc.threshold)
	for _, id := range evicted {
		gc.logger.Debug("closed idle session", logger.String("session_id", id))
	}
	return len(evicted)
}

func (gc *GarbageCollector) collectPages(ctx context.Context) int {
	if gc.pages == nil {
		return 0
	}
	n, err := gc.pages.PruneIndex(ctx)
	if err != nil {
		gc.logger.Warn("failed to prune page index", logger.Error(err))
		return 0
	}
	return n
}
