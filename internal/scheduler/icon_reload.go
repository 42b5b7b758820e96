package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrSnakeDoc/folio/internal/domain"
	"github.com/MrSnakeDoc/folio/internal/logger"
	"github.com/MrSnakeDoc/folio/internal/sources/icons"
)

// IconReloader keeps the skill icon table in sync with the icons file
type IconReloader struct {
	path          string
	table         atomic.Pointer[domain.IconTable]
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	started       atomic.Bool
	done          chan struct{}
	manualTrigger chan struct{}
	lastReload    atomic.Int64
}

// NewIconReloader creates a reloader. It serves the built-in table until
// the first Reload succeeds.
func NewIconReloader(path string, log logger.Logger, interval time.Duration, manualTrigger chan struct{}) *IconReloader {
	r := &IconReloader{
		path:          path,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
	r.table.Store(domain.NewIconTable(nil))
	return r
}

// Table returns the current icon table
func (r *IconReloader) Table() *domain.IconTable {
	return r.table.Load()
}

// LastReload returns when the table was last replaced
func (r *IconReloader) LastReload() time.Time {
	ns := r.lastReload.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Start loads the file once, then reloads on manual trigger and, when the
// interval is positive, every interval
func (r *IconReloader) Start(ctx context.Context) error {
	if err := r.Reload(); err != nil {
		return fmt.Errorf("initial icon reload failed: %w", err)
	}

	if r.path == "" {
		return nil
	}

	// A nil channel never fires: interval 0 means manual reloads only.
	var ticker *time.Ticker
	var tick <-chan time.Time
	if r.interval > 0 {
		ticker = time.NewTicker(r.interval)
		tick = ticker.C
	}

	r.started.Store(true)
	go func() {
		defer close(r.done)
		if ticker != nil {
			defer ticker.Stop()
		}
		for {
			select {
			case <-tick:
				r.reloadLogged()
			case <-r.manualTrigger:
				r.logger.Info("manual icon reload triggered")
				r.reloadLogged()
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader and waits for its goroutine
func (r *IconReloader) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	if r.started.Load() {
		<-r.done
	}
}

// Reload replaces the table with the file's content. A failed reload keeps the previous table.
func (r *IconReloader) Reload() error {
	table, err := icons.LoadTable(r.path)
	if err != nil {
		return err
	}
	r.table.Store(table)
	r.lastReload.Store(time.Now().UnixNano())
	r.logger.Debug("icon table loaded",
		logger.String("file", r.path),
		logger.Int("icons", table.Len()))
	return nil
}

func (r *IconReloader) reloadLogged() {
	if err := r.Reload(); err != nil {
		r.logger.Error("failed to reload icons", logger.Error(err))
	}
}
