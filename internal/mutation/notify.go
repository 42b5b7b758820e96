package mutation

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/folio/internal/logger"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notice is a transient message for the user.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Notifier delivers notices. Delivery may happen after the listener is gone.
type Notifier interface {
	Notify(n Notice)
}

// NopNotifier drops every notice.
type NopNotifier struct{}

func (NopNotifier) Notify(Notice) {}

// LogNotifier writes notices to a logger, errors at warn level.
type LogNotifier struct {
	Logger logger.Logger
}

func (l LogNotifier) Notify(n Notice) {
	if l.Logger == nil {
		return
	}
	if n.Level == LevelError {
		l.Logger.Warn("❌ "+n.Message, logger.String("level", string(n.Level)))
		return
	}
	l.Logger.Info("✅ "+n.Message, logger.String("level", string(n.Level)))
}

// Recorder keeps every notice in order.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

// Notices returns a copy of what was recorded.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Always answers every prompt with the same value.
type Always bool

func (a Always) Confirm(context.Context, string) bool { return bool(a) }
