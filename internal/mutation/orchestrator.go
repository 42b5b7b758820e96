package mutation

import (
	"context"
	"errors"
	"sync"

	"github.com/MrSnakeDoc/folio/internal/apiclient"
	"github.com/MrSnakeDoc/folio/internal/logger"
	"github.com/MrSnakeDoc/folio/internal/revalidate"
)

var (
	// ErrInFlight is returned when the same action is already submitting.
	ErrInFlight = errors.New("operation already in progress")
	// ErrDeclined is returned when a destructive action was not confirmed.
	ErrDeclined = errors.New("operation not confirmed")
)

// Kind is the type of write an action performs.
type Kind string

const (
	KindCreate Kind = "create"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
	KindUpload Kind = "upload"
)

// State of one action key.
type State int

const (
	Idle State = iota
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Outcome of a Run.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeFailed
	OutcomeDeclined
	OutcomeBusy
)

// Revalidator invalidates cached pages. Its failures never fail a mutation.
type Revalidator interface {
	Invalidate(ctx context.Context, paths []string) revalidate.Report
}

// Action describes one user-initiated write.
type Action struct {
	// Key identifies the action for the re-entry guard, ex: "blog:update:b1".
	Key  string
	Kind Kind

	// Paths are revalidated after Call succeeds.
	Paths []string

	// Call performs the network request.
	Call func(ctx context.Context) error
	// Apply updates the local collection. Runs only after Call succeeded.
	Apply func()
	// Reset clears the form. Runs last.
	Reset func()

	// Prompt is shown to the Confirmer for destructive actions.
	Prompt         string
	SuccessMessage string
}

// Result reports what Run did.
type Result struct {
	Outcome Outcome
	Notice  *Notice
	Report  revalidate.Report
	Err     error
}

// Orchestrator runs actions through Idle -> Submitting -> Succeeded|Failed -> Idle.
type Orchestrator struct {
	mu     sync.Mutex
	states map[string]State

	revalidator Revalidator
	notifier    Notifier
	logger      logger.Logger

	// observe is called on every state transition (tests).
	observe func(key string, s State)
}

func New(r Revalidator, n Notifier, log logger.Logger) *Orchestrator {
	if n == nil {
		n = NopNotifier{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		states:      make(map[string]State),
		revalidator: r,
		notifier:    n,
		logger:      log,
	}
}

// State returns the current state of key.
func (o *Orchestrator) State(key string) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.states[key]
}

func (o *Orchestrator) set(key string, s State) {
	o.mu.Lock()
	if s == Idle {
		delete(o.states, key)
	} else {
		o.states[key] = s
	}
	o.mu.Unlock()
	if o.observe != nil {
		o.observe(key, s)
	}
}

// begin moves key to Submitting unless it already is.
func (o *Orchestrator) begin(key string) bool {
	o.mu.Lock()
	if o.states[key] == Submitting {
		o.mu.Unlock()
		return false
	}
	o.states[key] = Submitting
	o.mu.Unlock()
	if o.observe != nil {
		o.observe(key, Submitting)
	}
	return true
}

// Run executes a. Delete actions are only submitted when confirm approves them.
//
// On success the order is: revalidate, Apply, success notice, Reset.
// On failure only the failure notice is emitted.
func (o *Orchestrator) Run(ctx context.Context, a Action, confirm Confirmer) (Result, error) {
	if a.Kind == KindDelete {
		if confirm == nil || !confirm.Confirm(ctx, a.Prompt) {
			return Result{Outcome: OutcomeDeclined, Err: ErrDeclined}, ErrDeclined
		}
	}

	if !o.begin(a.Key) {
		return Result{Outcome: OutcomeBusy, Err: ErrInFlight}, ErrInFlight
	}

	log := o.logger.With(logger.String("action", a.Key))

	if err := a.Call(ctx); err != nil {
		o.set(a.Key, Failed)
		n := Notice{Level: LevelError, Message: apiclient.Message(err)}
		o.notifier.Notify(n)
		log.Warn("mutation failed", logger.Error(err))
		o.set(a.Key, Idle)
		return Result{Outcome: OutcomeFailed, Notice: &n, Err: err}, err
	}

	var report revalidate.Report
	if o.revalidator != nil && len(a.Paths) > 0 {
		report = o.revalidator.Invalidate(ctx, a.Paths)
	}
	if a.Apply != nil {
		a.Apply()
	}

	o.set(a.Key, Succeeded)
	n := Notice{Level: LevelSuccess, Message: a.SuccessMessage}
	o.notifier.Notify(n)
	if a.Reset != nil {
		a.Reset()
	}
	log.Info("✅ mutation succeeded", logger.Int("revalidated", len(report.Paths)))
	o.set(a.Key, Idle)

	return Result{Outcome: OutcomeSucceeded, Notice: &n, Report: report}, nil
}
