package mutation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/folio/internal/apiclient"
	"github.com/MrSnakeDoc/folio/internal/revalidate"
)

// trace records the order of side effects.
type trace struct {
	mu    sync.Mutex
	steps []string
}

func (t *trace) add(s string) {
	t.mu.Lock()
	t.steps = append(t.steps, s)
	t.mu.Unlock()
}

func (t *trace) get() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.steps...)
}

type traceRevalidator struct{ tr *trace }

func (r traceRevalidator) Invalidate(_ context.Context, paths []string) revalidate.Report {
	r.tr.add("revalidate")
	return revalidate.Report{Paths: paths}
}

type traceNotifier struct{ tr *trace }

func (n traceNotifier) Notify(no Notice) { n.tr.add("notify:" + string(no.Level)) }

func tracedAction(tr *trace, kind Kind, callErr error) Action {
	return Action{
		Key:            "blog:" + string(kind),
		Kind:           kind,
		Paths:          []string{"/"},
		SuccessMessage: "Blog created successfully",
		Call: func(context.Context) error {
			tr.add("call")
			return callErr
		},
		Apply: func() { tr.add("apply") },
		Reset: func() { tr.add("reset") },
	}
}

func TestSuccessOrdering(t *testing.T) {
	tr := &trace{}
	o := New(traceRevalidator{tr}, traceNotifier{tr}, nil)

	res, err := o.Run(context.Background(), tracedAction(tr, KindCreate, nil), nil)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, res.Outcome)
	assert.Equal(t, "Blog created successfully", res.Notice.Message)
	assert.Equal(t, []string{"call", "revalidate", "apply", "notify:success", "reset"}, tr.get())
	assert.Equal(t, Idle, o.State("blog:create"))
}

func TestFailureSkipsApply(t *testing.T) {
	tr := &trace{}
	o := New(traceRevalidator{tr}, traceNotifier{tr}, nil)
	callErr := &apiclient.TransportError{Op: "create blog", Status: 400, Message: "Title is required"}

	res, err := o.Run(context.Background(), tracedAction(tr, KindCreate, callErr), nil)
	require.ErrorIs(t, err, callErr)
	assert.Equal(t, OutcomeFailed, res.Outcome)
	assert.Equal(t, Notice{Level: LevelError, Message: "Title is required"}, *res.Notice)
	assert.Equal(t, []string{"call", "notify:error"}, tr.get())
	assert.Equal(t, Idle, o.State("blog:create"))
}

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []State
	}{
		{"success", nil, []State{Submitting, Succeeded, Idle}},
		{"failure", errors.New("down"), []State{Submitting, Failed, Idle}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen []State
			o := New(nil, nil, nil)
			o.observe = func(_ string, s State) { seen = append(seen, s) }
			_, _ = o.Run(context.Background(), tracedAction(&trace{}, KindUpdate, tt.err), nil)
			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	tests := []struct {
		name    string
		confirm Confirmer
	}{
		{"declined", Always(false)},
		{"no confirmer", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &trace{}
			o := New(traceRevalidator{tr}, traceNotifier{tr}, nil)

			res, err := o.Run(context.Background(), tracedAction(tr, KindDelete, nil), tt.confirm)
			require.ErrorIs(t, err, ErrDeclined)
			assert.Equal(t, OutcomeDeclined, res.Outcome)
			assert.Empty(t, tr.get())
		})
	}
}

func TestDeleteConfirmedSeesPrompt(t *testing.T) {
	var prompt string
	confirm := ConfirmFunc(func(_ context.Context, p string) bool {
		prompt = p
		return true
	})
	a := tracedAction(&trace{}, KindDelete, nil)
	a.Prompt = "Are you sure you want to delete this skill?"

	res, err := New(nil, nil, nil).Run(context.Background(), a, confirm)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, res.Outcome)
	assert.Equal(t, a.Prompt, prompt)
}

func TestInFlightGuard(t *testing.T) {
	o := New(nil, nil, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	calls := 0

	a := Action{
		Key:  "project:create",
		Kind: KindCreate,
		Call: func(context.Context) error {
			calls++
			close(started)
			<-release
			return nil
		},
	}

	done := make(chan error, 1)
	go func() {
		_, err := o.Run(context.Background(), a, nil)
		done <- err
	}()
	<-started
	assert.Equal(t, Submitting, o.State("project:create"))

	res, err := o.Run(context.Background(), a, nil)
	assert.ErrorIs(t, err, ErrInFlight)
	assert.Equal(t, OutcomeBusy, res.Outcome)

	// Other keys are independent.
	_, err = o.Run(context.Background(), Action{Key: "project:update:p1", Kind: KindUpdate, Call: func(context.Context) error { return nil }}, nil)
	assert.NoError(t, err)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, calls)
	assert.Equal(t, Idle, o.State("project:create"))
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	o := New(nil, r, nil)
	_, _ = o.Run(context.Background(), Action{Key: "k", Kind: KindUpload, SuccessMessage: "ok", Call: func(context.Context) error { return nil }}, nil)
	assert.Equal(t, []Notice{{Level: LevelSuccess, Message: "ok"}}, r.Notices())
}
