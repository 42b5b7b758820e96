package view

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/folio/internal/domain"
)

// Mode tells whether a form creates or updates.
type Mode int

const (
	ModeCreate Mode = iota
	ModeUpdate
)

// FormView owns one draft.
type FormView[E domain.Entity, D domain.Validator] struct {
	mu       sync.Mutex
	mode     Mode
	draft    D
	empty    D
	seededID string
	from     func(E) D
}

// NewCreateForm starts from empty and resets to it after a successful submit.
func NewCreateForm[E domain.Entity, D domain.Validator](empty D) *FormView[E, D] {
	return &FormView[E, D]{mode: ModeCreate, draft: empty, empty: empty}
}

// NewUpdateForm seeds drafts from existing entities with from.
func NewUpdateForm[E domain.Entity, D domain.Validator](from func(E) D) *FormView[E, D] {
	return &FormView[E, D]{mode: ModeUpdate, from: from}
}

func (f *FormView[E, D]) Mode() Mode { return f.mode }

// Seed loads e into the draft. Seeding the same id again keeps the edits
// in progress; a different id replaces them.
func (f *FormView[E, D]) Seed(e E) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.from == nil || (f.seededID != "" && f.seededID == e.Key()) {
		return
	}
	f.draft = f.from(e)
	f.seededID = e.Key()
}

// SeededID is the id of the entity being edited, "" for create forms.
func (f *FormView[E, D]) SeededID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seededID
}

func (f *FormView[E, D]) Draft() D {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

func (f *FormView[E, D]) SetDraft(d D) {
	f.mu.Lock()
	f.draft = d
	f.mu.Unlock()
}

// Edit mutates the draft in place.
func (f *FormView[E, D]) Edit(fn func(d *D)) {
	f.mu.Lock()
	fn(&f.draft)
	f.mu.Unlock()
}

// Reset restores the empty draft of a create form. Update forms are left alone.
func (f *FormView[E, D]) Reset() {
	if f.mode != ModeCreate {
		return
	}
	f.mu.Lock()
	f.draft = f.empty
	f.mu.Unlock()
}

// Submit validates the draft and hands it to send. Validation failures
// are returned as domain.FieldErrors and send is not called.
func (f *FormView[E, D]) Submit(ctx context.Context, send func(ctx context.Context, d D) error) error {
	d := f.Draft()
	if errs := d.Validate(); len(errs) > 0 {
		return errs
	}
	return send(ctx, d)
}
