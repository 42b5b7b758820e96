package view

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/folio/internal/apiclient"
	"github.com/MrSnakeDoc/folio/internal/domain"
)

// Source is the read side of a resource client.
type Source[E domain.Entity] interface {
	List(ctx context.Context) ([]E, error)
	Get(ctx context.Context, id string) (*E, error)
}

// Matcher builds the search predicate for a term.
type Matcher[E any] func(term string) domain.Filter[E]

// ListView is one mounted listing: its own copy of the collection,
// a search term and an optional extra filter.
type ListView[E domain.Entity] struct {
	mu       sync.RWMutex
	items    []E
	loadedAt time.Time
	term     string
	extra    domain.Filter[E]

	source Source[E]
	match  Matcher[E]
}

func NewListView[E domain.Entity](src Source[E], match Matcher[E]) *ListView[E] {
	return &ListView[E]{source: src, match: match, items: []E{}}
}

// Load replaces the collection with the server's.
func (v *ListView[E]) Load(ctx context.Context) error {
	items, err := v.source.List(ctx)
	if err != nil {
		return err
	}
	v.mu.Lock()
	v.items = items
	v.loadedAt = time.Now()
	v.mu.Unlock()
	return nil
}

// Loaded reports whether Load has succeeded at least once.
func (v *ListView[E]) Loaded() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return !v.loadedAt.IsZero()
}

// Items returns a copy of the collection.
func (v *ListView[E]) Items() []E {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]E{}, v.items...)
}

func (v *ListView[E]) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.items)
}

func (v *ListView[E]) SetSearch(term string) {
	v.mu.Lock()
	v.term = term
	v.mu.Unlock()
}

func (v *ListView[E]) Search() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.term
}

// SetFilter installs an extra predicate (ex: skill type); nil removes it.
func (v *ListView[E]) SetFilter(f domain.Filter[E]) {
	v.mu.Lock()
	v.extra = f
	v.mu.Unlock()
}

// Filtered derives the visible entries from the current term and filter.
func (v *ListView[E]) Filtered() []E {
	v.mu.RLock()
	term, extra := v.term, v.extra
	v.mu.RUnlock()
	return v.Select(term, extra)
}

// Select derives entries for an explicit term and filter without touching
// the view's own search state.
func (v *ListView[E]) Select(term string, extra domain.Filter[E]) []E {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var f domain.Filter[E]
	if v.match != nil {
		f = v.match(term)
	}
	out := f.Apply(v.items)
	if extra != nil {
		out = extra.Apply(out)
	}
	return out
}

// Find returns the entry with id.
func (v *ListView[E]) Find(id string) (E, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if i := v.indexOf(id); i >= 0 {
		return v.items[i], true
	}
	var zero E
	return zero, false
}

// Append adds a created entry. An entry whose id is already present replaces it.
func (v *ListView[E]) Append(e E) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if i := v.indexOf(e.Key()); i >= 0 {
		v.items[i] = e
		return
	}
	v.items = append(v.items, e)
}

// Replace swaps the entry sharing e's id. Reports false when absent.
func (v *ListView[E]) Replace(e E) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.indexOf(e.Key())
	if i < 0 {
		return false
	}
	items := append([]E{}, v.items...)
	items[i] = e
	v.items = items
	return true
}

// Remove drops the entry with id. Reports false when absent.
func (v *ListView[E]) Remove(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := v.indexOf(id)
	if i < 0 {
		return false
	}
	items := make([]E, 0, len(v.items)-1)
	items = append(items, v.items[:i]...)
	v.items = append(items, v.items[i+1:]...)
	return true
}

func (v *ListView[E]) indexOf(id string) int {
	for i, it := range v.items {
		if it.Key() == id {
			return i
		}
	}
	return -1
}

// Edit fetches the entity by id, never trusting the local copy.
func (v *ListView[E]) Edit(ctx context.Context, id string) (*E, error) {
	e, err := v.source.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, fmt.Errorf("%s: %w", id, apiclient.ErrNotFound)
	}
	return e, nil
}
