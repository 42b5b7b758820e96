package workspace

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/MrSnakeDoc/folio/internal/apiclient"
	"github.com/MrSnakeDoc/folio/internal/dashboard"
)

// Workspace is the server-side state of one signed-in dashboard session:
// its token and its own listings.
type Workspace struct {
	ID        string
	Session   *apiclient.Session
	Dashboard *dashboard.Set
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen returns when the workspace was last used.
func (w *Workspace) LastSeen() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

// Factory builds the controllers of a new session.
type Factory func(sess *apiclient.Session) *dashboard.Set

// Registry holds every open workspace keyed by session id.
type Registry struct {
	mu         sync.RWMutex
	workspaces map[string]*Workspace
	factory    Factory
	now        func() time.Time
}

// NewRegistry creates an empty registry
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		workspaces: make(map[string]*Workspace),
		factory:    factory,
		now:        time.Now,
	}
}

// Open creates a workspace for a fresh session
func (r *Registry) Open(sess *apiclient.Session) *Workspace {
	now := r.now()
	w := &Workspace{
		ID:        ulid.Make().String(),
		Session:   sess,
		Dashboard: r.factory(sess),
		CreatedAt: now,
		lastSeen:  now,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.workspaces[w.ID] = w
	return w
}

// Get returns the workspace for id and marks it used.
// A workspace whose token has expired is closed and reported missing.
func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.RLock()
	w, ok := r.workspaces[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}

	now := r.now()
	if w.Session.Expired(now) {
		r.Close(id)
		return nil, false
	}
	w.touch(now)
	return w, true
}

// Close removes a workspace. Closing an unknown id is a no-op.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.workspaces, id)
}

// All returns every open workspace
func (r *Registry) All() []*Workspace {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Workspace, 0, len(r.workspaces))
	for _, w := range r.workspaces {
		out = append(out, w)
	}
	return out
}

// Count returns the number of open workspaces
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.workspaces)
}

// EvictIdle closes workspaces unused for longer than idle, or whose token
// expired, and returns their ids.
func (r *Registry) EvictIdle(now time.Time, idle time.Duration) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []string
	for id, w := range r.workspaces {
		if now.Sub(w.LastSeen()) < idle && !w.Session.Expired(now) {
			continue
		}
		delete(r.workspaces, id)
		evicted = append(evicted, id)
	}
	return evicted
}
