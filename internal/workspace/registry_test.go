package workspace

import (
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/folio/internal/apiclient"
	"github.com/MrSnakeDoc/folio/internal/dashboard"
)

func newTestRegistry() (*Registry, *time.Time) {
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	r := NewRegistry(func(*apiclient.Session) *dashboard.Set { return &dashboard.Set{} })
	r.now = func() time.Time { return now }
	return r, &now
}

func TestNewRegistry(t *testing.T) {
	r, _ := newTestRegistry()
	if r.Count() != 0 {
		t.Errorf("NewRegistry() should start empty, got %d", r.Count())
	}
}

func TestOpenAndGet(t *testing.T) {
	r, _ := newTestRegistry()

	w := r.Open(&apiclient.Session{AccessToken: "tok"})
	if w.ID == "" {
		t.Fatal("Open() returned an empty id")
	}
	if w.Dashboard == nil {
		t.Error("Open() did not build the dashboard")
	}

	got, ok := r.Get(w.ID)
	if !ok || got != w {
		t.Fatalf("Get(%q) = %v, %v", w.ID, got, ok)
	}
	if got.Session.Token() != "tok" {
		t.Errorf("Session.Token() = %q, want tok", got.Session.Token())
	}
}

func TestIDsAreUnique(t *testing.T) {
	r, _ := newTestRegistry()
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := r.Open(&apiclient.Session{}).ID
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestGetExpiredSession(t *testing.T) {
	r, now := newTestRegistry()
	w := r.Open(&apiclient.Session{AccessToken: "tok", ExpiresAt: now.Add(time.Minute)})

	*now = now.Add(2 * time.Minute)
	if _, ok := r.Get(w.ID); ok {
		t.Error("Get() returned a workspace whose token expired")
	}
	if r.Count() != 0 {
		t.Errorf("expired workspace was not closed, count = %d", r.Count())
	}
}

func TestClose(t *testing.T) {
	r, _ := newTestRegistry()
	w := r.Open(&apiclient.Session{})

	r.Close(w.ID)
	r.Close(w.ID)
	r.Close("unknown")

	if _, ok := r.Get(w.ID); ok {
		t.Error("Get() found a closed workspace")
	}
}

func TestEvictIdle(t *testing.T) {
	r, now := newTestRegistry()
	start := *now

	stale := r.Open(&apiclient.Session{})
	active := r.Open(&apiclient.Session{})
	expired := r.Open(&apiclient.Session{ExpiresAt: start.Add(10 * time.Minute)})

	*now = start.Add(20 * time.Minute)
	r.Get(active.ID)

	evicted := r.EvictIdle(start.Add(40*time.Minute), 30*time.Minute)
	sort.Strings(evicted)

	want := []string{stale.ID, expired.ID}
	sort.Strings(want)
	if len(evicted) != 2 || evicted[0] != want[0] || evicted[1] != want[1] {
		t.Errorf("EvictIdle() = %v, want %v", evicted, want)
	}
	if _, ok := r.Get(active.ID); !ok {
		t.Error("active workspace was evicted")
	}
}

func TestConcurrentAccess(t *testing.T) {
	r, _ := newTestRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := r.Open(&apiclient.Session{})
			r.Get(w.ID)
			r.All()
			r.Close(w.ID)
		}()
	}
	wg.Wait()

	if r.Count() != 0 {
		t.Errorf("Count() = %d after concurrent open/close, want 0", r.Count())
	}
}
