package scheduler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/MrSnakeDoc/folio/internal/apiclient"
	"github.com/MrSnakeDoc/folio/internal/dashboard"
	"github.com/MrSnakeDoc/folio/internal/domain"
	"github.com/MrSnakeDoc/folio/internal/logger"
	"github.com/MrSnakeDoc/folio/internal/workspace"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeIndex struct {
	pruned int
	err    error
	calls  int
}

func (f *fakeIndex) PruneIndex(context.Context) (int, error) {
	f.calls++
	return f.pruned, f.err
}

func newRegistry() *workspace.Registry {
	return workspace.NewRegistry(func(*apiclient.Session) *dashboard.Set { return &dashboard.Set{} })
}

func TestGarbageCollector_Collect(t *testing.T) {
	reg := newRegistry()
	reg.Open(&apiclient.Session{})
	reg.Open(&apiclient.Session{ExpiresAt: time.Now().Add(-time.Minute)})

	idx := &fakeIndex{pruned: 3}
	gc := NewGarbageCollector(reg, idx, logger.Nop(), time.Hour, time.Hour)

	sessions, pages := gc.Collect(context.Background())
	if sessions != 1 {
		t.Errorf("sessions closed = %d, want 1 (the expired one)", sessions)
	}
	if pages != 3 {
		t.Errorf("index entries pruned = %d, want 3", pages)
	}
	if reg.Count() != 1 {
		t.Errorf("registry count = %d, want 1", reg.Count())
	}
}

func TestGarbageCollector_IdleThreshold(t *testing.T) {
	reg := newRegistry()
	reg.Open(&apiclient.Session{})

	gc := NewGarbageCollector(reg, nil, logger.Nop(), time.Hour, time.Nanosecond)
	time.Sleep(time.Millisecond)

	if sessions, _ := gc.Collect(context.Background()); sessions != 1 {
		t.Errorf("sessions closed = %d, want 1", sessions)
	}
}

func TestGarbageCollector_PruneError(t *testing.T) {
	idx := &fakeIndex{err: errors.New("redis down")}
	gc := NewGarbageCollector(newRegistry(), idx, logger.Nop(), time.Hour, 0)

	if _, pages := gc.Collect(context.Background()); pages != 0 {
		t.Errorf("pages = %d on error, want 0", pages)
	}
}

func TestGarbageCollector_StartStop(t *testing.T) {
	idx := &fakeIndex{}
	gc := NewGarbageCollector(newRegistry(), idx, logger.Nop(), time.Hour, 0)

	if err := gc.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if idx.calls != 1 {
		t.Errorf("Start should collect once immediately, got %d calls", idx.calls)
	}
	gc.Stop()
	gc.Stop()
}

func TestGarbageCollector_StopWithoutStart(t *testing.T) {
	gc := NewGarbageCollector(newRegistry(), nil, logger.Nop(), time.Hour, 0)
	gc.Stop()
}

func TestIconReloader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "icons.yaml")
	if err := os.WriteFile(path, []byte("icons:\n  - name: kubernetes\n    icon: Ship\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	trigger := make(chan struct{}, 1)
	r := NewIconReloader(path, logger.Nop(), time.Hour, trigger)
	if !r.LastReload().IsZero() {
		t.Error("LastReload should be zero before Start")
	}

	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop()

	g := r.Table().Resolve(domain.Skill{Name: "K8s", Icon: "kubernetes"})
	if g.Value != "Ship" {
		t.Errorf("Resolve() = %+v, want Ship", g)
	}

	// A broken file keeps the previous table.
	if err := os.WriteFile(path, []byte("icons: [\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := r.Reload(); err == nil {
		t.Error("Reload() of invalid yaml should fail")
	}
	if g := r.Table().Resolve(domain.Skill{Icon: "kubernetes"}); g.Value != "Ship" {
		t.Errorf("table was replaced after a failed reload: %+v", g)
	}
}

func TestIconReloaderBuiltin(t *testing.T) {
	r := NewIconReloader("", logger.Nop(), time.Hour, nil)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	r.Stop()
	if r.Table().Len() == 0 {
		t.Error("built-in table is empty")
	}
}

func TestIconReloaderMissingFile(t *testing.T) {
	r := NewIconReloader(filepath.Join(t.TempDir(), "nope.yaml"), logger.Nop(), time.Hour, nil)
	if err := r.Start(context.Background()); err == nil {
		r.Stop()
		t.Fatal("Start() with a missing file should fail")
	}
}

func TestIconReloaderManualOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "icons.yaml")
	if err := os.WriteFile(path, []byte("icons:\n  - name: kubernetes\n    icon: Ship\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	trigger := make(chan struct{}, 1)
	r := NewIconReloader(path, logger.Nop(), 0, trigger)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop()

	// Each trigger must be consumed, not just the first one.
	for _, icon := range []string{"Anchor", "Cloud"} {
		if err := os.WriteFile(path, []byte("icons:\n  - name: kubernetes\n    icon: "+icon+"\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		select {
		case trigger <- struct{}{}:
		case <-time.After(time.Second):
			t.Fatal("trigger was not drained")
		}

		deadline := time.Now().Add(2 * time.Second)
		for r.Table().Resolve(domain.Skill{Icon: "kubernetes"}).Value != icon {
			if time.Now().After(deadline) {
				t.Fatalf("table not reloaded to %s with interval 0", icon)
			}
			time.Sleep(5 * time.Millisecond)
		}
	}
}
