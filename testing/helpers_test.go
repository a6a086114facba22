package testing

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/zoobzio/carousel"
)

func TestRecorder(t *testing.T) {
	rec := NewRecorder[string]()
	ctx := context.Background()

	_ = rec.Activate(ctx, 0, "A")
	_ = rec.Deactivate(ctx, 0, "A")
	_ = rec.Activate(ctx, 2, "C")

	want := []Call{
		{Op: "activate", Index: 0},
		{Op: "deactivate", Index: 0},
		{Op: "activate", Index: 2},
	}
	if diff := cmp.Diff(want, rec.Calls()); diff != "" {
		t.Errorf("unexpected calls (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2}, rec.Visible()); diff != "" {
		t.Errorf("unexpected visible (-want +got):\n%s", diff)
	}
}

func TestRecorder_FailWith(t *testing.T) {
	rec := NewRecorder[string]()
	boom := errors.New("boom")
	rec.FailWith(boom)

	if err := rec.Activate(context.Background(), 0, "A"); !errors.Is(err, boom) {
		t.Errorf("expected %v, got %v", boom, err)
	}

	rec.FailWith(nil)
	if err := rec.Activate(context.Background(), 1, "B"); err != nil {
		t.Errorf("expected recovery, got %v", err)
	}
}

func TestWaitFor(t *testing.T) {
	t.Run("condition met immediately", func(t *testing.T) {
		result := WaitFor(t, 100*time.Millisecond, func() bool {
			return true
		})
		if !result {
			t.Error("expected WaitFor to return true")
		}
	})

	t.Run("condition never met", func(t *testing.T) {
		result := WaitFor(t, 50*time.Millisecond, func() bool {
			return false
		})
		if result {
			t.Error("expected WaitFor to return false on timeout")
		}
	})

	t.Run("condition met after delay", func(t *testing.T) {
		start := time.Now()
		var met atomic.Bool
		go func() {
			time.Sleep(30 * time.Millisecond)
			met.Store(true)
		}()
		result := WaitFor(t, 200*time.Millisecond, met.Load)
		if !result {
			t.Error("expected WaitFor to return true")
		}
		if time.Since(start) < 30*time.Millisecond {
			t.Error("condition should have taken at least 30ms")
		}
	})
}

func TestRequireIndexAndState(t *testing.T) {
	rec := NewRecorder[string]()
	r := carousel.New([]string{"A", "B"}).FadeDelay(0).Presenter(rec)
	ctx := context.Background()

	RequireState(t, r, carousel.StateReady)
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer r.Stop(ctx)

	r.Next(ctx)
	RequireIndex(t, r, 1)
	RequireState(t, r, carousel.StateRunning)

	if !WaitForIndex(t, r, 1, 50*time.Millisecond) {
		t.Error("expected index 1")
	}
}

func TestNewTestReloader(t *testing.T) {
	var received carousel.Settings
	r, ch := NewTestReloader(t, func(_ context.Context, _, curr carousel.Settings) error {
		received = curr
		return nil
	})

	ch <- []byte("interval_ms: 5000\nfade_delay_ms: 220\n")
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if received.IntervalMS != 5000 {
		t.Errorf("expected interval 5000, got %d", received.IntervalMS)
	}
	if r.Health() != carousel.HealthHealthy {
		t.Errorf("expected healthy, got %s", r.Health())
	}
}
