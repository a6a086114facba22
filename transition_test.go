package carousel

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/zoobzio/clockz"
)

func newFadingRotator(slides []string) (*Rotator[string], *clockz.FakeClock, *recorder[string]) {
	clock := clockz.NewFakeClock()
	rec := newRecorder[string]()
	r := New(slides).
		Clock(clock).
		Interval(time.Second).
		FadeDelay(200 * time.Millisecond).
		Presenter(rec)
	return r, clock, rec
}

func TestTransition_FirstPresentationImmediate(t *testing.T) {
	r, _, rec := newFadingRotator(abc)
	ctx := context.Background()

	_ = r.Start(ctx)
	defer r.Stop(ctx)

	if diff := cmp.Diff([]int{0}, rec.active()); diff != "" {
		t.Errorf("unexpected visible slides (-want +got):\n%s", diff)
	}
	if r.Shown() != 0 {
		t.Errorf("expected shown 0, got %d", r.Shown())
	}
}

func TestTransition_DeactivateThenActivateAfterFade(t *testing.T) {
	r, clock, rec := newFadingRotator(abc)
	ctx := context.Background()

	_ = r.Start(ctx)
	defer r.Stop(ctx)

	advance(clock, time.Second)
	waitIndex(t, r, 1)

	if len(rec.active()) != 0 {
		t.Errorf("expected no visible slide during fade, got %v", rec.active())
	}
	if r.Shown() != -1 {
		t.Errorf("expected shown -1 during fade, got %d", r.Shown())
	}

	advance(clock, 200*time.Millisecond)
	if !waitFor(t, time.Second, func() bool { return r.Shown() == 1 }) {
		t.Fatalf("expected slide 1 shown after fade, got %d", r.Shown())
	}

	want := []call{
		{op: "activate", index: 0},
		{op: "deactivate", index: 0},
		{op: "activate", index: 1},
	}
	if diff := cmp.Diff(want, rec.snapshot(), cmp.AllowUnexported(call{})); diff != "" {
		t.Errorf("unexpected presenter calls (-want +got):\n%s", diff)
	}
}

func TestTransition_RapidNavigationActivatesLastOnly(t *testing.T) {
	r, clock, rec := newFadingRotator([]string{"A", "B", "C", "D"})
	ctx := context.Background()

	_ = r.Start(ctx)
	defer r.Stop(ctx)

	r.Next(ctx)
	r.Next(ctx)
	r.Next(ctx)

	if r.Index() != 3 {
		t.Fatalf("expected index 3, got %d", r.Index())
	}

	advance(clock, 200*time.Millisecond)
	if !waitFor(t, time.Second, func() bool { return r.Shown() == 3 }) {
		t.Fatalf("expected slide 3 shown, got %d", r.Shown())
	}

	if diff := cmp.Diff([]int{3}, rec.active()); diff != "" {
		t.Errorf("unexpected visible slides (-want +got):\n%s", diff)
	}

	activations := 0
	for _, c := range rec.snapshot() {
		if c.op == "activate" {
			activations++
		}
	}
	if activations != 2 {
		t.Errorf("expected 2 activations (first slide and final target), got %d", activations)
	}
}

func TestTransition_ReturnToShownDuringFade(t *testing.T) {
	r, clock, rec := newFadingRotator(abc)
	ctx := context.Background()

	_ = r.Start(ctx)
	defer r.Stop(ctx)

	r.Next(ctx)
	r.Previous(ctx)

	advance(clock, 200*time.Millisecond)
	if !waitFor(t, time.Second, func() bool { return r.Shown() == 0 }) {
		t.Fatalf("expected slide 0 shown, got %d", r.Shown())
	}
	if diff := cmp.Diff([]int{0}, rec.active()); diff != "" {
		t.Errorf("unexpected visible slides (-want +got):\n%s", diff)
	}
}

func TestTransition_StopFlushesFade(t *testing.T) {
	r, _, rec := newFadingRotator(abc)
	ctx := context.Background()

	_ = r.Start(ctx)
	r.Next(ctx)
	r.Stop(ctx)

	if r.Shown() != 1 {
		t.Errorf("expected slide 1 shown after Stop, got %d", r.Shown())
	}
	if diff := cmp.Diff([]int{1}, rec.active()); diff != "" {
		t.Errorf("unexpected visible slides (-want +got):\n%s", diff)
	}
}

func TestTransition_CancelCompletesFade(t *testing.T) {
	r, _, rec := newFadingRotator(abc)
	ctx, cancel := context.WithCancel(context.Background())

	_ = r.Start(ctx)
	r.Next(ctx)
	cancel()

	if !waitFor(t, time.Second, func() bool { return r.Shown() == 1 }) {
		t.Fatalf("expected slide 1 shown after cancel, got %d", r.Shown())
	}
	if diff := cmp.Diff([]int{1}, rec.active()); diff != "" {
		t.Errorf("unexpected visible slides (-want +got):\n%s", diff)
	}
}

func TestTransition_ZeroFadeIsImmediate(t *testing.T) {
	r, _, rec := newTestRotator(abc)
	ctx := context.Background()

	_ = r.Start(ctx)
	defer r.Stop(ctx)
	r.Next(ctx)

	if r.Shown() != 1 {
		t.Errorf("expected slide 1 shown immediately, got %d", r.Shown())
	}
	if diff := cmp.Diff([]int{1}, rec.active()); diff != "" {
		t.Errorf("unexpected visible slides (-want +got):\n%s", diff)
	}
}
