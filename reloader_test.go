package carousel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func TestHealth_String(t *testing.T) {
	cases := map[Health]string{
		HealthEmpty:    "empty",
		HealthHealthy:  "healthy",
		HealthDegraded: "degraded",
		Health(42):     "unknown",
	}
	for h, want := range cases {
		if got := h.String(); got != want {
			t.Errorf("Health(%d).String() = %q, want %q", h, got, want)
		}
	}
}

func TestReloader_AppliesInitialValue(t *testing.T) {
	ch := make(chan []byte, 1)
	ch <- []byte("interval_ms: 3000\nfade_delay_ms: 150\n")

	var got Settings
	reloader := NewReloader(NewSyncChannelWatcher(ch), func(_ context.Context, _, curr Settings) error {
		got = curr
		return nil
	}).SyncMode()

	if err := reloader.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if got.Interval() != 3*time.Second {
		t.Errorf("expected 3s interval, got %v", got.Interval())
	}
	if got.FadeDelay() != 150*time.Millisecond {
		t.Errorf("expected 150ms fade, got %v", got.FadeDelay())
	}
	if !got.Preload {
		t.Error("expected unspecified fields to keep their defaults")
	}
	if reloader.Health() != HealthHealthy {
		t.Errorf("expected healthy, got %s", reloader.Health())
	}
}

func TestReloader_PrevIsDefaultsThenLastApplied(t *testing.T) {
	ch := make(chan []byte, 2)
	ch <- []byte("interval_ms: 3000")

	var prevs []int
	reloader := NewReloader(NewSyncChannelWatcher(ch), func(_ context.Context, prev, _ Settings) error {
		prevs = append(prevs, prev.IntervalMS)
		return nil
	}).SyncMode()

	_ = reloader.Start(context.Background())
	ch <- []byte("interval_ms: 6000")
	reloader.Process(context.Background())

	if len(prevs) != 2 || prevs[0] != DefaultSettings().IntervalMS || prevs[1] != 3000 {
		t.Errorf("unexpected prev values %v", prevs)
	}
}

func TestReloader_InvalidInitialIsEmpty(t *testing.T) {
	ch := make(chan []byte, 1)
	ch <- []byte("interval_ms: 0")

	reloader := NewReloader(NewSyncChannelWatcher(ch), func(context.Context, Settings, Settings) error {
		t.Error("apply should not be called for invalid settings")
		return nil
	}).SyncMode()

	err := reloader.Start(context.Background())
	if !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("expected ErrInvalidSettings, got %v", err)
	}
	if reloader.Health() != HealthEmpty {
		t.Errorf("expected empty, got %s", reloader.Health())
	}
	if _, ok := reloader.Current(); ok {
		t.Error("expected no current settings")
	}
}

func TestReloader_InvalidUpdateKeepsPrevious(t *testing.T) {
	ch := make(chan []byte, 2)
	ch <- []byte("interval_ms: 3000")

	reloader := NewReloader(NewSyncChannelWatcher(ch), func(context.Context, Settings, Settings) error {
		return nil
	}).SyncMode().ErrorHistorySize(4)

	_ = reloader.Start(context.Background())

	ch <- []byte("interval_ms: [not a number")
	reloader.Process(context.Background())

	if reloader.Health() != HealthDegraded {
		t.Errorf("expected degraded, got %s", reloader.Health())
	}
	cur, _ := reloader.Current()
	if cur.IntervalMS != 3000 {
		t.Errorf("expected previous settings retained, got %d", cur.IntervalMS)
	}
	if reloader.LastError() == nil {
		t.Error("expected last error")
	}
	if len(reloader.ErrorHistory()) != 1 {
		t.Errorf("expected 1 error in history, got %d", len(reloader.ErrorHistory()))
	}
}

func TestReloader_ApplyErrorDegrades(t *testing.T) {
	ch := make(chan []byte, 2)
	ch <- []byte("interval_ms: 3000")

	boom := errors.New("rotator refused")
	var calls atomic.Int32
	reloader := NewReloader(NewSyncChannelWatcher(ch), func(context.Context, Settings, Settings) error {
		if calls.Add(1) > 1 {
			return boom
		}
		return nil
	}).SyncMode()

	_ = reloader.Start(context.Background())
	ch <- []byte("interval_ms: 5000")
	reloader.Process(context.Background())

	if !errors.Is(reloader.LastError(), boom) {
		t.Errorf("expected %v, got %v", boom, reloader.LastError())
	}
	if reloader.Health() != HealthDegraded {
		t.Errorf("expected degraded, got %s", reloader.Health())
	}
}

func TestReloader_RecoversAfterDegraded(t *testing.T) {
	ch := make(chan []byte, 3)
	ch <- []byte("interval_ms: 3000")

	reloader := NewReloader(NewSyncChannelWatcher(ch), func(context.Context, Settings, Settings) error {
		return nil
	}).SyncMode()

	_ = reloader.Start(context.Background())
	ch <- []byte("interval_ms: -5")
	ch <- []byte("interval_ms: 4000")
	reloader.Process(context.Background())
	reloader.Process(context.Background())

	if reloader.Health() != HealthHealthy {
		t.Errorf("expected healthy, got %s", reloader.Health())
	}
	if reloader.LastError() != nil {
		t.Errorf("expected last error cleared, got %v", reloader.LastError())
	}
}

func TestReloader_JSONCodec(t *testing.T) {
	ch := make(chan []byte, 1)
	ch <- []byte(`{"interval_ms": 2500, "preload": false}`)

	var got Settings
	reloader := NewReloader(NewSyncChannelWatcher(ch), func(_ context.Context, _, curr Settings) error {
		got = curr
		return nil
	}).SyncMode().Codec(JSONCodec{})

	if err := reloader.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if got.IntervalMS != 2500 || got.Preload {
		t.Errorf("unexpected settings %+v", got)
	}
}

func TestReloader_StartTwice(t *testing.T) {
	ch := make(chan []byte, 1)
	ch <- []byte("interval_ms: 3000")

	reloader := NewReloader(NewSyncChannelWatcher(ch), func(context.Context, Settings, Settings) error {
		return nil
	}).SyncMode()

	_ = reloader.Start(context.Background())
	if err := reloader.Start(context.Background()); err == nil {
		t.Error("expected error on second Start")
	}
}

func TestReloader_ProcessWithoutSyncMode(t *testing.T) {
	reloader := NewReloader(NewChannelWatcher(make(chan []byte)), func(context.Context, Settings, Settings) error {
		return nil
	})
	if reloader.Process(context.Background()) {
		t.Error("expected Process to be a no-op outside sync mode")
	}
}

func TestReloader_Debounce(t *testing.T) {
	clock := clockz.NewFakeClock()
	ch := make(chan []byte, 10)
	ch <- []byte("interval_ms: 1000")

	var applies atomic.Int32
	var last atomic.Int32
	reloader := NewReloader(NewChannelWatcher(ch), func(_ context.Context, _, curr Settings) error {
		applies.Add(1)
		last.Store(int32(curr.IntervalMS))
		return nil
	}).Clock(clock).Debounce(100 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := reloader.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	ch <- []byte("interval_ms: 2000")
	ch <- []byte("interval_ms: 3000")
	ch <- []byte("interval_ms: 4000")

	time.Sleep(10 * time.Millisecond)
	if applies.Load() != 1 {
		t.Errorf("expected 1 apply while debouncing, got %d", applies.Load())
	}

	clock.Advance(150 * time.Millisecond)
	clock.BlockUntilReady()

	if !waitFor(t, time.Second, func() bool { return applies.Load() == 2 }) {
		t.Fatalf("expected 2 applies after debounce, got %d", applies.Load())
	}
	if last.Load() != 4000 {
		t.Errorf("expected latest value 4000, got %d", last.Load())
	}
}

func TestReloader_ProcessesPendingOnClose(t *testing.T) {
	clock := clockz.NewFakeClock()
	ch := make(chan []byte, 2)
	ch <- []byte("interval_ms: 1000")

	var last atomic.Int32
	stopped := make(chan Health, 1)
	reloader := NewReloader(NewChannelWatcher(ch), func(_ context.Context, _, curr Settings) error {
		last.Store(int32(curr.IntervalMS))
		return nil
	}).Clock(clock).OnStop(func(h Health) { stopped <- h })

	_ = reloader.Start(context.Background())
	ch <- []byte("interval_ms: 7000")
	time.Sleep(10 * time.Millisecond)
	close(ch)

	select {
	case h := <-stopped:
		if h != HealthHealthy {
			t.Errorf("expected healthy on stop, got %s", h)
		}
	case <-time.After(time.Second):
		t.Fatal("reloader did not stop after source closed")
	}
	if last.Load() != 7000 {
		t.Errorf("expected pending change applied on close, got %d", last.Load())
	}
}

func TestReloader_ConfiguresRotator(t *testing.T) {
	ch := make(chan []byte, 1)
	ch <- []byte("interval_ms: 3000\nfade_delay_ms: 0\n")

	r, clock, _ := newTestRotator(abc)
	ctx := context.Background()
	_ = r.Start(ctx)
	defer r.Stop(ctx)

	reloader := NewReloader(NewSyncChannelWatcher(ch), func(ctx context.Context, _, curr Settings) error {
		return r.Configure(ctx, curr)
	}).SyncMode()
	if err := reloader.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	advance(clock, 2*time.Second)
	holdIndex(t, r, 0)

	advance(clock, time.Second)
	waitIndex(t, r, 1)
}

func TestReloader_BaseFillsMissingFields(t *testing.T) {
	ch := make(chan []byte, 1)
	ch <- []byte("fade_delay_ms: 90")

	base, _ := Preset("swift")
	var got Settings
	reloader := NewReloader(NewSyncChannelWatcher(ch), func(_ context.Context, _, curr Settings) error {
		got = curr
		return nil
	}).SyncMode().Base(base)

	if err := reloader.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if got.IntervalMS != base.IntervalMS || got.FadeDelayMS != 90 {
		t.Errorf("unexpected settings %+v", got)
	}
}
