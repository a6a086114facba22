package nats

import (
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/testcontainers/testcontainers-go"
	tcnats "github.com/testcontainers/testcontainers-go/modules/nats"
)

func setupNATS(t *testing.T) jetstream.KeyValue {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	container, err := tcnats.Run(ctx, "nats:2.10-alpine")
	if err != nil {
		t.Fatalf("failed to start nats container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	endpoint, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get endpoint: %v", err)
	}

	nc, err := nats.Connect(endpoint)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	t.Cleanup(nc.Close)

	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatalf("failed to create jetstream: %v", err)
	}

	kv, err := js.CreateKeyValue(ctx, jetstream.KeyValueConfig{Bucket: "sites"})
	if err != nil {
		t.Fatalf("failed to create kv bucket: %v", err)
	}

	return kv
}

func receive(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case data, ok := <-ch:
		if !ok {
			t.Fatal("channel closed")
		}
		return data
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for value")
		return nil
	}
}

func TestNew_DefaultKey(t *testing.T) {
	if w := New(nil, ""); w.key != DefaultKey {
		t.Errorf("expected %q, got %q", DefaultKey, w.key)
	}
}

func TestWatcher_EmitsInitialValue(t *testing.T) {
	kv := setupNATS(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	w := New(kv, "landing.hero")
	value := []byte("interval_ms: 4500\n")
	if err := w.Put(ctx, value); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	ch, err := w.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	if data := receive(t, ch); string(data) != string(value) {
		t.Errorf("expected %q, got %q", value, data)
	}
}

func TestWatcher_EmitsOnChange(t *testing.T) {
	kv := setupNATS(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	w := New(kv, "landing.hero")
	_ = w.Put(ctx, []byte("interval_ms: 4500"))

	ch, err := w.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	receive(t, ch)

	_ = w.Put(ctx, []byte("interval_ms: 4500"))
	_ = w.Put(ctx, []byte("interval_ms: 6000"))

	if data := receive(t, ch); string(data) != "interval_ms: 6000" {
		t.Errorf("expected updated value, got %q", data)
	}
}

func TestWatcher_IgnoresDelete(t *testing.T) {
	kv := setupNATS(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	w := New(kv, "landing.hero")
	_ = w.Put(ctx, []byte("interval_ms: 4500"))

	ch, err := w.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	receive(t, ch)

	if err := kv.Delete(ctx, "landing.hero"); err != nil {
		t.Fatalf("failed to delete: %v", err)
	}
	_ = w.Put(ctx, []byte("interval_ms: 3000"))

	if data := receive(t, ch); string(data) != "interval_ms: 3000" {
		t.Errorf("expected put after delete, got %q", data)
	}
}

func TestWatcher_ClosesOnContextCancel(t *testing.T) {
	kv := setupNATS(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	w := New(kv, "landing.hero")
	_ = w.Put(ctx, []byte("interval_ms: 4500"))

	ch, err := w.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	receive(t, ch)

	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to close")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for channel close")
	}
}
