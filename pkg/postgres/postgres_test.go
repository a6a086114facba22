package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS carousel_settings (
			key TEXT PRIMARY KEY,
			value BYTEA NOT NULL
		);

		CREATE OR REPLACE FUNCTION notify_carousel_settings() RETURNS trigger AS $$
		BEGIN
			PERFORM pg_notify('carousel_settings', NEW.key);
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql;

		DROP TRIGGER IF EXISTS carousel_settings_notify ON carousel_settings;
		CREATE TRIGGER carousel_settings_notify
			AFTER INSERT OR UPDATE ON carousel_settings
			FOR EACH ROW EXECUTE FUNCTION notify_carousel_settings();
	`)
	if err != nil {
		t.Fatalf("failed to setup schema: %v", err)
	}

	return pool
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

func TestNew_Defaults(t *testing.T) {
	w := New(nil, "landing")
	if w.channel != DefaultChannel || w.table != DefaultTable {
		t.Errorf("unexpected defaults channel=%q table=%q", w.channel, w.table)
	}

	w = New(nil, "landing", WithChannel("hero"), WithTable("site_settings"))
	if w.channel != "hero" || w.table != "site_settings" {
		t.Errorf("options not applied: channel=%q table=%q", w.channel, w.table)
	}
}

func TestWatcher_EmitsInitialValue(t *testing.T) {
	pool := setupPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	w := New(pool, "landing")
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
	pool := setupPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	w := New(pool, "landing")
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

func TestWatcher_WaitsForMissingRow(t *testing.T) {
	pool := setupPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	w := New(pool, "landing")
	ch, err := w.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	select {
	case data := <-ch:
		t.Fatalf("did not expect a value, got %q", data)
	case <-time.After(300 * time.Millisecond):
	}

	_ = w.Put(ctx, []byte("preload: false"))
	if data := receive(t, ch); string(data) != "preload: false" {
		t.Errorf("expected first write, got %q", data)
	}
}

func TestWatcher_IgnoresOtherKeys(t *testing.T) {
	pool := setupPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	w := New(pool, "landing")
	other := New(pool, "checkout")
	_ = w.Put(ctx, []byte("interval_ms: 4500"))

	ch, err := w.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	receive(t, ch)

	_ = other.Put(ctx, []byte("interval_ms: 1000"))

	select {
	case data := <-ch:
		t.Errorf("did not expect update, got %q", data)
	case <-time.After(500 * time.Millisecond):
	}

	_ = w.Put(ctx, []byte("interval_ms: 9000"))
	if data := receive(t, ch); string(data) != "interval_ms: 9000" {
		t.Errorf("expected updated value, got %q", data)
	}
}

func TestWatcher_ClosesOnContextCancel(t *testing.T) {
	pool := setupPostgres(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	w := New(pool, "landing")
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
