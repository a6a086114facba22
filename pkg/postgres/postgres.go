// Package postgres provides a carousel.Watcher that reads rotator settings
// from a table row and follows it with LISTEN/NOTIFY.
package postgres

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zoobzio/carousel"
)

// Defaults used by New.
const (
	DefaultChannel = "carousel_settings"
	DefaultTable   = "carousel_settings"
)

// Watcher follows one row of a key/value table. A trigger notifies the
// channel with the row's key on every write:
//
//	CREATE TABLE carousel_settings (key TEXT PRIMARY KEY, value BYTEA NOT NULL);
//
//	CREATE OR REPLACE FUNCTION notify_carousel_settings() RETURNS trigger AS $$
//	BEGIN
//	    PERFORM pg_notify('carousel_settings', NEW.key);
//	    RETURN NEW;
//	END;
//	$$ LANGUAGE plpgsql;
//
//	CREATE TRIGGER carousel_settings_notify
//	    AFTER INSERT OR UPDATE ON carousel_settings
//	    FOR EACH ROW EXECUTE FUNCTION notify_carousel_settings();
type Watcher struct {
	pool    *pgxpool.Pool
	channel string
	key     string
	table   string
}

var _ carousel.Watcher = (*Watcher)(nil)

// Option configures a Watcher.
type Option func(*Watcher)

// WithTable sets the table values are read from.
// Defaults to DefaultTable.
func WithTable(table string) Option {
	return func(w *Watcher) {
		w.table = table
	}
}

// WithChannel sets the notification channel.
// Defaults to DefaultChannel.
func WithChannel(channel string) Option {
	return func(w *Watcher) {
		w.channel = channel
	}
}

// New creates a Watcher for the row identified by key.
func New(pool *pgxpool.Pool, key string, opts ...Option) *Watcher {
	w := &Watcher{
		pool:    pool,
		channel: DefaultChannel,
		key:     key,
		table:   DefaultTable,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch listens on the channel and emits the row's value, the current one
// first. Notifications for other keys and writes that leave the value
// unchanged are skipped. A missing row emits nothing until it is written.
func (w *Watcher) Watch(ctx context.Context) (<-chan []byte, error) {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{w.channel}.Sanitize()); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen on %s: %w", w.channel, err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)
		// The connection still holds the LISTEN; discard it rather than
		// returning it to the pool.
		defer func() {
			_ = conn.Conn().Close(context.Background())
			conn.Release()
		}()

		var last []byte
		emit := func() bool {
			value, err := w.fetchValue(ctx)
			if err != nil || value == nil || (last != nil && bytes.Equal(value, last)) {
				return ctx.Err() == nil
			}
			last = value
			select {
			case out <- value:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}

		for {
			notification, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() != nil || conn.Conn().IsClosed() {
					return
				}
				continue
			}
			if notification.Payload != w.key {
				continue
			}
			if !emit() {
				return
			}
		}
	}()

	return out, nil
}

// Put upserts the watched row.
func (w *Watcher) Put(ctx context.Context, value []byte) error {
	table := pgx.Identifier{w.table}.Sanitize()
	query := fmt.Sprintf(`INSERT INTO %s (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, table)
	if _, err := w.pool.Exec(ctx, query, w.key, value); err != nil {
		return fmt.Errorf("write %s: %w", w.key, err)
	}
	return nil
}

// fetchValue returns the row's value, or nil when the row does not exist.
func (w *Watcher) fetchValue(ctx context.Context) ([]byte, error) {
	var value []byte
	query := fmt.Sprintf("SELECT value FROM %s WHERE key = $1", pgx.Identifier{w.table}.Sanitize())
	err := w.pool.QueryRow(ctx, query, w.key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}
