package carousel

import "context"

// ChannelWatcher adapts a byte channel to the Watcher interface. It is the
// in-process settings source used by tests and by callers that already
// produce settings documents, such as an admin endpoint.
type ChannelWatcher struct {
	ch     <-chan []byte
	direct bool
}

// NewChannelWatcher returns a Watcher that relays values from ch until ch is
// closed or the watch context ends.
func NewChannelWatcher(ch <-chan []byte) *ChannelWatcher {
	return &ChannelWatcher{ch: ch}
}

// NewSyncChannelWatcher returns a Watcher that hands ch straight to the
// Reloader. Pair it with Reloader.SyncMode for step-by-step tests.
func NewSyncChannelWatcher(ch <-chan []byte) *ChannelWatcher {
	return &ChannelWatcher{ch: ch, direct: true}
}

// Watch returns the relaying channel.
func (w *ChannelWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	if w.direct {
		return w.ch, nil
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		for {
			var v []byte
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-w.ch:
				if !ok {
					return
				}
				v = raw
			}
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
