package formz

import "context"

// Watcher observes a source of form values and emits raw documents on a
// channel. Implementations emit the current document immediately upon Watch
// so a Feed can apply it on start.
type Watcher interface {
	// Watch begins observing the source. The returned channel is closed when
	// ctx is canceled or the source ends.
	Watch(ctx context.Context) (<-chan []byte, error)
}

// WatcherFunc adapts a function to the Watcher interface.
type WatcherFunc func(ctx context.Context) (<-chan []byte, error)

// Watch calls f(ctx).
func (f WatcherFunc) Watch(ctx context.Context) (<-chan []byte, error) {
	return f(ctx)
}

// ChannelWatcher wraps an existing byte channel as a Watcher.
// Useful for tests and for hosts that already produce documents.
type ChannelWatcher struct {
	ch   <-chan []byte
	sync bool
}

// NewChannelWatcher creates a ChannelWatcher that forwards documents through
// an internal goroutine, stopping when the context is canceled.
func NewChannelWatcher(ch <-chan []byte) *ChannelWatcher {
	return &ChannelWatcher{ch: ch}
}

// NewSyncChannelWatcher creates a ChannelWatcher that hands out the source
// channel itself. Pair it with Feed.SyncMode for deterministic tests.
func NewSyncChannelWatcher(ch <-chan []byte) *ChannelWatcher {
	return &ChannelWatcher{ch: ch, sync: true}
}

// Watch implements Watcher.
func (w *ChannelWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	if w.sync {
		return w.ch, nil
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-w.ch:
				if !ok {
					return
				}
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

var (
	_ Watcher = WatcherFunc(nil)
	_ Watcher = (*ChannelWatcher)(nil)
)
