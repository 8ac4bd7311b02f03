// Package redis connects formz to Redis: a Watcher that feeds form values
// from a key, and a Listener that dispatches form actions received over
// pub/sub onto a formz.Bus.
package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/zoobzio/formz"
)

// Watcher watches a Redis key holding a form value document, using keyspace
// notifications. Redis must have them enabled:
//
//	CONFIG SET notify-keyspace-events KEA
type Watcher struct {
	client *redis.Client
	key    string
	db     int
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDB sets the database index used in the keyspace channel name.
// Default: 0.
func WithDB(db int) Option {
	return func(w *Watcher) {
		w.db = db
	}
}

// NewWatcher creates a Watcher for key.
func NewWatcher(client *redis.Client, key string, opts ...Option) *Watcher {
	w := &Watcher{
		client: client,
		key:    key,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Channel returns the keyspace notification channel for the watched key.
func (w *Watcher) Channel() string {
	return fmt.Sprintf("__keyspace@%d__:%s", w.db, w.key)
}

// Watch implements formz.Watcher. The current value is emitted first when
// the key exists.
func (w *Watcher) Watch(ctx context.Context) (<-chan []byte, error) {
	pubsub := w.client.Subscribe(ctx, w.Channel())
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to keyspace notifications: %w", err)
	}

	out := make(chan []byte)

	go func() {
		defer close(out)
		defer pubsub.Close()

		val, err := w.client.Get(ctx, w.key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return
		default:
			select {
			case out <- val:
			case <-ctx.Done():
				return
			}
		}

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if !isWrite(msg.Payload) {
					continue
				}
				val, err := w.client.Get(ctx, w.key).Bytes()
				if err != nil {
					continue
				}
				select {
				case out <- val:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// isWrite reports whether a keyspace event replaced the key's value.
func isWrite(event string) bool {
	switch event {
	case "set", "setex", "psetex", "setnx", "getset", "append":
		return true
	default:
		return false
	}
}

var _ formz.Watcher = (*Watcher)(nil)
