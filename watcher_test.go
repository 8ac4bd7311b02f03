package formz

import (
	"context"
	"testing"
	"time"
)

func TestChannelWatcher_ForwardsDocuments(t *testing.T) {
	source := make(chan []byte, 2)
	source <- []byte(`{"name": "Ross"}`)
	source <- []byte(`{"name": "Rachel"}`)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out, err := NewChannelWatcher(source).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	for i, want := range []string{`{"name": "Ross"}`, `{"name": "Rachel"}`} {
		select {
		case v := <-out:
			if string(v) != want {
				t.Errorf("expected %s, got %s", want, v)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("timeout waiting for document %d", i)
		}
	}
}

func TestChannelWatcher_ClosesWithSource(t *testing.T) {
	source := make(chan []byte, 1)
	source <- []byte("{}")
	close(source)

	out, err := NewChannelWatcher(source).Watch(context.Background())
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	<-out

	select {
	case _, ok := <-out:
		if ok {
			t.Error("expected channel to be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for channel close")
	}
}

func TestChannelWatcher_CancelWhileBlockedOnSend(t *testing.T) {
	source := make(chan []byte)

	ctx, cancel := context.WithCancel(context.Background())
	out, err := NewChannelWatcher(source).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	go func() {
		source <- []byte("{}")
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	deadline := time.After(100 * time.Millisecond)
	for {
		select {
		case _, ok := <-out:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel did not close after context cancel")
		}
	}
}

func TestSyncChannelWatcher_ReturnsSource(t *testing.T) {
	source := make(chan []byte, 1)
	source <- []byte("{}")

	out, err := NewSyncChannelWatcher(source).Watch(context.Background())
	if err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	select {
	case v := <-out:
		if string(v) != "{}" {
			t.Errorf("expected '{}', got %s", v)
		}
	default:
		t.Error("expected the buffered document to be readable without a goroutine")
	}
}

func TestWatcherFunc(t *testing.T) {
	ch := make(chan []byte)
	var called bool
	w := WatcherFunc(func(context.Context) (<-chan []byte, error) {
		called = true
		return ch, nil
	})

	out, err := w.Watch(context.Background())
	if err != nil || !called || out != (<-chan []byte)(ch) {
		t.Errorf("expected WatcherFunc to delegate, got %v, called=%v", err, called)
	}
}
