package formz

import (
	"context"
	"sync"

	"github.com/zoobzio/capitan"
	"go.uber.org/zap"
)

// LogSignals hooks every formz signal into logger. Failures log at warn
// level, everything else at debug. The returned func removes the hooks; it
// may be called more than once.
//
// capitan delivers events asynchronously, so lines may trail the operation
// that emitted them.
func LogSignals(logger *zap.Logger) func() {
	listeners := make([]*capitan.Listener, 0, len(allSignals))
	for _, sig := range allSignals {
		level := zap.DebugLevel
		if isFailureSignal(sig) {
			level = zap.WarnLevel
		}
		name := sig.Name()
		listeners = append(listeners, capitan.Hook(sig, func(_ context.Context, e *capitan.Event) {
			if ce := logger.Check(level, name); ce != nil {
				ce.Write(eventFields(e)...)
			}
		}))
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			for _, l := range listeners {
				l.Close()
			}
		})
	}
}

func isFailureSignal(sig capitan.Signal) bool {
	switch sig.Name() {
	case FormSubmitFailed.Name(), FeedDecodeFailed.Name(), FeedApplyFailed.Name():
		return true
	default:
		return false
	}
}

type stringKey interface {
	From(e *capitan.Event) (string, bool)
}

var logStringKeys = []struct {
	name string
	key  stringKey
}{
	{"form_id", KeyFormID},
	{"input_key", KeyInputKey},
	{"effected_keys", KeyEffectedKeys},
	{"old_state", KeyOldState},
	{"new_state", KeyNewState},
	{"state", KeyState},
	{"error", KeyError},
	{"content_type", KeyContentType},
}

// eventFields extracts the known keys present on e.
func eventFields(e *capitan.Event) []zap.Field {
	var fields []zap.Field
	for _, k := range logStringKeys {
		if v, ok := k.key.From(e); ok {
			fields = append(fields, zap.String(k.name, v))
		}
	}
	if v, ok := KeyIssueCount.From(e); ok {
		fields = append(fields, zap.Int("issue_count", v))
	}
	if v, ok := KeyDebounce.From(e); ok {
		fields = append(fields, zap.Duration("debounce", v))
	}
	return fields
}
