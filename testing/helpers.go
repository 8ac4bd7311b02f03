// Package testing provides test utilities and helpers for formz forms and
// feeds.
package testing

import (
	"slices"
	"testing"
	"time"

	"github.com/zoobzio/formz"
)

// LoginRules is a standard rule set for testing: a required email and a
// password of at least eight characters.
func LoginRules() formz.Rules {
	minLen := 8
	return formz.Rules{
		"email":    {Required: true, Email: true},
		"password": {Required: true, MinLength: &minLen},
	}
}

// NewLoginForm creates a controller validated by LoginRules.
func NewLoginForm(t *testing.T, opts ...formz.Option) *formz.Controller {
	t.Helper()
	v, err := formz.NewRuleValidator(LoginRules())
	if err != nil {
		t.Fatalf("compile login rules: %v", err)
	}
	ctrl, err := formz.New(v, opts...)
	if err != nil {
		t.Fatalf("create form: %v", err)
	}
	return ctrl
}

// InputErrorsCall is one recorded input-errors notification.
type InputErrorsCall struct {
	Key    string
	Issues formz.Issues
	Force  bool
}

// Recorder subscribes to every registry of a controller and records the
// notifications it receives.
type Recorder struct {
	ctrl *formz.Controller

	InputErrors []InputErrorsCall
	Values      int
	ForceValues [][]string
	Changed     []bool

	subs [4]formz.Subscription
}

// NewRecorder starts recording ctrl's notifications. The recorder is
// unsubscribed when the test ends.
func NewRecorder(t *testing.T, ctrl *formz.Controller) *Recorder {
	t.Helper()
	r := &Recorder{ctrl: ctrl}
	r.subs[0] = ctrl.SubscribeInputErrors(func(key string, issues formz.Issues, force bool) {
		r.InputErrors = append(r.InputErrors, InputErrorsCall{Key: key, Issues: issues, Force: force})
	})
	r.subs[1] = ctrl.SubscribeValue(func() {
		r.Values++
	})
	r.subs[2] = ctrl.SubscribeForceValue(func(keys []string) {
		r.ForceValues = append(r.ForceValues, slices.Clone(keys))
	})
	r.subs[3] = ctrl.SubscribeChanged(func(changed bool) {
		r.Changed = append(r.Changed, changed)
	})
	t.Cleanup(r.Close)
	return r
}

// Close unsubscribes the recorder.
func (r *Recorder) Close() {
	r.ctrl.UnsubscribeInputErrors(r.subs[0])
	r.ctrl.UnsubscribeValue(r.subs[1])
	r.ctrl.UnsubscribeForceValue(r.subs[2])
	r.ctrl.UnsubscribeChanged(r.subs[3])
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.InputErrors = nil
	r.Values = 0
	r.ForceValues = nil
	r.Changed = nil
}

// RequireIssues fails the test unless issues carry exactly the given keys,
// in order.
func RequireIssues(t *testing.T, issues formz.Issues, keys ...string) {
	t.Helper()
	got := make([]string, len(issues))
	for i, issue := range issues {
		got[i] = issue.Key()
	}
	if !slices.Equal(got, keys) {
		t.Fatalf("expected issues at %v, got %v (%v)", keys, got, issues)
	}
}

// RequireState fails the test immediately if the controller is not in the
// expected state.
func RequireState(t *testing.T, ctrl *formz.Controller, expected formz.State) {
	t.Helper()
	if got := ctrl.State(); got != expected {
		t.Fatalf("expected state %s, got %s", expected, got)
	}
}

// WaitFor polls a condition until it returns true or timeout is reached.
// Returns true if the condition was met, false if timeout occurred.
func WaitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

// WaitForFeedState waits until the feed reaches the expected state or
// timeout occurs.
func WaitForFeedState(t *testing.T, f *formz.Feed, expected formz.FeedState, timeout time.Duration) bool {
	t.Helper()
	return WaitFor(t, timeout, func() bool {
		return f.State() == expected
	})
}

// RequireFeedState fails the test immediately if the feed is not in the
// expected state.
func RequireFeedState(t *testing.T, f *formz.Feed, expected formz.FeedState) {
	t.Helper()
	if got := f.State(); got != expected {
		t.Fatalf("expected feed state %s, got %s", expected, got)
	}
}

// NewTestFeed creates a sync-mode feed for formID on bus, fed by a buffered
// channel. Returns the feed and the channel for sending documents.
func NewTestFeed(t *testing.T, bus *formz.Bus, formID string) (*formz.Feed, chan<- []byte) {
	t.Helper()
	ch := make(chan []byte, 10)
	f := formz.NewFeed(formz.NewSyncChannelWatcher(ch), bus, formID).
		Codec(formz.JSONCodec{}).
		SyncMode()
	return f, ch
}
