package formz

import "testing"

func TestSignalNames(t *testing.T) {
	tests := []struct {
		name string
		got  string
	}{
		{"formz.form.created", FormCreated.Name()},
		{"formz.form.state.changed", FormStateChanged.Name()},
		{"formz.form.value.replaced", FormValueReplaced.Name()},
		{"formz.form.input.changed", FormInputChanged.Name()},
		{"formz.form.effects.applied", FormEffectsApplied.Name()},
		{"formz.form.validation.failed", FormValidationFailed.Name()},
		{"formz.form.validation.succeeded", FormValidationSucceeded.Name()},
		{"formz.form.submitted", FormSubmitted.Name()},
		{"formz.form.submit.rejected", FormSubmitRejected.Name()},
		{"formz.form.submit.failed", FormSubmitFailed.Name()},
		{"formz.feed.started", FeedStarted.Name()},
		{"formz.feed.stopped", FeedStopped.Name()},
		{"formz.feed.state.changed", FeedStateChanged.Name()},
		{"formz.feed.change.received", FeedChangeReceived.Name()},
		{"formz.feed.decode.failed", FeedDecodeFailed.Name()},
		{"formz.feed.apply.failed", FeedApplyFailed.Name()},
		{"formz.feed.apply.succeeded", FeedApplySucceeded.Name()},
	}
	for _, tt := range tests {
		if tt.got != tt.name {
			t.Errorf("expected name %q, got %q", tt.name, tt.got)
		}
	}
}

func TestAllSignals_Complete(t *testing.T) {
	if len(allSignals) != 17 {
		t.Errorf("expected 17 signals, got %d", len(allSignals))
	}
	seen := make(map[string]bool)
	for _, sig := range allSignals {
		if seen[sig.Name()] {
			t.Errorf("duplicate signal %q", sig.Name())
		}
		seen[sig.Name()] = true
	}
}

func TestIsFailureSignal(t *testing.T) {
	if !isFailureSignal(FeedDecodeFailed) {
		t.Error("expected FeedDecodeFailed to be a failure signal")
	}
	if !isFailureSignal(FormSubmitFailed) {
		t.Error("expected FormSubmitFailed to be a failure signal")
	}
	if isFailureSignal(FormValidationFailed) {
		t.Error("validation failures are routine and should log at debug")
	}
}
