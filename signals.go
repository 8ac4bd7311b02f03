package formz

import "github.com/zoobzio/capitan"

// Form lifecycle signals.
var (
	// FormCreated is emitted when a Controller has been constructed and its
	// initial value validated.
	FormCreated = capitan.NewSignal(
		"formz.form.created",
		"Form controller created",
	)

	// FormStateChanged is emitted when a Controller moves between states.
	FormStateChanged = capitan.NewSignal(
		"formz.form.state.changed",
		"Form state transition",
	)

	// FormValueReplaced is emitted when the whole value is replaced through
	// SetFormValue.
	FormValueReplaced = capitan.NewSignal(
		"formz.form.value.replaced",
		"Form value replaced",
	)
)

// Input processing signals.
var (
	// FormInputChanged is emitted after a field value has been written.
	FormInputChanged = capitan.NewSignal(
		"formz.form.input.changed",
		"Form input value changed",
	)

	// FormEffectsApplied is emitted when one or more effects ran for a change.
	FormEffectsApplied = capitan.NewSignal(
		"formz.form.effects.applied",
		"Form effects applied",
	)

	// FormValidationFailed is emitted when the validator reports issues.
	FormValidationFailed = capitan.NewSignal(
		"formz.form.validation.failed",
		"Form validation failed",
	)

	// FormValidationSucceeded is emitted when the validator reports no issues.
	FormValidationSucceeded = capitan.NewSignal(
		"formz.form.validation.succeeded",
		"Form validation succeeded",
	)
)

// Submit signals.
var (
	// FormSubmitted is emitted when the submit callback accepted the value.
	FormSubmitted = capitan.NewSignal(
		"formz.form.submitted",
		"Form submitted",
	)

	// FormSubmitRejected is emitted when a submit was aborted by validation.
	FormSubmitRejected = capitan.NewSignal(
		"formz.form.submit.rejected",
		"Form submit rejected by validation",
	)

	// FormSubmitFailed is emitted when the submit callback returned an error.
	FormSubmitFailed = capitan.NewSignal(
		"formz.form.submit.failed",
		"Form submit callback failed",
	)
)

// Feed lifecycle signals.
var (
	// FeedStarted is emitted when a Feed begins watching.
	FeedStarted = capitan.NewSignal(
		"formz.feed.started",
		"Feed watching started",
	)

	// FeedStopped is emitted when a Feed stops watching.
	FeedStopped = capitan.NewSignal(
		"formz.feed.stopped",
		"Feed watching stopped",
	)

	// FeedStateChanged is emitted when a Feed transitions between states.
	FeedStateChanged = capitan.NewSignal(
		"formz.feed.state.changed",
		"Feed state transition",
	)

	// FeedChangeReceived is emitted when raw data is received from the watcher.
	FeedChangeReceived = capitan.NewSignal(
		"formz.feed.change.received",
		"Raw change received from watcher",
	)

	// FeedDecodeFailed is emitted when raw data cannot be decoded into a value.
	FeedDecodeFailed = capitan.NewSignal(
		"formz.feed.decode.failed",
		"Feed decode failed",
	)

	// FeedApplyFailed is emitted when a decoded value cannot be applied.
	FeedApplyFailed = capitan.NewSignal(
		"formz.feed.apply.failed",
		"Feed apply failed",
	)

	// FeedApplySucceeded is emitted when a decoded value was applied to its form.
	FeedApplySucceeded = capitan.NewSignal(
		"formz.feed.apply.succeeded",
		"Feed value applied",
	)
)

// allSignals lists every signal for LogSignals.
var allSignals = []capitan.Signal{
	FormCreated,
	FormStateChanged,
	FormValueReplaced,
	FormInputChanged,
	FormEffectsApplied,
	FormValidationFailed,
	FormValidationSucceeded,
	FormSubmitted,
	FormSubmitRejected,
	FormSubmitFailed,
	FeedStarted,
	FeedStopped,
	FeedStateChanged,
	FeedChangeReceived,
	FeedDecodeFailed,
	FeedApplyFailed,
	FeedApplySucceeded,
}
