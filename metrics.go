package formz

import "time"

// SubmitOutcome classifies the result of a Submit call for metrics.
type SubmitOutcome string

const (
	// SubmitAccepted means the submit callback ran and returned nil.
	SubmitAccepted SubmitOutcome = "accepted"
	// SubmitRejected means validation aborted the submit.
	SubmitRejected SubmitOutcome = "rejected"
	// SubmitFailed means the submit callback returned an error.
	SubmitFailed SubmitOutcome = "failed"
)

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key controller and feed events.
type MetricsProvider interface {
	// OnStateChange is called when a controller transitions between states.
	OnStateChange(from, to State)

	// OnValidation is called after every validation pass.
	// Duration is the time spent inside the validator.
	OnValidation(valid bool, duration time.Duration)

	// OnEffectsApplied is called when effects ran for an input change.
	// Count is the number of effects that activated.
	OnEffectsApplied(count int)

	// OnSubmit is called once per Submit call.
	OnSubmit(outcome SubmitOutcome)

	// OnFeedChange is called when a feed receives raw data from its watcher.
	OnFeedChange()
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnStateChange(_, _ State)             {}
func (NoOpMetricsProvider) OnValidation(_ bool, _ time.Duration) {}
func (NoOpMetricsProvider) OnEffectsApplied(_ int)               {}
func (NoOpMetricsProvider) OnSubmit(_ SubmitOutcome)             {}
func (NoOpMetricsProvider) OnFeedChange()                        {}
