package formz

// State represents the validation state of a Controller.
type State int32

const (
	// StateUninitialized indicates the controller has no validator bound.
	// Only a zero-value Controller is ever in this state.
	StateUninitialized State = iota

	// StateValid indicates the last validation pass reported no issues.
	StateValid

	// StateInvalid indicates the last validation pass reported issues.
	StateInvalid
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateValid:
		return "valid"
	case StateInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// FeedState represents the current state of a Feed.
type FeedState int32

const (
	// FeedLoading indicates the feed has not yet processed any value.
	FeedLoading FeedState = iota

	// FeedHealthy indicates the last value was decoded and applied.
	FeedHealthy

	// FeedDegraded indicates the last change failed to decode or apply.
	// The previously applied value remains in the form.
	FeedDegraded

	// FeedEmpty indicates the initial value failed and nothing has been
	// applied yet. The feed keeps watching for a usable value.
	FeedEmpty
)

// String returns the string representation of the feed state.
func (s FeedState) String() string {
	switch s {
	case FeedLoading:
		return "loading"
	case FeedHealthy:
		return "healthy"
	case FeedDegraded:
		return "degraded"
	case FeedEmpty:
		return "empty"
	default:
		return "unknown"
	}
}
