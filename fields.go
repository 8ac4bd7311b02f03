package formz

import "github.com/zoobzio/capitan"

// Field keys for form and feed events.
var (
	// KeyFormID identifies the form a signal refers to.
	KeyFormID = capitan.NewStringKey("form_id")

	// KeyInputKey is the dotted key of the field that changed.
	KeyInputKey = capitan.NewStringKey("input_key")

	// KeyIssueCount is the number of issues reported by a validation pass.
	KeyIssueCount = capitan.NewIntKey("issue_count")

	// KeyEffectedKeys is the comma separated list of keys touched by effects.
	KeyEffectedKeys = capitan.NewStringKey("effected_keys")

	// KeyOldState is the previous state before a transition.
	KeyOldState = capitan.NewStringKey("old_state")

	// KeyState is the current state when a feed stops.
	KeyState = capitan.NewStringKey("state")

	// KeyContentType is the codec content type used by a feed.
	KeyContentType = capitan.NewStringKey("content_type")

	// KeyNewState is the new state after a transition.
	KeyNewState = capitan.NewStringKey("new_state")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyDebounce is the configured feed debounce duration.
	KeyDebounce = capitan.NewDurationKey("debounce")
)
