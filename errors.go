package formz

import "errors"

var (
	// ErrNoValidator is returned by New when no validator is supplied.
	ErrNoValidator = errors.New("formz: validator is required")

	// ErrNotInitialized is returned by operations on a Controller that was
	// not built with New.
	ErrNotInitialized = errors.New("formz: form not initialized")

	// ErrAlreadyMounted is returned when a Field is mounted twice.
	ErrAlreadyMounted = errors.New("formz: field already mounted")

	// ErrNotMounted is returned by Field operations that need a mounted field.
	ErrNotMounted = errors.New("formz: field not mounted")

	// ErrFormNotFound is returned by the Bus for unknown form ids.
	ErrFormNotFound = errors.New("formz: form not found")

	// ErrDuplicateForm is returned when a form id is registered twice.
	ErrDuplicateForm = errors.New("formz: form id already registered")
)
