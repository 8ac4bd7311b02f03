package formz

import "context"

// Validator checks a whole form value. It returns nil when the value is valid
// and the full list of issues otherwise. Implementations must be synchronous
// and must not retain or mutate the value.
type Validator interface {
	Validate(ctx context.Context, value Value) Issues
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, value Value) Issues

// Validate calls f(ctx, value).
func (f ValidatorFunc) Validate(ctx context.Context, value Value) Issues {
	return f(ctx, value)
}

// Ensure ValidatorFunc implements Validator.
var _ Validator = ValidatorFunc(nil)
