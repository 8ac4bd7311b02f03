package formz

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/goccy/go-json"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// SubmitFunc receives the submit payload once the form validated.
type SubmitFunc func(ctx context.Context, value Value) error

// formSeq numbers forms created without an explicit id.
var formSeq atomic.Uint64

// config holds configuration options for a Controller.
type config struct {
	id                 string
	initial            Value
	effects            []Effect
	requireFirstChange bool
	onSubmit           SubmitFunc
	keepNil            bool
	metrics            MetricsProvider
	clock              clockz.Clock
	logger             *zap.Logger
}

// Option configures a Controller.
type Option func(*config)

// WithID sets the form id used by the Bus and in signals.
// Without this option a sequential id ("form-1", "form-2", ...) is assigned.
func WithID(id string) Option {
	return func(c *config) {
		c.id = id
	}
}

// WithInitialValue sets the value the form starts from. It is also the
// reference for HasChanged and the first-change gate.
func WithInitialValue(v Value) Option {
	return func(c *config) {
		c.initial = cloneValue(v)
	}
}

// WithEffects sets the effects applied, in order, after every input change.
func WithEffects(effects ...Effect) Option {
	return func(c *config) {
		c.effects = append(c.effects, effects...)
	}
}

// WithRequireFirstChange controls the first-change gate. When enabled (the
// default) and an initial value was supplied, GetFormErrors reports a
// synthetic global issue until the value differs from the initial value.
func WithRequireFirstChange(enabled bool) Option {
	return func(c *config) {
		c.requireFirstChange = enabled
	}
}

// WithOnSubmit sets the callback invoked by Submit with a valid payload.
func WithOnSubmit(fn SubmitFunc) Option {
	return func(c *config) {
		c.onSubmit = fn
	}
}

// WithKeepNilFields keeps nil-valued entries in the submit payload.
// By default they are stripped.
func WithKeepNilFields() Option {
	return func(c *config) {
		c.keepNil = true
	}
}

// WithMetrics sets a metrics provider for observability integration.
func WithMetrics(provider MetricsProvider) Option {
	return func(c *config) {
		c.metrics = provider
	}
}

// WithClock sets a custom clock for timing validations.
// Use this with clockz.FakeClock for deterministic tests.
func WithClock(clock clockz.Clock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		requireFirstChange: true,
		metrics:            NoOpMetricsProvider{},
		clock:              clockz.RealClock,
		logger:             zap.NewNop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.id == "" {
		cfg.id = fmt.Sprintf("form-%d", formSeq.Add(1))
	}
	return cfg
}

// SubmitAs adapts a typed callback into a SubmitFunc. The payload is
// re-encoded as JSON and decoded into T, so T's json tags name the fields.
func SubmitAs[T any](fn func(ctx context.Context, value T) error) SubmitFunc {
	return func(ctx context.Context, value Value) error {
		var typed T
		if err := decodeInto(value, &typed); err != nil {
			return fmt.Errorf("decode submit payload: %w", err)
		}
		return fn(ctx, typed)
	}
}

// decodeInto converts a form value into a typed destination through JSON.
func decodeInto(value Value, dst any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
