package formz

import (
	"context"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := newConfig(nil)

	if !cfg.requireFirstChange {
		t.Error("expected first-change gate enabled by default")
	}
	if cfg.keepNil {
		t.Error("expected nil stripping by default")
	}
	if _, ok := cfg.metrics.(NoOpMetricsProvider); !ok {
		t.Errorf("expected no-op metrics, got %T", cfg.metrics)
	}
	if cfg.logger == nil || cfg.clock == nil {
		t.Error("expected default logger and clock")
	}
	if cfg.id == "" {
		t.Error("expected a generated id")
	}
}

func TestWithEffects_Appends(t *testing.T) {
	a := ResetOnChange("a", Value{"x": 1})
	b := ResetOnChange("b", Value{"y": 1})

	cfg := newConfig([]Option{WithEffects(a), WithEffects(b)})
	if len(cfg.effects) != 2 {
		t.Errorf("expected 2 effects, got %d", len(cfg.effects))
	}
}

type steppingValidator struct {
	clock *clockz.FakeClock
}

func (v steppingValidator) Validate(context.Context, Value) Issues {
	v.clock.Advance(5 * time.Millisecond)
	return nil
}

type durationMetrics struct {
	NoOpMetricsProvider
	last time.Duration
}

func (m *durationMetrics) OnValidation(_ bool, d time.Duration) {
	m.last = d
}

func TestWithClock_TimesValidation(t *testing.T) {
	clock := clockz.NewFakeClock()
	m := &durationMetrics{}

	if _, err := New(steppingValidator{clock: clock}, WithClock(clock), WithMetrics(m)); err != nil {
		t.Fatal(err)
	}

	if m.last != 5*time.Millisecond {
		t.Errorf("expected validation timed with the fake clock (5ms), got %v", m.last)
	}
}

func TestWithLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ctrl := newLoginController(t, WithID("login"), WithLogger(zap.New(core)))

	mustSet(t, ctrl, "email", "ross@example.com")

	entries := logs.FilterMessage("validation failed").All()
	if len(entries) == 0 {
		t.Fatal("expected validation debug lines")
	}
	if got := entries[0].ContextMap()["form_id"]; got != "login" {
		t.Errorf("expected form_id field, got %v", got)
	}
}
