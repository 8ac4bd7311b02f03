package formz

import (
	"context"
	"fmt"
	"strings"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// Controller owns a form's value and validation issues, applies effects and
// fans changes out to its observers.
//
// All operations run synchronously to completion. A Controller is not safe for
// concurrent use; callers on several goroutines must serialize access, for
// example by dispatching through a Bus.
type Controller struct {
	id                 string
	validator          Validator
	effects            []Effect
	requireFirstChange bool
	onSubmit           SubmitFunc
	keepNil            bool
	metrics            MetricsProvider
	clock              clockz.Clock
	logger             *zap.Logger

	value      Value
	initial    Value
	hasInitial bool
	issues     Issues
	state      State
	changed    bool

	nextSub     uint64
	inputErrors registry[InputErrorsFunc]
	values      registry[ValueFunc]
	forceValues registry[ForceValueFunc]
	changedObs  registry[ChangedFunc]
}

// New creates a Controller bound to validator.
//
// The initial value (see WithInitialValue) is validated immediately without
// notifying anyone, so GetFormErrors is accurate before the first interaction.
//
// Example:
//
//	ctrl, err := formz.New(rules,
//	    formz.WithInitialValue(formz.Value{"email": ""}),
//	    formz.WithOnSubmit(func(ctx context.Context, v formz.Value) error {
//	        return store.Save(ctx, v)
//	    }),
//	)
func New(validator Validator, opts ...Option) (*Controller, error) {
	if validator == nil {
		return nil, ErrNoValidator
	}
	cfg := newConfig(opts)

	c := &Controller{
		id:                 cfg.id,
		validator:          validator,
		effects:            cfg.effects,
		requireFirstChange: cfg.requireFirstChange,
		onSubmit:           cfg.onSubmit,
		keepNil:            cfg.keepNil,
		metrics:            cfg.metrics,
		clock:              cfg.clock,
		logger:             cfg.logger.With(zap.String("form_id", cfg.id)),
		initial:            cfg.initial,
		hasInitial:         cfg.initial != nil,
	}
	if c.hasInitial {
		c.value = cloneValue(cfg.initial)
	} else {
		c.value = Value{}
	}

	ctx := context.Background()
	c.issues = c.validate(ctx)
	c.changed = c.HasChanged()
	c.transitionState(ctx, c.stateFor(c.issues))

	capitan.Emit(ctx, FormCreated,
		KeyFormID.Field(c.id),
		KeyIssueCount.Field(len(c.issues)),
	)

	return c, nil
}

// ID returns the form id.
func (c *Controller) ID() string {
	return c.id
}

// State returns the current validation state.
func (c *Controller) State() State {
	return c.state
}

// ready reports whether the controller was built with New.
func (c *Controller) ready() error {
	if c == nil || c.validator == nil {
		return ErrNotInitialized
	}
	return nil
}

// SetDefaultValue writes v at key only when the current value there is absent
// or nil. Observers are not notified, but the changed status is re-synced so
// the next notification reports a real flip.
func (c *Controller) SetDefaultValue(key string, v any) error {
	if err := c.ready(); err != nil {
		return err
	}
	if cur, ok := Get(c.value, key); ok && cur != nil {
		return nil
	}
	c.value = Set(c.value, key, v)
	c.changed = c.HasChanged()
	return nil
}

// SetInputValue writes v at key, applies effects, notifies observers and
// validates the result. It returns the issues whose path equals key.
func (c *Controller) SetInputValue(ctx context.Context, key string, v any) (Issues, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	prev := c.value
	c.value = Set(c.value, key, v)
	capitan.Emit(ctx, FormInputChanged,
		KeyFormID.Field(c.id),
		KeyInputKey.Field(key),
	)

	if effected := c.applyEffects(ctx, key, v, prev); len(effected) > 0 {
		c.notifyForceValue(effected)
	}
	c.notifyValue()

	issues := c.validate(ctx)
	c.issues = issues
	c.transitionState(ctx, c.stateFor(issues))
	c.notifyInputErrors(key, issues, false)
	// Changed observers run last so they see the issues of this pass.
	c.notifyChanged()

	return issues.ForKey(key), nil
}

// applyEffects runs every effect in declaration order and returns the
// de-duplicated union of effected keys.
func (c *Controller) applyEffects(ctx context.Context, key string, v any, prev Value) []string {
	var (
		effected  []string
		activated int
	)
	for _, effect := range c.effects {
		if !effect.ShouldActivate(key, v, prev, c.value) {
			continue
		}
		activated++
		result := effect.TransformValue(prev, c.value)
		if result.Value != nil {
			c.value = result.Value
		}
		effected = unionKeys(effected, result.EffectedKeys)
	}
	if activated == 0 {
		return nil
	}

	c.metrics.OnEffectsApplied(activated)
	c.logger.Debug("effects applied",
		zap.String("input_key", key),
		zap.Int("activated", activated),
		zap.Strings("effected_keys", effected),
	)
	capitan.Emit(ctx, FormEffectsApplied,
		KeyFormID.Field(c.id),
		KeyInputKey.Field(key),
		KeyEffectedKeys.Field(strings.Join(effected, ",")),
	)
	return effected
}

// ValidateFormValue runs the authoritative whole-form validation. Input-errors
// observers are notified with force set: once per distinct issue path, or
// once with an empty key when the value is valid.
func (c *Controller) ValidateFormValue(ctx context.Context) (Issues, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	issues := c.validate(ctx)
	c.issues = issues
	c.transitionState(ctx, c.stateFor(issues))

	if len(issues) == 0 {
		c.notifyInputErrors("", nil, true)
		return nil, nil
	}
	for _, key := range issues.Keys() {
		c.notifyInputErrors(key, issues, true)
	}
	return issues, nil
}

// GetFormErrors returns the stored issues. While the first-change gate is
// active it appends a synthetic issue at path "global".
func (c *Controller) GetFormErrors() Issues {
	if !c.gateActive() {
		return c.issues
	}
	out := make(Issues, 0, len(c.issues)+1)
	out = append(out, c.issues...)
	return append(out, Issue{
		Path:    []string{GlobalPath},
		Message: firstChangeMessage,
		Code:    CodeFirstChangeRequired,
	})
}

// Issues returns the issues of the last validation pass, without the
// synthetic first-change issue.
func (c *Controller) Issues() Issues {
	return c.issues
}

// GateApplies reports whether the first-change requirement is in force for
// this form: it is enabled and an initial value was supplied.
func (c *Controller) GateApplies() bool {
	return c.requireFirstChange && c.hasInitial
}

func (c *Controller) gateActive() bool {
	return c.GateApplies() && Equal(c.value, c.initial)
}

// HasChanged reports whether the value differs from the initial value. Without
// an initial value the reference is an empty form.
func (c *Controller) HasChanged() bool {
	ref := c.initial
	if ref == nil {
		ref = Value{}
	}
	return !Equal(c.value, ref)
}

// GetFormValue returns the current value. Callers must treat it as read-only.
func (c *Controller) GetFormValue() Value {
	return c.value
}

// GetFormInputValue returns the value at the dotted key, or nil when absent.
func (c *Controller) GetFormInputValue(key string) any {
	v, _ := Get(c.value, key)
	return v
}

// SetFormValue replaces the whole value. With reset the new value also becomes
// the initial value, which clears HasChanged and re-arms the first-change
// gate. Every field is refreshed and a forced validation pass runs.
func (c *Controller) SetFormValue(ctx context.Context, v Value, reset bool) (Issues, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}

	c.value = cloneValue(v)
	if c.value == nil {
		c.value = Value{}
	}
	if reset {
		c.initial = cloneValue(c.value)
		c.hasInitial = true
	}
	c.logger.Debug("value replaced", zap.Bool("reset", reset))
	capitan.Emit(ctx, FormValueReplaced,
		KeyFormID.Field(c.id),
	)

	c.notifyForceValue(nil)
	c.notifyValue()

	issues, err := c.ValidateFormValue(ctx)
	c.notifyChanged()
	return issues, err
}

// Submit runs ValidateFormValue and, when the value is valid, hands the submit
// payload to the callback set with WithOnSubmit. Issues are returned when
// validation aborted the submit; the callback's error is returned wrapped.
func (c *Controller) Submit(ctx context.Context) (Issues, error) {
	issues, err := c.ValidateFormValue(ctx)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		c.metrics.OnSubmit(SubmitRejected)
		capitan.Emit(ctx, FormSubmitRejected,
			KeyFormID.Field(c.id),
			KeyIssueCount.Field(len(issues)),
		)
		return issues, nil
	}

	if c.onSubmit != nil {
		if err := c.onSubmit(ctx, c.payload()); err != nil {
			c.metrics.OnSubmit(SubmitFailed)
			c.logger.Warn("submit callback failed", zap.Error(err))
			capitan.Emit(ctx, FormSubmitFailed,
				KeyFormID.Field(c.id),
				KeyError.Field(err.Error()),
			)
			return nil, fmt.Errorf("submit %s: %w", c.id, err)
		}
	}

	c.metrics.OnSubmit(SubmitAccepted)
	capitan.Emit(ctx, FormSubmitted,
		KeyFormID.Field(c.id),
	)
	return nil, nil
}

// payload returns the value handed to the submit callback.
func (c *Controller) payload() Value {
	if c.keepNil {
		return cloneValue(c.value)
	}
	return stripNil(c.value).(map[string]any)
}

// validate runs the validator and reports timing to metrics.
func (c *Controller) validate(ctx context.Context) Issues {
	start := c.clock.Now()
	issues := c.validator.Validate(ctx, c.value)
	elapsed := c.clock.Since(start)

	valid := len(issues) == 0
	c.metrics.OnValidation(valid, elapsed)
	if valid {
		c.logger.Debug("validation succeeded", zap.Duration("elapsed", elapsed))
		capitan.Emit(ctx, FormValidationSucceeded,
			KeyFormID.Field(c.id),
		)
		return nil
	}
	c.logger.Debug("validation failed",
		zap.Int("issues", len(issues)),
		zap.Strings("keys", issues.Keys()),
	)
	capitan.Emit(ctx, FormValidationFailed,
		KeyFormID.Field(c.id),
		KeyIssueCount.Field(len(issues)),
	)
	return issues
}

func (c *Controller) stateFor(issues Issues) State {
	if len(issues) == 0 {
		return StateValid
	}
	return StateInvalid
}

// transitionState updates the state and emits a state change event if changed.
func (c *Controller) transitionState(ctx context.Context, newState State) {
	oldState := c.state
	if oldState == newState {
		return
	}
	c.state = newState
	c.metrics.OnStateChange(oldState, newState)
	capitan.Emit(ctx, FormStateChanged,
		KeyFormID.Field(c.id),
		KeyOldState.Field(oldState.String()),
		KeyNewState.Field(newState.String()),
	)
}

func (c *Controller) subscription() uint64 {
	c.nextSub++
	return c.nextSub
}

// SubscribeInputErrors registers an input-errors observer.
func (c *Controller) SubscribeInputErrors(fn InputErrorsFunc) Subscription {
	return c.inputErrors.add(c.subscription(), fn)
}

// UnsubscribeInputErrors removes an input-errors observer. Unknown
// subscriptions are ignored.
func (c *Controller) UnsubscribeInputErrors(sub Subscription) {
	c.inputErrors.remove(sub)
}

// SubscribeValue registers a value observer.
func (c *Controller) SubscribeValue(fn ValueFunc) Subscription {
	return c.values.add(c.subscription(), fn)
}

// UnsubscribeValue removes a value observer.
func (c *Controller) UnsubscribeValue(sub Subscription) {
	c.values.remove(sub)
}

// SubscribeForceValue registers a forced-value observer.
func (c *Controller) SubscribeForceValue(fn ForceValueFunc) Subscription {
	return c.forceValues.add(c.subscription(), fn)
}

// UnsubscribeForceValue removes a forced-value observer.
func (c *Controller) UnsubscribeForceValue(sub Subscription) {
	c.forceValues.remove(sub)
}

// SubscribeChanged registers a changed observer.
func (c *Controller) SubscribeChanged(fn ChangedFunc) Subscription {
	return c.changedObs.add(c.subscription(), fn)
}

// UnsubscribeChanged removes a changed observer.
func (c *Controller) UnsubscribeChanged(sub Subscription) {
	c.changedObs.remove(sub)
}

func (c *Controller) notifyInputErrors(key string, issues Issues, force bool) {
	for _, fn := range c.inputErrors.snapshot() {
		fn(key, issues, force)
	}
}

func (c *Controller) notifyValue() {
	for _, fn := range c.values.snapshot() {
		fn()
	}
}

func (c *Controller) notifyForceValue(keys []string) {
	for _, fn := range c.forceValues.snapshot() {
		fn(keys)
	}
}

// notifyChanged notifies changed observers when HasChanged flipped since the
// last notification.
func (c *Controller) notifyChanged() {
	changed := c.HasChanged()
	if changed == c.changed {
		return
	}
	c.changed = changed
	for _, fn := range c.changedObs.snapshot() {
		fn(changed)
	}
}
