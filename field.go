package formz

import (
	"context"
	"fmt"
	"slices"

	"github.com/a-h/templ"
)

// Timing controls when a field starts showing its own validation issues.
type Timing int

const (
	// TimingDefault shows issues after the first blur and live-updates them
	// afterwards.
	TimingDefault Timing = iota

	// TimingImmediate shows issues from the first change, without a blur.
	TimingImmediate

	// TimingOnSubmit shows issues only after a forced validation pass, such as
	// the one run by Submit.
	TimingOnSubmit
)

// String returns the name used in rule files.
func (t Timing) String() string {
	switch t {
	case TimingDefault:
		return "default"
	case TimingImmediate:
		return "immediate"
	case TimingOnSubmit:
		return "onSubmit"
	default:
		return "unknown"
	}
}

// ParseTiming parses "default", "immediate" or "onSubmit". The empty string
// is TimingDefault.
func ParseTiming(s string) (Timing, error) {
	switch s {
	case "", "default":
		return TimingDefault, nil
	case "immediate":
		return TimingImmediate, nil
	case "onSubmit":
		return TimingOnSubmit, nil
	default:
		return TimingDefault, fmt.Errorf("unknown validation timing %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Timing) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Timing) UnmarshalText(b []byte) error {
	parsed, err := ParseTiming(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// fieldConfig holds configuration options for a Field.
type fieldConfig struct {
	def        any
	hasDefault bool
	timing     Timing
	renderer   FieldRenderer
	onUpdate   func()
}

// FieldOption configures a Field.
type FieldOption func(*fieldConfig)

// WithDefault sets the value used when the form holds nothing at the field's
// key. It is written into the form once, on Mount, without notifications.
func WithDefault(v any) FieldOption {
	return func(c *fieldConfig) {
		c.def = v
		c.hasDefault = true
	}
}

// WithTiming sets the validation timing policy.
func WithTiming(t Timing) FieldOption {
	return func(c *fieldConfig) {
		c.timing = t
	}
}

// WithRenderer sets the component renderer used by Component.
func WithRenderer(r FieldRenderer) FieldOption {
	return func(c *fieldConfig) {
		c.renderer = r
	}
}

// WithOnUpdate registers a callback run whenever the displayed value or
// issues change.
func WithOnUpdate(fn func()) FieldOption {
	return func(c *fieldConfig) {
		c.onUpdate = fn
	}
}

// Field binds one property of a form to an input. It caches the displayed
// value and issues, and applies the touched gating and timing policy.
type Field struct {
	ctrl     *Controller
	property string
	cfg      fieldConfig

	value   any
	errors  Issues
	touched bool
	mounted bool

	errSub   Subscription
	forceSub Subscription
}

// NewField creates a binding for property, a dotted key into the form value.
func NewField(ctrl *Controller, property string, opts ...FieldOption) *Field {
	f := &Field{
		ctrl:     ctrl,
		property: property,
	}
	for _, opt := range opts {
		opt(&f.cfg)
	}
	return f
}

// Mount reads the current value, pushes the default into the form and
// subscribes to input-errors and forced-value notifications.
func (f *Field) Mount() error {
	if err := f.ctrl.ready(); err != nil {
		return err
	}
	if f.mounted {
		return fmt.Errorf("mount %s: %w", f.property, ErrAlreadyMounted)
	}

	f.value = f.ctrl.GetFormInputValue(f.property)
	if f.value == nil && f.cfg.hasDefault {
		f.value = f.cfg.def
	}
	if f.cfg.hasDefault {
		if err := f.ctrl.SetDefaultValue(f.property, f.value); err != nil {
			return err
		}
	}

	f.errSub = f.ctrl.SubscribeInputErrors(f.onInputErrors)
	f.forceSub = f.ctrl.SubscribeForceValue(f.onForceValue)
	f.mounted = true
	return nil
}

// Unmount removes the field's subscriptions. Calling it again is a no-op.
func (f *Field) Unmount() {
	if !f.mounted {
		return
	}
	f.ctrl.UnsubscribeInputErrors(f.errSub)
	f.ctrl.UnsubscribeForceValue(f.forceSub)
	f.mounted = false
}

// Property returns the field's dotted key.
func (f *Field) Property() string {
	return f.property
}

// Value returns the displayed value.
func (f *Field) Value() any {
	return f.value
}

// Errors returns the displayed issues.
func (f *Field) Errors() Issues {
	return f.errors
}

// Touched reports whether the field shows live issues.
func (f *Field) Touched() bool {
	return f.touched
}

// OnChange forwards v to the form. The displayed value updates immediately;
// the field's issues update only once it is touched.
func (f *Field) OnChange(ctx context.Context, v any) error {
	if !f.mounted {
		return fmt.Errorf("change %s: %w", f.property, ErrNotMounted)
	}
	issues, err := f.ctrl.SetInputValue(ctx, f.property, v)
	if err != nil {
		return err
	}

	errs := f.errors
	switch f.cfg.timing {
	case TimingImmediate:
		f.touched = true
		errs = issues
	case TimingDefault:
		if f.touched {
			errs = issues
		}
	}
	f.update(v, errs)
	return nil
}

// OnBlur marks the field touched and shows its current issues. The first blur
// of an empty field is ignored.
func (f *Field) OnBlur() {
	if !f.touched && isEmpty(f.ctrl.GetFormInputValue(f.property)) {
		return
	}
	f.touched = true
	if f.cfg.timing == TimingOnSubmit {
		return
	}
	f.update(f.value, f.ctrl.GetFormErrors().ForKey(f.property))
}

func (f *Field) onInputErrors(key string, issues Issues, force bool) {
	if key == f.property && !force {
		return
	}
	if force {
		f.touched = true
	} else if !f.touched || f.cfg.timing == TimingOnSubmit {
		return
	}
	f.update(f.value, issues.ForKey(f.property))
}

func (f *Field) onForceValue(keys []string) {
	if keys != nil && !slices.Contains(keys, f.property) {
		return
	}
	f.update(f.ctrl.GetFormInputValue(f.property), f.errors)
}

// update stores the displayed state and runs the update callback when it
// changed.
func (f *Field) update(value any, errs Issues) {
	changed := !Equal(f.value, value) || !sameIssues(f.errors, errs)
	f.value = value
	f.errors = errs
	if changed && f.cfg.onUpdate != nil {
		f.cfg.onUpdate()
	}
}

// Props returns the renderer props for the current state.
func (f *Field) Props() FieldProps {
	return FieldProps{
		Value:        f.value,
		Property:     f.property,
		DefaultValue: f.cfg.def,
		Errors:       f.errors,
		OnChange:     f.OnChange,
		OnBlur:       f.OnBlur,
	}
}

// Component renders the field with its renderer, or nothing when none is set.
func (f *Field) Component() templ.Component {
	if f.cfg.renderer == nil {
		return templ.NopComponent
	}
	return f.cfg.renderer(f.Props())
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func sameIssues(a, b Issues) bool {
	return slices.EqualFunc(a, b, func(x, y Issue) bool {
		return x.Code == y.Code && x.Message == y.Message && slices.Equal(x.Path, y.Path)
	})
}
