package formz

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// FieldProps is what a FieldRenderer receives.
type FieldProps struct {
	Value        any
	Property     string
	DefaultValue any
	Errors       Issues
	OnChange     func(ctx context.Context, v any) error
	OnBlur       func()
}

// FieldRenderer renders one input.
type FieldRenderer func(FieldProps) templ.Component

// ButtonProps is what a ButtonRenderer receives.
type ButtonProps struct {
	FormID      string
	IsFormValid bool
}

// ButtonRenderer renders the submit control.
type ButtonRenderer func(ButtonProps) templ.Component

// FormProps is what a FormRenderer receives.
type FormProps struct {
	ID       string
	Children templ.Component
	OnSubmit func(ctx context.Context) (Issues, error)
}

// FormRenderer renders the form wrapper around its children.
type FormRenderer func(FormProps) templ.Component

// DefaultFormRenderer renders a <form> element with native validation
// disabled. Submit events are expected to be routed to props.OnSubmit by the
// host.
func DefaultFormRenderer(props FormProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<form id="`+templ.EscapeString(props.ID)+`" novalidate>`); err != nil {
			return err
		}
		if props.Children != nil {
			if err := props.Children.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</form>`)
		return err
	})
}

// DefaultButtonRenderer renders a submit button bound to the form id,
// disabled while the form is not valid.
func DefaultButtonRenderer(props ButtonProps) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		html := `<button type="submit" form="` + templ.EscapeString(props.FormID) + `"`
		if !props.IsFormValid {
			html += ` disabled`
		}
		_, err := io.WriteString(w, html+`>Submit</button>`)
		return err
	})
}

// Form couples a controller with the components rendered inside it.
type Form struct {
	ctrl     *Controller
	renderer FormRenderer
	children []templ.Component
}

// NewForm creates a form view. A nil renderer uses DefaultFormRenderer.
func NewForm(ctrl *Controller, renderer FormRenderer, children ...templ.Component) *Form {
	if renderer == nil {
		renderer = DefaultFormRenderer
	}
	return &Form{ctrl: ctrl, renderer: renderer, children: children}
}

// Props returns the renderer props. OnSubmit is the controller's Submit.
func (f *Form) Props() FormProps {
	return FormProps{
		ID:       f.ctrl.ID(),
		Children: join(f.children),
		OnSubmit: f.ctrl.Submit,
	}
}

// Component renders the form.
func (f *Form) Component() templ.Component {
	return f.renderer(f.Props())
}

func join(components []templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, c := range components {
			if c == nil {
				continue
			}
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// Button binds a ValidityObserver to a ButtonRenderer.
type Button struct {
	formID   string
	renderer ButtonRenderer
	validity *ValidityObserver
}

// NewButton creates a submit control for ctrl. A nil renderer uses
// DefaultButtonRenderer. onUpdate runs when validity flips and may be nil.
func NewButton(ctrl *Controller, renderer ButtonRenderer, onUpdate func(bool)) *Button {
	if renderer == nil {
		renderer = DefaultButtonRenderer
	}
	return &Button{
		formID:   ctrl.ID(),
		renderer: renderer,
		validity: NewValidityObserver(ctrl, onUpdate),
	}
}

// Start subscribes the validity observer.
func (b *Button) Start() error {
	return b.validity.Start()
}

// Close unsubscribes the validity observer.
func (b *Button) Close() {
	b.validity.Close()
}

// Props returns the renderer props.
func (b *Button) Props() ButtonProps {
	return ButtonProps{FormID: b.formID, IsFormValid: b.validity.Current()}
}

// Component renders the button.
func (b *Button) Component() templ.Component {
	return b.renderer(b.Props())
}
