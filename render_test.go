package formz

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/a-h/templ"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestDefaultFormRenderer(t *testing.T) {
	ctrl, _ := New(acceptAll, WithID("signup"))
	child := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<input name="email">`)
		return err
	})

	form := NewForm(ctrl, nil, child, nil, child)
	got := render(t, form.Component())

	want := `<form id="signup" novalidate><input name="email"><input name="email"></form>`
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestForm_PropsSubmit(t *testing.T) {
	var submitted bool
	ctrl := newLoginController(t, WithID("login"), WithOnSubmit(func(context.Context, Value) error {
		submitted = true
		return nil
	}))

	var props FormProps
	form := NewForm(ctrl, func(p FormProps) templ.Component {
		props = p
		return templ.NopComponent
	})
	render(t, form.Component())

	if props.ID != "login" {
		t.Errorf("expected id 'login', got %q", props.ID)
	}
	issues, err := props.OnSubmit(context.Background())
	if err != nil || len(issues) != 2 || submitted {
		t.Errorf("expected submit aborted by validation, got %v, %v, submitted=%v", issues, err, submitted)
	}
}

func TestButton_TracksValidity(t *testing.T) {
	ctrl := newLoginController(t, WithID("login"))
	var flips int
	button := NewButton(ctrl, nil, func(bool) { flips++ })
	if err := button.Start(); err != nil {
		t.Fatal(err)
	}
	defer button.Close()

	if got := render(t, button.Component()); got != `<button type="submit" form="login" disabled>Submit</button>` {
		t.Errorf("unexpected disabled button %q", got)
	}

	mustSet(t, ctrl, "email", "ross@example.com")
	mustSet(t, ctrl, "password", "longenough")

	if !button.Props().IsFormValid || flips != 1 {
		t.Errorf("expected one flip to valid, got valid=%v flips=%d", button.Props().IsFormValid, flips)
	}
	if got := render(t, button.Component()); got != `<button type="submit" form="login">Submit</button>` {
		t.Errorf("unexpected enabled button %q", got)
	}
}
