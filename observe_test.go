package formz

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestErrorsObserver(t *testing.T) {
	ctrl := newLoginController(t)
	var updates []int
	o := NewErrorsObserver(ctrl, func(issues Issues) { updates = append(updates, len(issues)) })
	if err := o.Start(); err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	if len(o.Current()) != 2 {
		t.Errorf("expected initial form errors, got %v", o.Current())
	}

	mustSet(t, ctrl, "email", "ross@example.com")
	mustSet(t, ctrl, "password", "longenough")

	if !slices.Equal(updates, []int{1, 0}) {
		t.Errorf("expected updates [1 0], got %v", updates)
	}
	if o.Current() != nil {
		t.Errorf("expected no issues, got %v", o.Current())
	}
}

func TestErrorsObserver_IncludesGlobalIssue(t *testing.T) {
	ctrl := newLoginController(t, WithInitialValue(Value{"email": "ross@example.com", "password": "longenough"}))
	o := NewErrorsObserver(ctrl, nil)
	if err := o.Start(); err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	if got := issueKeys(o.Current()); !slices.Equal(got, []string{GlobalPath}) {
		t.Errorf("expected the global issue, got %v", got)
	}
}

func TestObservers_StartOnZeroController(t *testing.T) {
	var c Controller
	starters := map[string]interface{ Start() error }{
		"errors":   NewErrorsObserver(&c, nil),
		"changed":  NewChangedObserver(&c, nil),
		"validity": NewValidityObserver(&c, nil),
		"value":    NewValueObserver(&c, nil),
		"selector": NewSelector(&c, func(Value) int { return 0 }, nil),
	}
	for name, s := range starters {
		if err := s.Start(); !errors.Is(err, ErrNotInitialized) {
			t.Errorf("%s: expected ErrNotInitialized, got %v", name, err)
		}
	}
}

func TestChangedObserver(t *testing.T) {
	ctrl, _ := New(acceptAll, WithInitialValue(Value{"name": "Ross"}))
	var flips []bool
	o := NewChangedObserver(ctrl, func(changed bool) { flips = append(flips, changed) })
	if err := o.Start(); err != nil {
		t.Fatal(err)
	}

	mustSet(t, ctrl, "name", "Rachel")
	if !o.Current() {
		t.Error("expected changed")
	}

	o.Close()
	mustSet(t, ctrl, "name", "Ross")
	if !slices.Equal(flips, []bool{true}) {
		t.Errorf("expected no updates after Close, got %v", flips)
	}
}

func TestValidityObserver_WithGate(t *testing.T) {
	ctrl := newLoginController(t, WithInitialValue(Value{"email": "ross@example.com", "password": "longenough"}))
	var updates []bool
	o := NewValidityObserver(ctrl, func(valid bool) { updates = append(updates, valid) })
	if err := o.Start(); err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	if o.Current() {
		t.Error("expected invalid until the first change")
	}

	mustSet(t, ctrl, "email", "rachel@example.com")
	if !o.Current() {
		t.Error("expected valid after a valid change")
	}

	mustSet(t, ctrl, "email", "invalid.email")
	if o.Current() {
		t.Error("expected invalid with a schema issue")
	}

	if !slices.Equal(updates, []bool{true, false}) {
		t.Errorf("expected flips [true false], got %v", updates)
	}
}

func TestValidityObserver_WithoutInitialValue(t *testing.T) {
	ctrl := newLoginController(t)
	var updates []bool
	o := NewValidityObserver(ctrl, func(valid bool) { updates = append(updates, valid) })
	if err := o.Start(); err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	mustSet(t, ctrl, "email", "ross@example.com")
	mustSet(t, ctrl, "password", "longenough")

	if !o.Current() || !slices.Equal(updates, []bool{true}) {
		t.Errorf("expected a single flip to valid, got current=%v updates=%v", o.Current(), updates)
	}
}

func TestValueObserver(t *testing.T) {
	ctrl, _ := New(acceptAll)
	var updates int
	o := NewValueObserver(ctrl, func(Value) { updates++ })
	if err := o.Start(); err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	mustSet(t, ctrl, "name", "Ross")
	mustSet(t, ctrl, "name", "Ross")

	if updates != 2 {
		t.Errorf("expected an update per write, got %d", updates)
	}
	if o.Current()["name"] != "Ross" {
		t.Errorf("unexpected current value %v", o.Current())
	}
}

func TestSelector_FiresOnProjectionChange(t *testing.T) {
	ctrl, _ := New(acceptAll)
	var counts []int
	s := NewSelector(ctrl, func(v Value) int {
		items, _ := Get(v, "items")
		list, _ := items.([]any)
		return len(list)
	}, func(n int) { counts = append(counts, n) })
	if err := s.Start(); err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	mustSet(t, ctrl, "name", "Ross")
	mustSet(t, ctrl, "items", []any{"a"})
	mustSet(t, ctrl, "items", []any{"b"})
	mustSet(t, ctrl, "items", []any{"a", "b"})

	if !slices.Equal(counts, []int{1, 2}) {
		t.Errorf("expected updates [1 2], got %v", counts)
	}
	if s.Current() != 2 {
		t.Errorf("expected current 2, got %d", s.Current())
	}
}

func TestValidityObserver_NeverValidWithIssues(t *testing.T) {
	rules, err := NewRuleValidator(Rules{"email": {Required: true, Email: true}})
	if err != nil {
		t.Fatal(err)
	}
	ctrl, err := New(rules, WithInitialValue(Value{"email": "ross@example.com"}))
	if err != nil {
		t.Fatal(err)
	}

	var updates []bool
	o := NewValidityObserver(ctrl, func(valid bool) {
		if valid && len(ctrl.GetFormErrors()) > 0 {
			t.Errorf("reported valid while the form has issues %v", ctrl.GetFormErrors())
		}
		updates = append(updates, valid)
	})
	if err := o.Start(); err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	mustSet(t, ctrl, "email", "r")
	if o.Current() || len(updates) != 0 {
		t.Errorf("expected no update for an invalid first change, got current=%v updates=%v", o.Current(), updates)
	}

	mustSet(t, ctrl, "email", "rachel@example.com")
	mustSet(t, ctrl, "email", "ross@example.com")
	if !slices.Equal(updates, []bool{true, false}) {
		t.Errorf("expected flips [true false], got %v", updates)
	}
}

func TestValidityObserver_SetFormValue(t *testing.T) {
	ctrl := newLoginController(t, WithInitialValue(Value{"email": "ross@example.com", "password": "longenough"}))
	var updates []bool
	o := NewValidityObserver(ctrl, func(valid bool) { updates = append(updates, valid) })
	if err := o.Start(); err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	if _, err := ctrl.SetFormValue(context.Background(), Value{"email": "bad"}, false); err != nil {
		t.Fatal(err)
	}
	if len(updates) != 0 || o.Current() {
		t.Errorf("expected no valid report for an invalid replacement, got %v", updates)
	}
}

func TestChangedObserver_AfterFieldDefault(t *testing.T) {
	ctrl, _ := New(acceptAll)
	if err := ctrl.SetDefaultValue("country", "IT"); err != nil {
		t.Fatal(err)
	}

	var flips []bool
	o := NewChangedObserver(ctrl, func(changed bool) { flips = append(flips, changed) })
	if err := o.Start(); err != nil {
		t.Fatal(err)
	}
	defer o.Close()

	if !o.Current() {
		t.Error("expected the default to count as a change")
	}

	mustSet(t, ctrl, "country", "FR")
	if len(flips) != 0 {
		t.Errorf("expected no flip while the form stays changed, got %v", flips)
	}
}
