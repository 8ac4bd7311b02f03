package formz

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Bus routes out-of-band actions to registered forms by id. Calls for the
// same form are serialized; different forms proceed independently.
type Bus struct {
	mu    sync.RWMutex
	forms map[string]*busEntry
}

type busEntry struct {
	mu   sync.Mutex
	ctrl *Controller
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{forms: make(map[string]*busEntry)}
}

// Register makes ctrl reachable under its id.
func (b *Bus) Register(ctrl *Controller) error {
	if err := ctrl.ready(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.forms[ctrl.ID()]; exists {
		return fmt.Errorf("register %s: %w", ctrl.ID(), ErrDuplicateForm)
	}
	b.forms[ctrl.ID()] = &busEntry{ctrl: ctrl}
	return nil
}

// Unregister removes the form with id. Unknown ids are ignored.
func (b *Bus) Unregister(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.forms, id)
}

// IDs returns the registered form ids in sorted order.
func (b *Bus) IDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.forms))
	for id := range b.forms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (b *Bus) entry(id string) (*busEntry, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	e, ok := b.forms[id]
	if !ok {
		return nil, fmt.Errorf("form %s: %w", id, ErrFormNotFound)
	}
	return e, nil
}

// Do runs fn with exclusive access to the form with id. Hosts that drive a
// form from several goroutines use Do for their own calls so they serialize
// with actions dispatched through the Bus. fn must not call back into the Bus
// for the same form.
func (b *Bus) Do(id string, fn func(*Controller) error) error {
	e, err := b.entry(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.ctrl)
}

// SetFormValue replaces the value of the form with id.
// See Controller.SetFormValue.
func (b *Bus) SetFormValue(ctx context.Context, id string, v Value, reset bool) (Issues, error) {
	var issues Issues
	err := b.Do(id, func(c *Controller) error {
		var err error
		issues, err = c.SetFormValue(ctx, v, reset)
		return err
	})
	return issues, err
}

// SubmitForm submits the form with id. See Controller.Submit.
func (b *Bus) SubmitForm(ctx context.Context, id string) (Issues, error) {
	var issues Issues
	err := b.Do(id, func(c *Controller) error {
		var err error
		issues, err = c.Submit(ctx)
		return err
	})
	return issues, err
}

// Actions returns a handle bound to one form id. The form does not need to be
// registered yet; each call resolves the id.
func (b *Bus) Actions(id string) FormActions {
	return FormActions{bus: b, id: id}
}

// FormActions triggers actions on one form from outside its component tree.
type FormActions struct {
	bus *Bus
	id  string
}

// ID returns the bound form id.
func (a FormActions) ID() string {
	return a.id
}

// SetFormValue replaces the form value.
func (a FormActions) SetFormValue(ctx context.Context, v Value, reset bool) (Issues, error) {
	return a.bus.SetFormValue(ctx, a.id, v, reset)
}

// SubmitForm submits the form.
func (a FormActions) SubmitForm(ctx context.Context) (Issues, error) {
	return a.bus.SubmitForm(ctx, a.id)
}
