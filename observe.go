package formz

// ErrorsObserver tracks the latest issue list notified by a form.
type ErrorsObserver struct {
	ctrl     *Controller
	onUpdate func(Issues)
	current  Issues
	sub      Subscription
	started  bool
}

// NewErrorsObserver creates an observer of ctrl's issues. onUpdate may be nil.
func NewErrorsObserver(ctrl *Controller, onUpdate func(Issues)) *ErrorsObserver {
	return &ErrorsObserver{ctrl: ctrl, onUpdate: onUpdate}
}

// Start reads the current form errors and subscribes to further updates.
func (o *ErrorsObserver) Start() error {
	if err := o.ctrl.ready(); err != nil {
		return err
	}
	if o.started {
		return nil
	}
	o.current = o.ctrl.GetFormErrors()
	o.sub = o.ctrl.SubscribeInputErrors(func(_ string, issues Issues, _ bool) {
		o.current = issues
		if o.onUpdate != nil {
			o.onUpdate(issues)
		}
	})
	o.started = true
	return nil
}

// Close unsubscribes the observer.
func (o *ErrorsObserver) Close() {
	if !o.started {
		return
	}
	o.ctrl.UnsubscribeInputErrors(o.sub)
	o.started = false
}

// Current returns the latest issue list.
func (o *ErrorsObserver) Current() Issues {
	return o.current
}

// ChangedObserver tracks whether the form differs from its initial value.
type ChangedObserver struct {
	ctrl     *Controller
	onUpdate func(bool)
	current  bool
	sub      Subscription
	started  bool
}

// NewChangedObserver creates an observer of ctrl's changed status.
func NewChangedObserver(ctrl *Controller, onUpdate func(bool)) *ChangedObserver {
	return &ChangedObserver{ctrl: ctrl, onUpdate: onUpdate}
}

// Start reads the current status and subscribes to flips.
func (o *ChangedObserver) Start() error {
	if err := o.ctrl.ready(); err != nil {
		return err
	}
	if o.started {
		return nil
	}
	o.current = o.ctrl.HasChanged()
	o.sub = o.ctrl.SubscribeChanged(func(changed bool) {
		o.current = changed
		if o.onUpdate != nil {
			o.onUpdate(changed)
		}
	})
	o.started = true
	return nil
}

// Close unsubscribes the observer.
func (o *ChangedObserver) Close() {
	if !o.started {
		return
	}
	o.ctrl.UnsubscribeChanged(o.sub)
	o.started = false
}

// Current reports whether the form has changed.
func (o *ChangedObserver) Current() bool {
	return o.current
}

// ValidityObserver derives whether a form may be submitted: no schema issues,
// and at least one edit when the first-change gate applies.
type ValidityObserver struct {
	ctrl     *Controller
	onUpdate func(bool)
	errors   *ErrorsObserver
	changed  *ChangedObserver
	current  bool
}

// NewValidityObserver creates a validity observer. onUpdate runs only when
// validity flips.
func NewValidityObserver(ctrl *Controller, onUpdate func(bool)) *ValidityObserver {
	o := &ValidityObserver{ctrl: ctrl, onUpdate: onUpdate}
	o.errors = NewErrorsObserver(ctrl, func(Issues) { o.refresh() })
	o.changed = NewChangedObserver(ctrl, func(bool) { o.refresh() })
	return o
}

// Start subscribes the underlying errors and changed observers.
func (o *ValidityObserver) Start() error {
	if err := o.errors.Start(); err != nil {
		return err
	}
	if err := o.changed.Start(); err != nil {
		o.errors.Close()
		return err
	}
	o.current = o.compute()
	return nil
}

// Close unsubscribes the observer.
func (o *ValidityObserver) Close() {
	o.errors.Close()
	o.changed.Close()
}

// Current reports whether the form is valid.
func (o *ValidityObserver) Current() bool {
	return o.current
}

// compute reads the controller directly; the child observers only trigger it.
func (o *ValidityObserver) compute() bool {
	if len(o.ctrl.Issues()) > 0 {
		return false
	}
	return o.ctrl.HasChanged() || !o.ctrl.GateApplies()
}

func (o *ValidityObserver) refresh() {
	valid := o.compute()
	if valid == o.current {
		return
	}
	o.current = valid
	if o.onUpdate != nil {
		o.onUpdate(valid)
	}
}

// ValueObserver tracks the whole form value.
type ValueObserver struct {
	ctrl     *Controller
	onUpdate func(Value)
	current  Value
	sub      Subscription
	started  bool
}

// NewValueObserver creates an observer of ctrl's value.
func NewValueObserver(ctrl *Controller, onUpdate func(Value)) *ValueObserver {
	return &ValueObserver{ctrl: ctrl, onUpdate: onUpdate}
}

// Start reads the current value and subscribes to every write.
func (o *ValueObserver) Start() error {
	if err := o.ctrl.ready(); err != nil {
		return err
	}
	if o.started {
		return nil
	}
	o.current = o.ctrl.GetFormValue()
	o.sub = o.ctrl.SubscribeValue(func() {
		o.current = o.ctrl.GetFormValue()
		if o.onUpdate != nil {
			o.onUpdate(o.current)
		}
	})
	o.started = true
	return nil
}

// Close unsubscribes the observer.
func (o *ValueObserver) Close() {
	if !o.started {
		return
	}
	o.ctrl.UnsubscribeValue(o.sub)
	o.started = false
}

// Current returns the latest value.
func (o *ValueObserver) Current() Value {
	return o.current
}

// Selector projects the form value and reports only projection changes.
//
// Example:
//
//	total := formz.NewSelector(ctrl, func(v formz.Value) int {
//	    items, _ := formz.Get(v, "items")
//	    list, _ := items.([]any)
//	    return len(list)
//	}, func(n int) { badge.Set(n) })
type Selector[R any] struct {
	ctrl     *Controller
	selector func(Value) R
	onUpdate func(R)
	current  R
	sub      Subscription
	started  bool
}

// NewSelector creates a selector over ctrl's value.
func NewSelector[R any](ctrl *Controller, selector func(Value) R, onUpdate func(R)) *Selector[R] {
	return &Selector[R]{ctrl: ctrl, selector: selector, onUpdate: onUpdate}
}

// Start computes the first projection and subscribes to value writes.
func (s *Selector[R]) Start() error {
	if err := s.ctrl.ready(); err != nil {
		return err
	}
	if s.started {
		return nil
	}
	s.current = s.selector(s.ctrl.GetFormValue())
	s.sub = s.ctrl.SubscribeValue(func() {
		next := s.selector(s.ctrl.GetFormValue())
		if Equal(s.current, next) {
			return
		}
		s.current = next
		if s.onUpdate != nil {
			s.onUpdate(next)
		}
	})
	s.started = true
	return nil
}

// Close unsubscribes the selector.
func (s *Selector[R]) Close() {
	if !s.started {
		return
	}
	s.ctrl.UnsubscribeValue(s.sub)
	s.started = false
}

// Current returns the latest projection.
func (s *Selector[R]) Current() R {
	return s.current
}
