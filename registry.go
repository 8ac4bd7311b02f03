package formz

import "slices"

// InputErrorsFunc receives validation results. key is the field that
// triggered the pass ("" for whole-form passes), issues is the complete list
// (nil when valid) and force is true for submit-time passes that must bypass
// field-level gating.
type InputErrorsFunc func(key string, issues Issues, force bool)

// ValueFunc is notified after every value write.
type ValueFunc func()

// ForceValueFunc is notified when effects or a wholesale replacement
// changed values the user did not type. keys lists the affected fields; nil
// means every field must refresh.
type ForceValueFunc func(keys []string)

// ChangedFunc is notified when the form starts or stops differing from
// its initial value.
type ChangedFunc func(changed bool)

// Subscription identifies one registration in an observer registry.
// The zero Subscription is never issued.
type Subscription struct {
	id uint64
}

type registration[F any] struct {
	id uint64
	fn F
}

// registry is an ordered set of observers keyed by registration identity.
type registry[F any] struct {
	entries []registration[F]
}

func (r *registry[F]) add(id uint64, fn F) Subscription {
	r.entries = append(r.entries, registration[F]{id: id, fn: fn})
	return Subscription{id: id}
}

func (r *registry[F]) remove(sub Subscription) {
	r.entries = slices.DeleteFunc(r.entries, func(e registration[F]) bool {
		return e.id == sub.id
	})
}

func (r *registry[F]) len() int {
	return len(r.entries)
}

// snapshot returns the observers registered right now. Notification loops
// iterate the snapshot so that observers may unsubscribe while being called.
func (r *registry[F]) snapshot() []F {
	out := make([]F, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.fn
	}
	return out
}
