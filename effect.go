package formz

import "slices"

// EffectResult is the outcome of an effect transformation: the replacement
// form value and the keys whose displayed value must be refreshed.
type EffectResult struct {
	Value        Value
	EffectedKeys []string
}

// Effect derives form state from a single input change.
//
// ShouldActivate decides, for the key that was just written, its raw value
// and the form values before and after that write, whether TransformValue
// runs. It must be deterministic.
//
// TransformValue returns the replacement form value and the keys it touched.
// Effects run in declaration order; next is the cumulative output of the
// effects that ran before in the same pass.
type Effect interface {
	ShouldActivate(key string, value any, prev, next Value) bool
	TransformValue(prev, next Value) EffectResult
}

type funcEffect struct {
	activate  func(key string, value any, prev, next Value) bool
	transform func(prev, next Value) EffectResult
}

func (e funcEffect) ShouldActivate(key string, value any, prev, next Value) bool {
	return e.activate(key, value, prev, next)
}

func (e funcEffect) TransformValue(prev, next Value) EffectResult {
	return e.transform(prev, next)
}

// NewEffect builds an Effect from its two operations.
func NewEffect(
	activate func(key string, value any, prev, next Value) bool,
	transform func(prev, next Value) EffectResult,
) Effect {
	return funcEffect{activate: activate, transform: transform}
}

// ResetOnChange returns an effect that fires when trigger is the written key
// and its value differs between prev and next. It writes every entry of
// defaults into the value and reports those keys as effected.
//
//	formz.ResetOnChange("dhcp", formz.Value{
//	    "ip":      "192.168.100.10",
//	    "subnet":  "255.255.255.0",
//	    "gateway": "192.168.100.1",
//	})
func ResetOnChange(trigger string, defaults Value) Effect {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return NewEffect(
		func(key string, _ any, prev, next Value) bool {
			if key != trigger {
				return false
			}
			before, _ := Get(prev, trigger)
			after, _ := Get(next, trigger)
			return !Equal(before, after)
		},
		func(_, next Value) EffectResult {
			out := next
			for _, k := range keys {
				out = Set(out, k, Clone(defaults[k]))
			}
			return EffectResult{Value: out, EffectedKeys: slices.Clone(keys)}
		},
	)
}

// unionKeys appends the keys of add that are not yet in dst, keeping order.
func unionKeys(dst, add []string) []string {
	for _, k := range add {
		if !slices.Contains(dst, k) {
			dst = append(dst, k)
		}
	}
	return dst
}
