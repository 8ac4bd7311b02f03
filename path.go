package formz

import (
	"strconv"
	"strings"
)

// Value is the form value: a tree of nested maps, slices and primitives.
// Keys addressing a field are dotted paths into this tree ("anagraphic.firstName").
type Value = map[string]any

// splitPath normalises index segments ("items[0].name" -> "items.0.name")
// and splits the result on dots.
func splitPath(path string) []string {
	if strings.ContainsRune(path, '[') {
		path = strings.NewReplacer("[", ".", "]", "").Replace(path)
	}
	path = strings.TrimPrefix(path, ".")
	return strings.Split(path, ".")
}

// Get returns the value stored at path and whether it was found.
// Traversal stops with (nil, false) at the first missing segment or at a node
// that cannot be descended into.
func Get(root Value, path string) (any, bool) {
	if root == nil {
		return nil, false
	}
	var node any = root
	for _, seg := range splitPath(path) {
		switch n := node.(type) {
		case map[string]any:
			v, ok := n[seg]
			if !ok {
				return nil, false
			}
			node = v
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(n) {
				return nil, false
			}
			node = n[i]
		default:
			return nil, false
		}
	}
	return node, true
}

// Set returns a copy of root with v written at path. Maps and slices on the
// way are copied, missing intermediate maps are created. Slice segments must
// index an existing element. If a node on the way cannot be descended into,
// root is returned unchanged. A nil root is treated as an empty map.
func Set(root Value, path string, v any) Value {
	if root == nil {
		root = Value{}
	}
	next, ok := setIn(root, splitPath(path), v)
	if !ok {
		return root
	}
	return next.(map[string]any)
}

func setIn(node any, segs []string, v any) (any, bool) {
	head, last := segs[0], len(segs) == 1

	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n)+1)
		for k, val := range n {
			out[k] = val
		}
		if last {
			out[head] = v
			return out, true
		}
		child := n[head]
		if child == nil {
			child = map[string]any{}
		}
		updated, ok := setIn(child, segs[1:], v)
		if !ok {
			return node, false
		}
		out[head] = updated
		return out, true

	case []any:
		i, err := strconv.Atoi(head)
		if err != nil || i < 0 || i >= len(n) {
			return node, false
		}
		out := make([]any, len(n))
		copy(out, n)
		if last {
			out[i] = v
			return out, true
		}
		child := n[i]
		if child == nil {
			child = map[string]any{}
		}
		updated, ok := setIn(child, segs[1:], v)
		if !ok {
			return node, false
		}
		out[i] = updated
		return out, true

	default:
		return node, false
	}
}

// Clone returns a deep copy of maps and slices in v. Other values are shared.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Clone(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Clone(val)
		}
		return out
	default:
		return v
	}
}

// cloneValue is Clone specialised to Value; nil stays nil.
func cloneValue(v Value) Value {
	if v == nil {
		return nil
	}
	return Clone(v).(map[string]any)
}

// stripNil returns a deep copy of v without nil-valued map entries.
func stripNil(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if val == nil {
				continue
			}
			out[k] = stripNil(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = stripNil(val)
		}
		return out
	default:
		return v
	}
}
