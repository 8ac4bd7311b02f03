package formz

import (
	"fmt"
	"strings"
)

// GlobalPath is the path segment used for whole-form issues.
const GlobalPath = "global"

// Issue codes produced by formz itself. Validators are free to use any code.
const (
	CodeFirstChangeRequired = "first_change_required"
	CodeInvalidType         = "invalid_type"
)

// firstChangeMessage is the message of the synthetic first-change issue.
const firstChangeMessage = "At least one change is required to activate the form"

// Issue is a single validation problem reported by a Validator.
// An empty Path denotes a whole-form issue.
type Issue struct {
	Path    []string `json:"path" yaml:"path"`
	Message string   `json:"message" yaml:"message"`
	Code    string   `json:"code" yaml:"code"`
}

// Key returns the dotted form of the issue path, matching field keys.
func (i Issue) Key() string {
	return strings.Join(i.Path, ".")
}

// String renders the issue for logs.
func (i Issue) String() string {
	if len(i.Path) == 0 {
		return fmt.Sprintf("%s: %s", i.Code, i.Message)
	}
	return fmt.Sprintf("%s at %s: %s", i.Code, i.Key(), i.Message)
}

// Issues is an ordered list of validation issues. A nil or empty list means
// the value is valid.
type Issues []Issue

// ForKey returns the issues whose dotted path equals key, or nil.
func (iss Issues) ForKey(key string) Issues {
	var out Issues
	for _, i := range iss {
		if i.Key() == key {
			out = append(out, i)
		}
	}
	return out
}

// Keys returns the distinct dotted paths in first-seen order.
func (iss Issues) Keys() []string {
	seen := make(map[string]struct{}, len(iss))
	keys := make([]string, 0, len(iss))
	for _, i := range iss {
		k := i.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

// Error summarizes the first few issues so Issues can travel as an error.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	lim := len(iss)
	if lim > maxShown {
		lim = maxShown
	}
	for n := 0; n < lim; n++ {
		if n > 0 {
			b.WriteString("; ")
		}
		b.WriteString(iss[n].String())
	}
	if len(iss) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(iss))
	}
	return b.String()
}

// pathFromKey splits a dotted key into issue path segments.
func pathFromKey(key string) []string {
	if key == "" {
		return nil
	}
	return splitPath(key)
}
