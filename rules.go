package formz

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// validate is the shared validator instance used by rule sets.
var validate = validator.New()

// Rule describes the constraints of one field. Length limits apply to
// strings, Min and Max to numbers.
type Rule struct {
	Required  bool     `json:"required,omitempty" yaml:"required,omitempty"`
	MinLength *int     `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty" yaml:"max_length,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Email     bool     `json:"email,omitempty" yaml:"email,omitempty"`
	IP        bool     `json:"ip,omitempty" yaml:"ip,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	OneOf     []string `json:"one_of,omitempty" yaml:"one_of,omitempty"`
	Timing    Timing   `json:"timing,omitempty" yaml:"timing,omitempty"`
	Message   string   `json:"message,omitempty" yaml:"message,omitempty"`
}

// Rules maps dotted field keys to their rule.
type Rules map[string]Rule

// RuleFile is the on-disk form definition: field rules plus the optional
// initial value and first-change policy.
//
//	fields:
//	  email:
//	    required: true
//	    email: true
//	  password:
//	    min_length: 8
//	    timing: immediate
//	initial:
//	  email: ""
//	require_first_change: false
type RuleFile struct {
	Fields             Rules `json:"fields" yaml:"fields"`
	Initial            Value `json:"initial,omitempty" yaml:"initial,omitempty"`
	RequireFirstChange *bool `json:"require_first_change,omitempty" yaml:"require_first_change,omitempty"`
}

// LoadRuleFile reads a rule file. Files ending in .json are decoded as JSON,
// everything else as YAML.
func LoadRuleFile(path string) (*RuleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}
	var f RuleFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &f)
	} else {
		err = yaml.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode rule file %s: %w", path, err)
	}
	if f.Initial != nil {
		f.Initial = normalize(f.Initial).(map[string]any)
	}
	return &f, nil
}

// Validator compiles the field rules.
func (f *RuleFile) Validator() (*RuleValidator, error) {
	return NewRuleValidator(f.Fields)
}

// Options returns the controller options implied by the file.
func (f *RuleFile) Options() []Option {
	var opts []Option
	if f.Initial != nil {
		opts = append(opts, WithInitialValue(f.Initial))
	}
	if f.RequireFirstChange != nil {
		opts = append(opts, WithRequireFirstChange(*f.RequireFirstChange))
	}
	return opts
}

// Timing returns the validation timing configured for key.
func (f *RuleFile) Timing(key string) Timing {
	return f.Fields[key].Timing
}

// Keys returns the field keys in sorted order.
func (r Rules) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type compiledRule struct {
	key       string
	rule      Rule
	path      []string
	stringTag string
	numberTag string
	oneOfTag  string
	pattern   *regexp.Regexp
	// stringOnly is set when a constraint only applies to strings.
	stringOnly bool
}

// RuleValidator validates a form value against compiled Rules. Fields are
// checked in key order; a missing optional field is skipped.
type RuleValidator struct {
	rules []compiledRule
}

var _ Validator = (*RuleValidator)(nil)

// NewRuleValidator compiles rules into validator tags.
func NewRuleValidator(rules Rules) (*RuleValidator, error) {
	rv := &RuleValidator{}
	for _, key := range rules.Keys() {
		rule := rules[key]
		cr := compiledRule{
			key:  key,
			rule: rule,
			path: pathFromKey(key),
		}

		var st, nt []string
		if rule.MinLength != nil {
			st = append(st, "min="+strconv.Itoa(*rule.MinLength))
		}
		if rule.MaxLength != nil {
			st = append(st, "max="+strconv.Itoa(*rule.MaxLength))
		}
		if rule.Email {
			st = append(st, "email")
		}
		if rule.IP {
			st = append(st, "ip")
		}
		if rule.Min != nil {
			nt = append(nt, "min="+strconv.FormatFloat(*rule.Min, 'f', -1, 64))
		}
		if rule.Max != nil {
			nt = append(nt, "max="+strconv.FormatFloat(*rule.Max, 'f', -1, 64))
		}
		if len(rule.OneOf) > 0 {
			for _, opt := range rule.OneOf {
				if strings.ContainsAny(opt, " ,|") {
					return nil, fmt.Errorf("rule %s: one_of option %q contains a separator", key, opt)
				}
			}
			cr.oneOfTag = "oneof=" + strings.Join(rule.OneOf, " ")
			st = append(st, cr.oneOfTag)
		}
		cr.stringOnly = rule.MinLength != nil || rule.MaxLength != nil ||
			rule.Email || rule.IP || rule.Pattern != ""
		cr.stringTag = strings.Join(st, ",")
		cr.numberTag = strings.Join(nt, ",")

		if rule.Pattern != "" {
			re, err := regexp.Compile(rule.Pattern)
			if err != nil {
				return nil, fmt.Errorf("rule %s: %w", key, err)
			}
			cr.pattern = re
		}
		rv.rules = append(rv.rules, cr)
	}
	return rv, nil
}

// Validate implements Validator.
func (rv *RuleValidator) Validate(ctx context.Context, value Value) Issues {
	var issues Issues
	for i := range rv.rules {
		issues = append(issues, rv.rules[i].check(ctx, value)...)
	}
	return issues
}

func (cr *compiledRule) check(ctx context.Context, value Value) Issues {
	v, _ := Get(value, cr.key)
	if isEmpty(v) {
		if cr.rule.Required {
			return Issues{cr.issue("required", "")}
		}
		return nil
	}

	if t, ok := v.(string); ok {
		issues := cr.run(ctx, t, cr.stringTag)
		if cr.pattern != nil && !cr.pattern.MatchString(t) {
			issues = append(issues, cr.issue("pattern", cr.rule.Pattern))
		}
		return issues
	}

	var issues Issues
	if cr.stringOnly {
		issues = append(issues, Issue{
			Path:    cr.path,
			Message: cr.message(CodeInvalidType, "string"),
			Code:    CodeInvalidType,
		})
	}
	if f, ok := toFloat(v); ok {
		issues = append(issues, cr.run(ctx, f, cr.numberTag)...)
		// oneof only accepts strings and integers; compare the decimal form.
		issues = append(issues, cr.run(ctx, strconv.FormatFloat(f, 'f', -1, 64), cr.oneOfTag)...)
	}
	return issues
}

func (cr *compiledRule) run(ctx context.Context, v any, tag string) Issues {
	if tag == "" {
		return nil
	}
	err := validate.VarCtx(ctx, v, tag)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Issues{cr.issue("invalid", "")}
	}
	issues := make(Issues, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, cr.issue(fe.Tag(), fe.Param()))
	}
	return issues
}

func (cr *compiledRule) issue(code, param string) Issue {
	return Issue{Path: cr.path, Message: cr.message(code, param), Code: code}
}

func (cr *compiledRule) message(code, param string) string {
	if cr.rule.Message != "" {
		return cr.rule.Message
	}
	return messageFor(code, param)
}

// messageFor renders the default message for a validator tag.
func messageFor(tag, param string) string {
	switch tag {
	case "required":
		return "Required"
	case "email":
		return "Invalid email"
	case "ip", "ipv4", "ipv6":
		return "Invalid IP address"
	case "min", "gte":
		return "Must be at least " + param
	case "max", "lte":
		return "Must be at most " + param
	case "len":
		return "Must have length " + param
	case "oneof":
		return "Must be one of: " + param
	case "pattern":
		return "Invalid format"
	case CodeInvalidType:
		if param != "" {
			return "Expected " + param
		}
		return "Invalid type"
	default:
		return "Invalid value"
	}
}

// normalize converts decoded YAML trees (map[string]interface{} from yaml.v3
// is already string keyed, but nested documents may carry map[any]any from
// other decoders) into the map[string]any shape used by Value.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}

// looksLikeJSON reports whether data starts like a JSON document.
func looksLikeJSON(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[')
}
