package formz

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func TestRuleValidator(t *testing.T) {
	tests := []struct {
		name  string
		rule  Rule
		value any
		codes []string
	}{
		{"required missing", Rule{Required: true}, nil, []string{"required"}},
		{"required empty string", Rule{Required: true}, "", []string{"required"}},
		{"optional missing", Rule{MinLength: intPtr(3)}, nil, nil},
		{"min length", Rule{MinLength: intPtr(3)}, "Ro", []string{"min"}},
		{"max length", Rule{MaxLength: intPtr(3)}, "Rachel", []string{"max"}},
		{"length ok", Rule{MinLength: intPtr(3), MaxLength: intPtr(6)}, "Ross", nil},
		{"email", Rule{Email: true}, "invalid.email", []string{"email"}},
		{"email ok", Rule{Email: true}, "ross@example.com", nil},
		{"ip", Rule{IP: true}, "192.168.100.10X", []string{"ip"}},
		{"ip ok", Rule{IP: true}, "192.168.100.10", nil},
		{"pattern", Rule{Pattern: `^[0-9]{5}$`}, "1234", []string{"pattern"}},
		{"pattern ok", Rule{Pattern: `^[0-9]{5}$`}, "12345", nil},
		{"number min", Rule{Min: floatPtr(18)}, 17, []string{"min"}},
		{"number max", Rule{Max: floatPtr(99.5)}, 100.0, []string{"max"}},
		{"number ok", Rule{Min: floatPtr(18), Max: floatPtr(99)}, 30, nil},
		{"one of string", Rule{OneOf: []string{"red", "green"}}, "blue", []string{"oneof"}},
		{"one of string ok", Rule{OneOf: []string{"red", "green"}}, "red", nil},
		{"one of number", Rule{OneOf: []string{"1", "2"}}, 3.0, []string{"oneof"}},
		{"one of number ok", Rule{OneOf: []string{"1", "2"}}, 2, nil},
		{"bool ignored", Rule{Required: true, Min: floatPtr(1)}, false, nil},
		{"bool under string rule", Rule{Required: true, MinLength: intPtr(3)}, false, []string{CodeInvalidType}},
		{"invalid type", Rule{MinLength: intPtr(3)}, []any{"a"}, []string{CodeInvalidType}},
		{"length rule on number", Rule{MinLength: intPtr(3)}, 5, []string{CodeInvalidType}},
		{"email rule on number", Rule{Email: true}, 42, []string{CodeInvalidType}},
		{"ip rule on number", Rule{IP: true}, 3.5, []string{CodeInvalidType}},
		{"pattern rule on number", Rule{Pattern: `^[0-9]{5}$`}, 12345, []string{CodeInvalidType}},
		{"mixed rule on number", Rule{MaxLength: intPtr(3), Max: floatPtr(10)}, 11, []string{CodeInvalidType, "max"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rv, err := NewRuleValidator(Rules{"field": tt.rule})
			if err != nil {
				t.Fatalf("NewRuleValidator() error = %v", err)
			}
			value := Value{}
			if tt.value != nil {
				value["field"] = tt.value
			}

			issues := rv.Validate(context.Background(), value)

			codes := make([]string, len(issues))
			for i, issue := range issues {
				codes[i] = issue.Code
				if issue.Key() != "field" {
					t.Errorf("expected issue at 'field', got %q", issue.Key())
				}
			}
			if !slices.Equal(codes, tt.codes) && !(len(codes) == 0 && len(tt.codes) == 0) {
				t.Errorf("expected codes %v, got %v", tt.codes, codes)
			}
		})
	}
}

func TestRuleValidator_Messages(t *testing.T) {
	rv, err := NewRuleValidator(Rules{
		"password": {MinLength: intPtr(8)},
		"zip":      {Pattern: `^[0-9]{5}$`, Message: "Enter a 5 digit zip code"},
	})
	if err != nil {
		t.Fatal(err)
	}

	issues := rv.Validate(context.Background(), Value{"password": "short", "zip": "abc"})
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", issues)
	}
	if issues[0].Message != "Must be at least 8" {
		t.Errorf("unexpected default message %q", issues[0].Message)
	}
	if issues[1].Message != "Enter a 5 digit zip code" {
		t.Errorf("expected custom message, got %q", issues[1].Message)
	}
}

func TestRuleValidator_KeyOrderAndNesting(t *testing.T) {
	rv, err := NewRuleValidator(Rules{
		"zeta":                 {Required: true},
		"anagraphic.firstName": {Required: true},
		"alpha":                {Required: true},
	})
	if err != nil {
		t.Fatal(err)
	}

	issues := rv.Validate(context.Background(), Value{})
	want := []string{"alpha", "anagraphic.firstName", "zeta"}
	if got := issueKeys(issues); !slices.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !slices.Equal(issues[1].Path, []string{"anagraphic", "firstName"}) {
		t.Errorf("expected split path, got %v", issues[1].Path)
	}
}

func TestNewRuleValidator_Errors(t *testing.T) {
	if _, err := NewRuleValidator(Rules{"color": {OneOf: []string{"light blue"}}}); err == nil {
		t.Error("expected error for one_of option with a separator")
	}
	if _, err := NewRuleValidator(Rules{"zip": {Pattern: "("}}); err == nil {
		t.Error("expected error for invalid pattern")
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadRuleFile_YAML(t *testing.T) {
	path := writeFile(t, "login.yaml", `
fields:
  email:
    required: true
    email: true
  password:
    required: true
    min_length: 8
    timing: immediate
initial:
  email: ross@example.com
  anagraphic:
    firstName: Ross
require_first_change: false
`)

	f, err := LoadRuleFile(path)
	if err != nil {
		t.Fatalf("LoadRuleFile() error = %v", err)
	}

	if f.Timing("password") != TimingImmediate || f.Timing("email") != TimingDefault {
		t.Errorf("unexpected timings %v / %v", f.Timing("password"), f.Timing("email"))
	}
	if *f.Fields["password"].MinLength != 8 {
		t.Errorf("expected min_length 8, got %v", f.Fields["password"].MinLength)
	}
	if got, _ := Get(f.Initial, "anagraphic.firstName"); got != "Ross" {
		t.Errorf("expected nested initial value, got %v", got)
	}

	v, err := f.Validator()
	if err != nil {
		t.Fatal(err)
	}
	ctrl, err := New(v, f.Options()...)
	if err != nil {
		t.Fatal(err)
	}
	if ctrl.GateApplies() {
		t.Error("expected require_first_change: false to disable the gate")
	}
	if got := issueKeys(ctrl.Issues()); !slices.Equal(got, []string{"password"}) {
		t.Errorf("expected only the password issue, got %v", got)
	}
}

func TestLoadRuleFile_JSON(t *testing.T) {
	path := writeFile(t, "login.json", `{
  "fields": {
    "email": {"required": true, "email": true, "timing": "onSubmit"},
    "age": {"min": 18}
  }
}`)

	f, err := LoadRuleFile(path)
	if err != nil {
		t.Fatalf("LoadRuleFile() error = %v", err)
	}
	if f.Timing("email") != TimingOnSubmit {
		t.Errorf("expected onSubmit timing, got %v", f.Timing("email"))
	}
	if f.Fields["age"].Min == nil || *f.Fields["age"].Min != 18 {
		t.Errorf("expected min 18, got %v", f.Fields["age"].Min)
	}
	if len(f.Options()) != 0 {
		t.Errorf("expected no options without initial value, got %d", len(f.Options()))
	}
	if keys := f.Fields.Keys(); !slices.Equal(keys, []string{"age", "email"}) {
		t.Errorf("expected sorted keys, got %v", keys)
	}
}

func TestLoadRuleFile_Errors(t *testing.T) {
	if _, err := LoadRuleFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	bad := writeFile(t, "bad.yaml", "fields:\n  email:\n    timing: eventually\n")
	if _, err := LoadRuleFile(bad); err == nil {
		t.Error("expected error for unknown timing")
	}
}
