package formz

import (
	"slices"
	"strings"
	"testing"
)

func TestIssues_ForKeyAndKeys(t *testing.T) {
	issues := Issues{
		{Path: []string{"email"}, Code: "email", Message: "Invalid email"},
		{Path: []string{"anagraphic", "firstName"}, Code: "min", Message: "Must be at least 3"},
		{Path: []string{"email"}, Code: "max", Message: "Must be at most 40"},
		{Code: "custom", Message: "Whole form"},
	}

	if got := issues.ForKey("email"); len(got) != 2 {
		t.Errorf("expected 2 email issues, got %v", got)
	}
	if got := issues.ForKey("anagraphic.firstName"); len(got) != 1 {
		t.Errorf("expected 1 nested issue, got %v", got)
	}
	if got := issues.ForKey("missing"); got != nil {
		t.Errorf("expected nil for unknown key, got %v", got)
	}

	want := []string{"email", "anagraphic.firstName", ""}
	if got := issues.Keys(); !slices.Equal(got, want) {
		t.Errorf("expected keys %v, got %v", want, got)
	}
}

func TestIssues_Error(t *testing.T) {
	var none Issues
	if none.Error() != "" {
		t.Errorf("expected empty message, got %q", none.Error())
	}

	issues := Issues{
		{Path: []string{"a"}, Code: "required", Message: "Required"},
		{Path: []string{"b"}, Code: "required", Message: "Required"},
		{Path: []string{"c"}, Code: "required", Message: "Required"},
		{Path: []string{"d"}, Code: "required", Message: "Required"},
	}
	msg := issues.Error()
	if !strings.HasPrefix(msg, "required at a: Required; ") {
		t.Errorf("unexpected message %q", msg)
	}
	if !strings.HasSuffix(msg, "(total 4)") {
		t.Errorf("expected total count suffix, got %q", msg)
	}

	global := Issue{Code: "custom", Message: "Whole form"}
	if global.String() != "custom: Whole form" {
		t.Errorf("unexpected global rendering %q", global.String())
	}
}
