package formz

import (
	"slices"
	"testing"
)

func TestResetOnChange(t *testing.T) {
	effect := ResetOnChange("dhcp", Value{
		"ip":     "192.168.100.10",
		"subnet": "255.255.255.0",
	})

	prev := Value{"dhcp": false, "ip": "10.0.0.1"}
	next := Set(prev, "dhcp", true)

	if effect.ShouldActivate("ip", "10.0.0.2", prev, Set(prev, "ip", "10.0.0.2")) {
		t.Error("expected no activation for other keys")
	}
	if effect.ShouldActivate("dhcp", false, prev, prev) {
		t.Error("expected no activation when the trigger value did not change")
	}
	if !effect.ShouldActivate("dhcp", true, prev, next) {
		t.Fatal("expected activation when the trigger flips")
	}

	result := effect.TransformValue(prev, next)
	if !slices.Equal(result.EffectedKeys, []string{"ip", "subnet"}) {
		t.Errorf("expected sorted effected keys, got %v", result.EffectedKeys)
	}
	if got, _ := Get(result.Value, "ip"); got != "192.168.100.10" {
		t.Errorf("expected ip reset, got %v", got)
	}
	if got, _ := Get(result.Value, "dhcp"); got != true {
		t.Errorf("expected trigger value kept, got %v", got)
	}
	if got, _ := Get(next, "ip"); got != "10.0.0.1" {
		t.Errorf("expected next untouched, got %v", got)
	}
}

func TestUnionKeys(t *testing.T) {
	got := unionKeys([]string{"a", "b"}, []string{"b", "c", "a", "d"})
	if !slices.Equal(got, []string{"a", "b", "c", "d"}) {
		t.Errorf("expected first-seen order without duplicates, got %v", got)
	}
}
