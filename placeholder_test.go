package plansolve

import (
	"reflect"
	"testing"
)

func TestScanRefs(t *testing.T) {
	cases := []struct {
		template string
		want     []int
	}{
		{"no refs here", nil},
		{"{step1}", []int{1}},
		{"{step2} and {step1} and {step2}", []int{1, 2}},
		{"{step10} / {step3}", []int{3, 10}},
		{"{step} {stepx} {1step}", nil},
	}
	for _, c := range cases {
		got := ScanRefs(c.template)
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("ScanRefs(%q): expected %v, got %v", c.template, c.want, got)
		}
	}
}

func TestSubstitutePlaceholders(t *testing.T) {
	outputs := map[int]string{1: "8849", 2: "29032"}
	lookup := func(index int) (string, bool) {
		out, ok := outputs[index]
		return out, ok
	}

	got := SubstitutePlaceholders("{step1} meters is {step2} feet", lookup)
	if got != "8849 meters is 29032 feet" {
		t.Errorf("unexpected substitution: %q", got)
	}

	// Unknown indices stay verbatim; the parser prevents them in
	// validated plans.
	got = SubstitutePlaceholders("{step9}", lookup)
	if got != "{step9}" {
		t.Errorf("expected unknown token left verbatim, got %q", got)
	}
}

func TestSubstituteRepeatedToken(t *testing.T) {
	lookup := func(index int) (string, bool) { return "x", true }
	got := SubstitutePlaceholders("{step1}{step1}{step1}", lookup)
	if got != "xxx" {
		t.Errorf("expected xxx, got %q", got)
	}
}
