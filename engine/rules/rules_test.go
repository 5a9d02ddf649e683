package rules

import (
	"reflect"
	"testing"

	"github.com/nathoo/nightkeep/types"
)

func TestUnmet(t *testing.T) {
	s, defs := condTestState()
	conds := []types.Condition{
		{Type: "day_at_least", Params: map[string]any{"day": 7}},
		{Type: "has_gold", Params: map[string]any{"amount": 5}},
		{Type: "has_research", Params: map[string]any{"research": "archery"}},
	}
	got := Unmet(conds, s, defs)
	want := []string{"day 7", "research archery"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Unmet = %v, want %v", got, want)
	}
}

func TestRequirement(t *testing.T) {
	s, defs := condTestState()
	if got := Requirement(nil, s, defs); got != "" {
		t.Errorf("no conditions should need nothing, got %q", got)
	}
	conds := []types.Condition{
		{Type: "has_resource", Params: map[string]any{"resource": "stone", "amount": 4}},
		{Type: "has_building", Params: map[string]any{"building": "tower", "count": 2}},
	}
	want := "Requires 4 stone and 2 tower."
	if got := Requirement(conds, s, defs); got != want {
		t.Errorf("Requirement = %q, want %q", got, want)
	}
}

func TestDescribe(t *testing.T) {
	inner := types.Condition{Type: "flag_set", Params: map[string]any{"flag": "cursed"}}
	tests := []struct {
		cond types.Condition
		want string
	}{
		{types.Condition{Type: "has_gold", Params: map[string]any{"amount": 3}}, "3 gold"},
		{types.Condition{Type: "flag_not", Params: map[string]any{"flag": "cursed"}}, "not cursed"},
		{types.Condition{Type: "counter_gt", Params: map[string]any{"counter": "kills", "value": 9}}, "kills above 9"},
		{types.Condition{Type: "not", Inner: &inner}, "not cursed"},
		{types.Condition{Type: "mystery"}, "mystery"},
	}
	for _, tt := range tests {
		if got := Describe(tt.cond); got != tt.want {
			t.Errorf("Describe(%s) = %q, want %q", tt.cond.Type, got, tt.want)
		}
	}
}
