package effects

import (
	"reflect"
	"testing"

	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/types"
)

func testSetup() (*types.GameState, *state.Defs) {
	defs := &state.Defs{
		Game: types.GameDef{Title: "Test Keep", MapW: 6, MapH: 6, ApMax: 3, Hp: 10,
			StartResources: map[string]int{"wood": 5}, StartGold: 4},
		Titles: map[string]types.TitleDef{"warden": {ID: "warden", Name: "Warden"}},
	}
	return state.New(defs, state.Options{Seed: "fx"}), defs
}

func eff(typ string, params map[string]any) types.Effect {
	return types.Effect{Type: typ, Params: params}
}

func TestSay_Interpolates(t *testing.T) {
	s, defs := testSetup()
	s.EquippedTitle = "warden"
	events := Apply(s, defs, []types.Effect{
		eff("say", map[string]any{"text": "Day {day}, {title} of {game}, {gold} gold."}),
	})
	want := []string{"Day 1, Warden of Test Keep, 4 gold."}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("events = %v, want %v", events, want)
	}
}

func TestResourcesAndGold(t *testing.T) {
	s, defs := testSetup()
	events := Apply(s, defs, []types.Effect{
		eff("add_resource", map[string]any{"resource": "wood", "amount": 3}),
		eff("add_resource", map[string]any{"resource": "stone", "amount": -4}),
		eff("add_resource", map[string]any{"resource": "gems", "amount": 9}),
		eff("add_gold", map[string]any{"amount": float64(6)}),
	})
	if s.Resources["wood"] != 8 {
		t.Errorf("wood = %d, want 8", s.Resources["wood"])
	}
	if s.Resources["stone"] != 0 {
		t.Errorf("stone should floor at 0, got %d", s.Resources["stone"])
	}
	if _, ok := s.Resources["gems"]; ok {
		t.Error("unknown resources must not enter the ledger")
	}
	if s.Gold != 10 {
		t.Errorf("gold = %d, want 10", s.Gold)
	}
	if len(events) != 3 {
		t.Errorf("expected 3 events, got %v", events)
	}
}

func TestHealAndDamage(t *testing.T) {
	s, defs := testSetup()
	s.Hp = 5
	Apply(s, defs, []types.Effect{eff("heal", map[string]any{"amount": 100})})
	if s.Hp != s.HpMax {
		t.Errorf("heal should clamp to HpMax, got %d", s.Hp)
	}
	Apply(s, defs, []types.Effect{eff("damage", map[string]any{"amount": 100})})
	if s.Hp != 1 {
		t.Errorf("content damage should leave 1 HP, got %d", s.Hp)
	}
}

func TestThreatFlagsCounters(t *testing.T) {
	s, defs := testSetup()
	Apply(s, defs, []types.Effect{
		eff("add_threat", map[string]any{"amount": 2}),
		eff("add_threat", map[string]any{"amount": -5}),
		eff("set_flag", map[string]any{"flag": "blessed"}),
		eff("set_flag", map[string]any{"flag": "cursed", "value": false}),
		eff("inc_counter", map[string]any{"counter": "shrines"}),
		eff("inc_counter", map[string]any{"counter": "shrines", "amount": 2}),
	})
	if s.Threat != 0 {
		t.Errorf("threat should floor at 0, got %d", s.Threat)
	}
	if !s.Flags["blessed"] || s.Flags["cursed"] {
		t.Errorf("flags = %v", s.Flags)
	}
	if s.Counters["shrines"] != 3 {
		t.Errorf("shrines = %d, want 3", s.Counters["shrines"])
	}
}

func TestAddModifier_Recalculates(t *testing.T) {
	s, defs := testSetup()
	Apply(s, defs, []types.Effect{eff("add_modifier", map[string]any{"modifier": "ap_max", "amount": 2})})
	if s.ApMax != 5 {
		t.Errorf("ApMax = %d, want 5", s.ApMax)
	}
}

func TestAddLoot(t *testing.T) {
	s, defs := testSetup()
	Apply(s, defs, []types.Effect{
		eff("add_loot", map[string]any{"source": "shrine", "gold": 3, "resource": "food", "amount": 2}),
	})
	want := []types.Loot{{Source: "shrine", Gold: 3, Resources: map[string]int{"food": 2}}}
	if !reflect.DeepEqual(s.PendingLoot, want) {
		t.Errorf("loot = %+v", s.PendingLoot)
	}
}

func TestStop(t *testing.T) {
	s, defs := testSetup()
	events := Apply(s, defs, []types.Effect{
		eff("say", map[string]any{"text": "one"}),
		eff("stop", nil),
		eff("say", map[string]any{"text": "two"}),
	})
	if !reflect.DeepEqual(events, []string{"one"}) {
		t.Errorf("events = %v", events)
	}
}

func TestUnknownEffectIgnored(t *testing.T) {
	s, defs := testSetup()
	before := state.Clone(s)
	if events := Apply(s, defs, []types.Effect{eff("summon_dragon", nil)}); len(events) != 0 {
		t.Errorf("events = %v", events)
	}
	if !reflect.DeepEqual(before, s) {
		t.Error("unknown effects must not change state")
	}
}
