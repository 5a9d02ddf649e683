package loader

import (
	"strings"
	"testing"

	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/types"
)

// validDefs returns a minimal valid Defs for testing.
func validDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{
			Title:  "Test",
			Lesson: "basics",
		},
		Buildings: map[string]types.BuildingDef{
			"farm":       {ID: "farm", Cost: map[string]int{"wood": 3}, Produces: map[string]int{"food": 2}},
			"auto_tower": {ID: "auto_tower", Cost: map[string]int{"gold": 5}},
		},
		Enemies: map[string]types.EnemyDef{
			"scout": {ID: "scout", Hp: 1, Distance: 3, MinDay: 1},
		},
		Heroes:   map[string]types.HeroDef{},
		Research: map[string]types.ResearchDef{"masonry": {ID: "masonry", Cost: 4, Days: 1}},
		Upgrades: map[string]types.UpgradeDef{},
		Titles:   map[string]types.TitleDef{},
		Lessons: map[string]types.LessonDef{
			"basics": {ID: "basics", Words: []string{"spear", "shield"}},
		},
		Locales: map[string]types.LocaleDef{"en": {ID: "en"}},
		Events:  map[string]types.EventDef{},
	}
}

func TestValidate_ValidDefs(t *testing.T) {
	warnings, err := validate(validDefs())
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *state.Defs)
		want   string
	}{
		{"empty title", func(d *state.Defs) { d.Game.Title = "" }, "title"},
		{"missing lesson", func(d *state.Defs) { d.Game.Lesson = "nope" }, "default lesson"},
		{"no lesson", func(d *state.Defs) { d.Game.Lesson = "" }, "Game.lesson"},
		{"unknown locale", func(d *state.Defs) { d.Game.Locale = "xx" }, "default locale"},
		{"tiny map", func(d *state.Defs) { d.Game.MapW = 3 }, "map_w"},
		{"bad start resource", func(d *state.Defs) {
			d.Game.StartResources = map[string]int{"iron": 1}
		}, "iron"},
		{"empty lesson", func(d *state.Defs) {
			d.Lessons["basics"] = types.LessonDef{ID: "basics"}
		}, "has no words"},
		{"no night one enemy", func(d *state.Defs) {
			d.Enemies["scout"] = types.EnemyDef{ID: "scout", Hp: 1, Distance: 3, MinDay: 3}
		}, "night 1"},
		{"negative enemy weight", func(d *state.Defs) {
			d.Enemies["ghost"] = types.EnemyDef{ID: "ghost", Hp: 1, Distance: 3, MinDay: 1, Weight: -1}
		}, "negative weight"},
		{"negative event weight", func(d *state.Defs) {
			d.Events["e"] = types.EventDef{ID: "e", Text: "x", Weight: -2, Choices: []types.ChoiceDef{{ID: "a"}}}
		}, "negative weight"},
		{"zero hp enemy", func(d *state.Defs) {
			d.Enemies["ghost"] = types.EnemyDef{ID: "ghost", Distance: 3, MinDay: 1}
		}, "at least 1 hp"},
		{"bad cost key", func(d *state.Defs) {
			d.Buildings["mine"] = types.BuildingDef{ID: "mine", Cost: map[string]int{"iron": 1}}
		}, "unknown resource"},
		{"bad produce key", func(d *state.Defs) {
			d.Buildings["mine"] = types.BuildingDef{ID: "mine", Produces: map[string]int{"gold": 1}}
		}, "produces unknown resource"},
		{"undefined tower kind", func(d *state.Defs) {
			d.Game.Towers = []types.TowerDef{{Kind: "ballista", X: 1, Y: 1}}
		}, "undefined building"},
		{"tower off map", func(d *state.Defs) {
			d.Game.Towers = []types.TowerDef{{Kind: "auto_tower", X: 99, Y: 1}}
		}, "outside"},
		{"tower on keep", func(d *state.Defs) {
			d.Game.Towers = []types.TowerDef{{Kind: "auto_tower", X: state.DefaultMapW / 2, Y: state.DefaultMapH / 2}}
		}, "keep"},
		{"unknown effect", func(d *state.Defs) {
			d.Upgrades["u"] = types.UpgradeDef{ID: "u", Effects: []types.Effect{{Type: "explode"}}}
		}, "unknown effect type"},
		{"unknown condition", func(d *state.Defs) {
			d.Titles["t"] = types.TitleDef{ID: "t", Requires: []types.Condition{{Type: "is_raining"}}}
		}, "unknown condition type"},
		{"undefined building condition", func(d *state.Defs) {
			d.Titles["t"] = types.TitleDef{ID: "t", Requires: []types.Condition{
				{Type: "has_building", Params: map[string]any{"building": "castle"}},
			}}
		}, "undefined building"},
		{"undefined research condition", func(d *state.Defs) {
			d.Upgrades["u"] = types.UpgradeDef{ID: "u", Requires: []types.Condition{
				{Type: "has_research", Params: map[string]any{"research": "alchemy"}},
			}}
		}, "undefined research"},
		{"negated undefined building", func(d *state.Defs) {
			inner := types.Condition{Type: "has_building", Params: map[string]any{"building": "castle"}}
			d.Titles["t"] = types.TitleDef{ID: "t", Requires: []types.Condition{{Type: "not", Negate: true, Inner: &inner}}}
		}, "castle"},
		{"unknown modifier", func(d *state.Defs) {
			d.Upgrades["u"] = types.UpgradeDef{ID: "u", Effects: []types.Effect{
				{Type: "add_modifier", Params: map[string]any{"modifier": "luck", "amount": 1}},
			}}
		}, "unknown modifier"},
		{"event without choices", func(d *state.Defs) {
			d.Events["e"] = types.EventDef{ID: "e", Text: "x"}
		}, "no choices"},
		{"duplicate choice", func(d *state.Defs) {
			d.Events["e"] = types.EventDef{ID: "e", Text: "x", Choices: []types.ChoiceDef{{ID: "a"}, {ID: "a"}}}
		}, "duplicate choice"},
		{"multi-word choice", func(d *state.Defs) {
			d.Events["e"] = types.EventDef{ID: "e", Text: "x", Choices: []types.ChoiceDef{{ID: "run away"}}}
		}, "single word"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := validDefs()
			tt.mutate(defs)
			_, err := validate(defs)
			if err == nil {
				t.Fatal("expected validation error")
			}
			ve, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			assertContains(t, ve.Errors, tt.want)
		})
	}
}

func TestValidate_Warnings(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *state.Defs)
		want   string
	}{
		{"boss off milestone", func(d *state.Defs) {
			d.Enemies["ogre"] = types.EnemyDef{ID: "ogre", Hp: 3, Distance: 3, Boss: true, BossDay: 5, Words: []string{"ogre"}}
		}, "not a milestone"},
		{"boss without words", func(d *state.Defs) {
			d.Enemies["ogre"] = types.EnemyDef{ID: "ogre", Hp: 3, Distance: 3, Boss: true, BossDay: 7}
		}, "no words"},
		{"repeated lesson word", func(d *state.Defs) {
			d.Lessons["basics"] = types.LessonDef{ID: "basics", Words: []string{"spear", "Spear"}}
		}, "repeats spear"},
		{"unreachable title", func(d *state.Defs) {
			d.Titles["t"] = types.TitleDef{ID: "t"}
		}, "can never unlock"},
		{"fail without phrase", func(d *state.Defs) {
			d.Events["e"] = types.EventDef{ID: "e", Text: "x", Choices: []types.ChoiceDef{
				{ID: "a", Fail: []types.Effect{{Type: "damage", Params: map[string]any{"amount": 1}}}},
			}}
		}, "no phrase"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := validDefs()
			tt.mutate(defs)
			warnings, err := validate(defs)
			if err != nil {
				t.Fatalf("warnings must not fail validation: %v", err)
			}
			assertContains(t, warnings, tt.want)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	defs := validDefs()
	defs.Game.Title = ""
	defs.Game.Lesson = "nope"
	defs.Enemies["ghost"] = types.EnemyDef{ID: "ghost", MinDay: 1}

	_, err := validate(defs)
	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Errors) != 3 {
		t.Errorf("expected 3 errors, got %d: %v", len(ve.Errors), ve.Errors)
	}
	if !strings.HasPrefix(ve.Error(), "validation failed with 3 error(s)") {
		t.Errorf("Error() = %q", ve.Error())
	}
}

// assertContains checks that at least one string in the slice contains substr.
func assertContains(t *testing.T, strs []string, substr string) {
	t.Helper()
	for _, s := range strs {
		if strings.Contains(s, substr) {
			return
		}
	}
	t.Errorf("expected one of %v to contain %q", strs, substr)
}
