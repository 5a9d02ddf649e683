package loader

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/nightkeep/engine/balance"
	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/types"
)

// ValidationError collects all validation errors.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// Known effect types.
var validEffectTypes = map[string]bool{
	"say":          true,
	"add_resource": true,
	"add_gold":     true,
	"heal":         true,
	"damage":       true,
	"add_threat":   true,
	"set_flag":     true,
	"inc_counter":  true,
	"add_modifier": true,
	"add_loot":     true,
	"stop":         true,
}

// Known condition types.
var validConditionTypes = map[string]bool{
	"day_at_least": true,
	"has_resource": true,
	"has_gold":     true,
	"has_building": true,
	"has_research": true,
	"flag_set":     true,
	"flag_not":     true,
	"counter_gt":   true,
	"counter_lt":   true,
	"not":          true,
}

// Modifiers the simulation reads.
var validModifiers = map[string]bool{
	"typing_damage": true,
	"ap_max":        true,
	"hp_max":        true,
	"storage":       true,
	"production":    true,
}

// checker accumulates errors and warnings while walking the defs.
type checker struct {
	defs     *state.Defs
	errs     []string
	warnings []string
}

func (c *checker) errorf(format string, args ...any) {
	c.errs = append(c.errs, fmt.Sprintf(format, args...))
}

func (c *checker) warnf(format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
}

// validate checks the compiled defs for referential integrity and
// consistency. Warnings never fail a load. Errors are reported in a stable
// order.
func validate(defs *state.Defs) ([]string, error) {
	c := &checker{defs: defs}

	c.game()
	c.buildings()
	c.enemies()
	c.lessons()

	for _, id := range state.SortedKeys(defs.Research) {
		r := defs.Research[id]
		if r.Cost < 0 {
			c.errorf("research %q has negative cost", id)
		}
		if r.Days < 1 {
			c.warnf("research %q has no duration; it completes at the next dawn", id)
		}
		c.conditions("research "+id, r.Requires)
		c.effects("research "+id, r.Effects)
	}
	for _, id := range state.SortedKeys(defs.Upgrades) {
		u := defs.Upgrades[id]
		if u.Cost < 0 {
			c.errorf("upgrade %q has negative cost", id)
		}
		c.conditions("upgrade "+id, u.Requires)
		c.effects("upgrade "+id, u.Effects)
	}
	for _, id := range state.SortedKeys(defs.Titles) {
		t := defs.Titles[id]
		if len(t.Requires) == 0 {
			c.warnf("title %q has no requirements and can never unlock", id)
		}
		c.conditions("title "+id, t.Requires)
	}
	for _, id := range state.SortedKeys(defs.Events) {
		c.event(defs.Events[id])
	}

	if len(c.errs) > 0 {
		return c.warnings, &ValidationError{Errors: c.errs}
	}
	return c.warnings, nil
}

func (c *checker) game() {
	g := c.defs.Game
	if g.Title == "" {
		c.errorf("Game.title is required")
	}
	for _, d := range []struct {
		name string
		v    int
	}{{"map_w", g.MapW}, {"map_h", g.MapH}} {
		if d.v != 0 && d.v < 5 {
			c.errorf("Game.%s must be at least 5, got %d", d.name, d.v)
		}
	}
	if g.ApMax < 0 || g.Hp < 0 || g.StartGold < 0 || g.TradeRate < 0 {
		c.errorf("Game numbers must not be negative")
	}
	for _, k := range state.SortedKeys(g.StartResources) {
		if !isResource(k) {
			c.errorf("Game.start_resources has unknown resource %q", k)
		}
	}
	if g.Lesson == "" {
		c.errorf("Game.lesson is required")
	} else if _, ok := c.defs.Lessons[g.Lesson]; !ok {
		c.errorf("default lesson %q not found in defined lessons", g.Lesson)
	}
	if g.Locale != "" {
		if _, ok := c.defs.Locales[g.Locale]; !ok {
			c.errorf("default locale %q not found in defined locales", g.Locale)
		}
	}
	w := max(g.MapW, state.DefaultMapW*boolInt(g.MapW == 0))
	h := max(g.MapH, state.DefaultMapH*boolInt(g.MapH == 0))
	for i, t := range g.Towers {
		if _, ok := c.defs.Buildings[t.Kind]; !ok {
			c.errorf("Game.towers[%d] references undefined building %q", i+1, t.Kind)
		}
		if t.X < 0 || t.Y < 0 || t.X >= w || t.Y >= h {
			c.errorf("Game.towers[%d] at (%d,%d) is outside the %dx%d map", i+1, t.X, t.Y, w, h)
		}
		if t.X == w/2 && t.Y == h/2 {
			c.errorf("Game.towers[%d] stands on the keep", i+1)
		}
	}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (c *checker) buildings() {
	if len(c.defs.Buildings) == 0 {
		c.warnf("no buildings defined")
	}
	for _, id := range state.SortedKeys(c.defs.Buildings) {
		b := c.defs.Buildings[id]
		for _, k := range state.SortedKeys(b.Cost) {
			if k != "gold" && !isResource(k) {
				c.errorf("building %q cost uses unknown resource %q", id, k)
			}
			if b.Cost[k] < 0 {
				c.errorf("building %q has a negative %s cost", id, k)
			}
		}
		for _, k := range state.SortedKeys(b.Produces) {
			if !isResource(k) {
				c.errorf("building %q produces unknown resource %q", id, k)
			}
		}
		if b.Defense < 0 {
			c.errorf("building %q has negative defense", id)
		}
	}
}

func (c *checker) enemies() {
	regular := 0
	for _, id := range state.SortedKeys(c.defs.Enemies) {
		e := c.defs.Enemies[id]
		if e.Hp < 1 {
			c.errorf("enemy %q needs at least 1 hp", id)
		}
		if e.Distance < 1 {
			c.warnf("enemy %q has no approach distance; it strikes the step it appears", id)
		}
		if e.Weight < 0 {
			c.errorf("enemy %q has negative weight %d", id, e.Weight)
		}
		if e.MinLen > 0 && e.MaxLen > 0 && e.MinLen > e.MaxLen {
			c.errorf("enemy %q has min_len %d above max_len %d", id, e.MinLen, e.MaxLen)
		}
		for _, k := range state.SortedKeys(e.Loot) {
			if k != "gold" && !isResource(k) {
				c.errorf("enemy %q drops unknown resource %q", id, k)
			}
		}
		if !e.Boss {
			if e.MinDay <= 1 {
				regular++
			}
			continue
		}
		if !balance.IsMilestone(e.BossDay) {
			c.warnf("boss %q appears on day %d, which is not a milestone night", id, e.BossDay)
		}
		if len(e.Words) == 0 {
			c.warnf("boss %q has no words and will use the lesson", id)
		}
	}
	if regular == 0 {
		c.errorf("no enemy can appear on night 1")
	}
}

func (c *checker) lessons() {
	for _, id := range state.SortedKeys(c.defs.Lessons) {
		l := c.defs.Lessons[id]
		if len(l.Words) == 0 {
			c.errorf("lesson %q has no words", id)
			continue
		}
		seen := map[string]bool{}
		var dups []string
		for _, w := range l.Words {
			w = strings.ToLower(strings.TrimSpace(w))
			if seen[w] {
				dups = append(dups, w)
			}
			seen[w] = true
		}
		if len(dups) > 0 {
			sort.Strings(dups)
			c.warnf("lesson %q repeats %s", id, strings.Join(dups, ", "))
		}
	}
}

func (c *checker) event(ev types.EventDef) {
	if ev.Text == "" {
		c.errorf("event %q has no text", ev.ID)
	}
	if len(ev.Choices) == 0 {
		c.errorf("event %q has no choices", ev.ID)
	}
	if ev.Weight < 0 {
		c.errorf("event %q has negative weight %d", ev.ID, ev.Weight)
	}
	ids := map[string]bool{}
	for i, ch := range ev.Choices {
		where := fmt.Sprintf("event %s choice %d", ev.ID, i+1)
		switch {
		case ch.ID == "":
			c.errorf("%s has no id", where)
		case ids[ch.ID]:
			c.errorf("event %q has duplicate choice %q", ev.ID, ch.ID)
		}
		ids[ch.ID] = true
		if strings.ContainsAny(ch.ID, " \t") {
			c.errorf("event %q choice id %q must be a single word", ev.ID, ch.ID)
		}
		c.conditions(where, ch.Requires)
		c.effects(where, ch.Effects)
		c.effects(where, ch.Fail)
		if len(ch.Fail) > 0 && ch.Phrase == "" {
			c.warnf("%s has fail effects but no phrase to fail", where)
		}
	}
}

func (c *checker) conditions(where string, conditions []types.Condition) {
	for _, cond := range conditions {
		if !validConditionTypes[cond.Type] {
			c.errorf("%s: unknown condition type %q", where, cond.Type)
			continue
		}
		switch cond.Type {
		case "has_resource":
			if res, _ := cond.Params["resource"].(string); !isResource(res) {
				c.errorf("%s: condition has_resource references unknown resource %q", where, res)
			}
		case "has_building":
			if b, _ := cond.Params["building"].(string); !c.hasBuilding(b) {
				c.errorf("%s: condition has_building references undefined building %q", where, b)
			}
		case "has_research":
			id, _ := cond.Params["research"].(string)
			if _, ok := c.defs.Research[id]; !ok {
				c.errorf("%s: condition has_research references undefined research %q", where, id)
			}
		case "not":
			if cond.Inner != nil {
				c.conditions(where, []types.Condition{*cond.Inner})
			}
		}
	}
}

func (c *checker) effects(where string, effects []types.Effect) {
	for _, eff := range effects {
		if !validEffectTypes[eff.Type] {
			c.errorf("%s: unknown effect type %q", where, eff.Type)
			continue
		}
		switch eff.Type {
		case "add_resource":
			if res, _ := eff.Params["resource"].(string); !isResource(res) {
				c.errorf("%s: effect add_resource references unknown resource %q", where, res)
			}
		case "add_modifier":
			if m, _ := eff.Params["modifier"].(string); !validModifiers[m] {
				c.errorf("%s: effect add_modifier references unknown modifier %q", where, m)
			}
		case "add_loot":
			if res, ok := eff.Params["resource"].(string); ok && !isResource(res) {
				c.errorf("%s: effect add_loot references unknown resource %q", where, res)
			}
		}
	}
}

func (c *checker) hasBuilding(id string) bool {
	_, ok := c.defs.Buildings[id]
	return ok
}

func isResource(k string) bool {
	for _, r := range types.ResourceKeys {
		if r == k {
			return true
		}
	}
	return false
}
