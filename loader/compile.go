// Package loader loads Lua game content into Go structs at startup.
// The Lua VM is discarded after loading: no Lua runs during play.
package loader

import (
	"fmt"
	"sort"

	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/types"
	lua "github.com/yuin/gopher-lua"
)

// rawDef holds one constructor call before compilation.
type rawDef struct {
	kind  string
	id    string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getBool returns a bool field from a Lua table, or the default if missing.
func getBool(tbl *lua.LTable, key string, def bool) bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		return bool(b)
	}
	return def
}

// getInt returns an integer field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	v := tbl.RawGetString(key)
	if n, ok := v.(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case *lua.LNilType:
		return nil
	case lua.LString:
		return string(val)
	case *lua.LTable:
		// Sequential integer keys starting at 1 make an array.
		maxN := val.MaxN()
		if maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// tableToIntMap converts a Lua table to a map[string]int, skipping
// non-numeric values.
func tableToIntMap(tbl *lua.LTable) map[string]int {
	m := map[string]int{}
	if tbl == nil {
		return m
	}
	tbl.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return
		}
		if n, ok := v.(lua.LNumber); ok {
			m[string(ks)] = int(n)
		}
	})
	return m
}

// tableToStrings converts the array part of a Lua table to strings.
func tableToStrings(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// arrayTables returns the table entries of a Lua array in order.
func arrayTables(tbl *lua.LTable) []*lua.LTable {
	if tbl == nil {
		return nil
	}
	var out []*lua.LTable
	for i := 1; i <= tbl.MaxN(); i++ {
		if t, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			out = append(out, t)
		}
	}
	return out
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector) (*state.Defs, error) {
	defs := &state.Defs{
		Buildings: map[string]types.BuildingDef{},
		Enemies:   map[string]types.EnemyDef{},
		Heroes:    map[string]types.HeroDef{},
		Research:  map[string]types.ResearchDef{},
		Upgrades:  map[string]types.UpgradeDef{},
		Titles:    map[string]types.TitleDef{},
		Lessons:   map[string]types.LessonDef{},
		Locales:   map[string]types.LocaleDef{},
		Events:    map[string]types.EventDef{},
	}

	if coll.game == nil {
		return nil, fmt.Errorf("no Game{} definition found")
	}
	defs.Game = compileGame(coll.game)

	seen := map[string]bool{}
	for _, raw := range coll.defs {
		// Enemies and bosses share one registry.
		kind := raw.kind
		if kind == kindBoss {
			kind = kindEnemy
		}
		key := kind + ":" + raw.id
		if seen[key] {
			return nil, fmt.Errorf("duplicate %s %q", raw.kind, raw.id)
		}
		seen[key] = true

		tbl := raw.table
		switch raw.kind {
		case kindBuilding:
			defs.Buildings[raw.id] = compileBuilding(raw.id, tbl)
		case kindEnemy, kindBoss:
			defs.Enemies[raw.id] = compileEnemy(raw.id, tbl, raw.kind == kindBoss)
		case kindHero:
			defs.Heroes[raw.id] = types.HeroDef{
				ID:           raw.id,
				Name:         getString(tbl, "name"),
				TypingDamage: getInt(tbl, "typing_damage"),
				ApBonus:      getInt(tbl, "ap_bonus"),
				HpBonus:      getInt(tbl, "hp_bonus"),
				FreezeOnHit:  getInt(tbl, "freeze_on_hit"),
				Description:  getString(tbl, "description"),
			}
		case kindResearch:
			defs.Research[raw.id] = types.ResearchDef{
				ID:       raw.id,
				Name:     getString(tbl, "name"),
				Cost:     getInt(tbl, "cost"),
				Days:     getInt(tbl, "days"),
				Requires: compileConditions(getTable(tbl, "requires")),
				Effects:  compileEffects(getTable(tbl, "effects")),
			}
		case kindUpgrade:
			defs.Upgrades[raw.id] = types.UpgradeDef{
				ID:       raw.id,
				Name:     getString(tbl, "name"),
				Cost:     getInt(tbl, "cost"),
				Requires: compileConditions(getTable(tbl, "requires")),
				Effects:  compileEffects(getTable(tbl, "effects")),
			}
		case kindTitle:
			defs.Titles[raw.id] = types.TitleDef{
				ID:       raw.id,
				Name:     getString(tbl, "name"),
				Requires: compileConditions(getTable(tbl, "requires")),
			}
		case kindLesson:
			defs.Lessons[raw.id] = types.LessonDef{
				ID:    raw.id,
				Name:  getString(tbl, "name"),
				Words: tableToStrings(getTable(tbl, "words")),
			}
		case kindLocale:
			defs.Locales[raw.id] = types.LocaleDef{ID: raw.id, Name: getString(tbl, "name")}
		case kindEvent:
			defs.Events[raw.id] = compileEvent(raw.id, tbl)
		}
	}
	return defs, nil
}

func compileGame(tbl *lua.LTable) types.GameDef {
	g := types.GameDef{
		Title:          getString(tbl, "title"),
		Version:        getString(tbl, "version"),
		MapW:           getInt(tbl, "map_w"),
		MapH:           getInt(tbl, "map_h"),
		ApMax:          getInt(tbl, "ap_max"),
		Hp:             getInt(tbl, "hp"),
		StartGold:      getInt(tbl, "start_gold"),
		StartResources: tableToIntMap(getTable(tbl, "start_resources")),
		TradeRate:      getInt(tbl, "trade_rate"),
		Lesson:         getString(tbl, "lesson"),
		Locale:         getString(tbl, "locale"),
		Intro:          getString(tbl, "intro"),
	}
	for _, t := range arrayTables(getTable(tbl, "towers")) {
		g.Towers = append(g.Towers, types.TowerDef{
			Kind: getString(t, "kind"),
			X:    getInt(t, "x"),
			Y:    getInt(t, "y"),
		})
	}
	return g
}

func compileBuilding(id string, tbl *lua.LTable) types.BuildingDef {
	return types.BuildingDef{
		ID:          id,
		Name:        getString(tbl, "name"),
		Cost:        tableToIntMap(getTable(tbl, "cost")),
		Produces:    tableToIntMap(getTable(tbl, "produces")),
		Defense:     getInt(tbl, "defense"),
		Storage:     getBool(tbl, "storage", false),
		BlocksPath:  getBool(tbl, "blocks_path", false),
		Description: getString(tbl, "description"),
	}
}

func compileEnemy(id string, tbl *lua.LTable, boss bool) types.EnemyDef {
	e := types.EnemyDef{
		ID:       id,
		Name:     getString(tbl, "name"),
		Hp:       getInt(tbl, "hp"),
		Damage:   getInt(tbl, "damage"),
		Gold:     getInt(tbl, "gold"),
		Distance: getInt(tbl, "distance"),
		MinDay:   getInt(tbl, "min_day"),
		Weight:   getInt(tbl, "weight"),
		MinLen:   getInt(tbl, "min_len"),
		MaxLen:   getInt(tbl, "max_len"),
		Boss:     boss,
		Words:    tableToStrings(getTable(tbl, "words")),
		Loot:     tableToIntMap(getTable(tbl, "loot")),
	}
	if boss {
		e.BossDay = getInt(tbl, "day")
	}
	if e.MinDay < 1 {
		e.MinDay = 1
	}
	return e
}

func compileEvent(id string, tbl *lua.LTable) types.EventDef {
	ev := types.EventDef{
		ID:     id,
		Text:   getString(tbl, "text"),
		Weight: getInt(tbl, "weight"),
	}
	for _, c := range arrayTables(getTable(tbl, "choices")) {
		ev.Choices = append(ev.Choices, types.ChoiceDef{
			ID:       getString(c, "id"),
			Text:     getString(c, "text"),
			Phrase:   getString(c, "phrase"),
			Requires: compileConditions(getTable(c, "requires")),
			Effects:  compileEffects(getTable(c, "effects")),
			Fail:     compileEffects(getTable(c, "fail")),
		})
	}
	return ev
}

func compileConditions(tbl *lua.LTable) []types.Condition {
	var conditions []types.Condition
	for _, c := range arrayTables(tbl) {
		conditions = append(conditions, compileCondition(c))
	}
	return conditions
}

func compileCondition(tbl *lua.LTable) types.Condition {
	condType := getString(tbl, "type")

	if condType == "not" {
		if innerTbl := getTable(tbl, "inner"); innerTbl != nil {
			inner := compileCondition(innerTbl)
			return types.Condition{
				Type:   "not",
				Negate: true,
				Inner:  &inner,
			}
		}
	}

	return types.Condition{
		Type:   condType,
		Params: params(tbl),
	}
}

func compileEffects(tbl *lua.LTable) []types.Effect {
	var effects []types.Effect
	for _, e := range arrayTables(tbl) {
		effects = append(effects, types.Effect{
			Type:   getString(e, "type"),
			Params: params(e),
		})
	}
	return effects
}

// params collects every string-keyed field except the type tag.
func params(tbl *lua.LTable) map[string]any {
	out := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok && string(ks) != "type" {
			out[string(ks)] = toGoValue(v)
		}
	})
	return out
}

// sortedLuaFiles returns .lua files with game.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var gameFile string
	var others []string
	for _, f := range files {
		if f == "game.lua" {
			gameFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if gameFile != "" {
		return append([]string{gameFile}, others...)
	}
	return others
}
