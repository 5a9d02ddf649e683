package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// Definition kinds, one per curried constructor.
const (
	kindBuilding = "Building"
	kindEnemy    = "Enemy"
	kindBoss     = "Boss"
	kindHero     = "Hero"
	kindResearch = "Research"
	kindUpgrade  = "Upgrade"
	kindTitle    = "Title"
	kindLesson   = "Lesson"
	kindLocale   = "Locale"
	kindEvent    = "Event"
)

var constructorKinds = []string{
	kindBuilding, kindEnemy, kindBoss, kindHero, kindResearch,
	kindUpgrade, kindTitle, kindLesson, kindLocale, kindEvent,
}

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerConditionHelpers(L)
	registerEffectHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Game { title = "...", ... }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		coll.game = tbl
		return 0
	}))

	// Building "id" { ... }, Enemy "id" { ... } and the rest are curried:
	// Kind("id") returns a function that takes the table.
	for _, kind := range constructorKinds {
		L.SetGlobal(kind, L.NewFunction(func(L *lua.LState) int {
			id := L.CheckString(1)
			L.Push(L.NewFunction(func(L *lua.LState) int {
				tbl := L.CheckTable(1)
				coll.defs = append(coll.defs, rawDef{kind: kind, id: id, table: tbl})
				return 0
			}))
			return 1
		}))
	}
}

// helper returns a Lua function building a {type = typ, ...} table from its
// positional arguments, stored under keys in order. Missing trailing
// arguments are left out of the table.
func helper(typ string, keys ...string) lua.LGFunction {
	return func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString(typ))
		for i, key := range keys {
			if v := L.Get(i + 1); v != lua.LNil {
				tbl.RawSetString(key, v)
			}
		}
		L.Push(tbl)
		return 1
	}
}

func registerConditionHelpers(L *lua.LState) {
	// DayAtLeast(7)
	L.SetGlobal("DayAtLeast", L.NewFunction(helper("day_at_least", "day")))
	// HasResource("wood", 10)
	L.SetGlobal("HasResource", L.NewFunction(helper("has_resource", "resource", "amount")))
	// HasGold(25)
	L.SetGlobal("HasGold", L.NewFunction(helper("has_gold", "amount")))
	// HasBuilding("farm", 2); count defaults to 1.
	L.SetGlobal("HasBuilding", L.NewFunction(helper("has_building", "building", "count")))
	// HasResearch("masonry")
	L.SetGlobal("HasResearch", L.NewFunction(helper("has_research", "research")))
	L.SetGlobal("FlagSet", L.NewFunction(helper("flag_set", "flag")))
	L.SetGlobal("FlagNot", L.NewFunction(helper("flag_not", "flag")))
	L.SetGlobal("CounterGt", L.NewFunction(helper("counter_gt", "counter", "value")))
	L.SetGlobal("CounterLt", L.NewFunction(helper("counter_lt", "counter", "value")))

	// Not(condition)
	L.SetGlobal("Not", L.NewFunction(func(L *lua.LState) int {
		inner := L.CheckTable(1)
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("not"))
		tbl.RawSetString("inner", inner)
		L.Push(tbl)
		return 1
	}))
}

func registerEffectHelpers(L *lua.LState) {
	// Say("text"); {day}, {gold}, {hp}, {threat}, {title} and {game} are
	// filled in when the effect runs.
	L.SetGlobal("Say", L.NewFunction(helper("say", "text")))
	L.SetGlobal("AddResource", L.NewFunction(helper("add_resource", "resource", "amount")))
	L.SetGlobal("AddGold", L.NewFunction(helper("add_gold", "amount")))
	L.SetGlobal("Heal", L.NewFunction(helper("heal", "amount")))
	L.SetGlobal("Damage", L.NewFunction(helper("damage", "amount")))
	L.SetGlobal("AddThreat", L.NewFunction(helper("add_threat", "amount")))
	// SetFlag("flag") sets it to true; SetFlag("flag", false) clears it.
	L.SetGlobal("SetFlag", L.NewFunction(helper("set_flag", "flag", "value")))
	// IncCounter("counter") adds 1.
	L.SetGlobal("IncCounter", L.NewFunction(helper("inc_counter", "counter", "amount")))
	L.SetGlobal("AddModifier", L.NewFunction(helper("add_modifier", "modifier", "amount")))

	// AddLoot { source = "...", gold = 3, resource = "stone", amount = 2 }
	L.SetGlobal("AddLoot", L.NewFunction(func(L *lua.LState) int {
		src := L.CheckTable(1)
		tbl := L.NewTable()
		src.ForEach(func(k, v lua.LValue) {
			tbl.RawSet(k, v)
		})
		tbl.RawSetString("type", lua.LString("add_loot"))
		L.Push(tbl)
		return 1
	}))

	// Stop()
	L.SetGlobal("Stop", L.NewFunction(helper("stop")))
}
