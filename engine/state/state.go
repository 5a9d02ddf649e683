// Package state owns the game state lifecycle: the content registries the
// simulation consults, the factory that builds a fresh state, the explicit
// deep clone used before every mutation, the invariant checker and the
// derived-stat lookups that layer hero and modifier bonuses over content.
package state

import (
	"errors"
	"fmt"
	"sort"

	"github.com/nathoo/nightkeep/engine/balance"
	"github.com/nathoo/nightkeep/engine/simmap"
	"github.com/nathoo/nightkeep/types"
)

// Fallbacks used when the content Game{} block leaves a field unset.
const (
	DefaultMapW      = 16
	DefaultMapH      = 12
	DefaultApMax     = 3
	DefaultHp        = 10
	DefaultTradeRate = 2
	DefaultSeed      = "nightkeep"
	DefaultLocale    = "en"
	DefaultTargeting = "first"

	// StartRadius is the Manhattan radius discovered around the base.
	StartRadius = 2
)

// Defs holds the immutable content registries loaded from Lua.
type Defs struct {
	Game      types.GameDef
	Buildings map[string]types.BuildingDef
	Enemies   map[string]types.EnemyDef
	Heroes    map[string]types.HeroDef
	Research  map[string]types.ResearchDef
	Upgrades  map[string]types.UpgradeDef
	Titles    map[string]types.TitleDef
	Lessons   map[string]types.LessonDef
	Locales   map[string]types.LocaleDef
	Events    map[string]types.EventDef
}

// Placement is a structure placed by the factory on top of the content's
// own towers.
type Placement struct {
	Kind string
	Pos  types.Vec2
}

// Options configures a new game.
type Options struct {
	Seed           string
	LessonID       string
	StartingTowers []Placement
	MapW           int // 0 = content default
	MapH           int // 0 = content default
}

// New creates a fresh day-1 state.
func New(defs *Defs, opts Options) *types.GameState {
	w := firstPositive(opts.MapW, defs.Game.MapW, DefaultMapW)
	h := firstPositive(opts.MapH, defs.Game.MapH, DefaultMapH)

	seed := opts.Seed
	if seed == "" {
		seed = DefaultSeed
	}
	lesson := opts.LessonID
	if lesson == "" {
		lesson = defs.Game.Lesson
	}
	locale := defs.Game.Locale
	if locale == "" {
		locale = DefaultLocale
	}

	base := types.Vec2{X: w / 2, Y: h / 2}
	s := &types.GameState{
		Day:               1,
		Phase:             types.PhaseDay,
		Gold:              defs.Game.StartGold,
		Resources:         map[string]int{},
		MapW:              w,
		MapH:              h,
		Terrain:           make([]string, w*h),
		BasePos:           base,
		CursorPos:         base,
		PlayerPos:         base,
		PlayerFacing:      "north",
		Discovered:        map[int]bool{},
		Structures:        map[int]string{},
		StructureLevels:   map[int]int{},
		BuildingCounts:    map[string]int{},
		Pois:              map[int]string{},
		Enemies:           []types.Enemy{},
		EnemyNextID:       1,
		LastPathOpen:      true,
		TargetingMode:     DefaultTargeting,
		RngSeed:           seed,
		LessonID:          lesson,
		Locale:            locale,
		CompletedResearch: map[string]bool{},
		TradeRates:        map[string]int{},
		PurchasedUpgrades: map[string]bool{},
		UnlockedTitles:    map[string]bool{},
		PendingLoot:       []types.Loot{},
		Flags:             map[string]bool{},
		Counters:          map[string]int{},
		Modifiers:         map[string]int{},
	}
	for _, k := range types.ResourceKeys {
		s.Resources[k] = max(0, defs.Game.StartResources[k])
	}
	Recalc(s, defs)
	s.Ap = s.ApMax
	s.Hp = s.HpMax

	// The base tile is forced to plains before discovery so generation skips it.
	baseIdx := simmap.Idx(base.X, base.Y, w)
	s.Terrain[baseIdx] = types.TerrainPlains
	simmap.DiscoverRadius(s, base, StartRadius, PoiEvents(defs))

	towers := make([]Placement, 0, len(defs.Game.Towers)+len(opts.StartingTowers))
	for _, t := range defs.Game.Towers {
		towers = append(towers, Placement{Kind: t.Kind, Pos: types.Vec2{X: t.X, Y: t.Y}})
	}
	for _, p := range append(towers, opts.StartingTowers...) {
		if !simmap.InBounds(s, p.Pos.X, p.Pos.Y) {
			continue
		}
		idx := simmap.Idx(p.Pos.X, p.Pos.Y, w)
		if idx == baseIdx || s.Structures[idx] != "" {
			continue
		}
		s.Terrain[idx] = types.TerrainPlains
		s.Discovered[idx] = true
		delete(s.Pois, idx)
		s.Structures[idx] = p.Kind
		s.StructureLevels[idx] = 1
		s.BuildingCounts[p.Kind]++
	}
	return s
}

func firstPositive(vals ...int) int {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}

// Clone returns a deep copy of s. The copy shares no maps or slices with s.
func Clone(s *types.GameState) *types.GameState {
	if s == nil {
		return nil
	}
	c := *s
	c.Resources = cloneMap(s.Resources)
	c.Terrain = append([]string(nil), s.Terrain...)
	c.Discovered = cloneMap(s.Discovered)
	c.Structures = cloneMap(s.Structures)
	c.StructureLevels = cloneMap(s.StructureLevels)
	c.BuildingCounts = cloneMap(s.BuildingCounts)
	c.Pois = cloneMap(s.Pois)
	c.Enemies = make([]types.Enemy, len(s.Enemies))
	for i, e := range s.Enemies {
		e.Effects = cloneMap(e.Effects)
		c.Enemies[i] = e
	}
	c.CompletedResearch = cloneMap(s.CompletedResearch)
	c.TradeRates = cloneMap(s.TradeRates)
	c.PurchasedUpgrades = cloneMap(s.PurchasedUpgrades)
	c.UnlockedTitles = cloneMap(s.UnlockedTitles)
	c.PendingLoot = make([]types.Loot, len(s.PendingLoot))
	for i, l := range s.PendingLoot {
		l.Resources = cloneMap(l.Resources)
		c.PendingLoot[i] = l
	}
	c.Flags = cloneMap(s.Flags)
	c.Counters = cloneMap(s.Counters)
	c.Modifiers = cloneMap(s.Modifiers)
	return &c
}

// cloneMap copies m; a nil map becomes an empty one so clones are always
// safe to write to.
func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Check validates the structural invariants of a state. All violations are
// reported together.
func Check(s *types.GameState) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch s.Phase {
	case types.PhaseDay, types.PhaseNight, types.PhaseGameOver, types.PhaseVictory:
	default:
		add("unknown phase %q", s.Phase)
	}
	if s.Day < 1 {
		add("day %d < 1", s.Day)
	}
	if s.Ap < 0 || s.Ap > s.ApMax {
		add("ap %d outside [0, %d]", s.Ap, s.ApMax)
	}
	if s.Gold < 0 {
		add("gold %d < 0", s.Gold)
	}
	for k, v := range s.Resources {
		if v < 0 {
			add("resource %s = %d < 0", k, v)
		}
	}
	if s.MapW < 1 || s.MapH < 1 {
		add("map size %dx%d", s.MapW, s.MapH)
	}
	terrainOK := len(s.Terrain) == s.MapW*s.MapH
	if !terrainOK {
		add("terrain has %d tiles, map is %dx%d", len(s.Terrain), s.MapW, s.MapH)
	}

	baseIdx := simmap.Idx(s.BasePos.X, s.BasePos.Y, s.MapW)
	for _, idx := range SortedTiles(s.Structures) {
		if !simmap.IndexInBounds(s, idx) {
			add("structure at out-of-bounds tile %d", idx)
			continue
		}
		if idx == baseIdx {
			add("structure %s on the base tile", s.Structures[idx])
		}
		if terrainOK && s.Terrain[idx] == types.TerrainWater {
			add("structure %s on water at tile %d", s.Structures[idx], idx)
		}
	}
	for idx, lvl := range s.StructureLevels {
		if !simmap.IndexInBounds(s, idx) {
			add("structure level at out-of-bounds tile %d", idx)
		}
		if lvl < 1 {
			add("structure level %d < 1 at tile %d", lvl, idx)
		}
	}
	for idx := range s.Discovered {
		if !simmap.IndexInBounds(s, idx) {
			add("discovered tile %d out of bounds", idx)
		}
	}
	for _, e := range s.Enemies {
		if e.Hp <= 0 {
			add("enemy %d (%s) has hp %d", e.ID, e.Kind, e.Hp)
		}
	}
	return errors.Join(errs...)
}

// GetFlag returns the value of a flag. Unset flags return false.
func GetFlag(s *types.GameState, name string) bool {
	return s.Flags[name]
}

// GetCounter returns the value of a counter. Unset counters return 0.
func GetCounter(s *types.GameState, name string) int {
	return s.Counters[name]
}

// Hero returns the selected hero definition, if any.
func Hero(s *types.GameState, defs *Defs) (types.HeroDef, bool) {
	if s.HeroID == "" {
		return types.HeroDef{}, false
	}
	h, ok := defs.Heroes[s.HeroID]
	return h, ok
}

// ApMax derives the daily action point budget.
func ApMax(s *types.GameState, defs *Defs) int {
	n := firstPositive(defs.Game.ApMax, DefaultApMax) + s.Modifiers["ap_max"]
	if h, ok := Hero(s, defs); ok {
		n += h.ApBonus
	}
	return max(1, n)
}

// HpMax derives the base's maximum hit points.
func HpMax(s *types.GameState, defs *Defs) int {
	n := firstPositive(defs.Game.Hp, DefaultHp) + s.Modifiers["hp_max"]
	if h, ok := Hero(s, defs); ok {
		n += h.HpBonus
	}
	return max(1, n)
}

// Recalc refreshes ApMax and HpMax and clamps the current values to them.
func Recalc(s *types.GameState, defs *Defs) {
	s.ApMax = ApMax(s, defs)
	s.HpMax = HpMax(s, defs)
	s.Ap = min(s.Ap, s.ApMax)
	s.Hp = min(s.Hp, s.HpMax)
}

// TypingBase is the base damage of a typed hit before accuracy and speed.
func TypingBase(s *types.GameState, defs *Defs) int {
	n := 1 + s.Modifiers["typing_damage"]
	if h, ok := Hero(s, defs); ok {
		n += h.TypingDamage
	}
	return max(1, n)
}

// Defense sums the defense rating of every built structure, scaled by level.
func Defense(s *types.GameState, defs *Defs) int {
	total := 0
	for idx, kind := range s.Structures {
		total += defs.Buildings[kind].Defense * Level(s, idx)
	}
	return total
}

// StorageCap returns the per-resource storage limit.
func StorageCap(s *types.GameState, defs *Defs) int {
	levels := 0
	for idx, kind := range s.Structures {
		if defs.Buildings[kind].Storage {
			levels += Level(s, idx)
		}
	}
	return balance.StorageCap(levels, s.Modifiers["storage"])
}

// Level returns the level of the structure on idx (minimum 1).
func Level(s *types.GameState, idx int) int {
	return max(1, s.StructureLevels[idx])
}

// WallBlocked returns a predicate reporting tiles closed by path-blocking
// structures.
func WallBlocked(s *types.GameState, defs *Defs) func(int) bool {
	return func(idx int) bool {
		kind, ok := s.Structures[idx]
		return ok && defs.Buildings[kind].BlocksPath
	}
}

// PoiEvents returns the events a point of interest can carry, sorted by id.
func PoiEvents(defs *Defs) []types.EventDef {
	ids := SortedKeys(defs.Events)
	out := make([]types.EventDef, len(ids))
	for i, id := range ids {
		out[i] = defs.Events[id]
	}
	return out
}

// CanAfford reports whether the state can pay cost. The key "gold" draws on
// Gold; every other key draws on the resource ledger.
func CanAfford(s *types.GameState, cost map[string]int) bool {
	for k, v := range cost {
		if Balance(s, k) < v {
			return false
		}
	}
	return true
}

// Balance returns the holding for a cost key.
func Balance(s *types.GameState, key string) int {
	if key == "gold" {
		return s.Gold
	}
	return s.Resources[key]
}

// Debit removes cost from the state. Callers check CanAfford first.
func Debit(s *types.GameState, cost map[string]int) {
	for k, v := range cost {
		Credit(s, k, -v)
	}
}

// Credit adds amount to a cost key, flooring at zero.
func Credit(s *types.GameState, key string, amount int) {
	if key == "gold" {
		s.Gold = max(0, s.Gold+amount)
		return
	}
	s.Resources[key] = max(0, s.Resources[key]+amount)
}

// FormatCost renders a cost map in stable key order, e.g. "3 stone, 5 wood".
func FormatCost(cost map[string]int) string {
	keys := SortedKeys(cost)
	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%d %s", cost[k], k)
	}
	if out == "" {
		return "nothing"
	}
	return out
}

// SortedKeys returns the keys of a string-keyed map in order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortedTiles returns the tile indices of a tile-keyed map in order.
func SortedTiles[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
