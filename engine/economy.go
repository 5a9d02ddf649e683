package engine

import (
	"fmt"
	"strings"

	"github.com/nathoo/nightkeep/engine/balance"
	"github.com/nathoo/nightkeep/engine/events"
	"github.com/nathoo/nightkeep/engine/intent"
	"github.com/nathoo/nightkeep/engine/rng"
	"github.com/nathoo/nightkeep/engine/simmap"
	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/types"
)

// gatherResource maps a terrain kind to the resource it yields.
var gatherResource = map[string]string{
	types.TerrainForest: types.ResourceWood,
	types.TerrainHills:  types.ResourceStone,
	types.TerrainPlains: types.ResourceFood,
}

func (a *applier) gather(v intent.Gather) {
	if !a.requireDay() || !a.hasAP() {
		return
	}
	if _, ok := a.s.Resources[v.Resource]; !ok {
		a.say("Unknown resource: %s.", v.Resource)
		return
	}
	if v.Amount < 1 || v.Amount > balance.MaxGatherAmount {
		a.say("Gather between 1 and %d at a time.", balance.MaxGatherAmount)
		return
	}
	a.useAP()
	a.s.Resources[v.Resource] += v.Amount
	a.say("Gathered %d %s. (%d AP left)", v.Amount, v.Resource, a.s.Ap)
}

func (a *applier) gatherAtCursor() {
	if !a.requireDay() || !a.hasAP() {
		return
	}
	s := a.s
	p := s.CursorPos
	idx := simmap.Idx(p.X, p.Y, s.MapW)
	if !s.Discovered[idx] {
		a.say("Tile (%d,%d) is not discovered yet.", p.X, p.Y)
		return
	}
	terrain := s.Terrain[idx]
	res, ok := gatherResource[terrain]
	if !ok {
		a.say("There is nothing to gather on %s.", terrain)
		return
	}
	a.useAP()
	n := balance.GatherYield + s.Modifiers["production"]
	s.Resources[res] += n
	a.say("Harvested %d %s from the %s at (%d,%d). (%d AP left)", n, res, terrain, p.X, p.Y, s.Ap)
}

// tile resolves an optional position, defaulting to the cursor.
func (a *applier) tile(at intent.Pos) types.Vec2 {
	if at.Set {
		return types.Vec2{X: at.X, Y: at.Y}
	}
	return a.s.CursorPos
}

func (a *applier) build(v intent.Build) {
	if !a.requireDay() || !a.hasAP() {
		return
	}
	s := a.s
	def, ok := a.defs.Buildings[v.Building]
	if !ok {
		a.say("Unknown building: %s.", v.Building)
		return
	}
	p := a.tile(v.At)
	if !simmap.InBounds(s, p.X, p.Y) {
		a.say("(%d,%d) is outside the map.", p.X, p.Y)
		return
	}
	idx := simmap.Idx(p.X, p.Y, s.MapW)
	switch {
	case !s.Discovered[idx]:
		a.say("Tile (%d,%d) is not discovered yet.", p.X, p.Y)
		return
	case p == s.BasePos:
		a.say("The keep itself stands on (%d,%d).", p.X, p.Y)
		return
	case s.Structures[idx] != "":
		a.say("Tile (%d,%d) already holds a %s.", p.X, p.Y, s.Structures[idx])
		return
	case !simmap.Buildable(s.Terrain[idx]):
		a.say("Cannot build on %s.", s.Terrain[idx])
		return
	case !state.CanAfford(s, def.Cost):
		a.say("Not enough resources for a %s: it costs %s.", name(def.Name, def.ID), state.FormatCost(def.Cost))
		return
	}
	a.useAP()
	state.Debit(s, def.Cost)
	s.Structures[idx] = def.ID
	s.StructureLevels[idx] = 1
	s.BuildingCounts[def.ID]++
	a.say("Built a %s at (%d,%d) for %s. (%d AP left)", name(def.Name, def.ID), p.X, p.Y, state.FormatCost(def.Cost), s.Ap)
}

func (a *applier) explore() {
	if !a.requireDay() || !a.hasAP() {
		return
	}
	s := a.s
	frontier := simmap.Frontier(s)
	if len(frontier) == 0 {
		a.say("There is nothing left to explore.")
		return
	}
	a.useAP()
	idx := rng.Choose(s, frontier)
	simmap.EnsureTileGenerated(s, idx, state.PoiEvents(a.defs))
	s.Discovered[idx] = true
	s.Threat++
	s.Counters["explored"]++
	p := simmap.FromIndex(idx, s.MapW)
	a.say("Scouts chart (%d,%d): %s. Threat rises to %d. (%d AP left)", p.X, p.Y, s.Terrain[idx], s.Threat, s.Ap)
	a.discoverPoi(idx)
}

// discoverPoi raises the point of interest on idx as the pending event,
// unless another event is already waiting.
func (a *applier) discoverPoi(idx int) {
	s := a.s
	id, ok := s.Pois[idx]
	if !ok || s.PendingEvent != "" {
		return
	}
	ev, ok := a.defs.Events[id]
	if !ok {
		return
	}
	delete(s.Pois, idx)
	s.PendingEvent = id
	a.emit(events.Describe(ev, s, a.defs)...)
}

// structureAt validates a structure-targeted position.
func (a *applier) structureAt(at intent.Pos) (types.Vec2, int, bool) {
	s := a.s
	p := a.tile(at)
	if !simmap.InBounds(s, p.X, p.Y) {
		a.say("(%d,%d) is outside the map.", p.X, p.Y)
		return p, 0, false
	}
	idx := simmap.Idx(p.X, p.Y, s.MapW)
	if s.Structures[idx] == "" {
		a.say("There is no structure at (%d,%d).", p.X, p.Y)
		return p, idx, false
	}
	return p, idx, true
}

func (a *applier) demolish(v intent.Demolish) {
	if !a.requireDay() || !a.hasAP() {
		return
	}
	p, idx, ok := a.structureAt(v.At)
	if !ok {
		return
	}
	a.useAP()
	s := a.s
	kind := s.Structures[idx]
	def := a.defs.Buildings[kind]
	refund := map[string]int{}
	for _, k := range state.SortedKeys(def.Cost) {
		if n := balance.Refund(def.Cost[k]); n > 0 {
			state.Credit(s, k, n)
			refund[k] = n
		}
	}
	delete(s.Structures, idx)
	delete(s.StructureLevels, idx)
	if s.BuildingCounts[kind]--; s.BuildingCounts[kind] <= 0 {
		delete(s.BuildingCounts, kind)
	}
	a.say("Demolished the %s at (%d,%d). Refunded %s. (%d AP left)", name(def.Name, kind), p.X, p.Y, state.FormatCost(refund), s.Ap)
}

func (a *applier) upgrade(v intent.Upgrade) {
	if !a.requireDay() || !a.hasAP() {
		return
	}
	p, idx, ok := a.structureAt(v.At)
	if !ok {
		return
	}
	s := a.s
	level := state.Level(s, idx)
	if level >= balance.MaxStructureLvl {
		a.say("The %s at (%d,%d) is already at level %d.", s.Structures[idx], p.X, p.Y, level)
		return
	}
	cost := balance.UpgradeCost(level)
	if s.Gold < cost {
		a.say("Upgrading to level %d costs %d gold; you have %d.", level+1, cost, s.Gold)
		return
	}
	a.useAP()
	s.Gold -= cost
	s.StructureLevels[idx] = level + 1
	a.say("The %s at (%d,%d) is now level %d. (%d AP left)", s.Structures[idx], p.X, p.Y, level+1, s.Ap)
}

func (a *applier) trade(v intent.Trade) {
	if !a.requireDay() {
		return
	}
	s := a.s
	_, okFrom := s.Resources[v.From]
	_, okTo := s.Resources[v.To]
	if !okFrom || !okTo || v.From == v.To {
		a.say("Cannot trade %s for %s.", v.From, v.To)
		return
	}
	if v.Amount < 1 {
		a.say("Trade at least 1 %s.", v.To)
		return
	}
	key := v.From + ">" + v.To
	rate := s.TradeRates[key]
	if rate < 1 {
		rate = a.defs.Game.TradeRate
		if rate < 1 {
			rate = state.DefaultTradeRate
		}
	}
	if most := s.Resources[v.From] / rate; v.Amount > most {
		a.say("At today's rate of %d:1 your %d %s buys at most %d %s.", rate, s.Resources[v.From], v.From, most, v.To)
		return
	}
	cost := v.Amount * rate
	s.Resources[v.From] -= cost
	s.Resources[v.To] += v.Amount
	s.TradeRates[key] = rate + 1
	a.say("Traded %d %s for %d %s. The rate is now %d:1.", cost, v.From, v.Amount, v.To, rate+1)
}

func (a *applier) collectLoot() {
	if !a.requireDay() {
		return
	}
	s := a.s
	if len(s.PendingLoot) == 0 {
		a.say("There is no loot to collect.")
		return
	}
	gold := 0
	got := map[string]int{}
	for _, l := range s.PendingLoot {
		gold += l.Gold
		for k, v := range l.Resources {
			got[k] += v
		}
	}
	s.Gold += gold
	var parts []string
	if gold > 0 {
		parts = append(parts, fmt.Sprintf("%d gold", gold))
	}
	for _, k := range types.ResourceKeys {
		if got[k] > 0 {
			s.Resources[k] += got[k]
			parts = append(parts, fmt.Sprintf("%d %s", got[k], k))
		}
	}
	s.PendingLoot = []types.Loot{}
	if len(parts) == 0 {
		a.say("The loot turns out to be worthless.")
		return
	}
	a.say("Collected %s.", strings.Join(parts, ", "))
}
