package engine

import (
	"fmt"
	"strings"

	"github.com/nathoo/nightkeep/engine/balance"
	"github.com/nathoo/nightkeep/engine/intent"
	"github.com/nathoo/nightkeep/engine/parser"
	"github.com/nathoo/nightkeep/engine/simmap"
	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/types"
)

func (a *applier) help(v intent.Help) {
	if v.Topic != "" {
		if u := parser.Usage(v.Topic); u != "" {
			a.say("Usage: %s", u)
			return
		}
		a.say("No help for '%s'.", v.Topic)
		return
	}
	a.say("Commands:")
	for _, verb := range parser.Verbs() {
		a.say("  %s", parser.Usage(verb))
	}
	if a.s.Phase == types.PhaseNight {
		a.say("At night, type an enemy's word to strike it.")
	}
}

func (a *applier) status() {
	s := a.s
	a.say("Day %d (%s). HP %d/%d, AP %d/%d, threat %d.", s.Day, s.Phase, s.Hp, s.HpMax, s.Ap, s.ApMax, s.Threat)
	a.say("Gold %d. Wood %d, stone %d, food %d.", s.Gold, s.Resources[types.ResourceWood], s.Resources[types.ResourceStone], s.Resources[types.ResourceFood])
	if len(s.BuildingCounts) > 0 {
		var parts []string
		for _, k := range state.SortedKeys(s.BuildingCounts) {
			parts = append(parts, fmt.Sprintf("%s x%d", k, s.BuildingCounts[k]))
		}
		a.say("Buildings: %s.", strings.Join(parts, ", "))
	}
	if s.ActiveResearch != "" {
		a.say("Researching %s (%d days in).", s.ActiveResearch, s.ResearchProgress)
	}
	if s.HeroID != "" {
		a.say("Hero: %s.", s.HeroID)
	}
	if s.EquippedTitle != "" {
		a.say("Title: %s.", s.EquippedTitle)
	}
	if s.Phase == types.PhaseNight {
		a.say("Wave: %d to come, %d on the field.", s.NightSpawnRemaining, len(s.Enemies))
		for _, e := range s.Enemies {
			a.say("  '%s' %s hp %d/%d, distance %d", e.Word, e.Kind, e.Hp, e.MaxHp, e.Dist)
		}
	}
	if s.PendingEvent != "" {
		a.say("An event awaits your choice: %s.", s.PendingEvent)
	}
	if len(s.PendingLoot) > 0 {
		a.say("%d loot bundles wait at the keep.", len(s.PendingLoot))
	}
}

var terrainGlyph = map[string]byte{
	types.TerrainPlains:   '.',
	types.TerrainForest:   'f',
	types.TerrainHills:    'h',
	types.TerrainWater:    '~',
	types.TerrainMountain: '^',
}

// drawMap renders the discovered map, one line per row. Structures show
// their first letter in upper case.
func (a *applier) drawMap() {
	s := a.s
	for y := 0; y < s.MapH; y++ {
		row := make([]byte, s.MapW)
		for x := 0; x < s.MapW; x++ {
			idx := simmap.Idx(x, y, s.MapW)
			p := types.Vec2{X: x, Y: y}
			switch {
			case p == s.PlayerPos:
				row[x] = '@'
			case p == s.BasePos:
				row[x] = 'K'
			case !s.Discovered[idx]:
				row[x] = ' '
			case s.Structures[idx] != "":
				if strings.HasPrefix(s.Structures[idx], AutoPrefix) {
					row[x] = 'T'
				} else {
					row[x] = strings.ToUpper(s.Structures[idx][:1])[0]
				}
			case s.Pois[idx] != "":
				row[x] = '!'
			default:
				if g, ok := terrainGlyph[s.Terrain[idx]]; ok {
					row[x] = g
				} else {
					row[x] = '?'
				}
			}
		}
		a.emit(string(row))
	}
	a.say("@ you, K keep, T tower, ! point of interest, . plains, f forest, h hills, ~ water, ^ mountain")
}

func (a *applier) inspect(v intent.InspectTile) {
	s := a.s
	p := a.tile(v.At)
	if !simmap.InBounds(s, p.X, p.Y) {
		a.say("(%d,%d) is outside the map.", p.X, p.Y)
		return
	}
	idx := simmap.Idx(p.X, p.Y, s.MapW)
	if !s.Discovered[idx] {
		a.say("(%d,%d): unexplored.", p.X, p.Y)
		return
	}
	desc := s.Terrain[idx]
	if p == s.BasePos {
		desc += ", the keep"
	}
	if kind := s.Structures[idx]; kind != "" {
		desc += fmt.Sprintf(", %s level %d", kind, state.Level(s, idx))
	}
	if _, ok := s.Pois[idx]; ok {
		desc += ", something of interest"
	}
	a.say("(%d,%d): %s.", p.X, p.Y, desc)
}

func (a *applier) cursorMove(v intent.CursorMove) {
	d, ok := simmap.Directions[v.Dir]
	if !ok {
		a.say("Unknown direction: %s.", v.Dir)
		return
	}
	steps := min(max(1, v.Steps), max(a.s.MapW, a.s.MapH))
	c := a.s.CursorPos
	a.placeCursor(c.X+d.X*steps, c.Y+d.Y*steps)
}

func (a *applier) cursorSet(v intent.CursorSet) {
	a.placeCursor(v.X, v.Y)
}

// placeCursor moves the cursor, clamped to the map.
func (a *applier) placeCursor(x, y int) {
	s := a.s
	s.CursorPos = types.Vec2{
		X: min(max(x, 0), s.MapW-1),
		Y: min(max(y, 0), s.MapH-1),
	}
	a.say("Cursor at (%d,%d).", s.CursorPos.X, s.CursorPos.Y)
}

func (a *applier) movePlayer(v intent.MovePlayer) {
	s := a.s
	d, ok := simmap.Directions[v.Dir]
	if !ok {
		a.say("Unknown direction: %s.", v.Dir)
		return
	}
	s.PlayerFacing = v.Dir
	to := types.Vec2{X: s.PlayerPos.X + d.X, Y: s.PlayerPos.Y + d.Y}
	if !simmap.InBounds(s, to.X, to.Y) {
		a.say("You face %s, but the map ends there.", v.Dir)
		return
	}
	idx := simmap.Idx(to.X, to.Y, s.MapW)
	simmap.EnsureTileGenerated(s, idx, state.PoiEvents(a.defs))
	if !simmap.PassableTerrain(s.Terrain[idx]) {
		s.Discovered[idx] = true
		a.say("You face %s. The %s blocks your way.", v.Dir, s.Terrain[idx])
		return
	}
	s.PlayerPos = to
	fresh := simmap.DiscoverRadius(s, to, balance.FogRadius, state.PoiEvents(a.defs))
	if len(fresh) > 0 {
		a.say("You walk %s to (%d,%d) and chart %d new tiles.", v.Dir, to.X, to.Y, len(fresh))
	} else {
		a.say("You walk %s to (%d,%d).", v.Dir, to.X, to.Y)
	}
	a.discoverPoi(idx)
}
