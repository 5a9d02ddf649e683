// Package simmap holds the pure tile-map queries used by the simulation:
// index arithmetic, terrain lookup, lazy terrain generation, fog-of-war
// discovery and the base connectivity check.
package simmap

import (
	"sort"

	"github.com/nathoo/nightkeep/engine/rng"
	"github.com/nathoo/nightkeep/types"
)

// PoiChance is the percentage of generated tiles that carry a point of interest.
const PoiChance = 6

// Directions maps direction names to unit offsets.
var Directions = map[string]types.Vec2{
	"north": {X: 0, Y: -1},
	"south": {X: 0, Y: 1},
	"east":  {X: 1, Y: 0},
	"west":  {X: -1, Y: 0},
}

var offsets4 = []types.Vec2{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}}

// Idx converts a coordinate to a row-major tile index.
func Idx(x, y, w int) int {
	return y*w + x
}

// FromIndex converts a row-major tile index back to a coordinate.
func FromIndex(idx, w int) types.Vec2 {
	return types.Vec2{X: idx % w, Y: idx / w}
}

// InBounds reports whether the coordinate lies on the map.
func InBounds(s *types.GameState, x, y int) bool {
	return x >= 0 && y >= 0 && x < s.MapW && y < s.MapH
}

// IndexInBounds reports whether a tile index lies on the map.
func IndexInBounds(s *types.GameState, idx int) bool {
	return idx >= 0 && idx < s.MapW*s.MapH
}

// GetTerrain returns the terrain at (x, y), or "" when out of bounds or not
// yet generated.
func GetTerrain(s *types.GameState, x, y int) string {
	if !InBounds(s, x, y) {
		return ""
	}
	return s.Terrain[Idx(x, y, s.MapW)]
}

// PassableTerrain reports whether units can walk over a terrain kind.
// Ungenerated terrain counts as passable.
func PassableTerrain(terrain string) bool {
	switch terrain {
	case types.TerrainWater, types.TerrainMountain:
		return false
	default:
		return true
	}
}

// IsPassable reports whether the tile at (x, y) can be walked over.
func IsPassable(s *types.GameState, x, y int) bool {
	return InBounds(s, x, y) && PassableTerrain(GetTerrain(s, x, y))
}

// Buildable reports whether a terrain kind accepts structures.
func Buildable(terrain string) bool {
	return terrain != types.TerrainWater && terrain != types.TerrainMountain
}

// rollTerrain draws one terrain kind from the stream.
func rollTerrain(s *types.GameState) string {
	roll := rng.RollRange(s, 1, 100)
	switch {
	case roll <= 45:
		return types.TerrainPlains
	case roll <= 70:
		return types.TerrainForest
	case roll <= 85:
		return types.TerrainHills
	case roll <= 95:
		return types.TerrainWater
	default:
		return types.TerrainMountain
	}
}

// EnsureTileGenerated materializes the terrain of a tile if it has not been
// generated yet. poiEvents lists the events a point of interest may carry,
// drawn by weight; a POI is only rolled for passable tiles away from the
// base. Returns true when the tile was generated by this call.
func EnsureTileGenerated(s *types.GameState, idx int, poiEvents []types.EventDef) bool {
	if !IndexInBounds(s, idx) || s.Terrain[idx] != "" {
		return false
	}
	terrain := rollTerrain(s)
	s.Terrain[idx] = terrain
	if len(poiEvents) == 0 || !PassableTerrain(terrain) {
		return true
	}
	if idx == Idx(s.BasePos.X, s.BasePos.Y, s.MapW) {
		return true
	}
	if rng.Chance(s, PoiChance) {
		weights := make([]int, len(poiEvents))
		for i, ev := range poiEvents {
			weights[i] = max(1, ev.Weight)
		}
		s.Pois[idx] = poiEvents[rng.WeightedSelect(s, weights)].ID
	}
	return true
}

// Neighbors4 returns the in-bounds orthogonal neighbours of a tile index in
// north, east, south, west order.
func Neighbors4(s *types.GameState, idx int) []int {
	p := FromIndex(idx, s.MapW)
	out := make([]int, 0, 4)
	for _, o := range offsets4 {
		x, y := p.X+o.X, p.Y+o.Y
		if InBounds(s, x, y) {
			out = append(out, Idx(x, y, s.MapW))
		}
	}
	return out
}

// Frontier returns the undiscovered tiles adjacent to at least one discovered
// tile, sorted by index.
func Frontier(s *types.GameState) []int {
	seen := map[int]bool{}
	var out []int
	for idx := range s.Discovered {
		for _, n := range Neighbors4(s, idx) {
			if s.Discovered[n] || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

// DiscoverRadius marks every tile within Manhattan distance r of center as
// discovered, generating terrain as needed in row-major order. Returns the
// newly discovered indices in that order.
func DiscoverRadius(s *types.GameState, center types.Vec2, r int, poiEvents []types.EventDef) []int {
	var fresh []int
	for y := center.Y - r; y <= center.Y+r; y++ {
		for x := center.X - r; x <= center.X+r; x++ {
			if !InBounds(s, x, y) || abs(x-center.X)+abs(y-center.Y) > r {
				continue
			}
			idx := Idx(x, y, s.MapW)
			EnsureTileGenerated(s, idx, poiEvents)
			if !s.Discovered[idx] {
				s.Discovered[idx] = true
				fresh = append(fresh, idx)
			}
		}
	}
	return fresh
}

// PathOpenToBase reports whether an attacker could walk from some map edge
// to the base. blocked reports tiles closed by structures (walls).
func PathOpenToBase(s *types.GameState, blocked func(idx int) bool) bool {
	if s.MapW <= 0 || s.MapH <= 0 {
		return false
	}
	start := Idx(s.BasePos.X, s.BasePos.Y, s.MapW)
	visited := map[int]bool{start: true}
	queue := []int{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		p := FromIndex(cur, s.MapW)
		if p.X == 0 || p.Y == 0 || p.X == s.MapW-1 || p.Y == s.MapH-1 {
			return true
		}
		for _, n := range Neighbors4(s, cur) {
			if visited[n] {
				continue
			}
			visited[n] = true
			if !PassableTerrain(s.Terrain[n]) {
				continue
			}
			if blocked != nil && blocked(n) {
				continue
			}
			queue = append(queue, n)
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
