package simmap

import (
	"testing"

	"github.com/nathoo/nightkeep/types"
)

// blankMap returns a w×h map of plains with the base in the middle.
func blankMap(w, h int) *types.GameState {
	s := &types.GameState{
		MapW:       w,
		MapH:       h,
		Terrain:    make([]string, w*h),
		BasePos:    types.Vec2{X: w / 2, Y: h / 2},
		Discovered: map[int]bool{},
		Pois:       map[int]string{},
		RngSeed:    "map",
	}
	for i := range s.Terrain {
		s.Terrain[i] = types.TerrainPlains
	}
	return s
}

func TestIdxRoundTrip(t *testing.T) {
	for _, tc := range []struct{ x, y, w int }{{0, 0, 5}, {4, 0, 5}, {0, 3, 5}, {3, 7, 9}} {
		idx := Idx(tc.x, tc.y, tc.w)
		p := FromIndex(idx, tc.w)
		if p.X != tc.x || p.Y != tc.y {
			t.Errorf("FromIndex(Idx(%d,%d)) = %v", tc.x, tc.y, p)
		}
	}
}

func TestInBounds(t *testing.T) {
	s := blankMap(4, 3)
	tests := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{3, 2, true},
		{4, 0, false},
		{0, 3, false},
		{-1, 0, false},
		{0, -1, false},
	}
	for _, tt := range tests {
		if got := InBounds(s, tt.x, tt.y); got != tt.want {
			t.Errorf("InBounds(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestIsPassable(t *testing.T) {
	s := blankMap(3, 1)
	s.Terrain[1] = types.TerrainWater
	s.Terrain[2] = ""

	if !IsPassable(s, 0, 0) {
		t.Error("plains should be passable")
	}
	if IsPassable(s, 1, 0) {
		t.Error("water should not be passable")
	}
	if !IsPassable(s, 2, 0) {
		t.Error("ungenerated terrain should count as passable")
	}
	if IsPassable(s, 5, 0) {
		t.Error("out of bounds should not be passable")
	}
}

func TestEnsureTileGenerated_OnlyOnce(t *testing.T) {
	s := blankMap(3, 3)
	s.Terrain[0] = ""

	if !EnsureTileGenerated(s, 0, nil) {
		t.Fatal("expected tile to be generated")
	}
	if s.Terrain[0] == "" {
		t.Fatal("terrain still empty after generation")
	}
	cursor := s.RngState
	if EnsureTileGenerated(s, 0, nil) {
		t.Error("second call should not regenerate")
	}
	if s.RngState != cursor {
		t.Error("second call should not consume randomness")
	}
}

func TestFrontier_SortedAndAdjacent(t *testing.T) {
	s := blankMap(5, 5)
	center := Idx(2, 2, 5)
	s.Discovered[center] = true

	got := Frontier(s)
	want := []int{Idx(2, 1, 5), Idx(1, 2, 5), Idx(3, 2, 5), Idx(2, 3, 5)}
	if len(got) != len(want) {
		t.Fatalf("frontier = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("frontier = %v, want %v", got, want)
		}
	}
}

func TestDiscoverRadius(t *testing.T) {
	s := blankMap(7, 7)
	fresh := DiscoverRadius(s, types.Vec2{X: 3, Y: 3}, 1, nil)
	if len(fresh) != 5 {
		t.Fatalf("expected 5 tiles in radius 1, got %d", len(fresh))
	}
	again := DiscoverRadius(s, types.Vec2{X: 3, Y: 3}, 1, nil)
	if len(again) != 0 {
		t.Errorf("expected no fresh tiles on second pass, got %v", again)
	}
}

func TestPathOpenToBase(t *testing.T) {
	s := blankMap(5, 5)
	if !PathOpenToBase(s, nil) {
		t.Fatal("open plains should reach the base")
	}

	walls := map[int]bool{}
	for _, n := range Neighbors4(s, Idx(2, 2, 5)) {
		walls[n] = true
	}
	blocked := func(idx int) bool { return walls[idx] }
	if PathOpenToBase(s, blocked) {
		t.Error("a ring of walls should close the path")
	}

	delete(walls, Idx(2, 1, 5))
	if !PathOpenToBase(s, blocked) {
		t.Error("a gap in the ring should reopen the path")
	}
}

func TestPathOpenToBase_WaterMoat(t *testing.T) {
	s := blankMap(5, 5)
	for _, n := range Neighbors4(s, Idx(2, 2, 5)) {
		s.Terrain[n] = types.TerrainWater
	}
	if PathOpenToBase(s, nil) {
		t.Error("water on every side should close the path")
	}
}

func TestEnsureTileGenerated_PoiNeverOnBase(t *testing.T) {
	for i := 0; i < 50; i++ {
		s := blankMap(3, 3)
		s.RngSeed = string(rune('a' + i))
		base := Idx(1, 1, 3)
		s.Terrain[base] = ""
		EnsureTileGenerated(s, base, []types.EventDef{{ID: "shrine"}})
		if _, ok := s.Pois[base]; ok {
			t.Fatalf("seed %q placed a POI on the base", s.RngSeed)
		}
	}
}

func TestEnsureTileGenerated_PoiFollowsWeights(t *testing.T) {
	s := blankMap(60, 60)
	for i := range s.Terrain {
		s.Terrain[i] = ""
	}
	events := []types.EventDef{{ID: "rare", Weight: 1}, {ID: "common", Weight: 30}}
	for idx := range s.Terrain {
		EnsureTileGenerated(s, idx, events)
	}

	counts := map[string]int{}
	for _, id := range s.Pois {
		counts[id]++
	}
	if counts["common"] == 0 || counts["common"] <= 5*counts["rare"] {
		t.Errorf("counts = %v, the heavier event should dominate", counts)
	}
}
