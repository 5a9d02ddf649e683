package engine

import (
	"reflect"
	"strings"
	"testing"

	"github.com/nathoo/nightkeep/engine/intent"
	"github.com/nathoo/nightkeep/engine/save"
	"github.com/nathoo/nightkeep/engine/simmap"
	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/types"
)

// testDefs builds a small keep: a 9x9 map, three buildings, one scout kind
// that any tower kills in a single shot and a boss for night 7.
func testDefs() *state.Defs {
	return &state.Defs{
		Game: types.GameDef{
			Title:          "Test Keep",
			MapW:           9,
			MapH:           9,
			ApMax:          3,
			Hp:             10,
			StartResources: map[string]int{"wood": 20, "stone": 10, "food": 5},
			Lesson:         "basics",
		},
		Buildings: map[string]types.BuildingDef{
			"farm":       {ID: "farm", Name: "Farm", Cost: map[string]int{"wood": 3}, Produces: map[string]int{"food": 2}},
			"wall":       {ID: "wall", Name: "Wall", Cost: map[string]int{"stone": 2}, BlocksPath: true},
			"auto_tower": {ID: "auto_tower", Name: "Arrow Tower", Cost: map[string]int{"wood": 5, "stone": 5}},
		},
		Enemies: map[string]types.EnemyDef{
			"scout":   {ID: "scout", Name: "Scout", Hp: 1, Damage: 1, Gold: 1, Distance: 3, MinDay: 1},
			"warlord": {ID: "warlord", Name: "Warlord", Hp: 3, Damage: 3, Gold: 10, Distance: 6, Boss: true, BossDay: 7, Words: []string{"warlord"}},
		},
		Heroes: map[string]types.HeroDef{
			"ranger": {ID: "ranger", Name: "Ranger", ApBonus: 1},
		},
		Research: map[string]types.ResearchDef{
			"masonry": {ID: "masonry", Name: "Masonry", Cost: 4, Days: 1, Effects: []types.Effect{
				{Type: "add_modifier", Params: map[string]any{"modifier": "storage", "amount": 10}},
			}},
		},
		Upgrades: map[string]types.UpgradeDef{
			"bellows": {ID: "bellows", Name: "Bellows", Cost: 3, Effects: []types.Effect{
				{Type: "add_modifier", Params: map[string]any{"modifier": "typing_damage", "amount": 1}},
			}},
		},
		Titles: map[string]types.TitleDef{
			"farmer": {ID: "farmer", Name: "the Farmer", Requires: []types.Condition{
				{Type: "has_building", Params: map[string]any{"building": "farm", "count": 2}},
			}},
		},
		Lessons: map[string]types.LessonDef{
			"basics": {ID: "basics", Words: []string{"spear", "spearhead", "shield", "arrow", "tower", "keep", "night", "moat"}},
			"home":   {ID: "home", Name: "Home Row", Words: []string{"ask", "dad", "lass", "flask"}},
		},
		Locales: map[string]types.LocaleDef{
			"en": {ID: "en", Name: "English"},
			"fr": {ID: "fr", Name: "Français"},
		},
		Events: map[string]types.EventDef{
			"shrine": {ID: "shrine", Text: "A shrine hums in the grass.", Choices: []types.ChoiceDef{
				{ID: "pray", Text: "Pray", Phrase: "light keep us",
					Effects: []types.Effect{{Type: "add_gold", Params: map[string]any{"amount": 5}}},
					Fail:    []types.Effect{{Type: "damage", Params: map[string]any{"amount": 1}}},
				},
				{ID: "leave", Text: "Walk on"},
			}},
		},
	}
}

func newTestEngine() *Engine {
	return New(testDefs(), state.Options{Seed: "test"})
}

// openField turns every generated tile into plains so paths and builds do
// not depend on the rolled terrain.
func openField(e *Engine) {
	for i, t := range e.State.Terrain {
		if t != "" {
			e.State.Terrain[i] = types.TerrainPlains
		}
	}
}

func idx(e *Engine, x, y int) int {
	return simmap.Idx(x, y, e.State.MapW)
}

func outputContains(output []string, substr string) bool {
	for _, line := range output {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

func TestApply_DoesNotMutatePrior(t *testing.T) {
	defs := testDefs()
	prior := state.New(defs, state.Options{Seed: "prior"})
	before := save.Fingerprint(prior)

	r := Apply(defs, prior, intent.Explore{})

	if save.Fingerprint(prior) != before {
		t.Fatal("Apply modified its input state")
	}
	if r.State == prior {
		t.Fatal("Apply returned the prior state pointer")
	}
	if r.State.Threat != 1 {
		t.Errorf("threat = %d, want 1 after explore", r.State.Threat)
	}
}

func TestApply_NilIntent(t *testing.T) {
	defs := testDefs()
	r := Apply(defs, state.New(defs, state.Options{}), nil)
	if !outputContains(r.Events, "Nothing to do") {
		t.Errorf("events = %v", r.Events)
	}
}

func TestApply_UnknownIntents(t *testing.T) {
	defs := testDefs()
	s := state.New(defs, state.Options{})

	tests := []struct {
		name   string
		in     intent.Intent
		events []string
	}{
		{"unknown kind", intent.Unknown{Name: "dance"}, []string{"Unknown intent: dance"}},
		{"ui passthrough", intent.Unknown{Name: "ui_flash"}, []string{}},
		{"ui intent", intent.UI{Name: "ui_toggle_map"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Apply(defs, s, tt.in)
			if !reflect.DeepEqual(r.Events, tt.events) {
				t.Errorf("events = %v, want %v", r.Events, tt.events)
			}
			if save.Fingerprint(r.State) != save.Fingerprint(s) {
				t.Error("state changed")
			}
		})
	}
}

func TestReplay_Deterministic(t *testing.T) {
	script := []string{
		"explore", "explore", "gather wood 4", "end",
		"wait", "wait", "spear", "wait", "wait", "wait", "wait", "wait", "wait",
		"status", "explore",
	}
	opts := state.Options{Seed: "replay"}

	s1, ev1 := Replay(testDefs(), opts, script)
	s2, ev2 := Replay(testDefs(), opts, script)

	if save.Fingerprint(s1) != save.Fingerprint(s2) {
		t.Fatal("same seed and script produced different states")
	}
	if !reflect.DeepEqual(s1, s2) {
		t.Fatal("states differ structurally")
	}
	if !reflect.DeepEqual(ev1, ev2) {
		t.Fatal("event streams differ")
	}

	s3, _ := Replay(testDefs(), state.Options{Seed: "another seed"}, script)
	if save.Fingerprint(s1) == save.Fingerprint(s3) {
		t.Error("a different seed should produce a different game")
	}
}

func TestStep_InvariantsHoldThroughAGame(t *testing.T) {
	e := newTestEngine()
	script := []string{
		"gather wood 5", "explore", "build farm", "harvest", "end",
	}
	for i := 0; i < 40; i++ {
		script = append(script, "wait", "spear", "arrow", "xyzzy")
	}
	script = append(script, "collect", "trade wood stone 1", "map", "restart", "explore")

	for _, line := range script {
		e.Step(line)
		if err := state.Check(e.State); err != nil {
			t.Fatalf("after %q: %v", line, err)
		}
	}
}

func TestStep_APGuard(t *testing.T) {
	e := newTestEngine()

	for i := 0; i < 3; i++ {
		e.Step("gather wood 1")
	}
	if e.State.Ap != 0 || e.State.Resources["wood"] != 23 {
		t.Fatalf("ap = %d wood = %d, want 0 and 23", e.State.Ap, e.State.Resources["wood"])
	}

	before := save.Fingerprint(e.State)
	r := e.Step("gather wood 1")
	if !outputContains(r.Events, "No action points left") {
		t.Errorf("expected AP rejection, got %v", r.Events)
	}
	if save.Fingerprint(e.State) != before {
		t.Error("a rejected action changed the state")
	}
}

func TestStep_InvalidActionKeepsAP(t *testing.T) {
	e := newTestEngine()
	r := e.Step("gather wood 11")
	if e.State.Ap != 3 || e.State.Resources["wood"] != 20 {
		t.Errorf("ap = %d wood = %d: validation should run before AP is spent", e.State.Ap, e.State.Resources["wood"])
	}
	if !outputContains(r.Events, "between 1 and 10") {
		t.Errorf("events = %v", r.Events)
	}
}

func TestStep_BuildValidation(t *testing.T) {
	tests := []struct {
		name  string
		setup func(e *Engine)
		line  string
		want  string
	}{
		{"undiscovered", nil, "build farm 0 0", "not discovered yet"},
		{"base tile", nil, "build farm 4 4", "keep itself"},
		{"out of bounds", nil, "build farm 20 1", "outside the map"},
		{"water", func(e *Engine) { e.State.Terrain[idx(e, 4, 3)] = types.TerrainWater }, "build farm 4 3", "Cannot build on water"},
		{"occupied", func(e *Engine) { e.State.Structures[idx(e, 4, 3)] = "wall" }, "build farm 4 3", "already holds"},
		{"unaffordable", func(e *Engine) { e.State.Resources["wood"] = 2 }, "build farm 4 3", "Not enough resources"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			openField(e)
			if tt.setup != nil {
				tt.setup(e)
			}
			before := save.Fingerprint(e.State)
			r := e.Step(tt.line)
			if !outputContains(r.Events, tt.want) {
				t.Errorf("events = %v, want %q", r.Events, tt.want)
			}
			if save.Fingerprint(e.State) != before {
				t.Error("a rejected build changed the state")
			}
		})
	}
}

func TestStep_Build(t *testing.T) {
	e := newTestEngine()
	openField(e)

	e.Step("build farm 4 3")
	i := idx(e, 4, 3)
	if e.State.Structures[i] != "farm" || e.State.StructureLevels[i] != 1 {
		t.Fatalf("structure = %q level %d", e.State.Structures[i], e.State.StructureLevels[i])
	}
	if e.State.Resources["wood"] != 17 || e.State.Ap != 2 || e.State.BuildingCounts["farm"] != 1 {
		t.Errorf("wood %d ap %d count %d", e.State.Resources["wood"], e.State.Ap, e.State.BuildingCounts["farm"])
	}

	// At the cursor.
	e.Step("cursor 3 4")
	e.Step("build wall")
	if e.State.Structures[idx(e, 3, 4)] != "wall" {
		t.Errorf("build without coordinates should use the cursor")
	}
}

func TestStep_DemolishAndUpgrade(t *testing.T) {
	e := newTestEngine()
	openField(e)
	e.Step("build farm 4 3")

	r := e.Step("upgrade 4 3")
	if !outputContains(r.Events, "costs 5 gold") {
		t.Errorf("events = %v", r.Events)
	}
	e.State.Gold = 10
	e.Step("upgrade 4 3")
	if e.State.StructureLevels[idx(e, 4, 3)] != 2 || e.State.Gold != 5 {
		t.Errorf("level %d gold %d, want 2 and 5", e.State.StructureLevels[idx(e, 4, 3)], e.State.Gold)
	}

	e.Step("demolish 4 3")
	if _, ok := e.State.Structures[idx(e, 4, 3)]; ok {
		t.Fatal("structure still standing")
	}
	if e.State.Resources["wood"] != 18 {
		t.Errorf("wood = %d, want 18 after a half refund", e.State.Resources["wood"])
	}
	if _, ok := e.State.BuildingCounts["farm"]; ok {
		t.Errorf("building count should be cleared: %v", e.State.BuildingCounts)
	}
}

func TestStep_Explore(t *testing.T) {
	e := newTestEngine()
	discovered := len(e.State.Discovered)

	e.Step("explore")

	if len(e.State.Discovered) != discovered+1 {
		t.Errorf("discovered %d tiles, want %d", len(e.State.Discovered), discovered+1)
	}
	if e.State.Threat != 1 || e.State.Counters["explored"] != 1 || e.State.Ap != 2 {
		t.Errorf("threat %d explored %d ap %d", e.State.Threat, e.State.Counters["explored"], e.State.Ap)
	}
}

func TestStep_GatherAtCursor(t *testing.T) {
	e := newTestEngine()
	e.State.Terrain[idx(e, 4, 3)] = types.TerrainForest
	e.Step("cursor 4 3")
	e.Step("take")
	if e.State.Resources["wood"] != 22 {
		t.Errorf("wood = %d, want 22", e.State.Resources["wood"])
	}

	e.Step("cursor 0 0")
	r := e.Step("take")
	if !outputContains(r.Events, "not discovered yet") || e.State.Ap != 2 {
		t.Errorf("events %v ap %d", r.Events, e.State.Ap)
	}
}

func TestStep_Trade(t *testing.T) {
	e := newTestEngine()

	e.Step("trade wood stone 2")
	if e.State.Resources["wood"] != 16 || e.State.Resources["stone"] != 12 {
		t.Fatalf("wood %d stone %d after first trade", e.State.Resources["wood"], e.State.Resources["stone"])
	}
	e.Step("trade wood stone 2")
	if e.State.Resources["wood"] != 10 || e.State.TradeRates["wood>stone"] != 4 {
		t.Errorf("wood %d rate %d: each trade should raise the rate", e.State.Resources["wood"], e.State.TradeRates["wood>stone"])
	}
	if e.State.Ap != 3 {
		t.Errorf("trading should not cost AP")
	}
}

func TestStep_TradeBeyondMeans(t *testing.T) {
	tests := []struct {
		name   string
		amount string
	}{
		{"one too many", "11"},
		{"overflowing amount", "9223372036854775807"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			wood, stone := e.State.Resources["wood"], e.State.Resources["stone"]

			r := e.Step("trade wood stone " + tt.amount)

			if e.State.Resources["wood"] != wood || e.State.Resources["stone"] != stone {
				t.Errorf("wood %d stone %d, want %d %d unchanged",
					e.State.Resources["wood"], e.State.Resources["stone"], wood, stone)
			}
			if !outputContains(r.Events, "buys at most 10 stone") {
				t.Errorf("events = %v", r.Events)
			}
			if err := state.Check(e.State); err != nil {
				t.Errorf("invariants broken: %v", err)
			}
		})
	}
}

func TestStep_CursorHugeSteps(t *testing.T) {
	tests := []struct {
		line string
		want types.Vec2
	}{
		{"cursor e 9223372036854775807", types.Vec2{X: 8, Y: 4}},
		{"cursor w 9223372036854775807", types.Vec2{X: 0, Y: 4}},
		{"cursor s 4611686018427387904", types.Vec2{X: 4, Y: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			e := newTestEngine()
			e.Step(tt.line)
			if e.State.CursorPos != tt.want {
				t.Errorf("cursor = %v, want %v", e.State.CursorPos, tt.want)
			}
		})
	}
}

func TestStep_Navigation(t *testing.T) {
	e := newTestEngine()
	e.State.Terrain[idx(e, 4, 3)] = types.TerrainPlains
	e.State.Terrain[idx(e, 4, 5)] = types.TerrainWater

	e.Step("n")
	if e.State.PlayerPos != (types.Vec2{X: 4, Y: 3}) || e.State.PlayerFacing != "north" {
		t.Errorf("player at %v facing %s", e.State.PlayerPos, e.State.PlayerFacing)
	}
	e.Step("s")
	r := e.Step("s")
	if e.State.PlayerPos != (types.Vec2{X: 4, Y: 4}) || e.State.PlayerFacing != "south" {
		t.Errorf("water should block: player at %v facing %s", e.State.PlayerPos, e.State.PlayerFacing)
	}
	if !outputContains(r.Events, "water blocks") {
		t.Errorf("events = %v", r.Events)
	}

	e.Step("cursor 99 99")
	if e.State.CursorPos != (types.Vec2{X: 8, Y: 8}) {
		t.Errorf("cursor = %v, want clamped to (8,8)", e.State.CursorPos)
	}
	e.Step("cursor w 20")
	if e.State.CursorPos != (types.Vec2{X: 0, Y: 8}) {
		t.Errorf("cursor = %v, want (0,8)", e.State.CursorPos)
	}
}

func TestStep_ReadOnlyCommands(t *testing.T) {
	e := newTestEngine()
	before := save.Fingerprint(e.State)

	for _, line := range []string{"help", "help build", "status", "map", "inspect", "look 0 0"} {
		r := e.Step(line)
		if len(r.Events) == 0 {
			t.Errorf("%q produced no output", line)
		}
	}
	if save.Fingerprint(e.State) != before {
		t.Error("read-only commands changed the state")
	}

	r := e.Step("map")
	if len(r.Events) != 10 || r.Events[4][4] != '@' {
		t.Errorf("map = %q", r.Events)
	}
}

func TestStep_SaveLoadRequests(t *testing.T) {
	e := newTestEngine()
	before := save.Fingerprint(e.State)

	r := e.Step("save slot1")
	if r.Request == nil || *r.Request != (types.Request{Kind: RequestSave, Reason: "slot1"}) {
		t.Errorf("request = %+v", r.Request)
	}
	r = e.Step("load")
	if r.Request == nil || r.Request.Kind != RequestLoad || r.Request.Reason != intent.DefaultSlot {
		t.Errorf("request = %+v", r.Request)
	}
	if save.Fingerprint(e.State) != before {
		t.Error("save and load should not change the state")
	}
}

func TestStep_Progression(t *testing.T) {
	e := newTestEngine()

	r := e.Step("research masonry")
	if !outputContains(r.Events, "costs 4 gold") {
		t.Errorf("events = %v", r.Events)
	}
	e.State.Gold = 10
	e.Step("research masonry")
	if e.State.ActiveResearch != "masonry" || e.State.Gold != 6 {
		t.Fatalf("active %q gold %d", e.State.ActiveResearch, e.State.Gold)
	}
	e.Step("research cancel")
	if e.State.ActiveResearch != "" || e.State.Gold != 8 {
		t.Errorf("active %q gold %d after a half refund", e.State.ActiveResearch, e.State.Gold)
	}

	e.Step("buy bellows")
	if !e.State.PurchasedUpgrades["bellows"] || e.State.Modifiers["typing_damage"] != 1 || e.State.Gold != 5 {
		t.Errorf("upgrade not applied: %v %v gold %d", e.State.PurchasedUpgrades, e.State.Modifiers, e.State.Gold)
	}
	r = e.Step("buy bellows")
	if !outputContains(r.Events, "already own") {
		t.Errorf("events = %v", r.Events)
	}

	e.Step("hero ranger")
	if e.State.HeroID != "ranger" || e.State.ApMax != 4 {
		t.Errorf("hero %q apmax %d", e.State.HeroID, e.State.ApMax)
	}

	r = e.Step("title farmer")
	if !outputContains(r.Events, "locked") || e.State.EquippedTitle != "" {
		t.Errorf("locked title equipped: %v", r.Events)
	}
	e.State.UnlockedTitles["farmer"] = true
	e.Step("title farmer")
	if e.State.EquippedTitle != "farmer" {
		t.Errorf("title = %q", e.State.EquippedTitle)
	}

	e.Step("lang fr")
	e.Step("lesson home")
	e.Step("target weakest")
	if e.State.Locale != "fr" || e.State.LessonID != "home" || e.State.TargetingMode != "weakest" {
		t.Errorf("locale %q lesson %q targeting %q", e.State.Locale, e.State.LessonID, e.State.TargetingMode)
	}
}

func TestStep_Seed(t *testing.T) {
	e := newTestEngine()
	e.Step("explore")
	e.Step("seed  hello   world ")
	if e.State.RngSeed != "hello   world" || e.State.RngState != 0 {
		t.Errorf("seed %q state %d", e.State.RngSeed, e.State.RngState)
	}
}

func TestStep_Choice(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		wantHp int
		gold   int
	}{
		{"phrase typed", "choice pray Light keep us", 10, 5},
		{"phrase fumbled", "choice pray light keeps us", 9, 0},
		{"no phrase", "choice leave", 10, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			e.State.PendingEvent = "shrine"
			e.Step(tt.line)
			if e.State.PendingEvent != "" {
				t.Error("event should be resolved")
			}
			if e.State.Hp != tt.wantHp || e.State.Gold != tt.gold {
				t.Errorf("hp %d gold %d, want %d and %d", e.State.Hp, e.State.Gold, tt.wantHp, tt.gold)
			}
		})
	}

	e := newTestEngine()
	r := e.Step("choice pray")
	if !outputContains(r.Events, "no event") {
		t.Errorf("events = %v", r.Events)
	}
	e.State.PendingEvent = "shrine"
	r = e.Step("choice dance")
	if !outputContains(r.Events, "pray, leave") || e.State.PendingEvent != "shrine" {
		t.Errorf("unknown choice should list options and keep the event: %v", r.Events)
	}
}

func TestStep_CollectLoot(t *testing.T) {
	e := newTestEngine()
	e.State.PendingLoot = []types.Loot{
		{Source: "scout", Gold: 2, Resources: map[string]int{"stone": 1}},
		{Source: "scout", Resources: map[string]int{"stone": 2}},
	}
	r := e.Step("collect")
	if e.State.Gold != 2 || e.State.Resources["stone"] != 13 || len(e.State.PendingLoot) != 0 {
		t.Errorf("gold %d stone %d loot %v", e.State.Gold, e.State.Resources["stone"], e.State.PendingLoot)
	}
	if !outputContains(r.Events, "2 gold, 3 stone") {
		t.Errorf("events = %v", r.Events)
	}
}

func TestStep_ParseErrorLeavesState(t *testing.T) {
	e := newTestEngine()
	before := save.Fingerprint(e.State)
	r := e.Step("build")
	if len(r.Events) != 1 || !strings.HasPrefix(r.Events[0], "Usage: build") {
		t.Errorf("events = %v", r.Events)
	}
	r = e.Step("dance")
	if !outputContains(r.Events, "Unknown command: dance") {
		t.Errorf("events = %v", r.Events)
	}
	if save.Fingerprint(e.State) != before {
		t.Error("parse errors changed the state")
	}
}

func TestRestart(t *testing.T) {
	e := newTestEngine()
	fresh := save.Fingerprint(e.State)
	e.Step("explore")
	e.Step("gather wood 2")
	e.State.Phase = types.PhaseGameOver

	r := e.Step("restart")
	if save.Fingerprint(e.State) != fresh {
		t.Error("restart should rebuild the same day-1 state from the seed")
	}
	if !outputContains(r.Events, "Day 1") {
		t.Errorf("events = %v", r.Events)
	}
}

func TestEngine_Tick(t *testing.T) {
	e := newTestEngine()
	e.State.Threat = 1
	prior := e.State
	e.Tick(120)
	if e.State.Threat != 0 {
		t.Errorf("threat = %d, want 0", e.State.Threat)
	}
	if prior.Threat != 1 {
		t.Error("Tick modified the previous state")
	}
}

func TestRoundTrip_MidNight(t *testing.T) {
	e := newTestEngine()
	openField(e)
	e.Step("explore")
	e.Step("end")
	e.Step("wait")
	e.State.Enemies[0].Effects[statusFrozen] = 2
	e.State.PendingLoot = append(e.State.PendingLoot, types.Loot{Source: "scout", Resources: map[string]int{}})

	data, err := save.Serialize(e.State, e.Defs)
	if err != nil {
		t.Fatal(err)
	}
	got, err := save.Deserialize(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, e.State) {
		t.Errorf("round trip changed the state:\n got %+v\nwant %+v", got, e.State)
	}
	again, err := save.Serialize(got, e.Defs)
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != string(data) {
		t.Error("serialize is not idempotent across a round trip")
	}
}
