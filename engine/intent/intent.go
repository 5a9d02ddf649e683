// Package intent defines the structured player commands consumed by the
// engine. Each command kind is its own struct; the engine pattern-matches on
// the concrete type. Wire converts to and from the flat {kind, params} form
// used by hosts that synthesize intents directly.
package intent

import "strings"

// Kind is the canonical tag of an intent.
type Kind string

const (
	KindHelp           Kind = "help"
	KindStatus         Kind = "status"
	KindGather         Kind = "gather"
	KindGatherAtCursor Kind = "gather_at_cursor"
	KindBuild          Kind = "build"
	KindExplore        Kind = "explore"
	KindDemolish       Kind = "demolish"
	KindUpgrade        Kind = "upgrade"
	KindEnd            Kind = "end"
	KindWait           Kind = "wait"
	KindDefend         Kind = "defend_input"
	KindRestart        Kind = "restart"
	KindNew            Kind = "new"
	KindSave           Kind = "save"
	KindLoad           Kind = "load"
	KindSeed           Kind = "seed"
	KindLesson         Kind = "lesson"
	KindPractice       Kind = "practice"
	KindCursorMove     Kind = "cursor_move"
	KindCursorSet      Kind = "cursor_set"
	KindMovePlayer     Kind = "move_player"
	KindInspectTile    Kind = "inspect_tile"
	KindMap            Kind = "map"
	KindResearchStart  Kind = "research_start"
	KindResearchCancel Kind = "research_cancel"
	KindBuyUpgrade     Kind = "buy_upgrade"
	KindTrade          Kind = "trade"
	KindCollectLoot    Kind = "collect_loot"
	KindHeroSelect     Kind = "hero_select"
	KindLocaleSet      Kind = "locale_set"
	KindTitleEquip     Kind = "title_equip"
	KindTargetMode     Kind = "target_mode"
	KindChoice         Kind = "choice"
)

// UIPrefix marks host-only feedback kinds the engine passes through.
const UIPrefix = "ui_"

// DefaultSlot is the save slot used when none is named.
const DefaultSlot = "quicksave"

// TargetModes lists the accepted auto-tower targeting modes.
var TargetModes = []string{"first", "last", "weakest", "strongest", "closest"}

// Intent is a validated player command.
type Intent interface {
	Kind() Kind
}

// Pos is an optional tile coordinate. Set is false when the command
// targets the cursor instead.
type Pos struct {
	X, Y int
	Set  bool
}

// At returns a set position.
func At(x, y int) Pos { return Pos{X: x, Y: y, Set: true} }

type (
	Help struct{ Topic string }
	Status struct{}
	Gather struct {
		Resource string
		Amount   int
	}
	GatherAtCursor struct{}
	Build          struct {
		Building string
		At       Pos
	}
	Explore  struct{}
	Demolish struct{ At Pos }
	Upgrade  struct{ At Pos }
	End      struct{}
	Wait     struct{}
	Defend   struct{ Text string }
	Restart  struct{}
	New      struct{}
	Save     struct{ Slot string }
	Load     struct{ Slot string }
	Seed     struct{ Text string }
	Lesson   struct{ ID string }

	// Practice sets practice mode; Toggle flips it instead.
	Practice struct {
		On     bool
		Toggle bool
	}

	CursorMove struct {
		Dir   string
		Steps int
	}
	CursorSet      struct{ X, Y int }
	MovePlayer     struct{ Dir string }
	InspectTile    struct{ At Pos }
	Map            struct{}
	ResearchStart  struct{ ID string }
	ResearchCancel struct{}
	BuyUpgrade     struct{ ID string }
	Trade          struct {
		From, To string
		Amount   int
	}
	CollectLoot struct{}
	HeroSelect  struct{ ID string }
	LocaleSet   struct{ ID string }
	TitleEquip  struct{ ID string }
	TargetMode  struct{ Mode string }
	Choice      struct {
		ID   string
		Text string
	}

	// UI is a host-side feedback intent; the engine treats it as a no-op.
	UI struct{ Name string }

	// Unknown carries a kind the engine does not recognize.
	Unknown struct {
		Name   string
		Params map[string]any
	}
)

func (Help) Kind() Kind           { return KindHelp }
func (Status) Kind() Kind         { return KindStatus }
func (Gather) Kind() Kind         { return KindGather }
func (GatherAtCursor) Kind() Kind { return KindGatherAtCursor }
func (Build) Kind() Kind          { return KindBuild }
func (Explore) Kind() Kind        { return KindExplore }
func (Demolish) Kind() Kind       { return KindDemolish }
func (Upgrade) Kind() Kind        { return KindUpgrade }
func (End) Kind() Kind            { return KindEnd }
func (Wait) Kind() Kind           { return KindWait }
func (Defend) Kind() Kind         { return KindDefend }
func (Restart) Kind() Kind        { return KindRestart }
func (New) Kind() Kind            { return KindNew }
func (Save) Kind() Kind           { return KindSave }
func (Load) Kind() Kind           { return KindLoad }
func (Seed) Kind() Kind           { return KindSeed }
func (Lesson) Kind() Kind         { return KindLesson }
func (Practice) Kind() Kind       { return KindPractice }
func (CursorMove) Kind() Kind     { return KindCursorMove }
func (CursorSet) Kind() Kind      { return KindCursorSet }
func (MovePlayer) Kind() Kind     { return KindMovePlayer }
func (InspectTile) Kind() Kind    { return KindInspectTile }
func (Map) Kind() Kind            { return KindMap }
func (ResearchStart) Kind() Kind  { return KindResearchStart }
func (ResearchCancel) Kind() Kind { return KindResearchCancel }
func (BuyUpgrade) Kind() Kind     { return KindBuyUpgrade }
func (Trade) Kind() Kind          { return KindTrade }
func (CollectLoot) Kind() Kind    { return KindCollectLoot }
func (HeroSelect) Kind() Kind     { return KindHeroSelect }
func (LocaleSet) Kind() Kind      { return KindLocaleSet }
func (TitleEquip) Kind() Kind     { return KindTitleEquip }
func (TargetMode) Kind() Kind     { return KindTargetMode }
func (Choice) Kind() Kind         { return KindChoice }
func (u UI) Kind() Kind           { return Kind(u.Name) }
func (u Unknown) Kind() Kind      { return Kind(u.Name) }

// IsUI reports whether a kind name is a UI passthrough.
func IsUI(kind string) bool {
	return strings.HasPrefix(kind, UIPrefix)
}

// ReadOnly reports whether an intent never changes game state. Read-only
// intents are accepted in every phase.
func ReadOnly(in Intent) bool {
	switch in.(type) {
	case Help, Status, Map, InspectTile, Save, Load, UI:
		return true
	}
	return false
}
