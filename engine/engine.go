// Package engine is the intent-application state machine. Apply takes a
// prior state and one intent and returns a new state, the events produced
// and an optional host request; the prior state is never modified. Engine
// wraps Apply into a session that owns the current state and accepts raw
// command lines.
package engine

import (
	"errors"
	"fmt"

	"github.com/nathoo/nightkeep/engine/intent"
	"github.com/nathoo/nightkeep/engine/parser"
	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/engine/tick"
	"github.com/nathoo/nightkeep/engine/words"
	"github.com/nathoo/nightkeep/types"
)

// Request kinds and reasons.
const (
	RequestSave     = "save"
	RequestLoad     = "load"
	RequestAutosave = "autosave"

	ReasonNight = "night"
	ReasonDawn  = "dawn"
)

// applier carries one Apply call: the working copy and what it produced.
type applier struct {
	defs   *state.Defs
	s      *types.GameState
	events []string
	req    *types.Request
}

func (a *applier) say(format string, args ...any) {
	a.events = append(a.events, fmt.Sprintf(format, args...))
}

func (a *applier) emit(lines ...string) {
	a.events = append(a.events, lines...)
}

func (a *applier) request(kind, reason string) {
	a.req = &types.Request{Kind: kind, Reason: reason}
}

func (a *applier) result() types.Result {
	return types.Result{State: a.s, Events: a.events, Request: a.req}
}

// Apply applies one intent to a copy of prior. It never panics on game
// input: invalid commands leave the state unchanged apart from any action
// point already spent, and report why through an event.
func Apply(defs *state.Defs, prior *types.GameState, in intent.Intent) types.Result {
	a := &applier{defs: defs, s: state.Clone(prior), events: []string{}}
	if in == nil {
		a.say("Nothing to do.")
		return a.result()
	}

	switch in.(type) {
	case intent.Restart, intent.New:
		return restart(defs, prior, in)
	}

	if over(a.s) && !intent.ReadOnly(in) {
		a.say("The game is over. Type 'restart' or 'new' to play again.")
		return a.result()
	}

	a.dispatch(in)
	return a.result()
}

func over(s *types.GameState) bool {
	return s.Phase == types.PhaseGameOver || s.Phase == types.PhaseVictory
}

// dispatch routes an intent to its handler. Every kind of the union has a
// case here.
func (a *applier) dispatch(in intent.Intent) {
	switch v := in.(type) {
	// Information.
	case intent.Help:
		a.help(v)
	case intent.Status:
		a.status()
	case intent.Map:
		a.drawMap()
	case intent.InspectTile:
		a.inspect(v)

	// Day economy.
	case intent.Gather:
		a.gather(v)
	case intent.GatherAtCursor:
		a.gatherAtCursor()
	case intent.Build:
		a.build(v)
	case intent.Explore:
		a.explore()
	case intent.Demolish:
		a.demolish(v)
	case intent.Upgrade:
		a.upgrade(v)
	case intent.Trade:
		a.trade(v)
	case intent.CollectLoot:
		a.collectLoot()

	// Phase transitions and combat.
	case intent.End:
		a.end()
	case intent.Wait:
		a.nightStep("", false)
	case intent.Defend:
		a.nightStep(v.Text, true)
	case intent.TargetMode:
		a.targetMode(v)
	case intent.Practice:
		a.practice(v)

	// Navigation.
	case intent.CursorMove:
		a.cursorMove(v)
	case intent.CursorSet:
		a.cursorSet(v)
	case intent.MovePlayer:
		a.movePlayer(v)

	// Progression.
	case intent.ResearchStart:
		a.researchStart(v)
	case intent.ResearchCancel:
		a.researchCancel()
	case intent.BuyUpgrade:
		a.buyUpgrade(v)
	case intent.HeroSelect:
		a.heroSelect(v)
	case intent.LocaleSet:
		a.localeSet(v)
	case intent.TitleEquip:
		a.titleEquip(v)
	case intent.Choice:
		a.choice(v)

	// Session.
	case intent.Save:
		a.request(RequestSave, v.Slot)
		a.say("Saving to slot '%s'.", v.Slot)
	case intent.Load:
		a.request(RequestLoad, v.Slot)
		a.say("Loading slot '%s'.", v.Slot)
	case intent.Seed:
		a.seed(v)
	case intent.Lesson:
		a.lesson(v)

	case intent.UI:
		// Host feedback only.
	case intent.Unknown:
		if intent.IsUI(v.Name) {
			return
		}
		a.say("Unknown intent: %s", v.Name)
	default:
		a.say("Unknown intent: %s", in.Kind())
	}
}

// requireDay reports whether the phase is day, explaining when it is not.
func (a *applier) requireDay() bool {
	if a.s.Phase == types.PhaseDay {
		return true
	}
	a.say("That can only be done during the day.")
	return false
}

// hasAP is the first half of the action point guard: it rejects day actions
// once the budget is spent. The caller validates, then spends with useAP.
func (a *applier) hasAP() bool {
	if a.s.Ap > 0 {
		return true
	}
	a.say("No action points left. Type 'end' to start the night.")
	return false
}

func (a *applier) useAP() {
	a.s.Ap--
}

// Engine is a play session: the content, the current state and a parser.
type Engine struct {
	Defs   *state.Defs
	State  *types.GameState
	parser *parser.Parser
}

// New creates a session on a fresh state.
func New(defs *state.Defs, opts state.Options) *Engine {
	return &Engine{
		Defs:   defs,
		State:  state.New(defs, opts),
		parser: parser.New(defs),
	}
}

// Step parses one command line and applies it. Parse failures come back as
// a single event with the state untouched. During the night a line that
// names an enemy, or that is not a known command, is typed at the enemies.
func (e *Engine) Step(line string) types.Result {
	if e.State.Phase == types.PhaseNight && e.namesEnemy(line) {
		return e.Submit(intent.Defend{Text: line})
	}
	in, err := e.parser.Parse(line)
	if err != nil {
		var ue *parser.UsageError
		if e.State.Phase == types.PhaseNight && errors.As(err, &ue) && ue.Unknown {
			return e.Submit(intent.Defend{Text: line})
		}
		return types.Result{State: e.State, Events: []string{err.Error()}}
	}
	return e.Submit(in)
}

func (e *Engine) namesEnemy(line string) bool {
	typed := words.Normalize(line)
	for _, en := range e.State.Enemies {
		if words.Normalize(en.Word) == typed {
			return true
		}
	}
	return false
}

// Submit applies an already-built intent and adopts the resulting state.
func (e *Engine) Submit(in intent.Intent) types.Result {
	r := Apply(e.Defs, e.State, in)
	e.State = r.State
	return r
}

// Tick advances the ambient world clock on a copy of the state.
func (e *Engine) Tick(n int) []string {
	s := state.Clone(e.State)
	events := tick.World(s, n)
	e.State = s
	return events
}

// Restore replaces the session state, e.g. after loading a save.
func (e *Engine) Restore(s *types.GameState) {
	e.State = s
}
