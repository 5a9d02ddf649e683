package engine

import (
	"github.com/nathoo/nightkeep/engine/intent"
	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/types"
)

// restart builds a brand-new state from the prior seed, lesson and map size.
// It is accepted in every phase.
func restart(defs *state.Defs, prior *types.GameState, in intent.Intent) types.Result {
	s := state.New(defs, state.Options{
		Seed:     prior.RngSeed,
		LessonID: prior.LessonID,
		MapW:     prior.MapW,
		MapH:     prior.MapH,
	})
	events := []string{}
	if _, ok := in.(intent.New); ok {
		events = append(events, "A new game begins.")
	} else {
		events = append(events, "The keep is rebuilt from the ground up.")
	}
	if defs.Game.Intro != "" {
		events = append(events, defs.Game.Intro)
	}
	events = append(events, "Day 1. Type 'help' for commands.")
	return types.Result{State: s, Events: events}
}

// Replay runs command lines through a fresh session and returns the final
// state with every event produced. Host requests are ignored. Two replays
// of the same options and lines yield identical results.
func Replay(defs *state.Defs, opts state.Options, lines []string) (*types.GameState, []string) {
	e := New(defs, opts)
	var events []string
	for _, line := range lines {
		r := e.Step(line)
		events = append(events, r.Events...)
	}
	return e.State, events
}
