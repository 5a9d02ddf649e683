// Package tick advances the simulation outside discrete player intents:
// the dawn bookkeeping run when a night ends, and the ambient world clock
// the host drives in real time.
package tick

import (
	"fmt"
	"strings"

	"github.com/nathoo/nightkeep/engine/balance"
	"github.com/nathoo/nightkeep/engine/effects"
	"github.com/nathoo/nightkeep/engine/rules"
	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/types"
)

// AdvanceDay runs the dawn bookkeeping, in order: building production,
// storage caps, research progress, trade-rate reset and title unlocks.
func AdvanceDay(s *types.GameState, defs *state.Defs) []string {
	var events []string
	events = append(events, produce(s, defs)...)
	events = append(events, capStorage(s, defs)...)
	events = append(events, progressResearch(s, defs)...)
	clear(s.TradeRates)
	events = append(events, UnlockTitles(s, defs)...)
	return events
}

func produce(s *types.GameState, defs *state.Defs) []string {
	gained := map[string]int{}
	bonus := s.Modifiers["production"]
	for _, idx := range state.SortedTiles(s.Structures) {
		def, ok := defs.Buildings[s.Structures[idx]]
		if !ok {
			continue
		}
		for res, per := range def.Produces {
			gained[res] += balance.Production(per, state.Level(s, idx), bonus)
		}
	}
	var parts []string
	for _, res := range types.ResourceKeys {
		if n := gained[res]; n > 0 {
			s.Resources[res] += n
			parts = append(parts, fmt.Sprintf("+%d %s", n, res))
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return []string{"Production: " + strings.Join(parts, ", ") + "."}
}

func capStorage(s *types.GameState, defs *state.Defs) []string {
	limit := state.StorageCap(s, defs)
	var events []string
	for _, res := range types.ResourceKeys {
		if over := s.Resources[res] - limit; over > 0 {
			s.Resources[res] = limit
			events = append(events, fmt.Sprintf("Storage is full: %d %s spoiled (cap %d).", over, res, limit))
		}
	}
	return events
}

func progressResearch(s *types.GameState, defs *state.Defs) []string {
	if s.ActiveResearch == "" {
		return nil
	}
	def, ok := defs.Research[s.ActiveResearch]
	if !ok {
		s.ActiveResearch, s.ResearchProgress = "", 0
		return nil
	}
	s.ResearchProgress++
	days := max(1, def.Days)
	if s.ResearchProgress < days {
		return []string{fmt.Sprintf("Research %s: %d/%d days.", name(def.Name, def.ID), s.ResearchProgress, days)}
	}
	s.CompletedResearch[def.ID] = true
	s.ActiveResearch, s.ResearchProgress = "", 0
	events := []string{fmt.Sprintf("Research complete: %s.", name(def.Name, def.ID))}
	return append(events, effects.Apply(s, defs, def.Effects)...)
}

// UnlockTitles unlocks every title whose conditions now hold, in id order.
func UnlockTitles(s *types.GameState, defs *state.Defs) []string {
	var events []string
	for _, id := range state.SortedKeys(defs.Titles) {
		if s.UnlockedTitles[id] {
			continue
		}
		t := defs.Titles[id]
		if rules.EvalAllConditions(t.Requires, s, defs) {
			s.UnlockedTitles[id] = true
			events = append(events, fmt.Sprintf("Title unlocked: %s. Type 'title %s' to wear it.", name(t.Name, id), id))
		}
	}
	return events
}

// World advances the ambient clock by ticks. Only the day phase accumulates;
// each full AmbientDecayTicks lowers Threat by one.
func World(s *types.GameState, ticks int) []string {
	if s.Phase != types.PhaseDay || ticks <= 0 {
		return nil
	}
	var events []string
	s.WorldClock += ticks
	for s.WorldClock >= balance.AmbientDecayTicks {
		s.WorldClock -= balance.AmbientDecayTicks
		if s.Threat > 0 {
			s.Threat--
			events = append(events, fmt.Sprintf("The land grows quieter. Threat %d.", s.Threat))
		}
	}
	return events
}

func name(display, id string) string {
	if display != "" {
		return display
	}
	return id
}
