// Package events resolves point-of-interest events: which choices are open
// to the player and which effects an answer produces.
package events

import (
	"fmt"
	"strings"

	"github.com/nathoo/nightkeep/engine/rules"
	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/types"
)

// Available returns the IDs of choices whose requirements are met, in
// declaration order.
func Available(ev types.EventDef, s *types.GameState, defs *state.Defs) []string {
	var result []string
	for _, c := range ev.Choices {
		if rules.EvalAllConditions(c.Requires, s, defs) {
			result = append(result, c.ID)
		}
	}
	return result
}

// Describe renders the event text followed by one line per choice. Choices
// that cannot be taken yet carry their requirement.
func Describe(ev types.EventDef, s *types.GameState, defs *state.Defs) []string {
	lines := []string{ev.Text}
	for _, c := range ev.Choices {
		line := fmt.Sprintf("  choice %s: %s", c.ID, c.Text)
		if c.Phrase != "" {
			line += fmt.Sprintf(" (type: %s)", c.Phrase)
		}
		if req := rules.Requirement(c.Requires, s, defs); req != "" {
			line += " [" + req + "]"
		}
		lines = append(lines, line)
	}
	return lines
}

// Find returns the choice with the given ID.
func Find(ev types.EventDef, id string) (types.ChoiceDef, bool) {
	for _, c := range ev.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return types.ChoiceDef{}, false
}

// IDs lists every choice ID, open or not.
func IDs(ev types.EventDef) []string {
	ids := make([]string, len(ev.Choices))
	for i, c := range ev.Choices {
		ids[i] = c.ID
	}
	return ids
}

// Resolve returns the effects of answering c with typed, and whether the
// phrase was spoken correctly. Matching ignores case and surrounding space.
// A choice without a phrase always succeeds.
func Resolve(c types.ChoiceDef, typed string) ([]types.Effect, bool) {
	if c.Phrase != "" && !strings.EqualFold(strings.TrimSpace(typed), c.Phrase) {
		return c.Fail, false
	}
	return c.Effects, true
}
