// Package effects implements content-driven state mutation via the Apply
// function. Every effect type is one atomic operation. No logic in effects.
package effects

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/types"
)

// Apply applies a list of effects to the game state, mutating it.
// Returns the event lines produced, in order.
func Apply(s *types.GameState, defs *state.Defs, effects []types.Effect) []string {
	var events []string

	for _, eff := range effects {
		switch eff.Type {
		case "say":
			text, _ := eff.Params["text"].(string)
			events = append(events, interpolate(text, s, defs))

		case "add_resource":
			res, _ := eff.Params["resource"].(string)
			amount := toInt(eff.Params["amount"])
			if _, ok := s.Resources[res]; !ok {
				continue
			}
			state.Credit(s, res, amount)
			events = append(events, signed(amount, res))

		case "add_gold":
			amount := toInt(eff.Params["amount"])
			state.Credit(s, "gold", amount)
			events = append(events, signed(amount, "gold"))

		case "heal":
			amount := toInt(eff.Params["amount"])
			before := s.Hp
			s.Hp = min(s.HpMax, s.Hp+amount)
			events = append(events, fmt.Sprintf("The keep recovers %d HP (%d/%d).", s.Hp-before, s.Hp, s.HpMax))

		case "damage":
			// Content damage never finishes the keep; only night attacks do.
			amount := toInt(eff.Params["amount"])
			before := s.Hp
			s.Hp = max(1, s.Hp-amount)
			events = append(events, fmt.Sprintf("The keep takes %d damage (%d/%d).", before-s.Hp, s.Hp, s.HpMax))

		case "add_threat":
			amount := toInt(eff.Params["amount"])
			s.Threat = max(0, s.Threat+amount)
			events = append(events, fmt.Sprintf("Threat is now %d.", s.Threat))

		case "set_flag":
			flag, _ := eff.Params["flag"].(string)
			value, ok := eff.Params["value"].(bool)
			if !ok {
				value = true
			}
			s.Flags[flag] = value

		case "inc_counter":
			counter, _ := eff.Params["counter"].(string)
			amount := toInt(eff.Params["amount"])
			if _, set := eff.Params["amount"]; !set {
				amount = 1
			}
			s.Counters[counter] += amount

		case "add_modifier":
			mod, _ := eff.Params["modifier"].(string)
			amount := toInt(eff.Params["amount"])
			s.Modifiers[mod] += amount
			state.Recalc(s, defs)

		case "add_loot":
			loot := types.Loot{
				Source:    str(eff.Params["source"]),
				Gold:      toInt(eff.Params["gold"]),
				Resources: map[string]int{},
			}
			if res := str(eff.Params["resource"]); res != "" {
				loot.Resources[res] = toInt(eff.Params["amount"])
			}
			s.PendingLoot = append(s.PendingLoot, loot)
			events = append(events, "Loot awaits collection at the keep.")

		case "stop":
			return events

		default:
			// Unknown effect types are ignored.
		}
	}

	return events
}

// interpolate replaces template variables in text.
func interpolate(text string, s *types.GameState, defs *state.Defs) string {
	title := s.EquippedTitle
	if t, ok := defs.Titles[s.EquippedTitle]; ok && t.Name != "" {
		title = t.Name
	}
	r := strings.NewReplacer(
		"{day}", strconv.Itoa(s.Day),
		"{gold}", strconv.Itoa(s.Gold),
		"{hp}", strconv.Itoa(s.Hp),
		"{threat}", strconv.Itoa(s.Threat),
		"{title}", title,
		"{game}", defs.Game.Title,
	)
	return r.Replace(text)
}

func signed(amount int, what string) string {
	if amount < 0 {
		return fmt.Sprintf("Lost %d %s.", -amount, what)
	}
	return fmt.Sprintf("Gained %d %s.", amount, what)
}

func str(v any) string {
	s, _ := v.(string)
	return s
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case float64:
		return int(n)
	case int64:
		return int(n)
	default:
		return 0
	}
}
