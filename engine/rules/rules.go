package rules

import (
	"fmt"
	"strings"

	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/types"
)

// Unmet returns a player-facing description of every failing condition,
// in declaration order. An empty result means all conditions pass.
func Unmet(conditions []types.Condition, s *types.GameState, defs *state.Defs) []string {
	var out []string
	for _, c := range conditions {
		if !EvalCondition(c, s, defs) {
			out = append(out, Describe(c))
		}
	}
	return out
}

// Requirement formats the failing conditions as one sentence, or "" when
// nothing fails.
func Requirement(conditions []types.Condition, s *types.GameState, defs *state.Defs) string {
	unmet := Unmet(conditions, s, defs)
	if len(unmet) == 0 {
		return ""
	}
	return "Requires " + strings.Join(unmet, " and ") + "."
}

// Describe renders a condition in plain words.
func Describe(c types.Condition) string {
	str := func(k string) string {
		v, _ := c.Params[k].(string)
		return v
	}
	switch c.Type {
	case "day_at_least":
		return fmt.Sprintf("day %d", toInt(c.Params["day"]))
	case "has_resource":
		return fmt.Sprintf("%d %s", toInt(c.Params["amount"]), str("resource"))
	case "has_gold":
		return fmt.Sprintf("%d gold", toInt(c.Params["amount"]))
	case "has_building":
		n := max(1, toInt(c.Params["count"]))
		return fmt.Sprintf("%d %s", n, str("building"))
	case "has_research":
		return "research " + str("research")
	case "flag_set":
		return str("flag")
	case "flag_not":
		return "not " + str("flag")
	case "counter_gt":
		return fmt.Sprintf("%s above %d", str("counter"), toInt(c.Params["value"]))
	case "counter_lt":
		return fmt.Sprintf("%s below %d", str("counter"), toInt(c.Params["value"]))
	case "not":
		if c.Inner == nil {
			return "nothing"
		}
		return "not " + Describe(*c.Inner)
	default:
		return c.Type
	}
}
