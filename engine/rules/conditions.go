// Package rules evaluates content conditions against the game state.
package rules

import (
	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/types"
)

// EvalCondition evaluates a single condition against the current state.
// Unknown condition types are false.
func EvalCondition(c types.Condition, s *types.GameState, defs *state.Defs) bool {
	switch c.Type {
	case "day_at_least":
		return s.Day >= toInt(c.Params["day"])

	case "has_resource":
		res, _ := c.Params["resource"].(string)
		return s.Resources[res] >= toInt(c.Params["amount"])

	case "has_gold":
		return s.Gold >= toInt(c.Params["amount"])

	case "has_building":
		building, _ := c.Params["building"].(string)
		count := toInt(c.Params["count"])
		if count < 1 {
			count = 1
		}
		return s.BuildingCounts[building] >= count

	case "has_research":
		id, _ := c.Params["research"].(string)
		return s.CompletedResearch[id]

	case "flag_set":
		flag, _ := c.Params["flag"].(string)
		return state.GetFlag(s, flag)

	case "flag_not":
		flag, _ := c.Params["flag"].(string)
		return !state.GetFlag(s, flag)

	case "counter_gt":
		counter, _ := c.Params["counter"].(string)
		return state.GetCounter(s, counter) > toInt(c.Params["value"])

	case "counter_lt":
		counter, _ := c.Params["counter"].(string)
		return state.GetCounter(s, counter) < toInt(c.Params["value"])

	case "not":
		if c.Inner == nil {
			return true
		}
		return !EvalCondition(*c.Inner, s, defs)

	default:
		return false
	}
}

// EvalAllConditions returns true if all conditions pass (AND logic).
// An empty condition list is vacuously true.
func EvalAllConditions(conditions []types.Condition, s *types.GameState, defs *state.Defs) bool {
	for _, c := range conditions {
		if !EvalCondition(c, s, defs) {
			return false
		}
	}
	return true
}

// toInt converts an any value to int, handling float64 from JSON/Lua.
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
