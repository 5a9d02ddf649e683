// Package save implements the JSON save format: a lossless serialize and
// deserialize round trip of the whole game state, plus a content fingerprint
// used to compare states byte-for-byte.
package save

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/nathoo/nightkeep/engine/state"
	"github.com/nathoo/nightkeep/types"
	"lukechampine.com/blake3"
)

// FormatVersion is the current save format version.
const FormatVersion = 1

// MaxMapSide bounds each map dimension accepted from a save.
const MaxMapSide = 1024

// SaveData is the JSON-serializable save format.
type SaveData struct {
	Version int              `json:"version" jsonschema:"minimum=1"`
	Game    string           `json:"game"`
	State   *types.GameState `json:"state"`
}

// Serialize encodes s to JSON bytes. defs may be nil.
func Serialize(s *types.GameState, defs *state.Defs) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("serialize: nil state")
	}
	data := SaveData{Version: FormatVersion, State: s}
	if defs != nil {
		data.Game = defs.Game.Title
	}
	return json.MarshalIndent(data, "", "  ")
}

// Deserialize decodes JSON bytes produced by Serialize.
func Deserialize(data []byte) (*types.GameState, error) {
	var sd SaveData
	if err := json.Unmarshal(data, &sd); err != nil {
		return nil, fmt.Errorf("deserialize: %w", err)
	}
	if sd.Version < 1 || sd.Version > FormatVersion {
		return nil, fmt.Errorf("deserialize: unsupported save version %d", sd.Version)
	}
	if sd.State == nil {
		return nil, fmt.Errorf("deserialize: save has no state")
	}
	st := sd.State
	if st.MapW < 1 || st.MapH < 1 || st.MapW > MaxMapSide || st.MapH > MaxMapSide {
		return nil, fmt.Errorf("deserialize: bad map size %dx%d", st.MapW, st.MapH)
	}
	if st.Terrain != nil && len(st.Terrain) != st.MapW*st.MapH {
		return nil, fmt.Errorf("deserialize: terrain has %d tiles, map is %dx%d", len(st.Terrain), st.MapW, st.MapH)
	}
	Normalize(sd.State)
	return sd.State, nil
}

// Normalize replaces nil maps and slices with empty ones. JSON decoding
// yields nil for empty or missing collections; the simulation always works
// on allocated ones.
func Normalize(s *types.GameState) {
	if s.Resources == nil {
		s.Resources = map[string]int{}
	}
	for _, k := range types.ResourceKeys {
		if _, ok := s.Resources[k]; !ok {
			s.Resources[k] = 0
		}
	}
	if s.Terrain == nil {
		s.Terrain = make([]string, s.MapW*s.MapH)
	}
	if s.Discovered == nil {
		s.Discovered = map[int]bool{}
	}
	if s.Structures == nil {
		s.Structures = map[int]string{}
	}
	if s.StructureLevels == nil {
		s.StructureLevels = map[int]int{}
	}
	if s.BuildingCounts == nil {
		s.BuildingCounts = map[string]int{}
	}
	if s.Pois == nil {
		s.Pois = map[int]string{}
	}
	if s.Enemies == nil {
		s.Enemies = []types.Enemy{}
	}
	for i := range s.Enemies {
		if s.Enemies[i].Effects == nil {
			s.Enemies[i].Effects = map[string]int{}
		}
	}
	if s.CompletedResearch == nil {
		s.CompletedResearch = map[string]bool{}
	}
	if s.TradeRates == nil {
		s.TradeRates = map[string]int{}
	}
	if s.PurchasedUpgrades == nil {
		s.PurchasedUpgrades = map[string]bool{}
	}
	if s.UnlockedTitles == nil {
		s.UnlockedTitles = map[string]bool{}
	}
	if s.PendingLoot == nil {
		s.PendingLoot = []types.Loot{}
	}
	for i := range s.PendingLoot {
		if s.PendingLoot[i].Resources == nil {
			s.PendingLoot[i].Resources = map[string]int{}
		}
	}
	if s.Flags == nil {
		s.Flags = map[string]bool{}
	}
	if s.Counters == nil {
		s.Counters = map[string]int{}
	}
	if s.Modifiers == nil {
		s.Modifiers = map[string]int{}
	}
}

// Fingerprint returns a short hex digest of the state's canonical JSON.
// Map keys are encoded in sorted order, so equal states share a fingerprint.
func Fingerprint(s *types.GameState) string {
	b, err := json.Marshal(s)
	if err != nil {
		return ""
	}
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:16])
}
