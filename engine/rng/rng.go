// Package rng is the single deterministic random stream of the simulation.
// The whole stream is described by (RngSeed, RngState) on the game state:
// the seed selects the stream and the state is the number of values drawn.
// Every draw advances RngState by exactly one, so restoring a save is just
// restoring those two fields.
package rng

import (
	"encoding/binary"

	"github.com/nathoo/nightkeep/types"
	"lukechampine.com/blake3"
)

const gamma = 0x9E3779B97F4A7C15

// key derives the 64-bit stream key from a seed string.
func key(seed string) uint64 {
	sum := blake3.Sum256([]byte(seed))
	return binary.LittleEndian.Uint64(sum[:8])
}

// splitmix64 finalizer.
func mix(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// At returns the value at a given stream position without touching any state.
func At(seed string, pos int64) uint64 {
	return mix(key(seed) + uint64(pos+1)*gamma)
}

// next draws one value and advances the cursor.
func next(s *types.GameState) uint64 {
	v := At(s.RngSeed, s.RngState)
	s.RngState++
	return v
}

// RollRange returns a random integer in [min, max]. Reversed bounds are swapped.
func RollRange(s *types.GameState, min, max int) int {
	if max < min {
		min, max = max, min
	}
	span := uint64(max-min) + 1
	return min + int(next(s)%span)
}

// Chance returns true with the given percentage (0..100).
func Chance(s *types.GameState, percent int) bool {
	return RollRange(s, 1, 100) <= percent
}

// Choose returns a random element of items. It panics on an empty slice,
// callers check for emptiness first.
func Choose[T any](s *types.GameState, items []T) T {
	return items[RollRange(s, 0, len(items)-1)]
}

// WeightedSelect returns an index chosen by weighted random selection.
// weights must be non-empty; non-positive weights are never selected unless
// every weight is non-positive, in which case the first index is returned.
func WeightedSelect(s *types.GameState, weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		next(s)
		return 0
	}
	roll := RollRange(s, 0, total-1)
	cumulative := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		if roll < cumulative {
			return i
		}
	}
	return len(weights) - 1
}
