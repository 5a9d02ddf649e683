// Package words picks enemy words from a lesson's word list. A pick is a pure
// function of (seed, day, kind, enemy id, lesson) plus the words already on
// the field, so it never draws from the simulation's random stream.
package words

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"lukechampine.com/blake3"
)

// Request describes one word pick.
type Request struct {
	Seed   string
	Day    int
	Kind   string
	ID     int
	Lesson string
	MinLen int // 0 = no lower bound
	MaxLen int // 0 = no upper bound
	Used   map[string]bool
}

// Normalize lower-cases and trims a word or typed input for comparison.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func index(r Request, n int) int {
	key := fmt.Sprintf("%s|%d|%s|%d|%s", r.Seed, r.Day, r.Kind, r.ID, r.Lesson)
	sum := blake3.Sum256([]byte(key))
	return int(binary.LittleEndian.Uint64(sum[:8]) % uint64(n))
}

// Pick returns a word from pool for the request. Candidates are narrowed by
// length and by the used set; each narrowing is skipped when it would leave
// nothing. An empty pool yields an empty string.
func Pick(pool []string, r Request) string {
	if len(pool) == 0 {
		return ""
	}
	normalized := make([]string, 0, len(pool))
	seen := map[string]bool{}
	for _, w := range pool {
		n := Normalize(w)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		normalized = append(normalized, n)
	}
	if len(normalized) == 0 {
		return ""
	}
	sort.Strings(normalized)

	candidates := filter(normalized, func(w string) bool {
		return (r.MinLen <= 0 || len(w) >= r.MinLen) && (r.MaxLen <= 0 || len(w) <= r.MaxLen)
	})
	if len(candidates) == 0 {
		candidates = normalized
	}
	fresh := filter(candidates, func(w string) bool { return !r.Used[w] })
	if len(fresh) > 0 {
		candidates = fresh
	}
	return candidates[index(r, len(candidates))]
}

func filter(in []string, keep func(string) bool) []string {
	var out []string
	for _, w := range in {
		if keep(w) {
			out = append(out, w)
		}
	}
	return out
}
