package resolve

import (
	"errors"
	"testing"

	"github.com/nathoo/nightkeep/types"
)

func enemies(ws ...string) []types.Enemy {
	out := make([]types.Enemy, len(ws))
	for i, w := range ws {
		out[i] = types.Enemy{ID: i + 1, Word: w, Hp: 1}
	}
	return out
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name      string
		enemies   []types.Enemy
		input     string
		wantIdx   int
		wantExact bool
	}{
		{"exact beats prefix-only", enemies("spearhead", "spear"), "spear", 1, true},
		{"exact first in list order", enemies("oak", "ash", "oak"), "oak", 0, true},
		{"case and space insensitive", enemies("Cedar"), "  cEDAR ", 0, true},
		{"partial word", enemies("ash", "spear"), "spe", 1, false},
		{"partial word reaches the longer word", enemies("spearhead"), "spear", 0, false},
		{"exact wins over earlier partial", enemies("spearhead", "spear"), "spear", 1, true},
		{"partial tie by list order", enemies("elmwood", "ash", "elmtree"), "elm", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, err := Match(tt.enemies, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if hit.Index != tt.wantIdx || hit.Exact != tt.wantExact {
				t.Errorf("got %+v, want index %d exact %v", hit, tt.wantIdx, tt.wantExact)
			}
		})
	}
}

func TestMatch_NotFound(t *testing.T) {
	tests := []struct {
		name    string
		enemies []types.Enemy
		input   string
	}{
		{"no enemies", nil, "oak"},
		{"empty input", enemies("oak"), "   "},
		{"typed is longer than every word", enemies("spear", "spearhead"), "spearheads"},
		{"unrelated", enemies("oak", "ash"), "birch"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Match(tt.enemies, tt.input)
			var nf *NotFoundError
			if !errors.As(err, &nf) {
				t.Fatalf("expected NotFoundError, got %v", err)
			}
		})
	}
}
