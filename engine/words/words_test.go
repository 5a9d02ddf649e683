package words

import "testing"

var pool = []string{"ash", "oak", "elm", "birch", "cedar", "willow", "hawthorn"}

func TestPick_Deterministic(t *testing.T) {
	r := Request{Seed: "s", Day: 2, Kind: "scout", ID: 4, Lesson: "trees"}
	first := Pick(pool, r)
	for i := 0; i < 10; i++ {
		if got := Pick(pool, r); got != first {
			t.Fatalf("pick %d: got %q, want %q", i, got, first)
		}
	}
}

func TestPick_LengthBounds(t *testing.T) {
	for id := 0; id < 50; id++ {
		w := Pick(pool, Request{Seed: "len", ID: id, MinLen: 5, MaxLen: 6})
		if len(w) < 5 || len(w) > 6 {
			t.Fatalf("id %d: %q outside length bounds", id, w)
		}
	}
}

func TestPick_LengthFallback(t *testing.T) {
	w := Pick(pool, Request{Seed: "x", MinLen: 20})
	if w == "" {
		t.Fatal("expected a fallback word when no candidate fits the length bounds")
	}
}

func TestPick_AvoidsUsedWords(t *testing.T) {
	used := map[string]bool{"ash": true, "oak": true}
	for id := 0; id < 50; id++ {
		w := Pick(pool, Request{Seed: "used", ID: id, MaxLen: 3, Used: used})
		if w != "elm" {
			t.Fatalf("id %d: expected the only unused short word, got %q", id, w)
		}
	}
}

func TestPick_AllUsedStillReturnsWord(t *testing.T) {
	used := map[string]bool{}
	for _, w := range pool {
		used[w] = true
	}
	if Pick(pool, Request{Seed: "full", Used: used}) == "" {
		t.Fatal("expected a word even when every word is in use")
	}
}

func TestPick_EmptyPool(t *testing.T) {
	if got := Pick(nil, Request{}); got != "" {
		t.Fatalf("expected empty pick from empty pool, got %q", got)
	}
}

func TestPick_NormalizesPool(t *testing.T) {
	got := Pick([]string{"  Spear  "}, Request{Seed: "n"})
	if got != "spear" {
		t.Fatalf("expected normalized word, got %q", got)
	}
}
