// Package resolve maps typed text to the enemy it strikes.
package resolve

import (
	"fmt"
	"strings"

	"github.com/nathoo/nightkeep/engine/words"
	"github.com/nathoo/nightkeep/types"
)

// Hit identifies the struck enemy by its position in the enemy list.
type Hit struct {
	Index int
	Exact bool
}

// NotFoundError indicates the typed text matched no enemy.
type NotFoundError struct {
	Input string
}

func (e *NotFoundError) Error() string {
	if e.Input == "" {
		return "nothing typed"
	}
	return fmt.Sprintf("no enemy answers to %q", e.Input)
}

// Match resolves typed input against the enemies, in two passes:
//  1. the first enemy (list order) whose word equals the input;
//  2. otherwise the first enemy (list order) whose word starts with the
//     input, so a partly typed word still lands.
//
// Comparison is case-insensitive and ignores surrounding whitespace.
func Match(enemies []types.Enemy, input string) (Hit, error) {
	typed := words.Normalize(input)
	if typed == "" {
		return Hit{}, &NotFoundError{Input: typed}
	}

	for i, e := range enemies {
		if words.Normalize(e.Word) == typed {
			return Hit{Index: i, Exact: true}, nil
		}
	}

	for i, e := range enemies {
		if strings.HasPrefix(words.Normalize(e.Word), typed) {
			return Hit{Index: i}, nil
		}
	}
	return Hit{}, &NotFoundError{Input: typed}
}
