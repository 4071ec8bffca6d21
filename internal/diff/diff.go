// Package diff renders before/after text for resolution previews.
//
// The diff is deliberately coarse: when the revised text differs at all,
// the whole original is reported as one deleted span and the whole revised
// text as one inserted span. There is no token alignment or minimal edit
// distance; callers strike through the original and highlight the revised
// text wholesale.
package diff

import (
	"strings"
)

// Op identifies what happened to a span
type Op string

const (
	OpDelete Op = "delete"
	OpInsert Op = "insert"
)

// Span is a run of word tokens sharing one operation
type Span struct {
	Op    Op       `json:"op"`
	Words []string `json:"words"`
}

// Result describes the change between an original and a revised string
type Result struct {
	Changed bool   `json:"changed"`
	Spans   []Span `json:"spans,omitempty"`
}

// Compute compares original and revised text. Identical inputs yield a
// neutral no-change result. Any difference yields exactly two spans: the
// entire original deleted and the entire revised inserted, each split on
// runs of whitespace.
func Compute(original, revised string) Result {
	if original == revised {
		return Result{Changed: false}
	}
	return Result{
		Changed: true,
		Spans: []Span{
			{Op: OpDelete, Words: strings.Fields(original)},
			{Op: OpInsert, Words: strings.Fields(revised)},
		},
	}
}
