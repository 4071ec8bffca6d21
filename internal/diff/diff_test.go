package diff

import (
	"reflect"
	"testing"
)

func TestCompute_NoChange(t *testing.T) {
	inputs := []string{
		"",
		"one",
		"the quick brown fox",
		"  leading and trailing  ",
		"unicode: café £100",
	}

	for _, s := range inputs {
		result := Compute(s, s)
		if result.Changed {
			t.Errorf("Compute(%q, %q): expected no change", s, s)
		}
		if len(result.Spans) != 0 {
			t.Errorf("Compute(%q, %q): expected no spans, got %d", s, s, len(result.Spans))
		}
	}
}

func TestCompute_CoarseSpans(t *testing.T) {
	result := Compute("the completion date is March 31", "the completion date is April 30")

	if !result.Changed {
		t.Fatal("expected a change")
	}
	// Always exactly one full-original deletion and one full-revised
	// insertion, never word-aligned partial spans.
	if len(result.Spans) != 2 {
		t.Fatalf("expected exactly 2 spans, got %d", len(result.Spans))
	}
	if result.Spans[0].Op != OpDelete {
		t.Errorf("expected first span to be delete, got %s", result.Spans[0].Op)
	}
	if result.Spans[1].Op != OpInsert {
		t.Errorf("expected second span to be insert, got %s", result.Spans[1].Op)
	}

	wantDeleted := []string{"the", "completion", "date", "is", "March", "31"}
	if !reflect.DeepEqual(result.Spans[0].Words, wantDeleted) {
		t.Errorf("deleted words = %v, want %v", result.Spans[0].Words, wantDeleted)
	}
	wantInserted := []string{"the", "completion", "date", "is", "April", "30"}
	if !reflect.DeepEqual(result.Spans[1].Words, wantInserted) {
		t.Errorf("inserted words = %v, want %v", result.Spans[1].Words, wantInserted)
	}
}

func TestCompute_WhitespaceRuns(t *testing.T) {
	result := Compute("a\tb\n c", "a  b  d")

	if !result.Changed {
		t.Fatal("expected a change")
	}
	if !reflect.DeepEqual(result.Spans[0].Words, []string{"a", "b", "c"}) {
		t.Errorf("runs of whitespace should collapse: got %v", result.Spans[0].Words)
	}
	if !reflect.DeepEqual(result.Spans[1].Words, []string{"a", "b", "d"}) {
		t.Errorf("runs of whitespace should collapse: got %v", result.Spans[1].Words)
	}
}

func TestCompute_WhitespaceOnlyDifference(t *testing.T) {
	// The strings differ, so spans are produced even though the word
	// tokens end up identical.
	result := Compute("a b", "a  b")
	if !result.Changed {
		t.Fatal("expected a change for differing raw strings")
	}
	if len(result.Spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(result.Spans))
	}
}

func TestCompute_EmptyOriginal(t *testing.T) {
	result := Compute("", "new text")
	if !result.Changed {
		t.Fatal("expected a change")
	}
	if len(result.Spans[0].Words) != 0 {
		t.Errorf("expected empty deletion, got %v", result.Spans[0].Words)
	}
	if !reflect.DeepEqual(result.Spans[1].Words, []string{"new", "text"}) {
		t.Errorf("unexpected insertion %v", result.Spans[1].Words)
	}
}
