package pipeline

import (
	"sort"
	"strings"
	"testing"
)

func TestNewRunID_ShapeAndAlphabet(t *testing.T) {
	id := newRunID()
	if len(id) != 18 {
		t.Fatalf("expected 18 characters, got %d (%q)", len(id), id)
	}
	for _, c := range id {
		if !strings.ContainsRune(crockford, c) {
			t.Errorf("unexpected character %q in %q", c, id)
		}
	}
}

func TestNewRunID_UniqueAndOrdered(t *testing.T) {
	ids := make([]string, 200)
	for i := range ids {
		ids[i] = newRunID()
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
	if !sort.StringsAreSorted(ids) {
		t.Error("ids generated in sequence should sort by creation order")
	}
}
