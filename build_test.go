package lexdfa

import (
	"testing"

	"github.com/coregx/lexdfa/nfa"
)

func utf16Units(s string) []uint16 {
	out := make([]uint16, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = uint16(s[i])
	}
	return out
}

func TestBuildSingleLanguageMatchesRegisteredPattern(t *testing.T) {
	a := NewAccumulator[strLabel]()
	a.Add("CAT", nfa.Str("cat"))

	d, err := Build(a, [][]strLabel{{"CAT"}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	starts := d.StartStates()
	if len(starts) != 1 {
		t.Fatalf("expected 1 start state, got %d", len(starts))
	}

	cur := starts[0]
	for _, c := range utf16Units("cat") {
		next, ok := cur.Next(c)
		if !ok {
			t.Fatalf("unexpected dead transition on %q", c)
		}
		cur = next
	}
	lbl, ok := cur.Match()
	if !ok || lbl != "CAT" {
		t.Fatalf("expected match CAT, got (%q, %v)", lbl, ok)
	}
}

func TestBuildLanguageSubsetExcludesOtherLabels(t *testing.T) {
	a := NewAccumulator[strLabel]()
	a.Add("CAT", nfa.Str("cat"))
	a.Add("DOG", nfa.Str("dog"))

	d, err := Build(a, [][]strLabel{{"CAT"}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	cur := d.StartStates()[0]
	for _, c := range utf16Units("dog") {
		next, ok := cur.Next(c)
		if !ok {
			return // dead end reached, as expected
		}
		cur = next
	}
	if _, ok := cur.Match(); ok {
		t.Fatalf("expected DOG to be unrecognized by a CAT-only language")
	}
}

func TestBuildEmptyLanguageNeverMatches(t *testing.T) {
	a := NewAccumulator[strLabel]()
	a.Add("CAT", nfa.Str("cat"))

	d, err := Build(a, [][]strLabel{{}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	start := d.StartStates()[0]
	if _, ok := start.Next('c'); ok {
		t.Fatalf("expected an empty language to have no live transitions")
	}
}

func TestBuildResultIsCached(t *testing.T) {
	a := NewAccumulator[strLabel]()
	a.Add("CAT", nfa.Str("cat"))

	cache := NewMemoryCache[strLabel]()
	d1, err := Build(a, [][]strLabel{{"CAT"}}, WithCache[strLabel](cache))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	d2, err := Build(a, [][]strLabel{{"CAT"}}, WithCache[strLabel](cache))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if d1 != d2 {
		t.Fatalf("expected the second Build to return the cached instance")
	}
}

func TestBuildAmbiguityPropagatesAsBuildError(t *testing.T) {
	a := NewAccumulator[strLabel]()
	a.Add("A", nfa.Str("x"))
	a.Add("B", nfa.Str("x"))

	_, err := Build(a, [][]strLabel{{"A", "B"}})
	if err == nil {
		t.Fatalf("expected an ambiguity error")
	}
	buildErr, ok := err.(*BuildError)
	if !ok {
		t.Fatalf("expected *BuildError, got %T", err)
	}
	if buildErr.Kind != Ambiguous {
		t.Fatalf("expected Ambiguous kind, got %v", buildErr.Kind)
	}
}

func TestBuildResolverCollapsesAmbiguity(t *testing.T) {
	a := NewAccumulator[strLabel]()
	a.Add("A", nfa.Str("x"))
	a.Add("B", nfa.Str("x"))

	resolver := func(labels []strLabel) (strLabel, error) { return "RESOLVED", nil }
	d, err := Build(a, [][]strLabel{{"A", "B"}}, WithResolver[strLabel](resolver))
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	cur := d.StartStates()[0]
	next, ok := cur.Next('x')
	if !ok {
		t.Fatalf("expected a transition on 'x'")
	}
	lbl, matched := next.Match()
	if !matched || lbl != "RESOLVED" {
		t.Fatalf("expected resolved label, got (%q, %v)", lbl, matched)
	}
}
