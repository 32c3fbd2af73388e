package nfa

import "testing"

// epsilonReachesAccept walks Split/Epsilon edges only, mirroring disemptify's
// own traversal, to check whether id can reach accept without consuming a
// code unit. Used by tests to assert Disemptify actually removed the
// zero-length path.
func epsilonReachesAccept(b *Builder, id, accept StateID, seen map[StateID]bool) bool {
	if id == accept {
		return true
	}
	if seen[id] {
		return false
	}
	seen[id] = true
	s := &b.states[id]
	switch s.kind {
	case StateEpsilon:
		return epsilonReachesAccept(b, s.next, accept, seen)
	case StateSplit:
		return epsilonReachesAccept(b, s.left, accept, seen) || epsilonReachesAccept(b, s.right, accept, seen)
	default:
		return false
	}
}

func TestDisemptifyRemovesEmptyMatch(t *testing.T) {
	b := NewBuilder()
	accept := b.AddAccept()
	// "a*" can reach accept via zero input.
	start := MaybeRepeat(CharRange{Lo: 'a', Hi: 'a'}).AddToNFA(b, accept)

	if !epsilonReachesAccept(b, start, accept, map[StateID]bool{}) {
		t.Fatalf("precondition failed: original start should epsilon-reach accept")
	}

	newStart := Disemptify(b, start, accept)
	if epsilonReachesAccept(b, newStart, accept, map[StateID]bool{}) {
		t.Fatalf("disemptified start must not epsilon-reach accept")
	}
}

// findFirstRange walks Split/Epsilon edges to find the first Range state
// reachable, used only to sanity-check that a consuming path still exists
// after Disemptify.
func findFirstRange(b *Builder, id StateID, seen map[StateID]bool) StateID {
	if seen[id] {
		return InvalidState
	}
	seen[id] = true
	s := &b.states[id]
	switch s.kind {
	case StateRange:
		return id
	case StateEpsilon:
		return findFirstRange(b, s.next, seen)
	case StateSplit:
		if r := findFirstRange(b, s.left, seen); r != InvalidState {
			return r
		}
		return findFirstRange(b, s.right, seen)
	default:
		return InvalidState
	}
}

func TestDisemptifyPreservesNonEmptyPaths(t *testing.T) {
	b := NewBuilder()
	accept := b.AddAccept()
	start := MaybeRepeat(CharRange{Lo: 'a', Hi: 'a'}).AddToNFA(b, accept)
	newStart := Disemptify(b, start, accept)

	r := findFirstRange(b, newStart, map[StateID]bool{})
	if r == InvalidState {
		t.Fatalf("expected a surviving consuming path after disemptify")
	}
	lo, hi, _ := b.states[r].Range()
	if lo != 'a' || hi != 'a' {
		t.Fatalf("unexpected surviving range: [%d,%d]", lo, hi)
	}
}

func TestDisemptifyNoOpWhenAlreadyNonEmpty(t *testing.T) {
	b := NewBuilder()
	accept := b.AddAccept()
	start := Str("cat").AddToNFA(b, accept)
	newStart := Disemptify(b, start, accept)
	if newStart != start {
		t.Fatalf("expected disemptify to return the original start unchanged when it already consumes a code unit")
	}
}
