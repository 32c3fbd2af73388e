// Package dfa implements subset ("powerset") construction and Hopcroft-style
// minimization over the nfa package's arena-based NFAs, plus the immutable
// artifact the result is packaged as.
//
// Construction here is batch and one-shot: Subset and Minimize always run
// over every requested start state together, so equivalent states across
// languages are shared in the final table (§4.4's "globally minimized
// shared structure").
package dfa

import "github.com/coregx/lexdfa/nfa"

// Label is the constraint this package requires of a caller-supplied result
// label: it must be usable as a Go map key (comparable) and must be able to
// contribute bytes to a content fingerprint (§4.7's "opaque,
// equality-comparable, hashable, content fingerprintable" label); comparable
// plus Fingerprint is the natural Go rendering of that requirement.
type Label interface {
	comparable
	Fingerprint() []byte
}

// RangeTarget is one transition of a DFA state: consuming a code unit in
// [Lo,Hi] moves to the state at index Next within the same table.
type RangeTarget struct {
	Lo, Hi uint16
	Next   int
}

// tableState is the shape shared by RawDFA and MinimizedDFA: a compact,
// disjoint transition table plus an optional accept label.
type tableState[L Label] struct {
	transitions []RangeTarget
	label       L
	hasLabel    bool
}

// RawDFA is the transient output of subset construction (§3 "Raw
// DFA"): states indexed 0..N-1, no epsilons, transitions already split into
// disjoint ranges, but not yet minimized and possibly containing
// unreachable or behaviorally-equivalent states.
type RawDFA[L Label] struct {
	states []tableState[L]
	starts []int
}

// MinimizedDFA is the immutable, canonical result of minimization (§3
// "Minimized DFA"): no two distinct states are behaviorally equivalent.
// It owns its transition tables exclusively and is safe for unsynchronized
// concurrent reads.
type MinimizedDFA[L Label] struct {
	states []tableState[L]
	starts []int
}

// StartStates returns one State per requested language, in the order the
// caller's language list was given (§6.4).
func (d *MinimizedDFA[L]) StartStates() []*State[L] {
	out := make([]*State[L], len(d.starts))
	for i, idx := range d.starts {
		out[i] = &State[L]{dfa: d, idx: idx}
	}
	return out
}

// NumStates reports the number of states in the minimized table.
func (d *MinimizedDFA[L]) NumStates() int { return len(d.states) }

// State is the external, read-only view of one DFA state (§6.4). The
// matcher component (out of scope for this module) uses only Next and
// Match.
type State[L Label] struct {
	dfa *MinimizedDFA[L]
	idx int
}

// Next consumes one code unit and returns the resulting state, or
// (nil, false) if no transition covers it (the implicit dead sink).
func (s *State[L]) Next(codeUnit uint16) (*State[L], bool) {
	trans := s.dfa.states[s.idx].transitions
	// Transitions are sorted by Lo (construction invariant), so a linear
	// scan suffices; states rarely have enough distinct ranges to justify
	// a binary search, and this keeps the artifact simple to serialize.
	for _, t := range trans {
		if codeUnit < t.Lo {
			break
		}
		if codeUnit <= t.Hi {
			return &State[L]{dfa: s.dfa, idx: t.Next}, true
		}
	}
	return nil, false
}

// Match reports the accept label of this state, if any.
func (s *State[L]) Match() (L, bool) {
	st := &s.dfa.states[s.idx]
	return st.label, st.hasLabel
}

// Index returns the state's position within its table. Exposed for
// serialization and testing; not part of the matcher-facing contract.
func (s *State[L]) Index() int { return s.idx }

// BuildFromNFA is the shared tail used by both the forward and reverse
// construction pipelines (§4.6): it runs subset construction followed
// by minimization directly against a caller-supplied NFA and start list.
func BuildFromNFA[L Label](n *nfa.NFA, labelOf func(nfa.StateID) (L, bool), resolver Resolver[L]) (*MinimizedDFA[L], error) {
	raw, err := Subset(n, labelOf, resolver)
	if err != nil {
		return nil, err
	}
	return Minimize(raw), nil
}
