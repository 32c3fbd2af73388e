// Package lexdfa builds minimized DFAs from labeled pattern sets: pattern
// assembly into an NFA, subset construction, Hopcroft-style minimization
// shared across every requested language, and a derived reverse-finder DFA
// used to locate match start positions by scanning backward from
// end-of-input.
package lexdfa

import (
	"github.com/coregx/lexdfa/dfa"
	"github.com/coregx/lexdfa/nfa"
)

// Label is the constraint a result label must satisfy: usable as a Go map
// key, and able to contribute bytes to a content fingerprint (§4.7). Defined
// as an alias of dfa.Label so callers only need to learn one constraint
// across both packages.
type Label = dfa.Label

// Accumulator gathers patterns grouped by the label they terminate in,
// preserving insertion order (§4.1's insertion-ordered mapping requirement).
// Build and BuildReverseFinders read it to assemble requested language
// subsets into NFA start states.
// nfa.Builder favors a flat arena over a generic container, which this
// mirrors by keeping the accumulator a plain struct with an explicit order
// slice rather than reaching for a generic ordered-map library.
type Accumulator[L Label] struct {
	patterns map[L][]nfa.Pattern
	order    []L
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator[L Label]() *Accumulator[L] {
	return &Accumulator[L]{patterns: make(map[L][]nfa.Pattern)}
}

// Add appends a pattern to the list matched by label, registering label in
// insertion order the first time it is seen.
func (a *Accumulator[L]) Add(label L, p nfa.Pattern) {
	if _, ok := a.patterns[label]; !ok {
		a.order = append(a.order, label)
	}
	a.patterns[label] = append(a.patterns[label], p)
}

// Labels returns every registered label in insertion order.
func (a *Accumulator[L]) Labels() []L {
	return append([]L(nil), a.order...)
}

// Patterns returns the patterns registered under label, in insertion order.
func (a *Accumulator[L]) Patterns(label L) []nfa.Pattern {
	return a.patterns[label]
}

// Clear empties the accumulator, discarding every registered label and
// pattern (§4.1's required `clear()` operation).
func (a *Accumulator[L]) Clear() {
	a.patterns = make(map[L][]nfa.Pattern)
	a.order = nil
}
