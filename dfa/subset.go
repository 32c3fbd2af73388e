package dfa

import (
	"sort"

	"github.com/coregx/lexdfa/internal/conv"
	"github.com/coregx/lexdfa/internal/sparse"
	"github.com/coregx/lexdfa/nfa"
)

// closureKey packs a sorted, deduplicated slice of nfa.StateID directly into
// a string used as a map key. This is deliberately not a hash: two closures
// produce equal keys if and only if they contain the same state set, which
// is the "set equality drives hashing" invariant subset construction needs.
// Grounded on aretext's intSliceKeyMaker (syntax/parser/automata.go), which
// solves the same canonical-identity problem for its own subset
// construction by packing sorted int slices into string keys rather than
// hashing them.
func closureKey(ids []nfa.StateID) string {
	if len(ids) == 0 {
		return ""
	}
	buf := make([]byte, len(ids)*4)
	for i, id := range ids {
		buf[i*4] = byte(id)
		buf[i*4+1] = byte(id >> 8)
		buf[i*4+2] = byte(id >> 16)
		buf[i*4+3] = byte(id >> 24)
	}
	return string(buf)
}

// epsilonClosure computes the set of states reachable from the given
// starting states via only Split and Epsilon transitions, inclusive of the
// starting states themselves. The returned slice is sorted and deduplicated
// so it can be used as a canonical identity for the closure.
//
// Mirrors dfa/lazy/builder.go's epsilonClosure: an iterative worklist over
// Split/Epsilon states, using a sparse.SparseSet as the O(1) visited
// tracker instead of a map.
func epsilonClosure(n *nfa.NFA, starts []nfa.StateID) []nfa.StateID {
	visited := sparse.NewSparseSet(conv.IntToUint32(n.States()))
	var worklist []nfa.StateID
	worklist = append(worklist, starts...)

	for len(worklist) > 0 {
		id := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if visited.Contains(uint32(id)) {
			continue
		}
		visited.Insert(uint32(id))

		s := n.State(id)
		if s == nil {
			continue
		}
		switch s.Kind() {
		case nfa.StateEpsilon:
			worklist = append(worklist, s.Epsilon())
		case nfa.StateSplit:
			left, right := s.Split()
			worklist = append(worklist, left, right)
		}
	}

	out := make([]nfa.StateID, 0, visited.Size())
	for _, v := range visited.Values() {
		out = append(out, nfa.StateID(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// dfaWorkState is the in-progress record for one discovered DFA state during
// subset construction: its member NFA closure. Its transitions and label are
// computed in the main loop below and stored in the RawDFA's states slice.
type dfaWorkState struct {
	closure []nfa.StateID
}

// Subset performs powerset construction over n, starting from every state in
// n.Starts() (§4.3 "one raw DFA shared across all requested start
// states"). labelOf maps an NFA accept StateID back to the language label it
// terminates, if any. A nil resolver is replaced by DefaultResolver, which
// always fails on genuine ambiguity.
func Subset[L Label](n *nfa.NFA, labelOf func(nfa.StateID) (L, bool), resolver Resolver[L]) (*RawDFA[L], error) {
	if resolver == nil {
		resolver = DefaultResolver[L]()
	}

	keyToIndex := make(map[string]int)
	var work []dfaWorkState

	internClosure := func(closure []nfa.StateID) int {
		key := closureKey(closure)
		if idx, ok := keyToIndex[key]; ok {
			return idx
		}
		idx := len(work)
		keyToIndex[key] = idx
		work = append(work, dfaWorkState{closure: closure})
		return idx
	}

	starts := make([]int, len(n.Starts()))
	for i, s := range n.Starts() {
		starts[i] = internClosure(epsilonClosure(n, []nfa.StateID{s}))
	}

	states := make([]tableState[L], 0)

	// work grows as transitions are discovered; process by index rather
	// than range so newly-interned states are visited in the same pass.
	for idx := 0; idx < len(work); idx++ {
		closure := work[idx].closure

		var entries []nfa.RangeEntry
		var targets []nfa.StateID // targets[payload] is the arc's destination
		var acceptSources []nfa.StateID

		for _, id := range closure {
			s := n.State(id)
			if s == nil {
				continue
			}
			switch s.Kind() {
			case nfa.StateAccept:
				acceptSources = append(acceptSources, id)
			case nfa.StateRange:
				lo, hi, next := s.Range()
				payload := len(targets)
				targets = append(targets, next)
				entries = append(entries, nfa.RangeEntry{Range: nfa.CharRange{Lo: lo, Hi: hi}, Payload: payload})
			case nfa.StateSparse:
				for _, tr := range s.Sparse() {
					payload := len(targets)
					targets = append(targets, tr.Next)
					entries = append(entries, nfa.RangeEntry{Range: nfa.CharRange{Lo: tr.Lo, Hi: tr.Hi}, Payload: payload})
				}
			}
		}

		intervals := nfa.DisjointCover(entries)
		transitions := make([]RangeTarget, 0, len(intervals))
		for _, iv := range intervals {
			union := make([]nfa.StateID, 0, len(iv.Payloads))
			for _, p := range iv.Payloads {
				union = append(union, targets[p])
			}
			nextClosure := epsilonClosure(n, union)
			nextIdx := internClosure(nextClosure)
			transitions = append(transitions, RangeTarget{Lo: iv.Range.Lo, Hi: iv.Range.Hi, Next: nextIdx})
		}
		sort.Slice(transitions, func(i, j int) bool { return transitions[i].Lo < transitions[j].Lo })

		label, hasLabel, err := resolveAcceptLabel(acceptSources, labelOf, resolver)
		if err != nil {
			return nil, err
		}

		// transitions discovered above may have interned new work entries
		// past idx; grow states to keep pace before indexing into it.
		for len(states) <= idx {
			states = append(states, tableState[L]{})
		}
		states[idx] = tableState[L]{transitions: transitions, label: label, hasLabel: hasLabel}
	}

	return &RawDFA[L]{states: states, starts: starts}, nil
}

// resolveAcceptLabel collapses the accept states reachable in a closure into
// at most one label: zero accept sources means no label, exactly one
// distinct label is used directly, and more than one distinct label is
// handed to resolver (§6.2 "labels are deduplicated before the resolver
// is invoked; the resolver only runs on genuine conflicts").
func resolveAcceptLabel[L Label](acceptSources []nfa.StateID, labelOf func(nfa.StateID) (L, bool), resolver Resolver[L]) (L, bool, error) {
	var zero L
	var labels []L
	seen := make(map[L]bool)
	for _, id := range acceptSources {
		lbl, ok := labelOf(id)
		if !ok {
			continue
		}
		if !seen[lbl] {
			seen[lbl] = true
			labels = append(labels, lbl)
		}
	}
	switch len(labels) {
	case 0:
		return zero, false, nil
	case 1:
		return labels[0], true, nil
	default:
		chosen, err := resolver(labels)
		if err != nil {
			return zero, false, err
		}
		return chosen, true, nil
	}
}
