package nfa

// AddDeadSink allocates a state with no outgoing transitions and no accept
// label: a proper dead state, distinct from "this path never existed",
// reachable only through edges deliberately wired to it. Disemptify uses it
// to prune zero-length paths to an accept state.
func (b *Builder) AddDeadSink() StateID {
	return b.AddSparse(nil)
}

// Disemptify rewrites start so that it no longer accepts the empty string
// via accept, while preserving every path of length >= 1 that originally
// reached accept. It returns the new start state. A start that is itself a
// Range or Sparse state has no zero-length path and is returned unchanged;
// otherwise the returned start is a clone, and loops that pass back through
// the original start (as in a repetition) still reference it.
//
// This is the reverse-finder's "remove empty-string acceptance" step
// (§4.5 step 3, and the Disemptify open question in §9): the subgraph
// reachable from start via epsilon/split edges alone is walked and cloned,
// pruning any branch whose entire epsilon-only path lands on accept; any
// branch that first crosses a Range or Sparse transition (i.e. has already
// consumed a code unit) is left untouched and shared, not cloned, since
// nothing past that point can be a zero-length path to accept.
func Disemptify(b *Builder, start, accept StateID) StateID {
	deadSink := b.AddDeadSink()
	memo := make(map[StateID]StateID)
	return disemptify(b, start, accept, deadSink, memo)
}

func disemptify(b *Builder, id, accept, deadSink StateID, memo map[StateID]StateID) StateID {
	if id == accept {
		return deadSink
	}
	if v, ok := memo[id]; ok {
		return v
	}

	s := &b.states[id]
	switch s.kind {
	case StateEpsilon:
		placeholder := b.AddEpsilon(InvalidState)
		memo[id] = placeholder
		target := disemptify(b, s.next, accept, deadSink, memo)
		_ = b.Patch(placeholder, target)
		return placeholder

	case StateSplit:
		placeholder := b.AddSplit(InvalidState, InvalidState)
		memo[id] = placeholder
		left := disemptify(b, s.left, accept, deadSink, memo)
		right := disemptify(b, s.right, accept, deadSink, memo)
		_ = b.PatchSplit(placeholder, left, right)
		return placeholder

	default:
		// Range, Sparse, or a distinct Accept state: this path has already
		// consumed a code unit (or accepts under a different label), so it
		// is shared as-is rather than cloned.
		memo[id] = id
		return id
	}
}
