package nfa

import "github.com/coregx/lexdfa/internal/conv"

// Builder incrementally assembles an NFA arena. States are appended and
// forward-referenced by ID before their real content exists (Patch/PatchSplit
// fill in the target once it is known), which is how splits and loops get
// wired without requiring states to be built in dependency order.
type Builder struct {
	states []State
	starts []StateID
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// NewBuilderWithCapacity creates an empty Builder with preallocated arena
// capacity, avoiding repeated growth for NFAs of a known approximate size.
func NewBuilderWithCapacity(capacity int) *Builder {
	return &Builder{states: make([]State, 0, capacity)}
}

// AddAccept allocates a new accepting state and returns its ID.
func (b *Builder) AddAccept() StateID {
	id := StateID(conv.IntToUint32(len(b.states)))
	b.states = append(b.states, State{kind: StateAccept})
	return id
}

// AddRange allocates a state that consumes one code unit in [lo,hi] and
// transitions to next.
func (b *Builder) AddRange(lo, hi uint16, next StateID) StateID {
	id := StateID(conv.IntToUint32(len(b.states)))
	b.states = append(b.states, State{kind: StateRange, lo: lo, hi: hi, next: next})
	return id
}

// AddSparse allocates a state dispatching across multiple disjoint ranges,
// each with its own target. Used for character classes.
func (b *Builder) AddSparse(transitions []RangeTransition) StateID {
	id := StateID(conv.IntToUint32(len(b.states)))
	b.states = append(b.states, State{kind: StateSparse, transitions: transitions})
	return id
}

// AddSplit allocates an unlabeled branch to two states (alternation,
// repetition).
func (b *Builder) AddSplit(left, right StateID) StateID {
	id := StateID(conv.IntToUint32(len(b.states)))
	b.states = append(b.states, State{kind: StateSplit, left: left, right: right})
	return id
}

// AddEpsilon allocates an unlabeled transition to a single state.
func (b *Builder) AddEpsilon(next StateID) StateID {
	id := StateID(conv.IntToUint32(len(b.states)))
	b.states = append(b.states, State{kind: StateEpsilon, next: next})
	return id
}

// Patch rewrites the forward-reference target of a Range or Epsilon state.
// Returns a *BuildError if stateID does not name such a state.
func (b *Builder) Patch(stateID StateID, target StateID) error {
	if int(stateID) >= len(b.states) {
		return &BuildError{Message: "patch of out-of-range state", StateID: stateID}
	}
	s := &b.states[stateID]
	switch s.kind {
	case StateRange:
		s.next = target
	case StateEpsilon:
		s.next = target
	default:
		return &BuildError{Message: "patch target is not a Range or Epsilon state", StateID: stateID}
	}
	return nil
}

// PatchSplit rewrites both forward-reference targets of a Split state.
func (b *Builder) PatchSplit(stateID StateID, left, right StateID) error {
	if int(stateID) >= len(b.states) {
		return &BuildError{Message: "patch of out-of-range state", StateID: stateID}
	}
	s := &b.states[stateID]
	if s.kind != StateSplit {
		return &BuildError{Message: "patch target is not a Split state", StateID: stateID}
	}
	s.left, s.right = left, right
	return nil
}

// States returns the number of states currently in the arena.
func (b *Builder) States() int { return len(b.states) }

// SetStarts records the ordered list of start states, one per requested
// language, mirroring the caller's language list.
func (b *Builder) SetStarts(starts []StateID) {
	b.starts = starts
}

// Validate checks that every transition target names an allocated state.
func (b *Builder) Validate() error {
	n := StateID(conv.IntToUint32(len(b.states)))
	check := func(id StateID) error {
		if id >= n {
			return &BuildError{Message: "transition target out of range", StateID: id}
		}
		return nil
	}
	for i := range b.states {
		s := &b.states[i]
		switch s.kind {
		case StateRange:
			if err := check(s.next); err != nil {
				return err
			}
		case StateEpsilon:
			if err := check(s.next); err != nil {
				return err
			}
		case StateSplit:
			if err := check(s.left); err != nil {
				return err
			}
			if err := check(s.right); err != nil {
				return err
			}
		case StateSparse:
			for _, t := range s.transitions {
				if err := check(t.Next); err != nil {
					return err
				}
			}
		}
	}
	for _, st := range b.starts {
		if err := check(st); err != nil {
			return err
		}
	}
	return nil
}

// Build finalizes the arena into an immutable NFA. The Builder must not be
// reused afterward.
func (b *Builder) Build() (*NFA, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &NFA{states: b.states, starts: b.starts}, nil
}
