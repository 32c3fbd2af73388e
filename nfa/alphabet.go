package nfa

import "sort"

// RangeEntry pairs a character range with an opaque caller payload (in
// practice, an NFA target-state set). It is the unit subset construction
// feeds into DisjointCover when it needs a maximal disjoint covering of the
// ranges actually in use by a DFA state's member NFA states.
type RangeEntry struct {
	Range   CharRange
	Payload int // index into the caller's own payload slice
}

// DisjointCover splits a (possibly overlapping) set of character ranges into
// the maximal disjoint covering of code units actually used: for every
// elementary interval, it reports which entries' ranges cover that interval.
// Entries are returned sorted by lower bound, ties broken by upper bound,
// which is required for deterministic construction (spec: "sort ranges by
// lower bound and break ties by upper bound").
//
// This generalizes the fixed 256-slot byte boundary-bitset technique to the
// 16-bit code-unit domain: rather than a fixed-size array indexed by byte
// value, boundaries are tracked as a sorted slice of the 32-bit positions
// where a range starts or ends, since a fixed array over 65536 values would
// be wasteful relative to the number of distinct pattern ranges actually in
// use.
func DisjointCover(entries []RangeEntry) []Interval {
	if len(entries) == 0 {
		return nil
	}

	// Collect boundary points. Each range [lo,hi] contributes a boundary at
	// lo (a new interval starts here) and at hi+1 (the interval after this
	// range ends), using uint32 to avoid overflow when hi == 0xFFFF.
	boundarySet := make(map[uint32]struct{}, len(entries)*2)
	for _, e := range entries {
		boundarySet[uint32(e.Range.Lo)] = struct{}{}
		end := uint32(e.Range.Hi) + 1
		boundarySet[end] = struct{}{}
	}
	bounds := make([]uint32, 0, len(boundarySet))
	for b := range boundarySet {
		bounds = append(bounds, b)
	}
	sort.Slice(bounds, func(i, j int) bool { return bounds[i] < bounds[j] })

	var intervals []Interval
	for i := 0; i+1 < len(bounds); i++ {
		lo := bounds[i]
		hi := bounds[i+1] - 1
		if lo > 0xFFFF {
			break
		}
		var members []int
		for _, e := range entries {
			if uint32(e.Range.Lo) <= lo && hi <= uint32(e.Range.Hi) {
				members = append(members, e.Payload)
			}
		}
		if len(members) == 0 {
			continue
		}
		intervals = append(intervals, Interval{
			Range:    CharRange{Lo: uint16(lo), Hi: uint16(hi)},
			Payloads: members,
		})
	}
	return intervals
}

// Interval is one maximal elementary sub-range produced by DisjointCover,
// together with the payload indices of every input entry whose range
// covers it.
type Interval struct {
	Range    CharRange
	Payloads []int
}
