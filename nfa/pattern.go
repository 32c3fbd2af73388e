package nfa

import "encoding/binary"

// Pattern is the capability contract a pattern descriptor must satisfy
// (§6.1). It contributes a sub-NFA that, starting from the returned
// entry state, reaches accept iff the input matches the pattern. The core
// never inspects a Pattern's internals beyond this contract; it is modeled
// here as a sum type of small composable structs rather than an interpreter
// over pattern syntax, since parsing pattern surface syntax is out of scope.
//
// Fingerprint deterministically serializes the pattern's own structure so a
// content fingerprint can include "each pattern" (§4.7), not just the label
// it terminates in. It is a structural identity, not a semantic one: two
// patterns that accept the same language but are built differently (e.g.
// Union{A,B} vs Union{B,A}) fingerprint differently, which is the cheaper
// and sufficient property a cache key needs.
type Pattern interface {
	AddToNFA(b *Builder, accept StateID) StateID
	Reversed() Pattern
	Fingerprint() []byte
}

const (
	fpTagRange byte = iota + 1
	fpTagLiteral
	fpTagConcat
	fpTagUnion
	fpTagRepeat
)

// appendUint16 appends v as two big-endian bytes.
func appendUint16(dst []byte, v uint16) []byte {
	return append(dst, byte(v>>8), byte(v))
}

// appendLenPrefixed appends b prefixed with its length as a big-endian
// uint32, so a fingerprint containing nested sub-fingerprints can be parsed
// back into its components unambiguously (not that anything currently
// parses a fingerprint back; this only needs to support byte-for-byte
// comparison and hashing).
func appendLenPrefixed(dst []byte, b []byte) []byte {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
	dst = append(dst, lenBuf[:]...)
	return append(dst, b...)
}

// RangePattern matches exactly one code unit within Range.
type RangePattern struct {
	Range CharRange
}

// Range builds a RangePattern matching any single code unit in [lo,hi].
func Range(lo, hi uint16) Pattern {
	return RangePattern{Range: CharRange{Lo: lo, Hi: hi}}
}

func (p RangePattern) AddToNFA(b *Builder, accept StateID) StateID {
	return b.AddRange(p.Range.Lo, p.Range.Hi, accept)
}

// Reversed is the identity: a single-symbol pattern reads the same
// backward as forward.
func (p RangePattern) Reversed() Pattern { return p }

func (p RangePattern) Fingerprint() []byte {
	b := []byte{fpTagRange}
	b = appendUint16(b, p.Range.Lo)
	b = appendUint16(b, p.Range.Hi)
	return b
}

// Literal matches an exact sequence of code units, in order.
type Literal struct {
	Units []uint16
}

// Str builds a Literal pattern from a string, treating it as a sequence of
// 16-bit code units (one per rune in the Basic Multilingual Plane; this
// module does not special-case UTF-16 surrogate pairs, in keeping with the
// Unicode-normalization non-goal).
func Str(s string) Pattern {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		units = append(units, uint16(r))
	}
	return Literal{Units: units}
}

func (p Literal) AddToNFA(b *Builder, accept StateID) StateID {
	cur := accept
	for i := len(p.Units) - 1; i >= 0; i-- {
		cur = b.AddRange(p.Units[i], p.Units[i], cur)
	}
	return cur
}

func (p Literal) Reversed() Pattern {
	rev := make([]uint16, len(p.Units))
	for i, u := range p.Units {
		rev[len(p.Units)-1-i] = u
	}
	return Literal{Units: rev}
}

func (p Literal) Fingerprint() []byte {
	b := []byte{fpTagLiteral}
	var countBuf [4]byte
	binary.BigEndian.PutUint32(countBuf[:], uint32(len(p.Units)))
	b = append(b, countBuf[:]...)
	for _, u := range p.Units {
		b = appendUint16(b, u)
	}
	return b
}

// Concat matches A followed immediately by B.
type Concat struct {
	A, B Pattern
}

func (p Concat) AddToNFA(b *Builder, accept StateID) StateID {
	mid := p.B.AddToNFA(b, accept)
	return p.A.AddToNFA(b, mid)
}

func (p Concat) Reversed() Pattern {
	return Concat{A: p.B.Reversed(), B: p.A.Reversed()}
}

func (p Concat) Fingerprint() []byte {
	b := []byte{fpTagConcat}
	b = appendLenPrefixed(b, p.A.Fingerprint())
	b = appendLenPrefixed(b, p.B.Fingerprint())
	return b
}

// Union matches A or B.
type Union struct {
	A, B Pattern
}

func (p Union) AddToNFA(b *Builder, accept StateID) StateID {
	left := p.A.AddToNFA(b, accept)
	right := p.B.AddToNFA(b, accept)
	return b.AddSplit(left, right)
}

func (p Union) Reversed() Pattern {
	return Union{A: p.A.Reversed(), B: p.B.Reversed()}
}

func (p Union) Fingerprint() []byte {
	b := []byte{fpTagUnion}
	b = appendLenPrefixed(b, p.A.Fingerprint())
	b = appendLenPrefixed(b, p.B.Fingerprint())
	return b
}

// Repeat matches zero or more repetitions of P (Kleene star).
type Repeat struct {
	P Pattern
}

func (p Repeat) AddToNFA(b *Builder, accept StateID) StateID {
	split := b.AddSplit(InvalidState, InvalidState)
	entry := p.P.AddToNFA(b, split)
	// PatchSplit cannot fail here: split was just allocated by this call.
	_ = b.PatchSplit(split, entry, accept)
	return split
}

func (p Repeat) Reversed() Pattern {
	return Repeat{P: p.P.Reversed()}
}

func (p Repeat) Fingerprint() []byte {
	b := []byte{fpTagRepeat}
	b = appendLenPrefixed(b, p.P.Fingerprint())
	return b
}

// OnePlus matches one or more repetitions of p (p followed by zero-or-more
// more of p). Expressed in terms of Concat/Repeat rather than as its own
// Thompson construction, since there's no library primitive for it beyond
// MaybeRepeat.
func OnePlus(p Pattern) Pattern {
	return Concat{A: p, B: Repeat{P: p}}
}

// MaybeRepeat yields a zero-or-more sub-automaton over a single character
// range (§6.1 library primitive).
func MaybeRepeat(r CharRange) Pattern {
	return Repeat{P: RangePattern{Range: r}}
}
