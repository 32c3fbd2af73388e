package dfa

import (
	"encoding"
	"encoding/binary"
	"fmt"

	"github.com/dekarrin/rezi"
)

// This file gives the wire mirror types their own hand-rolled binary codec
// rather than leaning on rezi's reflection: rezi.EncBinary/DecBinary (v1.0.1,
// pinned in go.mod) are entry points for encoding.BinaryMarshaler /
// BinaryUnmarshaler, not a generic struct walker, so every type that crosses
// them needs its own MarshalBinary/UnmarshalBinary. Grounded on
// dekarrin-tunaq's tunascript/binary.go: a length-prefixed int encoding, a
// length-prefixed wrapper around a nested BinaryMarshaler, and per-type
// Marshal/UnmarshalBinary methods built out of those two primitives.

// encBinaryInt encodes i as a signed varint, matching tunascript/binary.go's
// encBinaryInt.
func encBinaryInt(i int) []byte {
	enc := make([]byte, 0, 8)
	return binary.AppendVarint(enc, int64(i))
}

// decBinaryInt decodes a signed varint and reports the bytes consumed.
func decBinaryInt(data []byte) (int, int, error) {
	val, read := binary.Varint(data)
	if read == 0 {
		return 0, 0, fmt.Errorf("dfa: unexpected end of data decoding int")
	} else if read < 0 {
		return 0, 0, fmt.Errorf("dfa: varint value larger than 64 bits")
	}
	return int(val), read, nil
}

// encBinaryBytes length-prefixes a raw byte slice.
func encBinaryBytes(b []byte) []byte {
	enc := encBinaryInt(len(b))
	enc = append(enc, b...)
	return enc
}

// decBinaryBytes decodes a length-prefixed byte slice and reports the bytes
// consumed.
func decBinaryBytes(data []byte) ([]byte, int, error) {
	n, readBytes, err := decBinaryInt(data)
	if err != nil {
		return nil, 0, err
	}
	data = data[readBytes:]
	if n < 0 || len(data) < n {
		return nil, 0, fmt.Errorf("dfa: unexpected end of data decoding bytes")
	}
	out := append([]byte(nil), data[:n]...)
	return out, readBytes + n, nil
}

// encBinary length-prefixes the MarshalBinary output of a nested value, the
// same wrapper tunascript/binary.go uses to nest one BinaryMarshaler inside
// another's encoding.
func encBinary(b encoding.BinaryMarshaler) []byte {
	enc, _ := b.MarshalBinary()
	return append(encBinaryInt(len(enc)), enc...)
}

// decBinary decodes a length-prefixed nested value produced by encBinary and
// reports the total bytes consumed.
func decBinary(data []byte, b encoding.BinaryUnmarshaler) (int, error) {
	n, readBytes, err := decBinaryInt(data)
	if err != nil {
		return 0, err
	}
	data = data[readBytes:]
	if n < 0 || len(data) < n {
		return 0, fmt.Errorf("dfa: unexpected end of data decoding nested value")
	}
	if err := b.UnmarshalBinary(data[:n]); err != nil {
		return 0, err
	}
	return readBytes + n, nil
}

// wireRangeTarget and wireState mirror RangeTarget/tableState but hold a
// label's already-encoded bytes instead of the label itself: a bare type
// parameter L has no fixed wire shape of its own, so labels are turned into
// bytes by a caller-supplied function before they ever reach these types.
//
// Label was deliberately not required to implement encoding.BinaryMarshaler
// / BinaryUnmarshaler directly: BinaryUnmarshaler's UnmarshalBinary needs a
// pointer receiver to mutate the value in place, and a single type
// parameter's constraint interface can only describe L's own method set, not
// *L's - expressing "the pointer type satisfies this interface" needs the
// two-type-parameter PL *L pattern, which is more machinery than this
// package's persistence needs justify.
type wireRangeTarget struct {
	Lo, Hi uint16
	Next   int
}

func (t wireRangeTarget) MarshalBinary() ([]byte, error) {
	var data []byte
	data = append(data, encBinaryInt(int(t.Lo))...)
	data = append(data, encBinaryInt(int(t.Hi))...)
	data = append(data, encBinaryInt(t.Next)...)
	return data, nil
}

func (t *wireRangeTarget) UnmarshalBinary(data []byte) error {
	lo, readBytes, err := decBinaryInt(data)
	if err != nil {
		return err
	}
	data = data[readBytes:]

	hi, readBytes, err := decBinaryInt(data)
	if err != nil {
		return err
	}
	data = data[readBytes:]

	next, _, err := decBinaryInt(data)
	if err != nil {
		return err
	}

	t.Lo, t.Hi, t.Next = uint16(lo), uint16(hi), next
	return nil
}

type wireState struct {
	Transitions []wireRangeTarget
	Label       []byte
	HasLabel    bool
}

func (s wireState) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, encBinaryInt(len(s.Transitions))...)
	for _, t := range s.Transitions {
		data = append(data, encBinary(t)...)
	}

	data = append(data, encBinaryBytes(s.Label)...)

	if s.HasLabel {
		data = append(data, 1)
	} else {
		data = append(data, 0)
	}

	return data, nil
}

func (s *wireState) UnmarshalBinary(data []byte) error {
	count, readBytes, err := decBinaryInt(data)
	if err != nil {
		return err
	}
	data = data[readBytes:]

	s.Transitions = make([]wireRangeTarget, count)
	for i := 0; i < count; i++ {
		var t wireRangeTarget
		readBytes, err := decBinary(data, &t)
		if err != nil {
			return err
		}
		data = data[readBytes:]
		s.Transitions[i] = t
	}

	s.Label, readBytes, err = decBinaryBytes(data)
	if err != nil {
		return err
	}
	data = data[readBytes:]

	if len(data) < 1 {
		return fmt.Errorf("dfa: unexpected end of data decoding HasLabel")
	}
	s.HasLabel = data[0] == 1

	return nil
}

type wireDFA struct {
	States []wireState
	Starts []int
}

func (w wireDFA) MarshalBinary() ([]byte, error) {
	var data []byte

	data = append(data, encBinaryInt(len(w.States))...)
	for _, s := range w.States {
		data = append(data, encBinary(s)...)
	}

	data = append(data, encBinaryInt(len(w.Starts))...)
	for _, s := range w.Starts {
		data = append(data, encBinaryInt(s)...)
	}

	return data, nil
}

func (w *wireDFA) UnmarshalBinary(data []byte) error {
	stateCount, readBytes, err := decBinaryInt(data)
	if err != nil {
		return err
	}
	data = data[readBytes:]

	w.States = make([]wireState, stateCount)
	for i := 0; i < stateCount; i++ {
		var s wireState
		readBytes, err := decBinary(data, &s)
		if err != nil {
			return err
		}
		data = data[readBytes:]
		w.States[i] = s
	}

	startCount, readBytes, err := decBinaryInt(data)
	if err != nil {
		return err
	}
	data = data[readBytes:]

	w.Starts = make([]int, startCount)
	for i := 0; i < startCount; i++ {
		v, readBytes, err := decBinaryInt(data)
		if err != nil {
			return err
		}
		data = data[readBytes:]
		w.Starts[i] = v
	}

	return nil
}

// MarshalBinary encodes d for persistence (§6.5). encodeLabel produces
// the wire bytes for one accept label; it is called once per labeled state,
// in state-index order.
func (d *MinimizedDFA[L]) MarshalBinary(encodeLabel func(L) ([]byte, error)) ([]byte, error) {
	w := wireDFA{
		States: make([]wireState, len(d.states)),
		Starts: append([]int(nil), d.starts...),
	}
	for i, st := range d.states {
		ws := wireState{
			Transitions: make([]wireRangeTarget, len(st.transitions)),
			HasLabel:    st.hasLabel,
		}
		for j, t := range st.transitions {
			ws.Transitions[j] = wireRangeTarget{Lo: t.Lo, Hi: t.Hi, Next: t.Next}
		}
		if st.hasLabel {
			b, err := encodeLabel(st.label)
			if err != nil {
				return nil, &SerializeError{Cause: err}
			}
			ws.Label = b
		}
		w.States[i] = ws
	}
	return rezi.EncBinary(w), nil
}

// UnmarshalMinimizedDFA decodes a MinimizedDFA previously produced by
// MarshalBinary. decodeLabel is the inverse of the encodeLabel used to
// produce data, called once per labeled state.
func UnmarshalMinimizedDFA[L Label](data []byte, decodeLabel func([]byte) (L, error)) (*MinimizedDFA[L], error) {
	var w wireDFA
	if _, err := rezi.DecBinary(data, &w); err != nil {
		return nil, &SerializeError{Cause: err}
	}

	states := make([]tableState[L], len(w.States))
	for i, ws := range w.States {
		st := tableState[L]{
			transitions: make([]RangeTarget, len(ws.Transitions)),
			hasLabel:    ws.HasLabel,
		}
		for j, t := range ws.Transitions {
			st.transitions[j] = RangeTarget{Lo: t.Lo, Hi: t.Hi, Next: t.Next}
		}
		if ws.HasLabel {
			lbl, err := decodeLabel(ws.Label)
			if err != nil {
				return nil, &SerializeError{Cause: err}
			}
			st.label = lbl
		}
		states[i] = st
	}

	return &MinimizedDFA[L]{states: states, starts: w.Starts}, nil
}
