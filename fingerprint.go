package lexdfa

import (
	"crypto/sha1"
	"encoding/base32"
	"encoding/binary"
	"hash"
)

// dfaTypeForward distinguishes a forward build's fingerprint stream from a
// reverse finder's (§4.7 "dfa_type=0 ... dfa_type=1 and no resolver field").
// BuildReverseFinders has no cache of its own to key, so only the forward
// discriminator is ever actually written.
const dfaTypeForward uint32 = 0

// Fingerprint computes the content-addressable cache key for a build
// request (§4.7): a dfa_type discriminator, the requested language count,
// then for each registered label with a nonempty pattern list that at least
// one requested language names (in the accumulator's insertion order) its
// pattern count, its language-membership bitmask (only when more than one
// language is requested), the fingerprint of every one of its patterns, and
// its own label bytes, terminated by a sentinel. Two requests that register the exact
// same patterns under the exact same labels and request the exact same
// languages produce the same key regardless of process or machine, which is
// what lets lexdfa.Cache memoize built DFAs across runs — and, just as
// importantly, is what keeps two requests that differ only in pattern
// content (same label, different pattern) from colliding on the same key.
//
// Language membership bitmasks are packed as a sequence of 32-bit
// little-endian words, one bit per language index (§4.7's resolved
// membership encoding, kept fixed for cache interoperability).
func Fingerprint[L Label](acc *Accumulator[L], languages [][]L) string {
	h := sha1.New()
	writeUint32(h, dfaTypeForward)
	writeUint32(h, uint32(len(languages)))

	langMembers := make([]map[L]bool, len(languages))
	for i, lang := range languages {
		members := make(map[L]bool, len(lang))
		for _, l := range lang {
			members[l] = true
		}
		langMembers[i] = members
	}

	numLangWords := (len(languages) + 31) / 32

	for _, l := range acc.Labels() {
		patterns := acc.Patterns(l)
		if len(patterns) == 0 {
			continue
		}
		inAny := false
		for _, members := range langMembers {
			if members[l] {
				inAny = true
				break
			}
		}
		if !inAny {
			continue
		}
		writeUint32(h, uint32(len(patterns)))

		if len(languages) > 1 {
			words := make([]uint32, numLangWords)
			for j, members := range langMembers {
				if members[l] {
					words[j/32] |= 1 << uint(j%32)
				}
			}
			for _, w := range words {
				writeUint32(h, w)
			}
		}

		for _, p := range patterns {
			writeBytes(h, p.Fingerprint())
		}

		writeBytes(h, l.Fingerprint())
		h.Write([]byte{0}) // per-label sentinel
	}

	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(h.Sum(nil))
}

func writeUint32(h hash.Hash, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	h.Write(buf[:])
}

func writeBytes(h hash.Hash, b []byte) {
	writeUint32(h, uint32(len(b)))
	h.Write(b)
}
