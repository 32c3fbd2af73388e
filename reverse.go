package lexdfa

import (
	"github.com/coregx/lexdfa/dfa"
	"github.com/coregx/lexdfa/nfa"
)

// Marker is the label type reverse finders accept with: there is only ever
// one possible accept value ("a match ends here, scanning backward"), so
// unlike Build's caller-supplied L, the label itself carries no information.
type Marker struct{}

// Fingerprint satisfies Label. Every Marker value is identical, which is
// exactly why the reverse finder's ambiguity resolver is never meaningfully
// invoked: subset construction dedupes accept labels before calling it, and
// every accept state here carries the same Marker.
func (Marker) Fingerprint() []byte { return []byte{'R'} }

// BuildReverseFinders assembles the derived reverse-finder DFA (§4.5): for
// each requested language, every pattern's reversed sub-automaton is wired
// to a shared accept state, the zero-length ("empty string") match is
// removed via nfa.Disemptify, and the result is prefixed with an
// unanchored ".*" so scanning can start from any position and walk
// backward until a prior match boundary is found. All produced languages
// share one subset+minimize pass, per §4.4.
func BuildReverseFinders[L Label](acc *Accumulator[L], languages [][]L, opts ...Option[Marker]) (*dfa.MinimizedDFA[Marker], error) {
	cfg := newConfig(opts...)

	b := nfa.NewBuilder()
	labelOf := make(map[nfa.StateID]Marker)
	starts := make([]nfa.StateID, len(languages))

	for i, lang := range languages {
		accept := b.AddAccept()
		labelOf[accept] = Marker{}

		var entries []nfa.StateID
		for _, label := range lang {
			for _, p := range acc.Patterns(label) {
				entries = append(entries, p.Reversed().AddToNFA(b, accept))
			}
		}
		combined := combineAlternatives(b, entries)
		disemptified := nfa.Disemptify(b, combined, accept)
		starts[i] = nfa.MaybeRepeat(nfa.AllChars).AddToNFA(b, disemptified)
	}
	b.SetStarts(starts)

	n, err := b.Build()
	if err != nil {
		return nil, &BuildError{Kind: InvalidPattern, Message: "reverse nfa assembly failed", Cause: err}
	}

	cfg.Logger.Verbosef("lexdfa: building reverse finder for %d languages (%d NFA states)", len(languages), n.States())

	d, err := dfa.BuildFromNFA[Marker](n, func(id nfa.StateID) (Marker, bool) {
		m, ok := labelOf[id]
		return m, ok
	}, cfg.Resolver)
	if err != nil {
		return nil, err
	}

	cfg.Logger.Verbosef("lexdfa: reverse finder complete, %d minimized states", d.NumStates())
	return d, nil
}
