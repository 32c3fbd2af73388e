package lexdfa

import (
	"errors"
	"fmt"

	"github.com/coregx/lexdfa/dfa"
	"github.com/coregx/lexdfa/nfa"
)

// Build assembles an NFA from acc's registered patterns and runs the
// subset-construction + minimization pipeline over it (§2 steps 2-4). One
// start state is produced per entry in languages, in the same order;
// languages[i] names the subset of acc's labels that start state should
// recognize.
//
// The result is memoized in cfg.Cache under a fingerprint of acc's labels
// and languages (§4.7, §5), so repeated calls that pass the same Cache via
// WithCache with the same pattern set and language subsets skip
// reconstruction. Without WithCache, each call gets its own fresh
// MemoryCache, so nothing is reused between calls.
//
// A CacheFailure from the cache is non-fatal: it is logged and the freshly
// built DFA is returned.
func Build[L Label](acc *Accumulator[L], languages [][]L, opts ...Option[L]) (*dfa.MinimizedDFA[L], error) {
	cfg := newConfig(opts...)
	key := Fingerprint(acc, languages)

	var built *dfa.MinimizedDFA[L]
	d, err := cfg.Cache.GetOrStore(key, func() (*dfa.MinimizedDFA[L], error) {
		var buildErr error
		built, buildErr = buildUncached(acc, languages, cfg)
		return built, buildErr
	})
	if err != nil {
		var cacheErr *BuildError
		if built != nil && errors.As(err, &cacheErr) && cacheErr.Kind == CacheFailure {
			cfg.Logger.Warningf("lexdfa: build cache store failed: %v", err)
			return built, nil
		}
		cfg.Logger.Warningf("lexdfa: build failed for %d languages: %v", len(languages), err)
		return nil, err
	}
	return d, nil
}

func buildUncached[L Label](acc *Accumulator[L], languages [][]L, cfg *Config[L]) (*dfa.MinimizedDFA[L], error) {
	b := nfa.NewBuilder()
	labelOf := make(map[nfa.StateID]L)
	starts := make([]nfa.StateID, len(languages))

	for i, lang := range languages {
		var labelEntries []nfa.StateID
		for _, label := range lang {
			patterns := acc.Patterns(label)
			if len(patterns) == 0 {
				continue
			}
			// One accept state per label, not per pattern (§4.2): every
			// pattern registered under the same label feeds the same
			// accept state, so labelOf never needs to disambiguate between
			// a label's own patterns.
			accept := b.AddAccept()
			labelOf[accept] = label
			var patternEntries []nfa.StateID
			for _, p := range patterns {
				patternEntries = append(patternEntries, p.AddToNFA(b, accept))
			}
			labelEntries = append(labelEntries, combineAlternatives(b, patternEntries))
		}
		starts[i] = combineAlternatives(b, labelEntries)
	}
	b.SetStarts(starts)

	n, err := b.Build()
	if err != nil {
		return nil, &BuildError{Kind: InvalidPattern, Message: "nfa assembly failed", Cause: err}
	}

	cfg.Logger.Verbosef("lexdfa: building DFA for %d languages (%d NFA states)", len(languages), n.States())

	d, err := dfa.BuildFromNFA[L](n, func(id nfa.StateID) (L, bool) {
		l, ok := labelOf[id]
		return l, ok
	}, cfg.Resolver)
	if err != nil {
		if ambErr, ok := err.(*dfa.AmbiguityError[L]); ok {
			return nil, &BuildError{Kind: Ambiguous, Message: fmt.Sprintf("ambiguous labels %v", ambErr.Labels), Cause: ambErr}
		}
		return nil, err
	}

	cfg.Logger.Verbosef("lexdfa: build complete, %d minimized states", d.NumStates())
	return d, nil
}

// combineAlternatives builds a single entry state that epsilon-branches
// into every id in ids, using a right-nested chain of nfa.Split states
// (Split only ever offers two branches, so n-ary alternation between
// per-label pattern entries is built the same way nfa.Union combines two
// patterns). An empty ids list produces a dead sink, since a language with
// no patterns can never accept.
func combineAlternatives(b *nfa.Builder, ids []nfa.StateID) nfa.StateID {
	switch len(ids) {
	case 0:
		return b.AddDeadSink()
	case 1:
		return ids[0]
	default:
		rest := combineAlternatives(b, ids[1:])
		return b.AddSplit(ids[0], rest)
	}
}
