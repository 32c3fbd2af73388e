package lexdfa

import "github.com/coregx/lexdfa/dfa"

// Config configures the construction pipeline shared by Build and
// BuildReverseFinders. Functional options, mirroring nfa.Builder's option
// style; the tunable-struct-with-heavy-comments shape mirrors
// dfa/lazy/config.go.
//
// Unlike the lazy-DFA config (which tunes a live search budget: MaxStates,
// MaxCacheClears, CacheHitThreshold), construction here is unbounded and
// one-shot, so there is no "max states before giving up" knob to carry
// forward.
type Config[L Label] struct {
	// Logger receives construction progress and advisory warnings. Defaults
	// to the package-level gologger instance.
	Logger Logger

	// Resolver is invoked whenever subset construction finds more than one
	// distinct accept label reachable from a single DFA state. A nil
	// Resolver is replaced by dfa.DefaultResolver, which always fails.
	Resolver dfa.Resolver[L]

	// Cache memoizes built DFAs by content fingerprint (§4.7, §5). Defaults
	// to an unbounded MemoryCache[L].
	Cache Cache[L]
}

// Option configures a Config.
type Option[L Label] func(*Config[L])

// WithLogger overrides the default logger.
func WithLogger[L Label](l Logger) Option[L] {
	return func(c *Config[L]) { c.Logger = l }
}

// WithResolver overrides the default (always-fail) ambiguity resolver.
func WithResolver[L Label](r dfa.Resolver[L]) Option[L] {
	return func(c *Config[L]) { c.Resolver = r }
}

// WithCache overrides the default in-memory build cache.
func WithCache[L Label](cache Cache[L]) Option[L] {
	return func(c *Config[L]) { c.Cache = cache }
}

// newConfig applies opts over the package defaults.
func newConfig[L Label](opts ...Option[L]) *Config[L] {
	c := &Config[L]{Logger: defaultLogger{}, Cache: NewMemoryCache[L]()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
