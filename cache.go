package lexdfa

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/coregx/lexdfa/dfa"
)

// Cache memoizes built DFAs by content fingerprint (§4.7, §5). Implementers
// must be safe for concurrent Get/GetOrStore calls, and GetOrStore must be
// idempotent: if two goroutines race to store the same key, both must
// observe the same winning value afterward.
type Cache[L Label] interface {
	Get(key string) (*dfa.MinimizedDFA[L], bool)
	GetOrStore(key string, build func() (*dfa.MinimizedDFA[L], error)) (*dfa.MinimizedDFA[L], error)
}

// MemoryCache is the default Cache: an unbounded, sync.RWMutex-protected
// map. Mirrors dfa/lazy/cache.go's Cache type, dropping its
// maxStates/clearCount eviction machinery (which exists there to bound a
// live search's memory use) since a build-result cache has no comparable
// per-search budget to enforce.
type MemoryCache[L Label] struct {
	mu      sync.RWMutex
	entries map[string]*dfa.MinimizedDFA[L]
}

// NewMemoryCache returns an empty MemoryCache.
func NewMemoryCache[L Label]() *MemoryCache[L] {
	return &MemoryCache[L]{entries: make(map[string]*dfa.MinimizedDFA[L])}
}

// Get retrieves a previously stored DFA by key.
func (c *MemoryCache[L]) Get(key string) (*dfa.MinimizedDFA[L], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.entries[key]
	return d, ok
}

// GetOrStore returns the cached DFA for key if present; otherwise it calls
// build and stores the result, unless another goroutine already won the
// race to store the same key first.
func (c *MemoryCache[L]) GetOrStore(key string, build func() (*dfa.MinimizedDFA[L], error)) (*dfa.MinimizedDFA[L], error) {
	if d, ok := c.Get(key); ok {
		return d, nil
	}

	d, err := build()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[key]; ok {
		return existing, nil
	}
	c.entries[key] = d
	return d, nil
}

// FileCache persists built DFAs under a directory, one file per fingerprint,
// via dfa.MarshalBinary/UnmarshalMinimizedDFA. Unlike MemoryCache, a
// FileCache started against a directory populated by an earlier process can
// serve hits without ever invoking build (§6.5's restorability, extending
// §5's advisory build cache beyond a single process's lifetime — an
// in-memory-only cache can never be warmed from a prior run). A MemoryCache
// still sits in front, so repeated hits within one process never pay the
// disk round trip.
type FileCache[L Label] struct {
	dir         string
	encodeLabel func(L) ([]byte, error)
	decodeLabel func([]byte) (L, error)
	mem         *MemoryCache[L]
}

// NewFileCache returns a FileCache rooted at dir, creating it if necessary.
// encodeLabel/decodeLabel are the same caller-supplied pair MarshalBinary and
// UnmarshalMinimizedDFA take, since a bare type parameter has no fixed wire
// shape rezi can reflect over on its own.
func NewFileCache[L Label](dir string, encodeLabel func(L) ([]byte, error), decodeLabel func([]byte) (L, error)) (*FileCache[L], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileCache[L]{
		dir:         dir,
		encodeLabel: encodeLabel,
		decodeLabel: decodeLabel,
		mem:         NewMemoryCache[L](),
	}, nil
}

func (c *FileCache[L]) path(key string) string {
	return filepath.Join(c.dir, key+".dfa")
}

// Get retrieves a previously stored DFA, checking the in-memory layer
// before falling back to disk.
func (c *FileCache[L]) Get(key string) (*dfa.MinimizedDFA[L], bool) {
	if d, ok := c.mem.Get(key); ok {
		return d, true
	}
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}
	d, err := dfa.UnmarshalMinimizedDFA[L](data, c.decodeLabel)
	if err != nil {
		return nil, false
	}
	loaded, _ := c.mem.GetOrStore(key, func() (*dfa.MinimizedDFA[L], error) { return d, nil })
	return loaded, true
}

// GetOrStore returns the cached DFA for key if present in memory or on disk;
// otherwise it calls build, writes the result to disk, and stores it in the
// in-memory layer.
func (c *FileCache[L]) GetOrStore(key string, build func() (*dfa.MinimizedDFA[L], error)) (*dfa.MinimizedDFA[L], error) {
	if d, ok := c.Get(key); ok {
		return d, nil
	}
	return c.mem.GetOrStore(key, func() (*dfa.MinimizedDFA[L], error) {
		d, err := build()
		if err != nil {
			return nil, err
		}
		data, err := d.MarshalBinary(c.encodeLabel)
		if err != nil {
			return nil, &BuildError{Kind: CacheFailure, Message: "failed to persist built DFA", Cause: err}
		}
		if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
			return nil, &BuildError{Kind: CacheFailure, Message: "failed to write DFA cache file", Cause: err}
		}
		return d, nil
	})
}
