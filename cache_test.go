package lexdfa

import (
	"errors"
	"sync"
	"testing"

	"github.com/coregx/lexdfa/dfa"
	"github.com/coregx/lexdfa/nfa"
)

func strLabelEncode(l strLabel) ([]byte, error) { return []byte(l), nil }
func strLabelDecode(b []byte) (strLabel, error) { return strLabel(b), nil }

func TestMemoryCacheGetOrStoreBuildsOnce(t *testing.T) {
	c := NewMemoryCache[strLabel]()
	calls := 0
	build := func() (*dfa.MinimizedDFA[strLabel], error) {
		calls++
		return &dfa.MinimizedDFA[strLabel]{}, nil
	}

	d1, err := c.GetOrStore("k", build)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d2, err := c.GetOrStore("k", build)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d1 != d2 {
		t.Fatalf("expected the same cached instance on the second call")
	}
	if calls != 1 {
		t.Fatalf("expected build to be called exactly once, got %d", calls)
	}
}

func TestMemoryCacheGetMissReturnsFalse(t *testing.T) {
	c := NewMemoryCache[strLabel]()
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected a miss on an empty cache")
	}
}

func TestMemoryCachePropagatesBuildError(t *testing.T) {
	c := NewMemoryCache[strLabel]()
	wantErr := errors.New("boom")
	_, err := c.GetOrStore("k", func() (*dfa.MinimizedDFA[strLabel], error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected the build error to propagate, got %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Fatalf("a failed build must not populate the cache")
	}
}

func TestFileCacheGetMissReturnsFalse(t *testing.T) {
	c, err := NewFileCache[strLabel](t.TempDir(), strLabelEncode, strLabelDecode)
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	if _, ok := c.Get("missing"); ok {
		t.Fatalf("expected a miss on an empty cache directory")
	}
}

func TestFileCacheGetOrStoreBuildsOnce(t *testing.T) {
	c, err := NewFileCache[strLabel](t.TempDir(), strLabelEncode, strLabelDecode)
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	calls := 0
	build := func() (*dfa.MinimizedDFA[strLabel], error) {
		calls++
		return buildStrLabelDFA(t), nil
	}
	d1, err := c.GetOrStore("k", build)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d2, err := c.GetOrStore("k", build)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d1 != d2 {
		t.Fatalf("expected the same cached instance on the second call")
	}
	if calls != 1 {
		t.Fatalf("expected build to be called exactly once, got %d", calls)
	}
}

func TestFileCacheSurvivesProcessRestart(t *testing.T) {
	dir := t.TempDir()
	c1, err := NewFileCache[strLabel](dir, strLabelEncode, strLabelDecode)
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	if _, err := c1.GetOrStore("k", func() (*dfa.MinimizedDFA[strLabel], error) {
		return buildStrLabelDFA(t), nil
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A fresh FileCache over the same directory models a new process
	// restoring from a prior run's persisted entries.
	c2, err := NewFileCache[strLabel](dir, strLabelEncode, strLabelDecode)
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	calls := 0
	d, err := c2.GetOrStore("k", func() (*dfa.MinimizedDFA[strLabel], error) {
		calls++
		return buildStrLabelDFA(t), nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected the restored entry to serve the hit without rebuilding")
	}
	cur := d.StartStates()[0]
	for _, c := range utf16Units("cat") {
		next, ok := cur.Next(c)
		if !ok {
			t.Fatalf("unexpected dead transition on %q", c)
		}
		cur = next
	}
	if lbl, ok := cur.Match(); !ok || lbl != "CAT" {
		t.Fatalf("expected match CAT, got (%q, %v)", lbl, ok)
	}
}

func TestFileCachePropagatesBuildError(t *testing.T) {
	c, err := NewFileCache[strLabel](t.TempDir(), strLabelEncode, strLabelDecode)
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	wantErr := errors.New("boom")
	_, err = c.GetOrStore("k", func() (*dfa.MinimizedDFA[strLabel], error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected the build error to propagate, got %v", err)
	}
	if _, ok := c.Get("k"); ok {
		t.Fatalf("a failed build must not populate the cache")
	}
}

func buildStrLabelDFA(t *testing.T) *dfa.MinimizedDFA[strLabel] {
	t.Helper()
	a := NewAccumulator[strLabel]()
	a.Add("CAT", nfa.Str("cat"))
	d, err := Build(a, [][]strLabel{{"CAT"}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return d
}

func TestMemoryCacheConcurrentGetOrStoreIsIdempotent(t *testing.T) {
	c := NewMemoryCache[strLabel]()
	var wg sync.WaitGroup
	results := make([]*dfa.MinimizedDFA[strLabel], 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d, err := c.GetOrStore("k", func() (*dfa.MinimizedDFA[strLabel], error) {
				return &dfa.MinimizedDFA[strLabel]{}, nil
			})
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			results[i] = d
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Fatalf("expected every goroutine to observe the same winning instance")
		}
	}
}
