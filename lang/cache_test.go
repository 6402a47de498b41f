package lang

import (
	"errors"
	"sync"
	"testing"
)

func TestCache_SameTree(t *testing.T) {
	t.Parallel()

	c := NewCache()

	a, err := c.Parse(t.Context(), "1 + x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	b, err := c.Parse(t.Context(), "1 + x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a != b {
		t.Error("identical source must yield the identical tree")
	}

	if other, _ := c.Parse(t.Context(), "1 +  x"); other == a {
		t.Error("different source must not share a tree")
	}

	if got := c.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
}

func TestCache_Errors(t *testing.T) {
	t.Parallel()

	c := NewCache()

	_, err1 := c.Parse(t.Context(), "1 +")
	_, err2 := c.Parse(t.Context(), "1 +")

	if err1 == nil || err1 != err2 { //nolint:errorlint
		t.Errorf("expected the same cached error, got %v and %v", err1, err2)
	}

	if !errors.Is(err1, ErrParse) {
		t.Errorf("expected ErrParse, got %v", err1)
	}
}

func TestCache_Clear(t *testing.T) {
	t.Parallel()

	c := NewCache()

	a, _ := c.Parse(t.Context(), "a")
	c.Parse(t.Context(), "b") //nolint:errcheck

	c.Clear()

	if got := c.Len(); got != 0 {
		t.Errorf("Len() after Clear = %d, want 0", got)
	}

	if again, _ := c.Parse(t.Context(), "a"); again == a {
		t.Error("expected a fresh tree after Clear")
	}
}

func TestCache_Options(t *testing.T) {
	t.Parallel()

	c := NewCache()

	first, err := ParseString(t.Context(), "[1, 2]", WithCache(c))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, _ := ParseString(t.Context(), "[1, 2]", WithCache(c))
	if first != second {
		t.Error("expected WithCache to share trees")
	}

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}

	x, _ := ParseString(t.Context(), "[1, 2]", WithCache(nil))
	y, _ := ParseString(t.Context(), "[1, 2]", WithCache(nil))

	if x == y {
		t.Error("expected WithCache(nil) to disable caching")
	}

	if !Equal(x, y) {
		t.Error("uncached parses must still be structurally equal")
	}
}

func TestCache_Concurrent(t *testing.T) {
	t.Parallel()

	c := NewCache()

	const workers = 16

	var wg sync.WaitGroup

	nodes := make([]Node, workers)

	for i := range workers {
		wg.Go(func() {
			nodes[i], _ = c.Parse(t.Context(), "max(a, b) * 2")
		})
	}

	wg.Wait()

	for i := 1; i < workers; i++ {
		if nodes[i] == nil || nodes[i] != nodes[0] {
			t.Fatalf("worker %d got a different tree", i)
		}
	}

	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}
