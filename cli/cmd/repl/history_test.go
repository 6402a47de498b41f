package repl

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestHistory_Persist(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.utf8")
	h := NewHistory(path)

	for _, e := range []HistoryEntry{
		{"1 + 1", modeEval},
		{":vars", modeCtrl},
		{"x := 2", modeEval},
		{"x := 2", modeEval},
		{"1 + 1", modeEval},
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("Add(%q): %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{":vars", modeCtrl},
		{"x := 2", modeEval},
		{"1 + 1", modeEval},
	}

	if got := h.Entries(); !slices.Equal(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if got := string(data); got != "C::vars\nE:x := 2\nE:1 + 1\n" {
		t.Errorf("file = %q", got)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	if got := reloaded.Entries(); !slices.Equal(got, want) {
		t.Errorf("reloaded = %v, want %v", got, want)
	}
}

func TestHistory_Memory(t *testing.T) {
	t.Parallel()

	h := NewHistory("")
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	_ = h.Add("  ", modeEval)
	_ = h.Add("a", modeEval)

	if h.Len() != 1 {
		t.Fatalf("Len() = %d", h.Len())
	}

	if _, err := h.Entry(1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Entry(1) error = %v", err)
	}
}

func TestDecodeEntry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line string
		want HistoryEntry
	}{
		{"E:a + b", HistoryEntry{"a + b", modeEval}},
		{"C::help", HistoryEntry{":help", modeCtrl}},
		{"legacy", HistoryEntry{"legacy", modeEval}},
	}

	for _, tt := range tests {
		if got := decodeEntry(tt.line); got != tt.want {
			t.Errorf("decodeEntry(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}
