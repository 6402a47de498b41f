package repl

import (
	"slices"
	"testing"

	"github.com/ardnew/formula/lang"
)

func TestWordBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"dotted", "path.jo", 7, "path.jo", 0, 7},
		{"after_plus", "a + fo", 6, "fo", 4, 6},
		{"after_paren", "double(fo", 9, "fo", 7, 9},
		{"after_comma", "add(a, fo", 9, "fo", 7, 9},
		{"in_ternary", "x ? fo", 6, "fo", 4, 6},
		{"empty_at_boundary", "a + ", 4, "", 4, 4},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"between_operators", "a+b", 2, "b", 2, 3},
		{"hyphen_is_operator", "a-bc", 4, "bc", 2, 4},
		{"command", ":he", 3, ":he", 0, 3},
		{"dollar", "$x", 2, "$x", 0, 2},
		{"cursor_past_end", "ab", 10, "ab", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestInString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		pos   int
		want  bool
	}{
		{`"abc`, 2, true},
		{`"abc" + x`, 8, false},
		{`'it\'s`, 5, true},
		{"`a ${b}", 4, true},
		{`"a" + "b`, 7, true},
		{`x`, 1, false},
	}

	for _, tt := range tests {
		if got := inString(tt.input, tt.pos); got != tt.want {
			t.Errorf("inString(%q, %d) = %v, want %v", tt.input, tt.pos, got, tt.want)
		}
	}
}

func TestComputeMatches(t *testing.T) {
	t.Parallel()

	m := newModel(t.Context(), Config{Env: lang.NewEnv()}, NewHistory(""))
	m.vars = []string{"uptime"}

	tests := []struct {
		name    string
		input   string
		want    []string // must all be present
		wantNil bool
		start   int
	}{
		{name: "function", input: "1 + uppe", want: []string{"upper"}, start: 4},
		{name: "variable", input: "uptim", want: []string{"uptime"}},
		{name: "host", input: "path.jo", want: []string{"path.join"}},
		{name: "keyword", input: "x == nul", want: []string{"null"}, start: 5},
		{name: "command", input: ":he", want: []string{":help"}},
		{name: "empty", input: "1 + ", wantNil: true, start: 4},
		{name: "in_string", input: `"uppe`, wantNil: true, start: 1},
		{name: "command_arg", input: ":fmt uppe", wantNil: true, start: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := m
			m.input.SetValue(tt.input)
			m.input.SetCursor(len(tt.input))

			matches, start, end := m.computeMatches()

			if start != tt.start || end != len(tt.input) {
				t.Errorf("bounds = (%d, %d), want (%d, %d)", start, end, tt.start, len(tt.input))
			}

			if tt.wantNil {
				if matches != nil {
					t.Errorf("matches = %v, want nil", matches)
				}

				return
			}

			var got []string
			for _, match := range matches {
				got = append(got, match.Str)
			}

			for _, w := range tt.want {
				if !slices.Contains(got, w) {
					t.Errorf("matches %v missing %q", got, w)
				}
			}
		})
	}
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	m := newModel(t.Context(), Config{Env: lang.NewEnv()}, NewHistory(""))
	m.vars = []string{"upper", "zz"}

	got := m.candidates(modeEval)

	if !slices.IsSorted(got) {
		t.Error("candidates not sorted")
	}

	if n := len(slices.Compact(slices.Clone(got))); n != len(got) {
		t.Errorf("candidates contain duplicates")
	}

	for _, want := range []string{"upper", "zz", "true", "file.exists"} {
		if !slices.Contains(got, want) {
			t.Errorf("candidates missing %q", want)
		}
	}

	if got := m.candidates(modeCtrl); !slices.Equal(got, ctrlCommands) {
		t.Errorf("ctrl candidates = %v", got)
	}
}

func TestRenderCandidateBar(t *testing.T) {
	t.Parallel()

	if got := renderCandidateBar(nil, 0, false, 80, nil); got != "" {
		t.Errorf("empty bar = %q", got)
	}
}
