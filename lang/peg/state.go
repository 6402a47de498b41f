package peg

// frame is one cell of the persistent output stack.
type frame struct {
	value any
	next  *frame
}

// ignoreFrame is one cell of the persistent ignore-rule stack.
type ignoreFrame struct {
	rule Rule
	next *ignoreFrame
}

// tracker records the furthest offset consumed during a parse.
// Line and column are advanced incrementally from the previous furthest
// offset, never recomputed from the start of input.
type tracker struct {
	input  string
	offset int
	line   int
	column int
}

func (t *tracker) reach(pos int) {
	if pos <= t.offset {
		return
	}

	for _, r := range t.input[t.offset:pos] {
		if r == '\n' {
			t.line++
			t.column = 1
		} else {
			t.column++
		}
	}

	t.offset = pos
}

// State is an in-progress parse attempt. The zero value is not usable;
// create states with [NewState].
type State struct {
	input  string
	pos    int
	top    *frame
	depth  int
	ignore *ignoreFrame
	far    *tracker
}

// NewState returns the initial state for parsing input.
func NewState(input string) State {
	return State{
		input: input,
		far:   &tracker{input: input, line: 1, column: 1},
	}
}

// Input returns the complete input text.
func (s State) Input() string { return s.input }

// Pos returns the current byte offset into the input.
func (s State) Pos() int { return s.pos }

// Depth returns the number of fragments on the output stack.
func (s State) Depth() int { return s.depth }

// Remaining returns the unconsumed input.
func (s State) Remaining() string { return s.input[s.pos:] }

// Top returns the fragment on top of the output stack.
func (s State) Top() (any, bool) {
	if s.top == nil {
		return nil, false
	}

	return s.top.value, true
}

// Text returns the input consumed between two states.
func Text(before, after State) string {
	if after.pos < before.pos {
		return ""
	}

	return before.input[before.pos:after.pos]
}

// same reports whether s and o have identical position and output.
func (s State) same(o State) bool {
	return s.pos == o.pos && s.top == o.top
}

func (s State) advance(n int) State {
	s.pos += n
	s.far.reach(s.pos)

	return s
}

func (s State) push(v any) State {
	s.top = &frame{value: v, next: s.top}
	s.depth++

	return s
}

// skip applies the innermost ignore rule, if any. The ignore rule itself
// runs with no ignore rule installed.
func (s State) skip() State {
	if s.ignore == nil || s.ignore.rule == nil {
		return s
	}

	inner := s
	inner.ignore = nil

	next, ok := s.ignore.rule(inner)
	if !ok {
		return s
	}

	next.ignore = s.ignore

	return next
}
