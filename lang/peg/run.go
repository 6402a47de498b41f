package peg

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxRemainder bounds the remainder quoted by [Error.Error].
const maxRemainder = 32

// Error describes a failed parse at the furthest position reached.
type Error struct {
	Offset    int
	Line      int
	Column    int
	Remainder string
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString("unexpected input at line ")
	b.WriteString(strconv.Itoa(e.Line))
	b.WriteString(", column ")
	b.WriteString(strconv.Itoa(e.Column))
	b.WriteString(": ")

	if e.Remainder == "" {
		b.WriteString("end of input")

		return b.String()
	}

	b.WriteString(strconv.Quote(clip(e.Remainder, maxRemainder)))

	return b.String()
}

// clip shortens s to at most n bytes without splitting a rune and marks the
// cut with an ellipsis.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}

	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}

	return s[:n] + "..."
}

func (t *tracker) err() *Error {
	return &Error{
		Offset:    t.offset,
		Line:      t.line,
		Column:    t.column,
		Remainder: t.input[t.offset:],
	}
}

// Run parses input with root. It fails if root fails or if input remains
// after root succeeds. On success it returns the fragment on top of the
// output stack, or nil if root produced no output.
func Run(root Rule, input string) (any, error) {
	next, ok := root(NewState(input))
	if !ok {
		return nil, next.far.err()
	}

	if next.pos < len(input) {
		return nil, next.far.err()
	}

	v, _ := next.Top()

	return v, nil
}

// RunPartial parses a prefix of input with root. It returns the fragment on
// top of the output stack and the number of bytes consumed.
func RunPartial(root Rule, input string) (any, int, error) {
	next, ok := root(NewState(input))
	if !ok {
		return nil, 0, next.far.err()
	}

	v, _ := next.Top()

	return v, next.pos, nil
}
