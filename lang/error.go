package lang

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/formula/lang/peg"
)

// Predefined errors (sentinel values).
var (
	ErrParse            = NewError("parse error")
	ErrReadInput        = NewError("failed to read input")
	ErrFunctionNotFound = NewError("function not found")
	ErrOperatorNotFound = NewError("operator not found")
	ErrInvalidCallee    = NewError("callee is not an identifier")
	ErrSyntax           = NewError("unsupported syntax")
	ErrAccessor         = NewError("accessor failed")
	ErrInvalidArgument  = NewError("invalid argument")
	ErrExprEvaluate     = NewError("expression evaluation failed")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is an Error with the same message. Derived errors
// created with [Error.Wrap] and [Error.With] match their sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.msg != "" && t.msg == e.msg
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		attrs: newAttrs,
	}
}

// named returns a copy of e whose message names the offending symbol.
func (e *Error) named(name string) *Error {
	return &Error{
		msg:   e.msg,
		err:   errors.New(strconv.Quote(name)),
		attrs: append(e.attrs[:len(e.attrs):len(e.attrs)], slog.String("name", name)),
	}
}

// ParseError reports a syntax error at the furthest position the grammar
// reached.
type ParseError struct {
	Line      int
	Column    int
	Offset    int
	Remainder string
	Source    string // The source input, after comment removal
}

func newParseError(pe *peg.Error, source string) *ParseError {
	return &ParseError{
		Line:      pe.Line,
		Column:    pe.Column,
		Offset:    pe.Offset,
		Remainder: pe.Remainder,
		Source:    source,
	}
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg, snippet := e.formatWithContext()

	return msg + snippet
}

// Is reports whether target is [ErrParse].
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// LogValue implements slog.LogValuer.
func (e *ParseError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrParse.msg),
		slog.Int("line", e.Line),
		slog.Int("column", e.Column),
		slog.String("remainder", truncate(e.Remainder, 32)),
	)
}

// formatWithContext formats the parse error with source code context.
func (e *ParseError) formatWithContext() (string, string) {
	var buf, src strings.Builder

	buf.WriteString("parse error at line ")
	buf.WriteString(strconv.Itoa(e.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Column))
	buf.WriteString(": ")

	if e.Remainder == "" {
		buf.WriteString("unexpected end of input")
	} else {
		buf.WriteString("unexpected ")
		buf.WriteString(strconv.Quote(truncate(e.Remainder, 32)))
	}

	lines := strings.Split(e.Source, "\n")
	if e.Line < 1 || e.Line > len(lines) {
		return buf.String(), ""
	}

	line := lines[e.Line-1]

	src.WriteString("\n  ")
	src.WriteString(strconv.Itoa(e.Line))
	src.WriteString(" | ")
	src.WriteString(line)
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(strconv.Itoa(e.Line))+5)
	if e.Column > 0 {
		padding += strings.Repeat(" ", e.Column-1)
	}

	src.WriteString(padding + "^")

	return buf.String(), src.String()
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}

	return s[:n] + "..."
}
