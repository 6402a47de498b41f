package lang

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"
)

// render prints node fully parenthesized so tests can assert grouping.
func render(node Node) string {
	switch n := node.(type) {
	case *Literal:
		switch v := n.Value.(type) {
		case nil:
			return "null"
		case string:
			return strconv.Quote(v)
		case float64:
			return FormatNumber(v)
		case bool:
			return strconv.FormatBool(v)
		}

	case *Identifier:
		return n.Name

	case *CallExpression:
		return render(n.Callee) + "(" + renderList(n.Args) + ")"

	case *BinaryExpression:
		return "(" + render(n.Left) + " " + n.Operator + " " + render(n.Right) + ")"

	case *UnaryExpression:
		return "(" + n.Operator + render(n.Argument) + ")"

	case *ConditionalExpression:
		s := "(" + render(n.Test) + " ? " + render(n.Consequent)
		if n.Alternate != nil {
			s += " : " + render(n.Alternate)
		}

		return s + ")"

	case *TemplateLiteral:
		var b strings.Builder

		b.WriteByte('`')

		for _, p := range n.Parts {
			if p.IsChunk() {
				b.WriteString(p.Chunk)
			} else {
				b.WriteString("${" + render(p.Expr) + "}")
			}
		}

		b.WriteByte('`')

		return b.String()

	case *ComputedProperty:
		return "[" + render(n.Expr) + "]"

	case *ArrayLiteral:
		return "[" + renderList(n.Elements) + "]"

	case *ObjectLiteral:
		parts := make([]string, len(n.Properties))

		for i, p := range n.Properties {
			parts[i] = render(p.Name)
			if !p.IsShorthand() {
				parts[i] += ": " + render(p.Value)
			}
		}

		return "{" + strings.Join(parts, ", ") + "}"
	}

	return "?"
}

func renderList(nodes []Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = render(n)
	}

	return strings.Join(parts, ", ")
}

func TestParse_Structure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"precedence", "1 + 2 * 3", "(1 + (2 * 3))"},
		{"right associative power", "2 ** 3 ** 2", "(2 ** (3 ** 2))"},
		{"left associative minus", "10 - 3 - 2", "((10 - 3) - 2)"},
		{"left associative assignment", "a := b += 1", "((a := b) += 1)"},
		{"parentheses", "(1 + 2) * 3", "((1 + 2) * 3)"},
		{"logical tiers", "a || b && c", "(a || (b && c))"},
		{"coalesce below or", "a ?? b || c", "(a ?? (b || c))"},
		{"assignment loosest", "x := 1 + 2", "(x := (1 + 2))"},
		{"bitwise tiers", "a & b | c ^ d", "((a & b) | (c ^ d))"},
		{"shift above relational", "a << 1 < b", "((a << 1) < b)"},
		{"unsigned shift", "a >>> 2", "(a >>> 2)"},
		{"equality chain", "a == b === c", "((a == b) === c)"},
		{"strict inequality", "a !== b != c", "((a !== b) != c)"},
		{"unary binds tighter", "-a ** 2", "((-a) ** 2)"},
		{"unary run", "!!a", "(!(!a))"},
		{"unary minus operand", "a - -b", "(a - (-b))"},
		{"conditional", "a ? b : c", "(a ? b : c)"},
		{"conditional nests right", "a ? b : c ? d : e", "(a ? b : (c ? d : e))"},
		{"conditional without alternate", "a ? b", "(a ? b)"},
		{"conditional test", "a + 1 ? b : c", "((a + 1) ? b : c)"},
		{"call", "f(1, 2)", "f(1, 2)"},
		{"call chain", "f(1)(2)()", "f(1)(2)()"},
		{"call trailing comma", "f(1, 2,)", "f(1, 2)"},
		{"array trailing comma", "[1, 2,]", "[1, 2]"},
		{"empty array", "[]", "[]"},
		{"object", `{a: 1, b, [c]: 2, "d": 3, 4: 5,}`, `{a: 1, b, [c]: 2, "d": 3, 4: 5}`},
		{"empty object", "{ }", "{}"},
		{"dotted name", "config.port + 1", "(config.port + 1)"},
		{"keyword prefix", "nullable", "nullable"},
		{"keywords", "[null, true, false]", "[null, true, false]"},
		{"hex number", "0x1F", "31"},
		{"exponent", "1.5e3", "1500"},
		{"leading dot", ".5", "0.5"},
		{"single quoted", `'it\'s'`, `"it's"`},
		{"escapes", `"a\tb\x41\u0042"`, `"a\tbAB"`},
		{"template", "`sum=${1 + 2}!`", "`sum=${(1 + 2)}!`"},
		{"template dollar", "`a$b${x}\\${y}`", "`a$b${x}${y}`"},
		{"template whitespace", "` a ${ x } `", "` a ${x} `"},
		{"comment", "1 // one\n + 2", "(1 + 2)"},
		{"surrounding space", "  ( 1 )  ", "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			node, err := ParseString(t.Context(), tt.source, WithCache(nil))
			if err != nil {
				t.Fatalf("parse %q: %v", tt.source, err)
			}

			if got := render(node); got != tt.want {
				t.Errorf("parse %q:\n got %s\nwant %s", tt.source, got, tt.want)
			}
		})
	}
}

func TestParse_TemplateParts(t *testing.T) {
	t.Parallel()

	node := MustParse("`a$b${x}\\${y}`")

	tmpl, ok := node.(*TemplateLiteral)
	if !ok {
		t.Fatalf("expected *TemplateLiteral, got %T", node)
	}

	if len(tmpl.Parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(tmpl.Parts))
	}

	if tmpl.Parts[0].Chunk != "a$b" || !tmpl.Parts[0].IsChunk() {
		t.Errorf("part 0 = %+v, want chunk %q", tmpl.Parts[0], "a$b")
	}

	if id, ok := tmpl.Parts[1].Expr.(*Identifier); !ok || id.Name != "x" {
		t.Errorf("part 1 = %+v, want identifier x", tmpl.Parts[1])
	}

	if tmpl.Parts[2].Chunk != "${y}" {
		t.Errorf("part 2 = %+v, want chunk %q", tmpl.Parts[2], "${y}")
	}
}

func TestParse_Spans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		source string
		pick   func(Node) Node
		offset int
		text   string
	}{
		{
			"root", "1 + 2 * 3",
			func(n Node) Node { return n },
			0, "1 + 2 * 3",
		},
		{
			"right operand", "1 + 2 * 3",
			func(n Node) Node { return n.(*BinaryExpression).Right },
			4, "2 * 3",
		},
		{
			"parenthesized operand", "(a + b) * c",
			func(n Node) Node { return n.(*BinaryExpression).Left },
			1, "a + b",
		},
		{
			"binary covers parentheses", "(a + b) * c",
			func(n Node) Node { return n },
			0, "(a + b) * c",
		},
		{
			"callee", "f(x)(y)",
			func(n Node) Node { return n.(*CallExpression).Callee },
			0, "f(x)",
		},
		{
			"unary", "1 + -x",
			func(n Node) Node { return n.(*BinaryExpression).Right },
			4, "-x",
		},
		{
			"conditional", "  a ? b : c  ",
			func(n Node) Node { return n },
			2, "a ? b : c",
		},
		{
			"string literal", `f('x')`,
			func(n Node) Node { return n.(*CallExpression).Args[0] },
			2, `'x'`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			span := tt.pick(MustParse(tt.source)).Span()

			if span.Offset != tt.offset || span.Source != tt.text {
				t.Errorf("span = {%d %q}, want {%d %q}",
					span.Offset, span.Source, tt.offset, tt.text)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		source    string
		line      int
		column    int
		remainder string
		message   string
	}{
		{"empty", "", 1, 1, "", "unexpected end of input"},
		{"dangling operator", "1 +", 1, 4, "", "unexpected end of input"},
		{"bad operand", "1 + )", 1, 5, ")", `unexpected ")"`},
		{"second line", "1 +\n  * 2", 2, 3, "* 2", "2 |   * 2"},
		{"unterminated string", `"abc`, 1, 1, `"abc`, "line 1, column 1"},
		{"unclosed call", "f(1, 2", 1, 7, "", "unexpected end of input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := ParseString(t.Context(), tt.source, WithCache(nil))
			if err == nil {
				t.Fatalf("expected error parsing %q", tt.source)
			}

			if !errors.Is(err, ErrParse) {
				t.Errorf("expected errors.Is(err, ErrParse), got %v", err)
			}

			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}

			if perr.Line != tt.line || perr.Column != tt.column {
				t.Errorf("position = %d:%d, want %d:%d",
					perr.Line, perr.Column, tt.line, tt.column)
			}

			if perr.Remainder != tt.remainder {
				t.Errorf("remainder = %q, want %q", perr.Remainder, tt.remainder)
			}

			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.message)
			}
		})
	}
}

func TestParseError_LongRemainder(t *testing.T) {
	t.Parallel()

	// The 32-byte cut falls inside the sixteenth "é".
	source := "1 + )" + strings.Repeat("é", 20)

	_, err := ParseString(t.Context(), source, WithCache(nil))
	if err == nil {
		t.Fatalf("expected error parsing %q", source)
	}

	msg := err.Error()
	if !utf8.ValidString(msg) {
		t.Fatalf("error is not valid UTF-8: %q", msg)
	}

	want := strconv.Quote(")" + strings.Repeat("é", 15) + "...")
	if !strings.Contains(msg, want) {
		t.Errorf("error %q does not contain %s", msg, want)
	}

	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}

	if rem := perr.LogValue().Group()[3].Value.String(); !utf8.ValidString(rem) {
		t.Errorf("logged remainder is not valid UTF-8: %q", rem)
	}
}

func TestStripComments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source string
		want   string
	}{
		{"a // x\nb", "a \nb"},
		{"// all", ""},
		{"a / b", "a / b"},
		{`"http://host"`, `"http:`},
	}

	for _, tt := range tests {
		if got := StripComments(tt.source); got != tt.want {
			t.Errorf("StripComments(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestParseReader(t *testing.T) {
	t.Parallel()

	node, err := ParseReader(t.Context(), strings.NewReader("max(1,\n 2)"), WithCache(NewCache()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := render(node); got != "max(1, 2)" {
		t.Errorf("got %s", got)
	}
}

func TestParseReader_ReadError(t *testing.T) {
	t.Parallel()

	_, err := ParseReader(t.Context(), failingReader{})
	if !errors.Is(err, ErrReadInput) {
		t.Errorf("expected ErrReadInput, got %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestMustParse_Panics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()

	MustParse("1 +")
}
