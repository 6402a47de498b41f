package lang

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Format renders node as canonical source text with the fewest parentheses
// needed to preserve its structure. For every node n produced by [Parse],
// parsing Format(n) yields a tree [Equal] to n.
func Format(node Node) string {
	var b strings.Builder

	format(&b, node)

	return b.String()
}

func format(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case *Literal:
		b.WriteString(formatLiteral(n.Value))

	case *Identifier:
		b.WriteString(n.Name)

	case *CallExpression:
		formatOperand(b, n.Callee, !isPostfixOperand(n.Callee))
		b.WriteByte('(')
		formatList(b, n.Args)
		b.WriteByte(')')

	case *BinaryExpression:
		p := tierOf(n.Operator)

		formatOperand(b, n.Left, needsParens(n.Left, p, binaryTiers[p].right))
		b.WriteByte(' ')
		b.WriteString(n.Operator)
		b.WriteByte(' ')
		formatOperand(b, n.Right, needsParens(n.Right, p, !binaryTiers[p].right))

	case *UnaryExpression:
		b.WriteString(n.Operator)

		switch n.Argument.(type) {
		case *BinaryExpression, *ConditionalExpression:
			formatOperand(b, n.Argument, true)
		default:
			format(b, n.Argument)
		}

	case *ConditionalExpression:
		_, nested := n.Test.(*ConditionalExpression)
		formatOperand(b, n.Test, nested)
		b.WriteString(" ? ")

		_, nested = n.Consequent.(*ConditionalExpression)
		formatOperand(b, n.Consequent, nested)

		if n.Alternate != nil {
			b.WriteString(" : ")
			format(b, n.Alternate)
		}

	case *TemplateLiteral:
		b.WriteByte('`')

		for _, part := range n.Parts {
			if part.IsChunk() {
				b.WriteString(escapeChunk(part.Chunk))

				continue
			}

			b.WriteString("${")
			format(b, part.Expr)
			b.WriteByte('}')
		}

		b.WriteByte('`')

	case *ComputedProperty:
		b.WriteByte('[')
		format(b, n.Expr)
		b.WriteByte(']')

	case *ArrayLiteral:
		b.WriteByte('[')
		formatList(b, n.Elements)
		b.WriteByte(']')

	case *ObjectLiteral:
		b.WriteByte('{')

		for i, prop := range n.Properties {
			if i > 0 {
				b.WriteString(", ")
			}

			format(b, prop.Name)

			if !prop.IsShorthand() {
				b.WriteString(": ")
				format(b, prop.Value)
			}
		}

		b.WriteByte('}')
	}
}

func formatList(b *strings.Builder, nodes []Node) {
	for i, n := range nodes {
		if i > 0 {
			b.WriteString(", ")
		}

		format(b, n)
	}
}

func formatOperand(b *strings.Builder, node Node, parens bool) {
	if parens {
		b.WriteByte('(')
	}

	format(b, node)

	if parens {
		b.WriteByte(')')
	}
}

// tierOf returns the precedence tier of op. Operators outside the grammar
// are treated as the loosest binding.
func tierOf(op string) int {
	if p := precedence(op); p >= 0 {
		return p
	}

	return len(binaryTiers) - 1
}

// needsParens reports whether operand must be parenthesized beneath an
// operator of tier p. sameTier reports whether an operand of the same tier
// must be parenthesized on this side.
func needsParens(operand Node, p int, sameTier bool) bool {
	switch n := operand.(type) {
	case *ConditionalExpression:
		return true

	case *BinaryExpression:
		q := tierOf(n.Operator)

		return q > p || (q == p && sameTier)
	}

	return false
}

// isPostfixOperand reports whether node can be called without parentheses.
func isPostfixOperand(node Node) bool {
	switch node.(type) {
	case *BinaryExpression, *UnaryExpression, *ConditionalExpression:
		return false
	}

	return true
}

func formatLiteral(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"

	case bool:
		return strconv.FormatBool(t)

	case float64:
		if math.IsInf(t, 1) {
			return "1e999"
		}

		return FormatNumber(t)

	case string:
		return Quote(t)
	}

	return Quote(text(normalize(v)))
}

// Quote returns s as a double-quoted string literal.
func Quote(s string) string {
	var b strings.Builder

	b.Grow(len(s) + 2)
	b.WriteByte('"')

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])

		if r == utf8.RuneError && size == 1 {
			b.WriteByte(s[i])
			i++

			continue
		}

		i += size

		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			writeEscaped(&b, r)
		}
	}

	b.WriteByte('"')

	return b.String()
}

// escapeChunk escapes template text so that it parses back unchanged.
func escapeChunk(s string) string {
	var b strings.Builder

	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])

		if r == utf8.RuneError && size == 1 {
			b.WriteByte(s[i])
			i++

			continue
		}

		i += size

		switch {
		case r == '`':
			b.WriteString("\\`")
		case r == '\\':
			b.WriteString(`\\`)
		case r == '$' && strings.HasPrefix(s[i:], "{"):
			b.WriteString(`\$`)
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		default:
			writeEscaped(&b, r)
		}
	}

	return b.String()
}

// writeEscaped writes r, escaped if needed. A slash that would follow
// another slash is escaped so the output never contains a comment.
func writeEscaped(b *strings.Builder, r rune) {
	switch r {
	case '/':
		if str := b.String(); strings.HasSuffix(str, "/") {
			b.WriteString(`\/`)

			return
		}

		b.WriteByte('/')
	case '\n':
		b.WriteString(`\n`)
	case '\t':
		b.WriteString(`\t`)
	case '\r':
		b.WriteString(`\r`)
	case '\b':
		b.WriteString(`\b`)
	case '\f':
		b.WriteString(`\f`)
	case '\v':
		b.WriteString(`\v`)
	default:
		if r < 0x20 || r == 0x7f {
			b.WriteString(`\x`)
			b.WriteString(strconv.FormatInt(int64(r)>>4, 16))
			b.WriteString(strconv.FormatInt(int64(r)&0xf, 16))

			return
		}

		b.WriteRune(r)
	}
}
