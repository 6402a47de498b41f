package lang

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ardnew/formula/lang/peg"
)

// opFrag is an operator symbol and its offset, pushed by operator rules.
type opFrag struct {
	op  string
	pos int
}

// operand is a node with the exact bounds of the text it was parsed from,
// including any enclosing parentheses.
type operand struct {
	node       Node
	start, end int
}

// argsFrag is one parenthesized argument list and the offset just past its
// closing parenthesis.
type argsFrag struct {
	args []Node
	end  int
}

// grammar is the root production. It is immutable and safe for concurrent
// use, since all parse state is carried in [peg.State].
var grammar = newGrammar()

func newGrammar() peg.Rule {
	space := peg.Pattern(`\s+`)

	expr := peg.FixPoint(func(expr peg.Rule) peg.Rule {
		list := func(open, close string, elem peg.Rule) peg.Rule {
			return peg.Sequence(
				peg.Literal(open),
				peg.Optional(peg.Sequence(
					elem,
					peg.ZeroOrMore(peg.Sequence(peg.Literal(","), elem)),
					peg.Optional(peg.Literal(",")),
				)),
				peg.Literal(close),
			)
		}

		// Tokens.
		number := peg.Reduce(
			peg.Pattern(`(0[xX][0-9a-fA-F]+|(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?)`),
			reduceNumber,
		)
		str := peg.Reduce(
			peg.Choice(
				peg.Pattern(`"((?:[^"\\]|\\[\s\S])*)"`),
				peg.Pattern(`'((?:[^'\\]|\\[\s\S])*)'`),
			),
			reduceString,
		)
		name := peg.Reduce(
			peg.Pattern(`([a-zA-Z_$][a-zA-Z0-9_$.]*)`),
			reduceName,
		)

		// Template literals: whitespace is text except inside ${}.
		interp := peg.WithIgnore(space, peg.Sequence(
			peg.Literal("${"), expr, peg.Literal("}"),
		))
		chunk := peg.Choice(
			peg.Pattern("((?:[^`\\\\$]|\\\\[\\s\\S])+)"),
			peg.Sequence(peg.Pattern(`(\$)`), peg.Not(peg.Literal("{"))),
		)
		template := peg.Reduce(
			peg.WithIgnore(nil, peg.Sequence(
				peg.Literal("`"),
				peg.ZeroOrMore(peg.Choice(interp, chunk)),
				peg.Literal("`"),
			)),
			reduceTemplate,
		)

		// Structural literals.
		array := peg.Reduce(list("[", "]", expr), reduceArray)

		computed := peg.Reduce(
			peg.Sequence(peg.Literal("["), expr, peg.Literal("]")),
			reduceComputed,
		)
		property := peg.Choice(
			peg.Reduce(
				peg.Sequence(
					peg.Choice(computed, str, number, name),
					peg.Literal(":"),
					expr,
				),
				reduceProperty,
			),
			peg.Reduce(name, reduceProperty),
		)
		object := peg.Reduce(list("{", "}", property), reduceObject)

		paren := peg.Sequence(peg.Literal("("), expr, peg.Literal(")"))

		primary := peg.Choice(number, str, template, name, array, object, paren)

		// Calls.
		args := peg.Reduce(list("(", ")", expr), reduceArgs)
		call := peg.Reduce(
			peg.Sequence(primary, peg.ZeroOrMore(args)),
			reduceCall,
		)

		// Prefix operators.
		unary := peg.Reduce(
			peg.Sequence(
				peg.ZeroOrMore(operator(unaryOps)),
				call,
			),
			reduceUnary,
		)

		// Binary operators, tightest tier first.
		level := unary
		for _, t := range binaryTiers {
			level = peg.Reduce(
				peg.Sequence(
					mark(level),
					peg.ZeroOrMore(peg.Sequence(operator(t.ops), mark(level))),
				),
				reduceBinary(t.right),
			)
		}

		// Conditional.
		return peg.Reduce(
			peg.Sequence(
				level,
				peg.Optional(peg.Sequence(
					peg.Literal("?"),
					expr,
					peg.Optional(peg.Sequence(peg.Literal(":"), expr)),
				)),
			),
			reduceConditional,
		)
	})

	return peg.Sequence(
		peg.Pattern(`\s*`),
		peg.WithIgnore(space, expr),
		peg.Pattern(`\s*`),
	)
}

// operator matches any of ops, trying them in order.
func operator(ops []string) peg.Rule {
	quoted := make([]string, len(ops))
	for i, op := range ops {
		quoted[i] = regexp.QuoteMeta(op)
	}

	return peg.Reduce(
		peg.Pattern(`(`+strings.Join(quoted, "|")+`)`),
		func(frags []any, before, _ peg.State) any {
			op, _ := frags[0].(string)

			return opFrag{op: op, pos: before.Pos()}
		},
	)
}

// mark records the bounds of the node produced by rule.
func mark(rule peg.Rule) peg.Rule {
	return peg.Reduce(rule, func(frags []any, before, after peg.State) any {
		n, _ := frags[len(frags)-1].(Node)

		return operand{node: n, start: before.Pos(), end: after.Pos()}
	})
}

// stamp attaches the source span between before and after to n.
func stamp[T interface {
	Node
	setSpan(Span)
}](n T, before, after peg.State) T {
	n.setSpan(Span{Offset: before.Pos(), Source: peg.Text(before, after)})

	return n
}

func spanOf[T interface {
	Node
	setSpan(Span)
}](n T, input string, start, end int) T {
	n.setSpan(Span{Offset: start, Source: input[start:end]})

	return n
}

func reduceNumber(frags []any, before, after peg.State) any {
	raw, _ := frags[0].(string)

	var v float64

	if len(raw) > 2 && (raw[1] == 'x' || raw[1] == 'X') {
		u, err := strconv.ParseUint(raw[2:], 16, 64)
		if err != nil {
			v = parseIntPrefix(raw)
		} else {
			v = float64(u)
		}
	} else {
		v, _ = strconv.ParseFloat(raw, 64)
	}

	return stamp(&Literal{Value: v, Raw: raw}, before, after)
}

func reduceString(frags []any, before, after peg.State) any {
	body, _ := frags[0].(string)

	return stamp(
		&Literal{Value: unescape(body), Raw: peg.Text(before, after)},
		before, after,
	)
}

func reduceName(frags []any, before, after peg.State) any {
	name, _ := frags[0].(string)

	switch name {
	case "null":
		return stamp(&Literal{Value: nil, Raw: name}, before, after)
	case "true":
		return stamp(&Literal{Value: true, Raw: name}, before, after)
	case "false":
		return stamp(&Literal{Value: false, Raw: name}, before, after)
	}

	return stamp(&Identifier{Name: name}, before, after)
}

func reduceTemplate(frags []any, before, after peg.State) any {
	t := &TemplateLiteral{}

	var chunk strings.Builder

	flush := func() {
		if chunk.Len() > 0 {
			t.Parts = append(t.Parts, TemplatePart{Chunk: unescape(chunk.String())})
			chunk.Reset()
		}
	}

	for _, f := range frags {
		switch v := f.(type) {
		case string:
			chunk.WriteString(v)
		case Node:
			flush()
			t.Parts = append(t.Parts, TemplatePart{Expr: v})
		}
	}

	flush()

	return stamp(t, before, after)
}

func reduceArray(frags []any, before, after peg.State) any {
	return stamp(&ArrayLiteral{Elements: nodes(frags)}, before, after)
}

func reduceComputed(frags []any, before, after peg.State) any {
	n, _ := frags[0].(Node)

	return stamp(&ComputedProperty{Expr: n}, before, after)
}

func reduceProperty(frags []any, _, _ peg.State) any {
	p := Property{}
	p.Name, _ = frags[0].(Node)

	if len(frags) > 1 {
		p.Value, _ = frags[1].(Node)
	}

	return p
}

func reduceObject(frags []any, before, after peg.State) any {
	o := &ObjectLiteral{Properties: make([]Property, 0, len(frags))}

	for _, f := range frags {
		if p, ok := f.(Property); ok {
			o.Properties = append(o.Properties, p)
		}
	}

	return stamp(o, before, after)
}

func reduceArgs(frags []any, _, after peg.State) any {
	return argsFrag{args: nodes(frags), end: after.Pos()}
}

func reduceCall(frags []any, before, _ peg.State) any {
	callee, _ := frags[0].(Node)

	for _, f := range frags[1:] {
		a, _ := f.(argsFrag)
		callee = spanOf(
			&CallExpression{Callee: callee, Args: a.args},
			before.Input(), before.Pos(), a.end,
		)
	}

	return callee
}

func reduceUnary(frags []any, _, after peg.State) any {
	arg, _ := frags[len(frags)-1].(Node)

	for i := len(frags) - 2; i >= 0; i-- {
		op, _ := frags[i].(opFrag)
		arg = spanOf(
			&UnaryExpression{Operator: op.op, Argument: arg},
			after.Input(), op.pos, after.Pos(),
		)
	}

	return arg
}

// reduceBinary folds operands and operators of one precedence tier.
func reduceBinary(right bool) peg.Reducer {
	return func(frags []any, before, _ peg.State) any {
		input := before.Input()

		operands := make([]operand, 0, len(frags)/2+1)
		ops := make([]opFrag, 0, len(frags)/2)

		for _, f := range frags {
			switch v := f.(type) {
			case operand:
				operands = append(operands, v)
			case opFrag:
				ops = append(ops, v)
			}
		}

		if right {
			last := len(operands) - 1
			acc := operands[last]

			for i := last - 1; i >= 0; i-- {
				acc = operand{
					node: spanOf(&BinaryExpression{
						Left:     operands[i].node,
						Operator: ops[i].op,
						Right:    acc.node,
					}, input, operands[i].start, acc.end),
					start: operands[i].start,
					end:   acc.end,
				}
			}

			return acc.node
		}

		acc := operands[0]

		for i, op := range ops {
			rhs := operands[i+1]
			acc = operand{
				node: spanOf(&BinaryExpression{
					Left:     acc.node,
					Operator: op.op,
					Right:    rhs.node,
				}, input, acc.start, rhs.end),
				start: acc.start,
				end:   rhs.end,
			}
		}

		return acc.node
	}
}

func reduceConditional(frags []any, before, after peg.State) any {
	ns := nodes(frags)

	switch len(ns) {
	case 1:
		return ns[0]
	case 2:
		return stamp(&ConditionalExpression{Test: ns[0], Consequent: ns[1]}, before, after)
	}

	return stamp(&ConditionalExpression{
		Test:       ns[0],
		Consequent: ns[1],
		Alternate:  ns[2],
	}, before, after)
}

func nodes(frags []any) []Node {
	out := make([]Node, 0, len(frags))

	for _, f := range frags {
		if n, ok := f.(Node); ok {
			out = append(out, n)
		}
	}

	return out
}

// unescape processes backslash escapes in quoted string and template text.
// Unknown escapes yield the escaped character itself.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder

	b.Grow(len(s))

	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			i++

			continue
		}

		r, size := utf8.DecodeRuneInString(s[i+1:])
		i += 1 + size

		switch r {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case 'a':
			b.WriteByte('\a')
		case '0':
			b.WriteByte(0)
		case '\n':
			// line continuation
		case 'x':
			if v, ok := hexValue(s, i, 2); ok {
				b.WriteRune(rune(v))
				i += 2
			} else {
				b.WriteRune(r)
			}
		case 'u':
			if v, ok := hexValue(s, i, 4); ok {
				b.WriteRune(rune(v))
				i += 4
			} else {
				b.WriteRune(r)
			}
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

func hexValue(s string, at, n int) (uint64, bool) {
	if at+n > len(s) {
		return 0, false
	}

	v, err := strconv.ParseUint(s[at:at+n], 16, 32)

	return v, err == nil
}
