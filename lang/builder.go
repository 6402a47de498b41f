package lang

import "strconv"

// Builder constructs AST nodes without parsing source text. Nodes built this
// way carry an empty [Span]. This is useful for generating expressions
// programmatically with [Format] or for testing.
//
// Example:
//
//	b := lang.NewBuilder()
//	node := b.Binary(b.Ident("x"), ":=", b.Call("max", b.Number(1), b.Number(2)))
//	fmt.Println(lang.Format(node)) // x := max(1, 2)
type Builder struct{}

// NewBuilder creates a new AST builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Null creates a null [Literal].
func (b *Builder) Null() *Literal {
	return &Literal{Raw: "null"}
}

// Bool creates a boolean [Literal].
func (b *Builder) Bool(v bool) *Literal {
	return &Literal{Value: v, Raw: strconv.FormatBool(v)}
}

// Number creates a numeric [Literal].
func (b *Builder) Number(f float64) *Literal {
	return &Literal{Value: f, Raw: FormatNumber(f)}
}

// String creates a string [Literal].
func (b *Builder) String(s string) *Literal {
	return &Literal{Value: s, Raw: Quote(s)}
}

// Ident creates an [Identifier].
func (b *Builder) Ident(name string) *Identifier {
	return &Identifier{Name: name}
}

// Call creates a [CallExpression] whose callee is the named identifier.
func (b *Builder) Call(name string, args ...Node) *CallExpression {
	return &CallExpression{Callee: b.Ident(name), Args: nonNil(args)}
}

// Binary creates a [BinaryExpression].
func (b *Builder) Binary(left Node, op string, right Node) *BinaryExpression {
	return &BinaryExpression{Left: left, Operator: op, Right: right}
}

// Unary creates a [UnaryExpression].
func (b *Builder) Unary(op string, arg Node) *UnaryExpression {
	return &UnaryExpression{Operator: op, Argument: arg}
}

// Cond creates a [ConditionalExpression]. A nil alternate is omitted.
func (b *Builder) Cond(test, consequent, alternate Node) *ConditionalExpression {
	return &ConditionalExpression{
		Test:       test,
		Consequent: consequent,
		Alternate:  alternate,
	}
}

// Template creates a [TemplateLiteral]. String parts become chunks and
// [Node] parts become interpolations; other values are ignored.
func (b *Builder) Template(parts ...any) *TemplateLiteral {
	t := &TemplateLiteral{Parts: []TemplatePart{}}

	for _, p := range parts {
		switch v := p.(type) {
		case string:
			t.Parts = append(t.Parts, TemplatePart{Chunk: v})
		case Node:
			t.Parts = append(t.Parts, TemplatePart{Expr: v})
		}
	}

	return t
}

// Array creates an [ArrayLiteral].
func (b *Builder) Array(elems ...Node) *ArrayLiteral {
	return &ArrayLiteral{Elements: nonNil(elems)}
}

// Computed creates a [ComputedProperty] name.
func (b *Builder) Computed(expr Node) *ComputedProperty {
	return &ComputedProperty{Expr: expr}
}

// Prop creates a [Property] with an explicit value. A string key becomes a
// string literal name; a [Node] key is used as is.
func (b *Builder) Prop(key any, value Node) Property {
	var name Node

	switch k := key.(type) {
	case Node:
		name = k
	default:
		name = b.String(text(normalize(k)))
	}

	return Property{Name: name, Value: value}
}

// Shorthand creates a shorthand [Property] such as {x}.
func (b *Builder) Shorthand(name string) Property {
	return Property{Name: b.Ident(name)}
}

// Object creates an [ObjectLiteral].
func (b *Builder) Object(props ...Property) *ObjectLiteral {
	if props == nil {
		props = []Property{}
	}

	return &ObjectLiteral{Properties: props}
}

func nonNil(nodes []Node) []Node {
	if nodes == nil {
		return []Node{}
	}

	return nodes
}
