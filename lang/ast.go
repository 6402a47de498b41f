package lang

//go:generate go tool stringer --linecomment --type Kind --output kind_string.go

// Kind identifies the shape of a [Node].
type Kind int

const (
	KindLiteral     Kind = iota // Literal
	KindIdentifier              // Identifier
	KindCall                    // CallExpression
	KindBinary                  // BinaryExpression
	KindConditional             // ConditionalExpression
	KindUnary                   // UnaryExpression
	KindTemplate                // TemplateLiteral
	KindComputed                // ComputedProperty
	KindArray                   // ArrayLiteral
	KindObject                  // ObjectLiteral
)

// Kinds returns every node kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindLiteral,
		KindIdentifier,
		KindCall,
		KindBinary,
		KindConditional,
		KindUnary,
		KindTemplate,
		KindComputed,
		KindArray,
		KindObject,
	}
}

// Span locates the source text a node was parsed from.
// It is metadata only and never affects evaluation.
type Span struct {
	Offset int
	Source string
}

// Node is an expression in the abstract syntax tree.
//
// The set of node types is closed: every implementation is declared in this
// file.
type Node interface {
	Kind() Kind
	Span() Span
	node()
}

// spanned carries the [Span] shared by every node type.
type spanned struct {
	span Span
}

// Span returns the source location of the node.
func (s *spanned) Span() Span { return s.span }

func (s *spanned) setSpan(span Span) { s.span = span }

func (*spanned) node() {}

// Literal is a scalar constant: number, string, boolean or null.
// Raw holds the source text of the literal.
type Literal struct {
	spanned

	Value any
	Raw   string
}

// Identifier is a possibly dotted name such as x or config.port.
type Identifier struct {
	spanned

	Name string
}

// CallExpression applies Callee to Args.
type CallExpression struct {
	spanned

	Callee Node
	Args   []Node
}

// BinaryExpression applies an infix operator.
type BinaryExpression struct {
	spanned

	Left     Node
	Operator string
	Right    Node
}

// ConditionalExpression is test ? consequent : alternate.
// Alternate is nil when the expression has no alternate branch.
type ConditionalExpression struct {
	spanned

	Test       Node
	Consequent Node
	Alternate  Node
}

// UnaryExpression applies a prefix operator.
type UnaryExpression struct {
	spanned

	Operator string
	Argument Node
}

// TemplatePart is one piece of a [TemplateLiteral]: either a text chunk or
// an interpolated expression. Expr is nil for chunks.
type TemplatePart struct {
	Chunk string
	Expr  Node
}

// IsChunk reports whether the part is literal text.
func (p TemplatePart) IsChunk() bool { return p.Expr == nil }

// TemplateLiteral is a backtick string with ${} interpolations.
type TemplateLiteral struct {
	spanned

	Parts []TemplatePart
}

// ComputedProperty is a [expr] key in an object literal.
type ComputedProperty struct {
	spanned

	Expr Node
}

// ArrayLiteral is [a, b, ...].
type ArrayLiteral struct {
	spanned

	Elements []Node
}

// Property is one entry of an [ObjectLiteral]. Name is an [*Identifier],
// a [*Literal] or a [*ComputedProperty]. Value is nil for shorthand
// properties, whose value is the evaluated Name.
type Property struct {
	Name  Node
	Value Node
}

// IsShorthand reports whether the property is written {name}.
func (p Property) IsShorthand() bool { return p.Value == nil }

// ObjectLiteral is {key: value, ...}.
type ObjectLiteral struct {
	spanned

	Properties []Property
}

func (*Literal) Kind() Kind               { return KindLiteral }
func (*Identifier) Kind() Kind            { return KindIdentifier }
func (*CallExpression) Kind() Kind        { return KindCall }
func (*BinaryExpression) Kind() Kind      { return KindBinary }
func (*ConditionalExpression) Kind() Kind { return KindConditional }
func (*UnaryExpression) Kind() Kind       { return KindUnary }
func (*TemplateLiteral) Kind() Kind       { return KindTemplate }
func (*ComputedProperty) Kind() Kind      { return KindComputed }
func (*ArrayLiteral) Kind() Kind          { return KindArray }
func (*ObjectLiteral) Kind() Kind         { return KindObject }

// Walk traverses node depth-first in source order, calling fn for each node.
// Children are skipped when fn returns false.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Literal, *Identifier:

	case *CallExpression:
		Walk(n.Callee, fn)

		for _, arg := range n.Args {
			Walk(arg, fn)
		}

	case *BinaryExpression:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *ConditionalExpression:
		Walk(n.Test, fn)
		Walk(n.Consequent, fn)
		Walk(n.Alternate, fn)

	case *UnaryExpression:
		Walk(n.Argument, fn)

	case *TemplateLiteral:
		for _, part := range n.Parts {
			Walk(part.Expr, fn)
		}

	case *ComputedProperty:
		Walk(n.Expr, fn)

	case *ArrayLiteral:
		for _, elem := range n.Elements {
			Walk(elem, fn)
		}

	case *ObjectLiteral:
		for _, prop := range n.Properties {
			Walk(prop.Name, fn)
			Walk(prop.Value, fn)
		}
	}
}

// Equal reports whether a and b are structurally identical, ignoring spans.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case *Literal:
		y, _ := b.(*Literal)

		return equalValue(x.Value, y.Value)

	case *Identifier:
		y, _ := b.(*Identifier)

		return x.Name == y.Name

	case *CallExpression:
		y, _ := b.(*CallExpression)

		return Equal(x.Callee, y.Callee) && equalNodes(x.Args, y.Args)

	case *BinaryExpression:
		y, _ := b.(*BinaryExpression)

		return x.Operator == y.Operator &&
			Equal(x.Left, y.Left) &&
			Equal(x.Right, y.Right)

	case *ConditionalExpression:
		y, _ := b.(*ConditionalExpression)

		return Equal(x.Test, y.Test) &&
			Equal(x.Consequent, y.Consequent) &&
			Equal(x.Alternate, y.Alternate)

	case *UnaryExpression:
		y, _ := b.(*UnaryExpression)

		return x.Operator == y.Operator && Equal(x.Argument, y.Argument)

	case *TemplateLiteral:
		y, _ := b.(*TemplateLiteral)
		if len(x.Parts) != len(y.Parts) {
			return false
		}

		for i := range x.Parts {
			if x.Parts[i].Chunk != y.Parts[i].Chunk ||
				!Equal(x.Parts[i].Expr, y.Parts[i].Expr) {
				return false
			}
		}

		return true

	case *ComputedProperty:
		y, _ := b.(*ComputedProperty)

		return Equal(x.Expr, y.Expr)

	case *ArrayLiteral:
		y, _ := b.(*ArrayLiteral)

		return equalNodes(x.Elements, y.Elements)

	case *ObjectLiteral:
		y, _ := b.(*ObjectLiteral)
		if len(x.Properties) != len(y.Properties) {
			return false
		}

		for i := range x.Properties {
			if !Equal(x.Properties[i].Name, y.Properties[i].Name) ||
				!Equal(x.Properties[i].Value, y.Properties[i].Value) {
				return false
			}
		}

		return true
	}

	return false
}

func equalNodes(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}

	return true
}

// equalValue compares literal values. NaN never appears in literals.
func equalValue(a, b any) bool {
	switch x := a.(type) {
	case float64:
		y, ok := b.(float64)

		return ok && x == y

	case string:
		y, ok := b.(string)

		return ok && x == y

	case bool:
		y, ok := b.(bool)

		return ok && x == y

	case nil:
		return b == nil
	}

	return false
}
