package lang

import "maps"

// tier is one level of binary operator precedence.
type tier struct {
	ops   []string
	right bool // right-associative
}

// binaryTiers lists binary operators from tightest to loosest binding.
// Within a tier, longer symbols precede their prefixes so that ordered
// choice matches the longest operator.
var binaryTiers = []tier{
	{ops: []string{"**"}, right: true},
	{ops: []string{"*", "/", "%"}},
	{ops: []string{"+", "-"}},
	{ops: []string{">>>", "<<", ">>"}},
	{ops: []string{"<=", ">=", "<", ">"}},
	{ops: []string{"===", "!==", "==", "!="}},
	{ops: []string{"&"}},
	{ops: []string{"^"}},
	{ops: []string{"|"}},
	{ops: []string{"&&"}},
	{ops: []string{"||"}},
	{ops: []string{"??"}},
	{ops: []string{":=", "+=", "-=", "*=", "/="}},
}

// unaryOps lists the prefix operators.
var unaryOps = []string{"+", "-", "~", "!"}

// precedence returns the tier index of a binary operator, or -1.
func precedence(op string) int {
	for i, t := range binaryTiers {
		for _, o := range t.ops {
			if o == op {
				return i
			}
		}
	}

	return -1
}

// defaultBinary maps binary operator symbols to the functions that
// implement them.
var defaultBinary = map[string]string{
	"**":  "pow",
	"*":   "mul",
	"/":   "div",
	"%":   "mod",
	"+":   "add",
	"-":   "sub",
	">>>": "ushr",
	"<<":  "shl",
	">>":  "shr",
	"<=":  "lte",
	">=":  "gte",
	"<":   "lt",
	">":   "gt",
	"===": "seq",
	"!==": "sneq",
	"==":  "eq",
	"!=":  "neq",
	"&":   "bitAnd",
	"^":   "bitXor",
	"|":   "bitOr",
	"&&":  "and",
	"||":  "or",
	"??":  "coalesce",
	":=":  "setVar",
	"+=":  "setAdd",
	"-=":  "setSub",
	"*=":  "setMul",
	"/=":  "setDiv",
}

// defaultUnary maps prefix operator symbols to the functions that
// implement them.
var defaultUnary = map[string]string{
	"+": "num",
	"-": "neg",
	"~": "bitNot",
	"!": "not",
}

// DefaultBinaryOperators returns a copy of the default binary operator table.
func DefaultBinaryOperators() map[string]string { return maps.Clone(defaultBinary) }

// DefaultUnaryOperators returns a copy of the default unary operator table.
func DefaultUnaryOperators() map[string]string { return maps.Clone(defaultUnary) }
