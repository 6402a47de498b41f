// Package lang implements formula, a small embeddable expression language.
//
// A formula is a single expression. Hosts parse it once and evaluate the
// resulting tree against any number of scopes, supplying their own variable
// storage, functions and operator meanings through an [Env].
//
// # Syntax
//
// Informal EBNF, loosest binding first:
//
//	Expression  → Binary ( '?' Expression ( ':' Expression )? )?
//	Binary      → Unary ( BinaryOp Unary )*          (13 precedence tiers)
//	Unary       → ( '+' | '-' | '~' | '!' )* Call
//	Call        → Primary ( '(' List? ')' )*
//	Primary     → Number | String | Template | Name
//	            | '[' List? ']' | '{' Properties? '}' | '(' Expression ')'
//	Property    → ( '[' Expression ']' | String | Number | Name ) ':' Expression
//	            | Name
//
// Binary operators, tightest first: ** (right-associative); * / %; + -;
// >>> << >>; <= >= < >; === !== == !=; &; ^; |; &&; ||; ??; and the
// assignments := += -= *= /=. Names may contain dots (config.port) and the
// keywords null, true and false are literals. Templates are written in
// backquotes and interpolate with ${...}. Comments run from // to the end of
// the line; they are removed before parsing without regard to quoting.
//
// # Evaluation
//
// Every operator is an alias for a named function: a + b evaluates exactly
// like add(a, b). The operator tables and the function table are data, so a
// host can rename, replace or remove any of them:
//
//	env := lang.NewEnv(
//		lang.WithBinaryOperators(map[string]string{"+": "concat"}),
//		lang.WithFunction("double", lang.EagerFunc(
//			func(_ context.Context, _ *lang.Env, _ any, args []any) (any, error) {
//				return 2 * lang.ToNumber(args[0]), nil
//			})),
//	)
//
// Functions come in three forms. An [EagerFunc] receives evaluated
// arguments. A [LazyFunc] receives syntax nodes and evaluates them itself,
// which is how && || ?? and if short-circuit. An [AssignFunc] receives the
// name of its first argument instead of its value, which is how := and the
// compound assignments find their target.
//
// An identifier that resolves to nothing evaluates to its own name, so bare
// words behave like strings. Calls to unknown functions are passed to the
// fallback installed with [WithFallback], or fail with [ErrFunctionNotFound].
//
// Values are null (nil), numbers (float64), strings, booleans, arrays
// ([]any) and ordered objects ([*Object]). Conversions between them are
// total; see [ToNumber], [ToBoolean], [ToString], [ToArray], [ToObject] and
// [ToScalar].
//
// # Variables
//
// By default an Env stores variables in memory, shared by every evaluation
// that uses it. [WithGetter], [WithSetter] and [WithAccessor] replace that
// store; accessors receive the context and scope given to [Env.Evaluate] and
// may perform I/O. Names with a segment __proto__, prototype or constructor
// are never passed to an accessor.
//
// # Parsing
//
// [Parse] caches trees by source text in a process-wide [Cache], so
// identical text always yields the identical tree. Trees are immutable and
// safe to evaluate concurrently. Syntax errors are reported as [*ParseError]
// with the line and column of the furthest position the parser reached.
//
// [Format] renders a tree back to canonical source with minimal parentheses,
// and [Tree] converts it to an ordered object for JSON or YAML output.
package lang
