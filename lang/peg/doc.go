// Package peg provides backtracking parser combinators over a single
// immutable input string.
//
// A [Rule] maps one [State] to another. A rule that fails returns the state
// it was given, unmodified, together with false; callers backtrack simply by
// continuing from the state they already hold. States are values and every
// component of a state (output stack, ignore stack) is persistent, so no
// partially applied rule can leave side effects behind.
//
// # Output
//
// Rules produce output by pushing fragments onto the state's output stack.
// [Pattern] pushes its capture groups, and [Reduce] collapses everything a
// rule pushed into at most one fragment, typically an AST node. [Run] returns
// the single fragment left after the root rule consumed all input.
//
// # Ignored input
//
// [Sequence] and the repetition combinators apply the innermost ignore rule
// between their elements, never before the first. [WithIgnore] installs an
// ignore rule for the duration of one rule and restores the previous one
// afterward, which lets a grammar treat whitespace as insignificant except
// within selected productions:
//
//	space := peg.Pattern(`\s+`)
//	list  := peg.WithIgnore(space, peg.Sequence(
//		peg.Literal("["),
//		peg.Optional(item),
//		peg.Literal("]"),
//	))
//
// # Recursion
//
// Recursive grammars are built with [FixPoint], which hands the builder a
// handle to the rule being defined:
//
//	parens := peg.FixPoint(func(self peg.Rule) peg.Rule {
//		return peg.Sequence(peg.Literal("("), peg.Optional(self), peg.Literal(")"))
//	})
//
// # Errors
//
// Every state shares a tracker recording the furthest offset consumed by any
// attempt, along with its line and column. When a parse fails, [Run] reports
// that position and the unconsumed remainder as an [*Error].
package peg
