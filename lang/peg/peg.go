package peg

import (
	"regexp"
	"strings"
)

// Rule is a parser. On success it returns the advanced state and true.
// On failure it returns its argument unmodified and false.
type Rule func(State) (State, bool)

// Reducer computes the fragment that replaces everything a rule pushed.
// It receives the popped fragments in push order and the states before and
// after the rule ran. A nil result pushes nothing.
type Reducer func(frags []any, before, after State) any

// Literal matches text exactly at the current position.
func Literal(text string) Rule {
	return func(s State) (State, bool) {
		if !strings.HasPrefix(s.input[s.pos:], text) {
			return s, false
		}

		return s.advance(len(text)), true
	}
}

// Pattern matches the regular expression expr anchored at the current
// position and pushes each capture group in order. A group that did not
// participate in the match pushes the empty string.
//
// Pattern panics if expr does not compile.
func Pattern(expr string) Rule {
	re := regexp.MustCompile(`^(?:` + expr + `)`)

	return func(s State) (State, bool) {
		rest := s.input[s.pos:]

		loc := re.FindStringSubmatchIndex(rest)
		if loc == nil {
			return s, false
		}

		next := s
		for i := 2; i+1 < len(loc); i += 2 {
			if loc[i] < 0 {
				next = next.push("")
			} else {
				next = next.push(rest[loc[i]:loc[i+1]])
			}
		}

		return next.advance(loc[1]), true
	}
}

// Sequence matches every rule in order, applying the ignore rule between
// consecutive elements. If any element fails, the original state is
// returned.
func Sequence(rules ...Rule) Rule {
	return func(s State) (State, bool) {
		cur := s

		for i, rule := range rules {
			if i == 0 {
				next, ok := rule(cur)
				if !ok {
					return s, false
				}

				cur = next

				continue
			}

			next, ok := step(cur, rule)
			if !ok {
				return s, false
			}

			cur = next
		}

		return cur, true
	}
}

// step applies the ignore rule and then rule. An element that matches
// without progress leaves the ignored input unconsumed, so trailing
// whitespace is never attributed to the preceding element.
func step(cur State, rule Rule) (State, bool) {
	skipped := cur.skip()

	next, ok := rule(skipped)
	if !ok {
		return cur, false
	}

	if next.same(skipped) {
		return cur, true
	}

	return next, true
}

// Choice returns the result of the first rule that matches.
func Choice(rules ...Rule) Rule {
	return func(s State) (State, bool) {
		for _, rule := range rules {
			if next, ok := rule(s); ok {
				return next, true
			}
		}

		return s, false
	}
}

// Optional matches rule or nothing. It never fails.
func Optional(rule Rule) Rule {
	return func(s State) (State, bool) {
		if next, ok := rule(s); ok {
			return next, true
		}

		return s, true
	}
}

// OneOrMore matches rule at least once, applying the ignore rule between
// repetitions. Repetition stops at the first iteration that fails or makes
// no progress.
func OneOrMore(rule Rule) Rule {
	return func(s State) (State, bool) {
		cur, ok := rule(s)
		if !ok {
			return s, false
		}

		for {
			skipped := cur.skip()

			next, ok := rule(skipped)
			if !ok || next.same(skipped) {
				return cur, true
			}

			cur = next
		}
	}
}

// ZeroOrMore matches rule any number of times. It never fails.
func ZeroOrMore(rule Rule) Rule {
	return Optional(OneOrMore(rule))
}

// Not succeeds without consuming input if rule fails at the current
// position, and fails if it matches.
func Not(rule Rule) Rule {
	return func(s State) (State, bool) {
		if _, ok := rule(s); ok {
			return s, false
		}

		return s, true
	}
}

// WithIgnore installs ignore as the rule skipped between elements while
// rule runs. A nil ignore disables skipping. The previous ignore rule is
// restored on return.
func WithIgnore(ignore Rule, rule Rule) Rule {
	return func(s State) (State, bool) {
		inner := s
		inner.ignore = &ignoreFrame{rule: ignore, next: s.ignore}

		next, ok := rule(inner)
		if !ok {
			return s, false
		}

		next.ignore = s.ignore

		return next, true
	}
}

// Reduce replaces the fragments pushed by rule with the single fragment
// returned by reducer, or with nothing if reducer returns nil.
func Reduce(rule Rule, reducer Reducer) Rule {
	return func(s State) (State, bool) {
		next, ok := rule(s)
		if !ok {
			return s, false
		}

		n := next.depth - s.depth
		if n < 0 {
			n = 0
		}

		frags := make([]any, n)

		f := next.top
		for i := n - 1; i >= 0; i-- {
			frags[i] = f.value
			f = f.next
		}

		out := next
		out.top, out.depth = s.top, s.depth

		if v := reducer(frags, s, next); v != nil {
			out = out.push(v)
		}

		return out, true
	}
}

// FixPoint returns the rule produced by build, where build receives a
// handle that refers to that same rule. The handle may be used freely while
// building; it is resolved when first invoked.
func FixPoint(build func(self Rule) Rule) Rule {
	var rule Rule

	self := func(s State) (State, bool) {
		return rule(s)
	}

	rule = build(self)

	return rule
}
