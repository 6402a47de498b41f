package lang

import (
	"context"
	"maps"
	"math"
	"reflect"
	"sync"
)

var (
	defaultFuncsOnce sync.Once
	defaultFuncs     map[string]Function
)

// defaultFunctions returns the shared default function table: the core
// functions every operator alias targets, layered under the library.
// Callers must clone it before modification.
func defaultFunctions() map[string]Function {
	defaultFuncsOnce.Do(func() {
		defaultFuncs = make(map[string]Function)
		maps.Copy(defaultFuncs, libraryFunctions())
		maps.Copy(defaultFuncs, coreFunctions())
	})

	return defaultFuncs
}

// DefaultFunctions returns a copy of the default function table.
func DefaultFunctions() map[string]Function { return maps.Clone(defaultFunctions()) }

// binaryNumeric lifts a numeric operation into an [EagerFunc].
func binaryNumeric(op func(a, b float64) float64) EagerFunc {
	return func(_ context.Context, _ *Env, _ any, args []any) (any, error) {
		return op(ToNumber(arg(args, 0)), ToNumber(arg(args, 1))), nil
	}
}

// binaryInt32 lifts a 32-bit integer operation into an [EagerFunc].
func binaryInt32(op func(a, b int32) int32) EagerFunc {
	return func(_ context.Context, _ *Env, _ any, args []any) (any, error) {
		return float64(op(toInt32(arg(args, 0)), toInt32(arg(args, 1)))), nil
	}
}

// compare lifts an ordering into an [EagerFunc]. Two strings compare
// lexically; anything else compares numerically.
func compare(ok func(c int) bool) EagerFunc {
	return func(_ context.Context, _ *Env, _ any, args []any) (any, error) {
		a, b := normalize(arg(args, 0)), normalize(arg(args, 1))

		as, aok := a.(string)
		bs, bok := b.(string)

		if aok && bok {
			switch {
			case as < bs:
				return ok(-1), nil
			case as > bs:
				return ok(1), nil
			}

			return ok(0), nil
		}

		x, y := ToNumber(a), ToNumber(b)

		switch {
		case x < y:
			return ok(-1), nil
		case x > y:
			return ok(1), nil
		}

		return ok(0), nil
	}
}

// assign builds one of the compound assignment functions. update computes
// the stored value from the current and given values.
func assign(update func(cur, v any) any) AssignFunc {
	return func(ctx context.Context, env *Env, scope any, args []any) (any, error) {
		name := ToString(arg(args, 0))
		value := arg(args, 1)

		if update != nil {
			cur, _, err := env.Get(ctx, scope, name)
			if err != nil {
				return nil, err
			}

			value = update(cur, value)
		}

		if err := env.Set(ctx, scope, name, value); err != nil {
			return nil, err
		}

		return value, nil
	}
}

// coreFunctions returns the functions implementing the default operators
// and control flow.
func coreFunctions() map[string]Function {
	return map[string]Function{
		// Assignment.
		"setVar": assign(nil),
		"setAdd": assign(func(cur, v any) any {
			if s, ok := normalize(cur).(string); ok {
				return s + text(normalize(v))
			}

			return ToNumber(cur) + ToNumber(v)
		}),
		"setSub": assign(func(cur, v any) any { return ToNumber(cur) - ToNumber(v) }),
		"setMul": assign(func(cur, v any) any { return ToNumber(cur) * ToNumber(v) }),
		"setDiv": assign(func(cur, v any) any { return ToNumber(cur) / ToNumber(v) }),

		// Arithmetic.
		"pow": binaryNumeric(math.Pow),
		"mul": binaryNumeric(func(a, b float64) float64 { return a * b }),
		"div": binaryNumeric(func(a, b float64) float64 { return a / b }),
		"mod": binaryNumeric(math.Mod),
		"sub": binaryNumeric(func(a, b float64) float64 { return a - b }),
		"add": EagerFunc(func(_ context.Context, _ *Env, _ any, args []any) (any, error) {
			a, b := normalize(arg(args, 0)), normalize(arg(args, 1))

			_, as := a.(string)
			_, bs := b.(string)

			if as || bs {
				return text(a) + text(b), nil
			}

			return ToNumber(a) + ToNumber(b), nil
		}),

		// Bitwise.
		"shl": binaryInt32(func(a, b int32) int32 { return a << (uint32(b) & 31) }),
		"shr": binaryInt32(func(a, b int32) int32 { return a >> (uint32(b) & 31) }),
		"ushr": EagerFunc(func(_ context.Context, _ *Env, _ any, args []any) (any, error) {
			a := uint32(toInt32(arg(args, 0)))
			b := uint32(toInt32(arg(args, 1))) & 31

			return float64(a >> b), nil
		}),
		"bitAnd": binaryInt32(func(a, b int32) int32 { return a & b }),
		"bitXor": binaryInt32(func(a, b int32) int32 { return a ^ b }),
		"bitOr":  binaryInt32(func(a, b int32) int32 { return a | b }),
		"bitNot": EagerFunc(func(_ context.Context, _ *Env, _ any, args []any) (any, error) {
			return float64(^toInt32(arg(args, 0))), nil
		}),

		// Comparison.
		"lt":  compare(func(c int) bool { return c < 0 }),
		"lte": compare(func(c int) bool { return c <= 0 }),
		"gt":  compare(func(c int) bool { return c > 0 }),
		"gte": compare(func(c int) bool { return c >= 0 }),
		"eq": EagerFunc(func(_ context.Context, _ *Env, _ any, args []any) (any, error) {
			return looseEqual(arg(args, 0), arg(args, 1)), nil
		}),
		"neq": EagerFunc(func(_ context.Context, _ *Env, _ any, args []any) (any, error) {
			return !looseEqual(arg(args, 0), arg(args, 1)), nil
		}),
		"seq": EagerFunc(func(_ context.Context, _ *Env, _ any, args []any) (any, error) {
			return strictEqual(arg(args, 0), arg(args, 1)), nil
		}),
		"sneq": EagerFunc(func(_ context.Context, _ *Env, _ any, args []any) (any, error) {
			return !strictEqual(arg(args, 0), arg(args, 1)), nil
		}),

		// Unary.
		"num": EagerFunc(func(_ context.Context, _ *Env, _ any, args []any) (any, error) {
			return ToNumber(arg(args, 0)), nil
		}),
		"neg": EagerFunc(func(_ context.Context, _ *Env, _ any, args []any) (any, error) {
			return -ToNumber(arg(args, 0)), nil
		}),
		"not": EagerFunc(func(_ context.Context, _ *Env, _ any, args []any) (any, error) {
			return !ToBoolean(arg(args, 0)), nil
		}),

		// Control flow.
		"do": EagerFunc(func(_ context.Context, _ *Env, _ any, args []any) (any, error) {
			if len(args) == 0 {
				return nil, nil
			}

			return args[len(args)-1], nil
		}),
		"if": LazyFunc(func(ctx context.Context, env *Env, scope any, args []Node) (any, error) {
			if len(args) == 0 {
				return nil, nil
			}

			test, err := env.Evaluate(ctx, args[0], scope)
			if err != nil {
				return nil, err
			}

			branch := 2
			if ToBoolean(test) {
				branch = 1
			}

			if branch >= len(args) {
				return nil, nil
			}

			return env.Evaluate(ctx, args[branch], scope)
		}),
		"and": shortCircuit(func(v any) bool { return !ToBoolean(v) }),
		"or":  shortCircuit(ToBoolean),
		"coalesce": shortCircuit(func(v any) bool {
			return normalize(v) != nil
		}),
	}
}

// shortCircuit evaluates arguments in order and returns the first one for
// which stop reports true, or the last one.
func shortCircuit(stop func(any) bool) LazyFunc {
	return func(ctx context.Context, env *Env, scope any, args []Node) (any, error) {
		var v any

		for i, node := range args {
			var err error

			v, err = env.Evaluate(ctx, node, scope)
			if err != nil {
				return nil, err
			}

			if i < len(args)-1 && stop(v) {
				return v, nil
			}
		}

		return v, nil
	}
}

// arg returns args[i], or nil if absent.
func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}

	return nil
}

// toInt32 converts v to a 32-bit integer by truncation modulo 2^32.
func toInt32(v any) int32 {
	f := ToNumber(v)
	if !isFinite(f) {
		return 0
	}

	return int32(uint32(int64(math.Trunc(math.Mod(f, 1<<32)))))
}

// looseEqual compares numbers and booleans numerically and everything else
// by text. Null equals only null.
func looseEqual(a, b any) bool {
	a, b = normalize(a), normalize(b)

	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if isNumeric(a) && isNumeric(b) {
		return ToNumber(a) == ToNumber(b)
	}

	return text(a) == text(b)
}

func isNumeric(v any) bool {
	switch v.(type) {
	case float64, bool:
		return true
	}

	return false
}

// strictEqual compares values of the same type. Arrays and objects are
// equal only to themselves.
func strictEqual(a, b any) bool {
	a, b = normalize(a), normalize(b)

	switch x := a.(type) {
	case nil:
		return b == nil

	case float64:
		y, ok := b.(float64)

		return ok && x == y

	case string:
		y, ok := b.(string)

		return ok && x == y

	case bool:
		y, ok := b.(bool)

		return ok && x == y

	case *Object:
		y, ok := b.(*Object)

		return ok && x == y

	case []any:
		y, ok := b.([]any)

		return ok && len(x) == len(y) &&
			reflect.ValueOf(x).Pointer() == reflect.ValueOf(y).Pointer()
	}

	return false
}
