package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"slices"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/expr-lang/expr"
	"github.com/goccy/go-yaml"
)

// libEntry is a library function and its call signature for display.
type libEntry struct {
	fn  Function
	sig string
}

// simple adapts a pure function of evaluated arguments.
func simple(fn func(args []any) any) EagerFunc {
	return func(_ context.Context, _ *Env, _ any, args []any) (any, error) {
		return fn(args), nil
	}
}

// math1 adapts a unary numeric function.
func math1(fn func(float64) float64) EagerFunc {
	return simple(func(args []any) any { return fn(ToNumber(arg(args, 0))) })
}

// str1 adapts a unary string function.
func str1(fn func(string) string) EagerFunc {
	return simple(func(args []any) any { return fn(ToString(arg(args, 0))) })
}

// library lists the functions layered under the core operator functions.
func library() map[string]libEntry {
	lib := map[string]libEntry{
		// Conversion.
		"number": {simple(func(a []any) any {
			if len(a) > 1 {
				return ToNumber(a[0], ToNumber(a[1]))
			}

			return ToNumber(arg(a, 0))
		}), "number(value, fallback?) number"},
		"string":  {simple(func(a []any) any { return ToString(arg(a, 0)) }), "string(value) string"},
		"boolean": {simple(func(a []any) any { return ToBoolean(arg(a, 0)) }), "boolean(value) boolean"},
		"array":   {simple(func(a []any) any { return ToArray(arg(a, 0)) }), "array(value) array"},
		"object":  {simple(func(a []any) any { return ToObject(arg(a, 0)) }), "object(value) object"},
		"scalar":  {simple(func(a []any) any { return ToScalar(arg(a, 0)) }), "scalar(value) scalar"},

		// Math.
		"abs":   {math1(math.Abs), "abs(x) number"},
		"floor": {math1(math.Floor), "floor(x) number"},
		"ceil":  {math1(math.Ceil), "ceil(x) number"},
		"round": {math1(func(x float64) float64 { return math.Floor(x + 0.5) }), "round(x) number"},
		"trunc": {math1(math.Trunc), "trunc(x) number"},
		"sqrt":  {math1(math.Sqrt), "sqrt(x) number"},
		"sin":   {math1(math.Sin), "sin(x) number"},
		"cos":   {math1(math.Cos), "cos(x) number"},
		"tan":   {math1(math.Tan), "tan(x) number"},
		"log":   {math1(math.Log), "log(x) number"},
		"exp":   {math1(math.Exp), "exp(x) number"},
		"sign": {math1(func(x float64) float64 {
			switch {
			case x > 0:
				return 1
			case x < 0:
				return -1
			}

			return x
		}), "sign(x) number"},
		"min": {simple(func(a []any) any {
			return fold(a, math.Inf(1), math.Min)
		}), "min(x...) number"},
		"max": {simple(func(a []any) any {
			return fold(a, math.Inf(-1), math.Max)
		}), "max(x...) number"},
		"random": {EagerFunc(func(_ context.Context, env *Env, _ any, _ []any) (any, error) {
			return env.Random(), nil
		}), "random() number"},
		"randomInt": {EagerFunc(func(_ context.Context, env *Env, _ any, a []any) (any, error) {
			lo, hi := ToNumber(arg(a, 0)), ToNumber(arg(a, 1))

			return math.Floor(lo + env.Random()*(hi-lo)), nil
		}), "randomInt(min, max) number"},
		"pick": {EagerFunc(func(_ context.Context, env *Env, _ any, a []any) (any, error) {
			arr := ToArray(arg(a, 0))
			if len(arr) == 0 {
				return nil, nil
			}

			return arr[int(env.Random()*float64(len(arr)))], nil
		}), "pick(array) value"},

		// Strings.
		"length": {simple(func(a []any) any {
			switch v := normalize(arg(a, 0)).(type) {
			case []any:
				return float64(len(v))
			case *Object:
				return float64(v.Len())
			case string:
				return float64(utf8.RuneCountInString(v))
			}

			return float64(utf8.RuneCountInString(ToString(arg(a, 0))))
		}), "length(value) number"},
		"lower": {str1(strings.ToLower), "lower(s) string"},
		"upper": {str1(strings.ToUpper), "upper(s) string"},
		"trim":  {str1(strings.TrimSpace), "trim(s) string"},
		"concat": {simple(func(a []any) any {
			var b strings.Builder
			for _, v := range a {
				b.WriteString(ToString(v))
			}

			return b.String()
		}), "concat(s...) string"},
		"substr": {simple(func(a []any) any {
			r := []rune(ToString(arg(a, 0)))
			start := clampIndex(ToNumber(arg(a, 1)), len(r))

			end := len(r)
			if len(a) > 2 {
				end = min(len(r), start+max(0, int(ToNumber(a[2]))))
			}

			return string(r[start:end])
		}), "substr(s, start, length?) string"},
		"split": {simple(func(a []any) any {
			parts := strings.Split(ToString(arg(a, 0)), ToString(arg(a, 1)))
			out := make([]any, len(parts))

			for i, p := range parts {
				out[i] = p
			}

			return out
		}), "split(s, sep) array"},
		"join": {simple(func(a []any) any {
			sep := ","
			if len(a) > 1 {
				sep = ToString(a[1])
			}

			arr := ToArray(arg(a, 0))
			parts := make([]string, len(arr))

			for i, v := range arr {
				parts[i] = text(v)
			}

			return strings.Join(parts, sep)
		}), "join(array, sep?) string"},
		"replace": {simple(func(a []any) any {
			return strings.ReplaceAll(
				ToString(arg(a, 0)), ToString(arg(a, 1)), ToString(arg(a, 2)),
			)
		}), "replace(s, old, new) string"},
		"contains": {simple(func(a []any) any {
			if arr, ok := normalize(arg(a, 0)).([]any); ok {
				return slices.ContainsFunc(arr, func(v any) bool {
					return strictEqual(v, arg(a, 1))
				})
			}

			return strings.Contains(ToString(arg(a, 0)), ToString(arg(a, 1)))
		}), "contains(s|array, value) boolean"},
		"startsWith": {simple(func(a []any) any {
			return strings.HasPrefix(ToString(arg(a, 0)), ToString(arg(a, 1)))
		}), "startsWith(s, prefix) boolean"},
		"endsWith": {simple(func(a []any) any {
			return strings.HasSuffix(ToString(arg(a, 0)), ToString(arg(a, 1)))
		}), "endsWith(s, suffix) boolean"},
		"repeat": {simple(func(a []any) any {
			return strings.Repeat(ToString(arg(a, 0)), max(0, int(ToNumber(arg(a, 1)))))
		}), "repeat(s, n) string"},

		// Arrays and objects.
		"first": {simple(func(a []any) any {
			arr := ToArray(arg(a, 0))
			if len(arr) == 0 {
				return nil
			}

			return arr[0]
		}), "first(array) value"},
		"last": {simple(func(a []any) any {
			arr := ToArray(arg(a, 0))
			if len(arr) == 0 {
				return nil
			}

			return arr[len(arr)-1]
		}), "last(array) value"},
		"slice": {simple(func(a []any) any {
			if s, ok := normalize(arg(a, 0)).(string); ok {
				r := []rune(s)
				start, end := sliceBounds(a, len(r))

				return string(r[start:end])
			}

			arr := ToArray(arg(a, 0))
			start, end := sliceBounds(a, len(arr))

			return slices.Clone(arr[start:end])
		}), "slice(s|array, start, end?) value"},
		"includes": {simple(func(a []any) any {
			return slices.ContainsFunc(ToArray(arg(a, 0)), func(v any) bool {
				return strictEqual(v, arg(a, 1))
			})
		}), "includes(array, value) boolean"},
		"indexOf": {simple(func(a []any) any {
			if s, ok := normalize(arg(a, 0)).(string); ok {
				i := strings.Index(s, ToString(arg(a, 1)))
				if i < 0 {
					return -1.0
				}

				return float64(utf8.RuneCountInString(s[:i]))
			}

			return float64(slices.IndexFunc(ToArray(arg(a, 0)), func(v any) bool {
				return strictEqual(v, arg(a, 1))
			}))
		}), "indexOf(s|array, value) number"},
		"reverse": {simple(func(a []any) any {
			arr := slices.Clone(ToArray(arg(a, 0)))
			slices.Reverse(arr)

			return arr
		}), "reverse(array) array"},
		"sort": {simple(func(a []any) any {
			arr := slices.Clone(ToArray(arg(a, 0)))
			slices.SortStableFunc(arr, compareValues)

			return arr
		}), "sort(array) array"},
		"keys": {simple(func(a []any) any {
			keys := ToObject(arg(a, 0)).Keys()
			out := make([]any, len(keys))

			for i, k := range keys {
				out[i] = k
			}

			return out
		}), "keys(object) array"},
		"values": {simple(func(a []any) any {
			return ToObject(arg(a, 0)).Values()
		}), "values(object) array"},
		"get": {simple(func(a []any) any {
			v, ok := lookup(arg(a, 0), ToString(arg(a, 1)))
			if !ok {
				return arg(a, 2)
			}

			return v
		}), "get(object, path, default?) value"},
		"has": {simple(func(a []any) any {
			_, ok := lookup(arg(a, 0), ToString(arg(a, 1)))

			return ok
		}), "has(object, path) boolean"},
		"merge": {simple(func(a []any) any {
			out := &Object{}

			for _, v := range a {
				o := ToObject(v)
				for _, k := range o.Keys() {
					val, _ := o.Get(k)
					out.Set(k, val)
				}
			}

			return out
		}), "merge(object...) object"},

		// Encoding.
		"toJSON": {EagerFunc(func(_ context.Context, _ *Env, _ any, a []any) (any, error) {
			var buf bytes.Buffer

			enc := json.NewEncoder(&buf)
			enc.SetEscapeHTML(false)

			if n := int(ToNumber(arg(a, 1))); n > 0 {
				enc.SetIndent("", strings.Repeat(" ", n))
			}

			if err := enc.Encode(jsonSafe(normalize(arg(a, 0)))); err != nil {
				return nil, ErrInvalidArgument.Wrap(err)
			}

			return strings.TrimSuffix(buf.String(), "\n"), nil
		}), "toJSON(value, indent?) string"},
		"fromJSON": {EagerFunc(func(_ context.Context, _ *Env, _ any, a []any) (any, error) {
			return DecodeJSON(strings.NewReader(ToString(arg(a, 0))))
		}), "fromJSON(s) value"},
		"toYAML": {EagerFunc(func(_ context.Context, _ *Env, _ any, a []any) (any, error) {
			data, err := yaml.MarshalWithOptions(
				yamlValue(normalize(arg(a, 0))), yaml.AutoInt(),
			)
			if err != nil {
				return nil, ErrInvalidArgument.Wrap(err)
			}

			return string(data), nil
		}), "toYAML(value) string"},
		"fromYAML": {EagerFunc(func(_ context.Context, _ *Env, _ any, a []any) (any, error) {
			return DecodeYAML(strings.NewReader(ToString(arg(a, 0))))
		}), "fromYAML(s) value"},

		// Embedded expr-lang programs.
		"expr": {EagerFunc(evalExpr), "expr(source, env?) value"},
	}

	for name, entry := range hostLibrary() {
		lib[name] = entry
	}

	return lib
}

// libraryTable is built once on first use.
var libraryTable = sync.OnceValue(library)

// libraryFunctions returns the library as a function table.
func libraryFunctions() map[string]Function {
	lib := libraryTable()
	out := make(map[string]Function, len(lib))

	for name, entry := range lib {
		out[name] = entry.fn
	}

	return out
}

// Signature returns the display signature of a library function.
func Signature(name string) (string, bool) {
	entry, ok := libraryTable()[name]

	return entry.sig, ok && entry.sig != ""
}

// evalExpr compiles and runs an expr-lang program against the variables of
// an object.
func evalExpr(_ context.Context, _ *Env, _ any, a []any) (any, error) {
	source := ToString(arg(a, 0))
	env := ToObject(arg(a, 1)).Map()

	program, err := expr.Compile(source, expr.Env(env))
	if err != nil {
		return nil, ErrExprEvaluate.Wrap(err)
	}

	result, err := expr.Run(program, env)
	if err != nil {
		return nil, ErrExprEvaluate.Wrap(err)
	}

	return normalize(result), nil
}

func fold(args []any, init float64, op func(a, b float64) float64) float64 {
	acc := init
	for _, v := range args {
		acc = op(acc, ToNumber(v))
	}

	return acc
}

// clampIndex resolves a possibly negative index against length n.
func clampIndex(f float64, n int) int {
	i := int(math.Trunc(f))
	if i < 0 {
		i += n
	}

	return max(0, min(i, n))
}

func sliceBounds(a []any, n int) (int, int) {
	start := clampIndex(ToNumber(arg(a, 1)), n)

	end := n
	if len(a) > 2 && normalize(a[2]) != nil {
		end = clampIndex(ToNumber(a[2]), n)
	}

	return start, max(start, end)
}

// compareValues orders numbers numerically and everything else by text,
// with numbers first.
func compareValues(a, b any) int {
	x, xn := a.(float64)
	y, yn := b.(float64)

	switch {
	case xn && yn:
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}

		return 0

	case xn:
		return -1

	case yn:
		return 1
	}

	return strings.Compare(text(a), text(b))
}

// lookup resolves a dotted path through nested objects and arrays.
func lookup(v any, path string) (any, bool) {
	cur := normalize(v)

	for seg := range strings.SplitSeq(path, ".") {
		switch t := cur.(type) {
		case *Object:
			next, ok := t.Get(seg)
			if !ok {
				return nil, false
			}

			cur = normalize(next)

		case []any:
			i := int(ToNumber(seg, -1))
			if i < 0 || i >= len(t) {
				return nil, false
			}

			cur = normalize(t[i])

		default:
			return nil, false
		}
	}

	return cur, true
}
