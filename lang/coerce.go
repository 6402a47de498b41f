package lang

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode"
)

// Coercions are total: out-of-domain input yields a defined fallback and
// never an error.

// ToNumber converts v to a number. NaN and values with no numeric reading
// yield fallback, which defaults to 0.
//
// Strings containing a '.' are read as a floating point prefix; other
// strings are read as an integer prefix, so "3abc" is 3 and "1e3" is 1.
func ToNumber(v any, fallback ...float64) float64 {
	def := 0.0
	if len(fallback) > 0 {
		def = fallback[0]
	}

	switch t := normalize(v).(type) {
	case float64:
		if math.IsNaN(t) {
			return def
		}

		return t

	case bool:
		if t {
			return 1
		}

		return 0

	case string:
		var n float64
		if strings.Contains(t, ".") {
			n = parseFloatPrefix(t)
		} else {
			n = parseIntPrefix(t)
		}

		if math.IsNaN(n) {
			return def
		}

		return n
	}

	return def
}

// parseIntPrefix reads an optionally signed decimal or 0x-prefixed
// hexadecimal integer from the start of s, after leading whitespace.
// It returns NaN if no digits are present.
func parseIntPrefix(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	sign := 1.0

	switch {
	case strings.HasPrefix(s, "-"):
		sign, s = -1, s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	base, digits := 10.0, "0123456789"
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, digits, s = 16, "0123456789abcdef", s[2:]
	}

	n, seen := 0.0, false

	for _, r := range strings.ToLower(s) {
		d := strings.IndexRune(digits, r)
		if d < 0 {
			break
		}

		n, seen = n*base+float64(d), true
	}

	if !seen {
		return math.NaN()
	}

	return sign * n
}

// parseFloatPrefix reads the longest decimal floating point prefix of s,
// after leading whitespace. It returns NaN if there is none.
func parseFloatPrefix(s string) float64 {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	if strings.HasPrefix(s[i:], "Infinity") {
		if s[0] == '-' {
			return math.Inf(-1)
		}

		return math.Inf(1)
	}

	mant := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}

	if i < len(s) && s[i] == '.' {
		i++

		for i < len(s) && isDigit(s[i]) {
			i++
		}
	}

	if i == mant || (i == mant+1 && s[mant] == '.') {
		return math.NaN()
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}

		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}

		if k > j {
			i = k
		}
	}

	n, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		// Out of range values saturate to ±Inf, which ParseFloat returns
		// alongside the error.
		if errors.Is(err, strconv.ErrRange) {
			return n
		}

		return math.NaN()
	}

	return n
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }

// ToBoolean reports the truthiness of v. Falsy values are null, false, 0,
// NaN, the empty string, the strings "false" and "0", and strings made only
// of whitespace. Arrays and objects are always truthy.
func ToBoolean(v any) bool {
	switch t := normalize(v).(type) {
	case nil:
		return false

	case bool:
		return t

	case float64:
		return t != 0 && !math.IsNaN(t)

	case string:
		if t == "false" || t == "0" {
			return false
		}

		return strings.TrimSpace(t) != ""
	}

	return true
}

// ToString converts v to text. Numbers use their shortest round-trip
// decimal form; true and "true" yield "true"; null, false and the empty
// string yield the empty string. Arrays join their elements with commas and
// objects render as JSON.
func ToString(v any) string {
	v = normalize(v)

	switch t := v.(type) {
	case float64:
		return FormatNumber(t)

	case bool:
		if t {
			return "true"
		}
	}

	if falsy(v) {
		return ""
	}

	return text(v)
}

// falsy reports whether v is null, false, 0, NaN or the empty string. Unlike
// [ToBoolean] it does not treat "0", "false" or blank strings as false.
func falsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case float64:
		return t == 0 || math.IsNaN(t)
	case string:
		return t == ""
	}

	return false
}

// text is the default textual form of a runtime value.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""

	case float64:
		return FormatNumber(t)

	case string:
		return t

	case bool:
		return strconv.FormatBool(t)

	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = text(e)
		}

		return strings.Join(parts, ",")

	case *Object:
		return t.String()
	}

	return fmt.Sprint(v)
}

// FormatNumber renders f in its shortest round-trip decimal form, using
// exponent notation when |f| is below 1e-6 or at least 1e21.
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}

	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	s := strconv.FormatFloat(f, 'e', -1, 64)

	mant, exp, _ := strings.Cut(s, "e")

	sign := exp[:1]
	exp = strings.TrimLeft(exp[1:], "0")

	if exp == "" {
		exp = "0"
	}

	return mant + "e" + sign + exp
}

// ToArray converts v to an array of scalars. Arrays pass through
// element-wise, objects yield their values in key order, scalars become a
// one-element array and falsy values an empty one.
func ToArray(v any) []any {
	v = normalize(v)
	if falsy(v) {
		return []any{}
	}

	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = ToScalar(e)
		}

		return out

	case *Object:
		vals := t.Values()
		for i, e := range vals {
			vals[i] = ToScalar(e)
		}

		return vals

	case float64, string, bool:
		return []any{t}
	}

	return []any{}
}

// ToObject converts v to an object. Objects pass through by reference;
// everything else yields a new empty object.
func ToObject(v any) *Object {
	if o, ok := normalize(v).(*Object); ok && o != nil {
		return o
	}

	return &Object{}
}

// ToScalar converts v to a number, string, boolean or null. Arrays and
// objects become the empty string.
func ToScalar(v any) any {
	v = normalize(v)

	switch t := v.(type) {
	case float64, string, bool:
		return t

	case nil:
		return nil

	case []any, *Object:
		return ""
	}

	return text(v)
}

// normalize converts host values into the runtime value model: integers
// become float64, maps with string keys become [*Object] and slices
// become []any. Runtime values are returned unchanged.
func normalize(v any) any {
	switch t := v.(type) {
	case nil, float64, string, bool, []any, *Object:
		return v

	case int:
		return float64(t)
	case int8:
		return float64(t)
	case int16:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case uint:
		return float64(t)
	case uint8:
		return float64(t)
	case uint16:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)

	case map[string]any:
		return objectFromMap(t)

	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}

		return out
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return v
		}

		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}

		return out

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}

		m := make(map[string]any, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}

		return objectFromMap(m)

	case reflect.Pointer:
		if rv.IsNil() {
			return nil
		}
	}

	return v
}
