package store

import (
	"bytes"
	"context"
	"log/slog"
	"math"

	"github.com/ardnew/formula/lang"
)

// Values are stored as JSON. JSON has no literal for NaN or the infinities,
// so those numbers are written as a single-key object {"$number": "NaN"}.
// Stored objects that already have that shape, or the shape of the escape
// itself, are wrapped in {"$object": ...} so decoding is unambiguous.
const (
	numberTag = "$number"
	objectTag = "$object"
)

func encode(value any) ([]byte, error) {
	var buf bytes.Buffer

	if err := lang.WriteJSON(context.Background(), &buf, tag(value), 0); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func decode(name string, data []byte) (any, error) {
	v, err := lang.DecodeJSON(bytes.NewReader(data))
	if err != nil {
		return nil, ErrDecode.Wrap(err).With(slog.String("name", name))
	}

	return untag(v), nil
}

func tag(v any) any {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return lang.NewObject(numberTag, lang.FormatNumber(t))
		}

	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = tag(e)
		}

		return out

	case *lang.Object:
		out := &lang.Object{}
		for _, k := range t.Keys() {
			e, _ := t.Get(k)
			out.Set(k, tag(e))
		}

		if tagged(t) {
			return lang.NewObject(objectTag, out)
		}

		return out
	}

	return v
}

func untag(v any) any {
	switch t := v.(type) {
	case []any:
		for i, e := range t {
			t[i] = untag(e)
		}

		return t

	case *lang.Object:
		if tagged(t) {
			e, _ := t.Get(t.Keys()[0])
			if t.Has(numberTag) {
				return number(e)
			}

			inner := lang.ToObject(e)
			untagFields(inner)

			return inner
		}

		untagFields(t)

		return t
	}

	return v
}

func untagFields(o *lang.Object) {
	for _, k := range o.Keys() {
		e, _ := o.Get(k)
		o.Set(k, untag(e))
	}
}

// tagged reports whether o has the shape of an encoded number or escape.
func tagged(o *lang.Object) bool {
	return o.Len() == 1 && (o.Has(numberTag) || o.Has(objectTag))
}

func number(v any) any {
	switch v {
	case "NaN":
		return math.NaN()
	case "Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}

	return v
}
