package lang

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"slices"

	"github.com/goccy/go-yaml"
)

// Object is an ordered string-keyed mapping. Keys keep their insertion
// order; setting an existing key updates it in place.
//
// The zero value is an empty object ready to use.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an object with the given key-value pairs, which must
// alternate string keys and values.
func NewObject(kv ...any) *Object {
	o := &Object{}

	for i := 0; i+1 < len(kv); i += 2 {
		k, _ := kv[i].(string)
		o.Set(k, kv[i+1])
	}

	return o
}

// objectFromMap converts a host map, ordering keys lexically.
func objectFromMap(m map[string]any) *Object {
	o := &Object{values: make(map[string]any, len(m))}

	for _, k := range sortedKeys(m) {
		o.keys = append(o.keys, k)
		o.values[k] = normalize(m[k])
	}

	return o
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}

	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}

	return slices.Clone(o.keys)
}

// Get returns the value stored at key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil || o.values == nil {
		return nil, false
	}

	v, ok := o.values[key]

	return v, ok
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)

	return ok
}

// Set stores value at key.
func (o *Object) Set(key string, value any) {
	if o.values == nil {
		o.values = make(map[string]any)
	}

	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}

	o.values[key] = value
}

// Values returns the values in key order.
func (o *Object) Values() []any {
	if o == nil {
		return nil
	}

	out := make([]any, len(o.keys))
	for i, k := range o.keys {
		out[i] = o.values[k]
	}

	return out
}

// Clone returns a shallow copy of o.
func (o *Object) Clone() *Object {
	c := &Object{}
	if o == nil {
		return c
	}

	c.keys = slices.Clone(o.keys)
	c.values = make(map[string]any, len(o.values))

	for k, v := range o.values {
		c.values[k] = v
	}

	return c
}

// Map returns the object as a host map, converting nested objects.
func (o *Object) Map() map[string]any {
	out := make(map[string]any, o.Len())
	if o == nil {
		return out
	}

	for _, k := range o.keys {
		out[k] = Plain(o.values[k])
	}

	return out
}

// Plain converts runtime values into host values: objects become maps and
// arrays are converted recursively.
func Plain(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.Map()

	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Plain(e)
		}

		return out
	}

	return v
}

// MarshalJSON encodes the object with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, k := range o.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := encodeJSON(&buf, k); err != nil {
			return nil, err
		}

		buf.WriteByte(':')

		if err := encodeJSON(&buf, jsonSafe(o.values[k])); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// encodeJSON appends the compact JSON encoding of v to buf without HTML
// escaping.
func encodeJSON(buf *bytes.Buffer, v any) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(v); err != nil {
		return err
	}

	buf.Truncate(buf.Len() - 1)

	return nil
}

// UnmarshalJSON decodes a JSON object preserving key order.
func (o *Object) UnmarshalJSON(data []byte) error {
	v, err := DecodeJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}

	obj, ok := v.(*Object)
	if !ok {
		return ErrInvalidArgument.named("object")
	}

	*o = *obj

	return nil
}

// MarshalYAML encodes the object as an ordered YAML mapping.
func (o *Object) MarshalYAML() (any, error) {
	ms := make(yaml.MapSlice, 0, o.Len())

	for _, k := range o.Keys() {
		ms = append(ms, yaml.MapItem{Key: k, Value: yamlValue(o.values[k])})
	}

	return ms, nil
}

func yamlValue(v any) any {
	switch t := v.(type) {
	case *Object:
		ms, _ := t.MarshalYAML()

		return ms

	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = yamlValue(e)
		}

		return out
	}

	return jsonSafe(v)
}

// jsonSafe replaces non-finite numbers, which JSON cannot represent, with
// their string form.
func jsonSafe(v any) any {
	switch t := v.(type) {
	case float64:
		if !isFinite(t) {
			return FormatNumber(t)
		}

	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = jsonSafe(e)
		}

		return out
	}

	return v
}

// DecodeJSON reads one JSON value from r. Objects decode as [*Object] with
// key order preserved and numbers decode as float64.
func DecodeJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(r)

	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, ErrInvalidArgument.Wrap(err)
	}

	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			o := &Object{}

			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, err
				}

				k, _ := kt.(string)

				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}

				o.Set(k, v)
			}

			if _, err := dec.Token(); err != nil {
				return nil, err
			}

			return o, nil

		case '[':
			arr := []any{}

			for dec.More() {
				v, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}

				arr = append(arr, v)
			}

			if _, err := dec.Token(); err != nil {
				return nil, err
			}

			return arr, nil
		}

		return nil, ErrInvalidArgument.named(t.String())
	}

	return tok, nil
}

// DecodeYAML reads one YAML document from r, preserving mapping key order.
func DecodeYAML(r io.Reader) (any, error) {
	var ms any

	dec := yaml.NewDecoder(r, yaml.UseOrderedMap())
	if err := dec.Decode(&ms); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}

		return nil, ErrInvalidArgument.Wrap(err)
	}

	return fromYAML(ms), nil
}

func fromYAML(v any) any {
	switch t := v.(type) {
	case yaml.MapSlice:
		o := &Object{}
		for _, item := range t {
			o.Set(text(fromYAML(item.Key)), fromYAML(item.Value))
		}

		return o

	case map[string]any:
		return objectFromMap(t)

	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromYAML(e)
		}

		return out
	}

	return normalize(v)
}

// String renders the object as JSON.
func (o *Object) String() string {
	data, err := o.MarshalJSON()
	if err != nil {
		return "{}"
	}

	return string(data)
}
