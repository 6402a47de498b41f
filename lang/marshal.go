package lang

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Tree converts node to an ordered object tree. Each node becomes an object
// whose "type" key names its [Kind]. If spans is true, every node also
// records its source offset and text.
func Tree(node Node, spans bool) *Object {
	if node == nil {
		return nil
	}

	o := NewObject("type", node.Kind().String())

	switch n := node.(type) {
	case *Literal:
		o.Set("value", n.Value)
		o.Set("raw", n.Raw)

	case *Identifier:
		o.Set("name", n.Name)

	case *CallExpression:
		o.Set("callee", Tree(n.Callee, spans))
		o.Set("arguments", trees(n.Args, spans))

	case *BinaryExpression:
		o.Set("operator", n.Operator)
		o.Set("left", Tree(n.Left, spans))
		o.Set("right", Tree(n.Right, spans))

	case *ConditionalExpression:
		o.Set("test", Tree(n.Test, spans))
		o.Set("consequent", Tree(n.Consequent, spans))

		if n.Alternate != nil {
			o.Set("alternate", Tree(n.Alternate, spans))
		}

	case *UnaryExpression:
		o.Set("operator", n.Operator)
		o.Set("argument", Tree(n.Argument, spans))

	case *TemplateLiteral:
		parts := make([]any, len(n.Parts))

		for i, part := range n.Parts {
			if part.IsChunk() {
				parts[i] = NewObject("chunk", part.Chunk)
			} else {
				parts[i] = NewObject("expression", Tree(part.Expr, spans))
			}
		}

		o.Set("parts", parts)

	case *ComputedProperty:
		o.Set("expression", Tree(n.Expr, spans))

	case *ArrayLiteral:
		o.Set("elements", trees(n.Elements, spans))

	case *ObjectLiteral:
		props := make([]any, len(n.Properties))

		for i, prop := range n.Properties {
			p := NewObject("name", Tree(prop.Name, spans))
			if prop.IsShorthand() {
				p.Set("shorthand", true)
			} else {
				p.Set("value", Tree(prop.Value, spans))
			}

			props[i] = p
		}

		o.Set("properties", props)
	}

	if spans {
		span := node.Span()
		o.Set("offset", float64(span.Offset))
		o.Set("source", span.Source)
	}

	return o
}

func trees(nodes []Node, spans bool) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = Tree(n, spans)
	}

	return out
}

// ToMap converts node to a native Go map structure.
func ToMap(node Node) map[string]any {
	return Tree(node, false).Map()
}

// WriteJSON writes value as JSON to the writer. Objects keep their key order.
func WriteJSON(_ context.Context, w io.Writer, value any, indent int) error {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if indent > 0 {
		enc.SetIndent("", strings.Repeat(" ", indent))
	}

	if err := enc.Encode(jsonSafe(normalize(value))); err != nil {
		return err
	}

	_, err := w.Write(buf.Bytes())

	return err
}

// WriteYAML writes value as YAML to the writer. Objects keep their key order.
func WriteYAML(ctx context.Context, w io.Writer, value any, indent int) error {
	opts := []yaml.EncodeOption{yaml.AutoInt()}
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, yamlValue(normalize(value)), opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(w, string(data))

	return err
}

// WriteText writes the default textual form of value followed by a newline.
// Strings are written unquoted and null is written as "null".
func WriteText(_ context.Context, w io.Writer, value any) error {
	v := normalize(value)

	s := text(v)
	if v == nil {
		s = "null"
	}

	_, err := fmt.Fprintln(w, s)

	return err
}
