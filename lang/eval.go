package lang

import (
	"context"
	"log/slog"
	"strings"
)

// Evaluate parses source and evaluates it against scope in a new [Env]
// configured by opts. The Env is returned so callers can inspect the
// default variable store.
func Evaluate(
	ctx context.Context,
	source string,
	scope any,
	opts ...Option,
) (any, *Env, error) {
	env := NewEnv(opts...)

	v, err := env.EvaluateString(ctx, source, scope)

	return v, env, err
}

// EvaluateString parses source and evaluates it against scope.
func (e *Env) EvaluateString(ctx context.Context, source string, scope any) (any, error) {
	node, err := e.parse(ctx, source)
	if err != nil {
		return nil, err
	}

	return e.Evaluate(ctx, node, scope)
}

// Evaluate computes the value of node against scope. Subexpressions are
// evaluated depth-first, left to right.
func (e *Env) Evaluate(ctx context.Context, node Node, scope any) (any, error) {
	switch n := node.(type) {
	case *Literal:
		return n.Value, nil

	case *Identifier:
		v, ok, err := e.Get(ctx, scope, n.Name)
		if err != nil {
			return nil, err
		}

		// Unbound identifiers evaluate to their own name.
		if !ok || v == nil {
			return n.Name, nil
		}

		return v, nil

	case *CallExpression:
		return e.evalCall(ctx, n, scope)

	case *BinaryExpression:
		target, ok := e.binary[n.Operator]
		if !ok {
			return nil, ErrOperatorNotFound.named(n.Operator)
		}

		return e.evalCall(ctx, synthesize(n, target, n.Left, n.Right), scope)

	case *UnaryExpression:
		target, ok := e.unary[n.Operator]
		if !ok {
			return nil, ErrOperatorNotFound.named(n.Operator)
		}

		return e.evalCall(ctx, synthesize(n, target, n.Argument), scope)

	case *ConditionalExpression:
		test, err := e.Evaluate(ctx, n.Test, scope)
		if err != nil {
			return nil, err
		}

		if ToBoolean(test) {
			return e.Evaluate(ctx, n.Consequent, scope)
		}

		if n.Alternate == nil {
			return nil, nil
		}

		return e.Evaluate(ctx, n.Alternate, scope)

	case *TemplateLiteral:
		var b strings.Builder

		for _, part := range n.Parts {
			if part.IsChunk() {
				b.WriteString(part.Chunk)

				continue
			}

			v, err := e.Evaluate(ctx, part.Expr, scope)
			if err != nil {
				return nil, err
			}

			b.WriteString(ToString(v))
		}

		return b.String(), nil

	case *ComputedProperty:
		return e.Evaluate(ctx, n.Expr, scope)

	case *ArrayLiteral:
		out := make([]any, len(n.Elements))

		for i, elem := range n.Elements {
			v, err := e.Evaluate(ctx, elem, scope)
			if err != nil {
				return nil, err
			}

			out[i] = v
		}

		return out, nil

	case *ObjectLiteral:
		return e.evalObject(ctx, n, scope)
	}

	kind := "nil"
	if node != nil {
		kind = node.Kind().String()
	}

	return nil, ErrSyntax.With(slog.String("kind", kind))
}

// synthesize builds the call an operator node delegates to.
func synthesize(n Node, target string, args ...Node) *CallExpression {
	call := &CallExpression{
		Callee: &Identifier{Name: target},
		Args:   args,
	}
	call.setSpan(n.Span())

	return call
}

func (e *Env) evalCall(ctx context.Context, n *CallExpression, scope any) (any, error) {
	id, ok := n.Callee.(*Identifier)
	if !ok {
		return nil, ErrInvalidCallee.With(
			slog.String("kind", n.Callee.Kind().String()),
			slog.String("source", n.Span().Source),
		)
	}

	fn := e.funcs[id.Name]
	if lazy, ok := fn.(LazyFunc); ok {
		return lazy(ctx, e, scope, n.Args)
	}

	args := make([]any, len(n.Args))
	rest := n.Args

	if _, ok := fn.(AssignFunc); ok && len(n.Args) >= 2 {
		name := ""
		if target, ok := n.Args[0].(*Identifier); ok {
			name = target.Name
		}

		args[0] = name
		rest = n.Args[1:]
	}

	offset := len(n.Args) - len(rest)

	for i, arg := range rest {
		v, err := e.Evaluate(ctx, arg, scope)
		if err != nil {
			return nil, err
		}

		args[offset+i] = v
	}

	switch f := fn.(type) {
	case EagerFunc:
		return f(ctx, e, scope, args)

	case AssignFunc:
		return f(ctx, e, scope, args)
	}

	if e.call != nil {
		e.logger.TraceContext(
			ctx,
			"fallback call",
			slog.String("name", id.Name),
			slog.Int("args", len(args)),
		)

		v, err := e.call(ctx, e, scope, id.Name, args)
		if err != nil {
			return nil, ErrAccessor.Wrap(err).With(slog.String("name", id.Name))
		}

		return normalize(v), nil
	}

	return nil, ErrFunctionNotFound.named(id.Name)
}

func (e *Env) evalObject(ctx context.Context, n *ObjectLiteral, scope any) (any, error) {
	out := &Object{}

	for _, prop := range n.Properties {
		key, err := e.propertyKey(ctx, prop.Name, scope)
		if err != nil {
			return nil, err
		}

		valueNode := prop.Value
		if prop.IsShorthand() {
			valueNode = prop.Name
		}

		v, err := e.Evaluate(ctx, valueNode, scope)
		if err != nil {
			return nil, err
		}

		out.Set(key, v)
	}

	return out, nil
}

// propertyKey computes an object key. Bare keys are taken literally and
// never resolved as variables.
func (e *Env) propertyKey(ctx context.Context, name Node, scope any) (string, error) {
	switch k := name.(type) {
	case *ComputedProperty:
		v, err := e.Evaluate(ctx, k.Expr, scope)
		if err != nil {
			return "", err
		}

		return ToString(v), nil

	case *Identifier:
		return k.Name, nil

	case *Literal:
		switch v := k.Value.(type) {
		case string:
			return v, nil
		case float64:
			return FormatNumber(v), nil
		}

		return k.Raw, nil
	}

	v, err := e.Evaluate(ctx, name, scope)
	if err != nil {
		return "", err
	}

	return ToString(v), nil
}
