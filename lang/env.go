package lang

import (
	"context"
	"log/slog"
	"maps"
	"regexp"
	"sync"

	"github.com/ardnew/formula/log"
)

// Function is a callable entry in an [Env] function table. It is one of
// [EagerFunc], [LazyFunc] or [AssignFunc].
type Function interface {
	function()
}

// EagerFunc receives its arguments already evaluated, left to right.
type EagerFunc func(ctx context.Context, env *Env, scope any, args []any) (any, error)

// LazyFunc receives its arguments unevaluated and evaluates them itself with
// [Env.Evaluate], if at all.
type LazyFunc func(ctx context.Context, env *Env, scope any, args []Node) (any, error)

// AssignFunc is an eager function whose first argument names a variable.
// When called with at least two arguments, args[0] is the name of the
// identifier written first (or "" if it is not an identifier) and only the
// remaining arguments are evaluated.
type AssignFunc func(ctx context.Context, env *Env, scope any, args []any) (any, error)

func (EagerFunc) function()  {}
func (LazyFunc) function()   {}
func (AssignFunc) function() {}

// GetFunc resolves a variable. It reports whether name is bound.
type GetFunc func(ctx context.Context, scope any, name string) (any, bool, error)

// SetFunc stores a variable.
type SetFunc func(ctx context.Context, scope any, name string, value any) error

// CallFunc handles calls to names absent from the function table.
type CallFunc func(ctx context.Context, env *Env, scope any, name string, args []any) (any, error)

// Accessor is a variable store that may be backed by I/O.
type Accessor interface {
	Get(ctx context.Context, scope any, name string) (any, bool, error)
	Set(ctx context.Context, scope any, name string, value any) error
}

// reserved matches names that are never resolved or stored: any name with
// a dotted segment naming an object internal.
var reserved = regexp.MustCompile(`(?:^|\.)(?:__proto__|prototype|constructor)(?:\.|$)`)

// IsReserved reports whether name is denied to variable accessors.
func IsReserved(name string) bool { return reserved.MatchString(name) }

// Env is an evaluation context: function and operator tables, variable
// accessors and a seeded random source.
//
// Tables and accessors are fixed at construction, so an Env may be reused
// to evaluate many expressions against different scopes. The default
// variable store is a single table shared by every evaluation using the
// Env, regardless of scope.
type Env struct {
	funcs  map[string]Function
	binary map[string]string
	unary  map[string]string

	get  GetFunc
	set  SetFunc
	call CallFunc

	seed   string
	random func() float64

	cache   *Cache
	noCache bool
	logger  log.Logger

	mu   sync.RWMutex
	vars map[string]any
}

// Option configures an [Env].
type Option func(*Env)

// WithSeed seeds the random source. Equal seeds produce equal sequences.
func WithSeed(seed string) Option {
	return func(e *Env) {
		e.seed = seed
		e.random = nil
	}
}

// WithRandom replaces the random source. fn must return values in [0, 1).
func WithRandom(fn func() float64) Option {
	return func(e *Env) {
		e.random = fn
	}
}

// WithFunctions layers funcs over the function table. Entries in funcs
// replace existing entries of the same name.
func WithFunctions(funcs map[string]Function) Option {
	return func(e *Env) {
		if e.funcs == nil {
			e.funcs = maps.Clone(defaultFunctions())
		}

		maps.Copy(e.funcs, funcs)
	}
}

// WithFunction adds or replaces a single function.
func WithFunction(name string, fn Function) Option {
	return WithFunctions(map[string]Function{name: fn})
}

// WithBinaryOperators layers aliases over the binary operator table,
// mapping operator symbols to function names. An empty function name
// removes the operator, so expressions using it fail with
// [ErrOperatorNotFound].
func WithBinaryOperators(aliases map[string]string) Option {
	return func(e *Env) {
		if e.binary == nil {
			e.binary = DefaultBinaryOperators()
		}

		for op, target := range aliases {
			if target == "" {
				delete(e.binary, op)

				continue
			}

			if prev, ok := e.binary[op]; ok && prev != target {
				e.logger.Debug(
					"binary operator overridden",
					slog.String("operator", op),
					slog.String("previous", prev),
					slog.String("target", target),
				)
			}

			e.binary[op] = target
		}
	}
}

// WithUnaryOperators layers aliases over the unary operator table. An empty
// function name removes the operator.
func WithUnaryOperators(aliases map[string]string) Option {
	return func(e *Env) {
		if e.unary == nil {
			e.unary = DefaultUnaryOperators()
		}

		for op, target := range aliases {
			if target == "" {
				delete(e.unary, op)

				continue
			}

			if prev, ok := e.unary[op]; ok && prev != target {
				e.logger.Debug(
					"unary operator overridden",
					slog.String("operator", op),
					slog.String("previous", prev),
					slog.String("target", target),
				)
			}

			e.unary[op] = target
		}
	}
}

// WithGetter replaces the variable resolver.
func WithGetter(fn GetFunc) Option {
	return func(e *Env) {
		e.get = fn
	}
}

// WithSetter replaces the variable mutator.
func WithSetter(fn SetFunc) Option {
	return func(e *Env) {
		e.set = fn
	}
}

// WithAccessor installs a as both resolver and mutator.
func WithAccessor(a Accessor) Option {
	return func(e *Env) {
		e.get = a.Get
		e.set = a.Set
	}
}

// WithFallback installs a handler for calls to unknown functions.
func WithFallback(fn CallFunc) Option {
	return func(e *Env) {
		e.call = fn
	}
}

// WithVars seeds the default variable store.
func WithVars(vars map[string]any) Option {
	return func(e *Env) {
		if e.vars == nil {
			e.vars = make(map[string]any, len(vars))
		}

		for k, v := range vars {
			e.vars[k] = normalize(v)
		}
	}
}

// WithCache selects the parse cache. A nil cache disables caching.
func WithCache(c *Cache) Option {
	return func(e *Env) {
		e.cache = c
		e.noCache = c == nil
	}
}

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(e *Env) {
		e.logger = logger
	}
}

// applyOptions applies functional options to an Env.
func applyOptions(e *Env, opts ...Option) {
	for _, opt := range opts {
		opt(e)
	}
}

// NewEnv returns an evaluation context with the default function and
// operator tables, an in-memory variable store and a random source seeded
// with the empty string.
func NewEnv(opts ...Option) *Env {
	e := new(Env)

	applyOptions(e, opts...)

	if e.funcs == nil {
		e.funcs = maps.Clone(defaultFunctions())
	}

	if e.binary == nil {
		e.binary = DefaultBinaryOperators()
	}

	if e.unary == nil {
		e.unary = DefaultUnaryOperators()
	}

	if e.random == nil {
		e.random = NewRandom(e.seed)
	}

	if e.vars == nil {
		e.vars = make(map[string]any)
	}

	return e
}

// Logger returns the logger configured for e.
func (e *Env) Logger() log.Logger { return e.logger }

// Random returns the next value of the random source, in [0, 1).
func (e *Env) Random() float64 { return e.random() }

// Function returns the function table entry for name.
func (e *Env) Function(name string) (Function, bool) {
	fn, ok := e.funcs[name]

	return fn, ok
}

// Functions returns the names in the function table in lexical order.
func (e *Env) Functions() []string { return sortedKeys(e.funcs) }

// BinaryOperators returns a copy of the binary operator table.
func (e *Env) BinaryOperators() map[string]string { return maps.Clone(e.binary) }

// UnaryOperators returns a copy of the unary operator table.
func (e *Env) UnaryOperators() map[string]string { return maps.Clone(e.unary) }

// Vars returns a snapshot of the default variable store, ordered by name.
func (e *Env) Vars() *Object {
	e.mu.RLock()
	defer e.mu.RUnlock()

	o := &Object{}
	for _, k := range sortedKeys(e.vars) {
		o.Set(k, e.vars[k])
	}

	return o
}

// Get resolves name through the configured resolver. Reserved names are
// never resolved.
func (e *Env) Get(ctx context.Context, scope any, name string) (any, bool, error) {
	if IsReserved(name) {
		e.logger.TraceContext(ctx, "reserved name", slog.String("name", name))

		return nil, false, nil
	}

	if e.get == nil {
		e.mu.RLock()
		defer e.mu.RUnlock()

		v, ok := e.vars[name]

		return v, ok, nil
	}

	v, ok, err := e.get(ctx, scope, name)
	if err != nil {
		return nil, false, ErrAccessor.Wrap(err).With(slog.String("name", name))
	}

	return normalize(v), ok, nil
}

// Set stores value through the configured mutator. Reserved names are
// silently ignored.
func (e *Env) Set(ctx context.Context, scope any, name string, value any) error {
	if IsReserved(name) {
		e.logger.TraceContext(ctx, "reserved name", slog.String("name", name))

		return nil
	}

	if e.set == nil {
		e.mu.Lock()
		defer e.mu.Unlock()

		e.vars[name] = value

		return nil
	}

	if err := e.set(ctx, scope, name, value); err != nil {
		return ErrAccessor.Wrap(err).With(slog.String("name", name))
	}

	return nil
}
