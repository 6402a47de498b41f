package lang

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"regexp"

	"github.com/klauspost/readahead"

	"github.com/ardnew/formula/lang/peg"
	"github.com/ardnew/formula/log"
)

// commentPattern matches a // comment through the end of its line.
// Quoted strings are not recognized, so "//" inside a string also starts a
// comment.
var commentPattern = regexp.MustCompile(`(?m)//.*$`)

// StripComments removes every // comment from source.
func StripComments(source string) string {
	return commentPattern.ReplaceAllString(source, "")
}

// Parse parses a single expression using the process-wide parse cache.
func Parse(source string) (Node, error) {
	return defaultCache.parse(context.Background(), source, log.Logger{})
}

// MustParse is like [Parse] but panics on error.
func MustParse(source string) Node {
	node, err := Parse(source)
	if err != nil {
		panic(err)
	}

	return node
}

// ParseString parses a single expression. The logger and cache configured
// by opts are used; by default results are cached process-wide.
func ParseString(ctx context.Context, source string, opts ...Option) (Node, error) {
	var temp Env

	applyOptions(&temp, opts...)

	return temp.parse(ctx, source)
}

// ParseReader parses a single expression read from r.
func ParseReader(ctx context.Context, r io.Reader, opts ...Option) (Node, error) {
	// Wrap reader with async read-ahead for concurrent I/O.
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("source", "reader"))
	}

	return ParseString(ctx, string(data), opts...)
}

// parse parses source with the configured cache, if any.
func (e *Env) parse(ctx context.Context, source string) (Node, error) {
	e.logger.TraceContext(
		ctx,
		"parse start",
		slog.Int("source_length", len(source)),
	)

	if e.noCache {
		return parse(ctx, source, e.logger)
	}

	cache := e.cache
	if cache == nil {
		cache = defaultCache
	}

	return cache.parse(ctx, source, e.logger)
}

// parse parses source without caching.
func parse(ctx context.Context, source string, logger log.Logger) (Node, error) {
	stripped := StripComments(source)

	v, err := peg.Run(grammar, stripped)
	if err != nil {
		var pe *peg.Error
		if errors.As(err, &pe) {
			perr := newParseError(pe, stripped)

			logger.TraceContext(ctx, "parse failed", slog.Any("error", perr))

			return nil, perr
		}

		return nil, ErrParse.Wrap(err)
	}

	node, ok := v.(Node)
	if !ok {
		return nil, ErrParse.With(slog.String("issue", "no expression"))
	}

	logger.TraceContext(
		ctx,
		"parse complete",
		slog.String("kind", node.Kind().String()),
	)

	return node, nil
}
