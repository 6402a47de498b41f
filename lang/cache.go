package lang

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/zeebo/xxh3"

	"github.com/ardnew/formula/log"
)

// Cache memoizes parse results by source text. Identical text always yields
// the identical AST, so a cached tree may be evaluated concurrently by any
// number of environments.
//
// The zero value is an empty cache ready to use.
type Cache struct {
	entries sync.Map // uint64 -> *entry
	size    atomic.Int64
}

// entry is a single cached parse, computed at most once.
type entry struct {
	once   sync.Once
	source string
	node   Node
	err    error
}

// defaultCache backs [Parse] and [ParseString].
//
//nolint:gochecknoglobals
var defaultCache = new(Cache)

// NewCache returns an empty parse cache.
func NewCache() *Cache { return new(Cache) }

// Len returns the number of cached sources.
func (c *Cache) Len() int { return int(c.size.Load()) }

// Clear removes every cached parse result.
func (c *Cache) Clear() {
	c.entries.Range(func(key, _ any) bool {
		if _, ok := c.entries.LoadAndDelete(key); ok {
			c.size.Add(-1)
		}

		return true
	})
}

// Parse returns the AST for source, parsing it at most once per cache.
func (c *Cache) Parse(ctx context.Context, source string) (Node, error) {
	return c.parse(ctx, source, log.Logger{})
}

func (c *Cache) parse(
	ctx context.Context,
	source string,
	logger log.Logger,
) (Node, error) {
	// Key on the xxh3 hash of the source; the entry keeps the full text so
	// a hash collision never returns the wrong tree.
	sum := xxh3.HashString(source)

	value, loaded := c.entries.LoadOrStore(sum, &entry{source: source})
	if !loaded {
		c.size.Add(1)
	}

	e, ok := value.(*entry)
	if !ok || e.source != source {
		logger.TraceContext(
			ctx,
			"cache collision",
			slog.String("source_hash", strconv.FormatUint(sum, 16)),
		)

		return parse(ctx, source, logger)
	}

	logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(sum, 16)),
		slog.Bool("cache_hit", loaded),
	)

	e.once.Do(func() {
		e.node, e.err = parse(ctx, source, logger)
	})

	return e.node, e.err
}

// ClearCache removes all entries from the process-wide parse cache.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	defaultCache.Clear()
}
