package log

import (
	"io"
	"log/slog"
	"strings"
	"time"
)

// Option configures a [Logger].
type Option func(*config)

// config is copied by value, so a Logger never shares it with another.
type config struct {
	output     io.Writer
	timeLayout string
	level      Level
	format     Format
	caller     bool
	pretty     bool
}

func makeConfig(w io.Writer, opts ...Option) config {
	c := config{
		output:     w,
		timeLayout: time.RFC3339,
		level:      DefaultLevel,
		format:     DefaultFormat,
		pretty:     true,
	}

	return c.with(opts...)
}

func (c config) with(opts ...Option) config {
	for _, opt := range opts {
		opt(&c)
	}

	if c.output == nil {
		c.output = io.Discard
	}

	return c
}

// WithOutput sets the writer records go to. A nil writer discards them.
func WithOutput(w io.Writer) Option {
	return func(c *config) { c.output = w }
}

// WithLevel discards records below level.
func WithLevel(level Level) Option {
	return func(c *config) { c.level = level }
}

// WithFormat selects JSON or text records.
func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

// WithTimeLayout sets the timestamp layout. It accepts a layout name from
// the [time] package such as "RFC3339" or "Kitchen", the short names "ms",
// "us" and "ns", or a literal layout. An empty layout or "none" drops the
// timestamp.
func WithTimeLayout(layout string) Option {
	return func(c *config) { c.timeLayout = resolveLayout(layout) }
}

// WithCaller adds the source position of the logging call to each record.
func WithCaller(enable bool) Option {
	return func(c *config) { c.caller = enable }
}

// WithPretty selects the colorized terminal handlers.
func WithPretty(enable bool) Option {
	return func(c *config) { c.pretty = enable }
}

func (c config) handler() slog.Handler {
	opts := &slog.HandlerOptions{
		AddSource:   c.caller,
		Level:       slog.Level(c.level),
		ReplaceAttr: c.replaceAttr,
	}

	switch {
	case c.pretty:
		return newPrettyHandler(c.output, opts, c.format == FormatJSON)
	case c.format == FormatText:
		return slog.NewTextHandler(c.output, opts)
	default:
		return slog.NewJSONHandler(c.output, opts)
	}
}

// replaceAttr formats the record time with the configured layout and names
// levels with [Level.label]. Attributes inside groups are left alone.
func (c config) replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}

	switch a.Key {
	case slog.TimeKey:
		if c.timeLayout == "" {
			return slog.Attr{}
		}

		if t, ok := a.Value.Any().(time.Time); ok {
			a.Value = slog.StringValue(t.Format(c.timeLayout))
		}

	case slog.LevelKey:
		if l, ok := a.Value.Any().(slog.Level); ok {
			a.Value = slog.StringValue(Level(l).label())
		}
	}

	return a
}

var namedLayouts = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"datetime":    time.DateTime,
	"timeonly":    time.TimeOnly,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rfc822":      time.RFC822,
	"kitchen":     time.Kitchen,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"stampmicro":  time.StampMicro,
	"stampnano":   time.StampNano,
	"ms":          time.StampMilli,
	"us":          time.StampMicro,
	"ns":          time.StampNano,
	"none":        "",
}

// resolveLayout maps a layout name to its layout. Names match ignoring case
// and punctuation; anything else is returned verbatim.
func resolveLayout(layout string) string {
	key := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		}

		return -1
	}, strings.ToLower(layout))

	if key == "" {
		return ""
	}

	if named, ok := namedLayouts[key]; ok {
		return named
	}

	return layout
}
