package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
)

// ANSI color codes for pretty printing.
const (
	colorReset   = "\033[0m"
	colorGray    = "\033[90m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
)

// prettyHandler writes colorized records for a terminal. Text records are
// one line of key=value pairs with group keys joined by dots. JSON records
// are indented objects in which groups nest, so a [slog.LogValuer] error
// such as a parse error reads as one object.
type prettyHandler struct {
	opts   slog.HandlerOptions
	json   bool
	mu     *sync.Mutex
	w      io.Writer
	frames []frame
}

// frame holds the attributes added while a group was innermost. The first
// frame is the record's top level and has no name.
type frame struct {
	group string
	attrs []slog.Attr
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, json bool) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		json:   json,
		mu:     &sync.Mutex{},
		w:      w,
		frames: []frame{{}},
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	c := *h
	c.frames = slices.Clone(h.frames)
	last := &c.frames[len(c.frames)-1]
	last.attrs = append(slices.Clip(last.attrs), attrs...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.frames = append(slices.Clip(h.frames), frame{group: name})

	return &c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	head := make([]slog.Attr, 0, 4)

	if !r.Time.IsZero() {
		head = append(head, h.replace(slog.Time(slog.TimeKey, r.Time)))
	}

	head = append(head, h.replace(slog.Any(slog.LevelKey, r.Level)))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			head = append(head, slog.String(slog.SourceKey, src.File+":"+strconv.Itoa(src.Line)))
		}
	}

	head = append(head, slog.String(slog.MessageKey, r.Message))

	body := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		body = append(body, a)

		return true
	})

	p := printer{level: r.Level}
	attrs := append(head, h.nest(body)...)

	if h.json {
		p.object(attrs, 0)
	} else {
		p.line("", attrs)
	}

	p.buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(p.buf.Bytes())

	return err
}

func (h *prettyHandler) replace(a slog.Attr) slog.Attr {
	if h.opts.ReplaceAttr == nil {
		return a
	}

	return h.opts.ReplaceAttr(nil, a)
}

// nest places the record attributes inside the open groups, innermost
// first, together with the attributes each group was given.
func (h *prettyHandler) nest(attrs []slog.Attr) []slog.Attr {
	for i := len(h.frames) - 1; i >= 0; i-- {
		f := h.frames[i]
		attrs = append(slices.Clip(f.attrs), attrs...)

		if f.group != "" {
			attrs = []slog.Attr{{Key: f.group, Value: slog.GroupValue(attrs...)}}
		}
	}

	return attrs
}

type printer struct {
	buf   bytes.Buffer
	level slog.Level
}

// line writes attrs as key=value pairs, prefixing keys inside groups.
func (p *printer) line(prefix string, attrs []slog.Attr) {
	for _, a := range expand(attrs) {
		key := a.Key
		if prefix != "" {
			key = prefix + "." + key
		}

		if a.Value.Kind() == slog.KindGroup {
			p.line(key, a.Value.Group())

			continue
		}

		if p.buf.Len() > 0 {
			p.buf.WriteByte(' ')
		}

		p.paint(colorGray, key)
		p.buf.WriteByte('=')
		p.value(a, prefix == "", false)
	}
}

// object writes attrs as an indented JSON object.
func (p *printer) object(attrs []slog.Attr, depth int) {
	attrs = expand(attrs)

	p.buf.WriteByte('{')

	for i, a := range attrs {
		if i > 0 {
			p.buf.WriteByte(',')
		}

		p.buf.WriteByte('\n')
		p.buf.WriteString(strings.Repeat("  ", depth+1))
		p.paint(colorGray, strconv.Quote(a.Key))
		p.buf.WriteString(": ")

		if a.Value.Kind() == slog.KindGroup {
			p.object(a.Value.Group(), depth+1)
		} else {
			p.value(a, depth == 0, true)
		}
	}

	if len(attrs) > 0 {
		p.buf.WriteByte('\n')
		p.buf.WriteString(strings.Repeat("  ", depth))
	}

	p.buf.WriteByte('}')
}

// value writes a scalar. Strings are quoted when quote is set or when the
// text would otherwise not read back as one token.
func (p *printer) value(a slog.Attr, top, quote bool) {
	v := a.Value

	if top && a.Key == slog.LevelKey {
		p.paint(levelColor(p.level), p.text(v.String(), quote))

		return
	}

	switch v.Kind() {
	case slog.KindString:
		p.paint(colorCyan, p.text(v.String(), quote))

	case slog.KindInt64:
		p.paint(colorYellow, strconv.FormatInt(v.Int64(), 10))

	case slog.KindUint64:
		p.paint(colorYellow, strconv.FormatUint(v.Uint64(), 10))

	case slog.KindFloat64:
		f := v.Float64()
		s := strconv.FormatFloat(f, 'g', -1, 64)

		// JSON has no literal for these.
		if quote && (math.IsNaN(f) || math.IsInf(f, 0)) {
			s = strconv.Quote(s)
		}

		p.paint(colorYellow, s)

	case slog.KindBool:
		if v.Bool() {
			p.paint(colorGreen, "true")
		} else {
			p.paint(colorRed, "false")
		}

	case slog.KindDuration:
		p.paint(colorMagenta, p.text(v.Duration().String(), quote))

	case slog.KindTime:
		p.paint(colorBlue, p.text(v.Time().Format(time.RFC3339Nano), quote))

	default:
		switch x := v.Any().(type) {
		case nil:
			p.paint(colorGray, "null")
		case error:
			p.paint(colorRed, p.text(x.Error(), quote))
		default:
			p.paint(colorCyan, p.text(fmt.Sprint(x), quote))
		}
	}
}

func (*printer) text(s string, quote bool) string {
	if quote || needsQuote(s) {
		return strconv.Quote(s)
	}

	return s
}

func (p *printer) paint(color, s string) {
	p.buf.WriteString(color)
	p.buf.WriteString(s)
	p.buf.WriteString(colorReset)
}

// expand resolves values, drops empty attributes and empty groups, and
// splices the members of groups without a key into the surrounding level.
func expand(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))

	for _, a := range attrs {
		a.Value = a.Value.Resolve()

		switch {
		case a.Equal(slog.Attr{}):
			continue

		case a.Value.Kind() == slog.KindGroup:
			members := expand(a.Value.Group())
			if len(members) == 0 {
				continue
			}

			if a.Key == "" {
				out = append(out, members...)

				continue
			}

			a.Value = slog.GroupValue(members...)
		}

		out = append(out, a)
	}

	return out
}

func needsQuote(s string) bool {
	if s == "" {
		return true
	}

	for _, r := range s {
		if r == '=' || r == '"' || unicode.IsSpace(r) || !unicode.IsPrint(r) {
			return true
		}
	}

	return false
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorRed
	case level >= slog.LevelWarn:
		return colorYellow
	case level >= slog.LevelInfo:
		return colorGreen
	case level >= slog.LevelDebug:
		return colorBlue
	}

	return colorMagenta
}
