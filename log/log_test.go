package log_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
	"github.com/ardnew/formula/store"
)

var ansi = regexp.MustCompile("\x1b\\[[0-9;]*m")

// plain strips color codes from pretty output.
func plain(s string) string { return ansi.ReplaceAllString(s, "") }

// records decodes newline-delimited JSON records.
func records(t *testing.T, out string) []map[string]any {
	t.Helper()

	var recs []map[string]any

	for line := range strings.Lines(out) {
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("record %q: %v", line, err)
		}

		recs = append(recs, rec)
	}

	return recs
}

func find(recs []map[string]any, msg string) map[string]any {
	for _, rec := range recs {
		if rec["msg"] == msg {
			return rec
		}
	}

	return nil
}

func TestLogger_ParseEventsJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := log.Make(&buf,
		log.WithLevel(log.LevelTrace),
		log.WithPretty(false),
		log.WithTimeLayout("none"),
	)

	env := lang.NewEnv(lang.WithLogger(logger), lang.WithCache(nil))

	if _, err := env.EvaluateString(t.Context(), "1 + 2", nil); err != nil {
		t.Fatal(err)
	}

	if _, err := env.EvaluateString(t.Context(), "1 +", nil); err == nil {
		t.Fatal("expected parse error")
	}

	recs := records(t, buf.String())

	start := find(recs, "parse start")
	if start == nil || start["level"] != "TRACE" || start["source_length"] != 5.0 {
		t.Errorf("parse start = %v", start)
	}

	if _, ok := start["time"]; ok {
		t.Errorf("time written with layout none: %v", start)
	}

	if done := find(recs, "parse complete"); done == nil || done["kind"] != "BinaryExpression" {
		t.Errorf("parse complete = %v", done)
	}

	failed := find(recs, "parse failed")
	if failed == nil {
		t.Fatalf("no parse failed record in %s", buf.String())
	}

	perr, ok := failed["error"].(map[string]any)
	if !ok {
		t.Fatalf("parse error not logged as a group: %v", failed["error"])
	}

	if perr["error"] != "parse error" || perr["line"] != 1.0 || perr["column"] != 4.0 {
		t.Errorf("parse error group = %v", perr)
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithLevel(log.LevelDebug), log.WithPretty(false))

	env := lang.NewEnv(
		lang.WithLogger(logger),
		lang.WithBinaryOperators(map[string]string{"+": "max"}),
	)

	if _, err := env.EvaluateString(t.Context(), "1 + 2", nil); err != nil {
		t.Fatal(err)
	}

	recs := records(t, buf.String())

	if rec := find(recs, "parse start"); rec != nil {
		t.Errorf("trace record written at debug level: %v", rec)
	}

	rec := find(recs, "binary operator overridden")
	if rec == nil || rec["level"] != "DEBUG" || rec["target"] != "max" {
		t.Errorf("override record = %v", rec)
	}
}

func TestLogger_StoreEventsPrettyText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := log.Make(&buf,
		log.WithLevel(log.LevelTrace),
		log.WithFormat(log.FormatText),
		log.WithTimeLayout(""),
	)

	s, err := store.Open(filepath.Join(t.TempDir(), "vars.db"), store.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}

	defer s.Close()

	if err := s.Set(t.Context(), "prod", "port", 443.0); err != nil {
		t.Fatal(err)
	}

	if _, _, err := s.Get(t.Context(), "prod", "port"); err != nil {
		t.Fatal(err)
	}

	out := plain(buf.String())

	for _, want := range []string{
		`level=TRACE msg="store opened" path=`,
		`level=TRACE msg="store set" bucket=prod name=port size=3`,
		`level=TRACE msg="store get" bucket=prod name=port found=true`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "time=") {
		t.Errorf("time written with empty layout:\n%s", out)
	}
}

func TestLogger_PrettyJSONGroups(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := log.Make(&buf, log.WithLevel(log.LevelTrace), log.WithTimeLayout("none"))

	if _, err := lang.ParseString(t.Context(), "max(1,", lang.WithLogger(logger), lang.WithCache(nil)); err == nil {
		t.Fatal("expected parse error")
	}

	// Pretty JSON is still JSON once the colors are gone.
	var rec map[string]any
	if err := json.NewDecoder(strings.NewReader(plain(buf.String()))).Decode(&rec); err != nil {
		t.Fatalf("decode %q: %v", plain(buf.String()), err)
	}

	if rec["level"] != "TRACE" || rec["msg"] != "parse start" {
		t.Errorf("first record = %v", rec)
	}

	want := "  \"error\": {\n    \"error\": \"parse error\",\n    \"line\": 1,"
	if !strings.Contains(plain(buf.String()), want) {
		t.Errorf("parse error not nested:\n%s", plain(buf.String()))
	}
}

func TestLogger_PrettyAttrsAndGroups(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format log.Format
		want   string
	}{
		{log.FormatText, `level=INFO msg=evaluated command=eval result.source="1 + 2" result.value=3`},
		{log.FormatJSON, `{"level":"INFO","msg":"evaluated","command":"eval","result":{"source":"1 + 2","value":3}}`},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			logger := log.Make(&buf, log.WithFormat(tt.format), log.WithTimeLayout("none"))

			logger.Logger.
				With(slog.String("command", "eval")).
				WithGroup("result").
				With(slog.String("source", "1 + 2")).
				Info("evaluated", slog.Float64("value", 3), slog.Group("empty"))

			got, want := strings.TrimSpace(plain(buf.String())), tt.want
			if tt.format == log.FormatJSON {
				got, want = compact(t, got), compact(t, want)
			}

			if got != want {
				t.Errorf("got  %s\nwant %s", got, want)
			}
		})
	}
}

// compact re-encodes a JSON document with sorted keys and no spacing.
func compact(t *testing.T, s string) string {
	t.Helper()

	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}

	out, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}

	return string(out)
}

func TestLogger_Caller(t *testing.T) {
	t.Parallel()

	for _, pretty := range []bool{false, true} {
		var buf bytes.Buffer

		logger := log.Make(&buf,
			log.WithFormat(log.FormatText),
			log.WithCaller(true),
			log.WithPretty(pretty),
		)

		logger.Warn("history file unreadable")

		if out := plain(buf.String()); !strings.Contains(out, "log_test.go:") {
			t.Errorf("pretty=%v: caller missing from %q", pretty, out)
		}
	}
}

func TestLogger_TimeLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		layout string
		want   *regexp.Regexp
	}{
		{"Kitchen", regexp.MustCompile(`^time=\d{1,2}:\d{2}[AP]M `)},
		{"date-time", regexp.MustCompile(`^time="\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}" `)},
		{"2006", regexp.MustCompile(`^time=\d{4} `)},
	}

	for _, tt := range tests {
		var buf bytes.Buffer

		log.Make(&buf, log.WithFormat(log.FormatText), log.WithTimeLayout(tt.layout)).
			Error("run failed")

		if out := plain(buf.String()); !tt.want.MatchString(out) {
			t.Errorf("layout %q: got %q", tt.layout, out)
		}
	}
}

func TestLogger_Zero(t *testing.T) {
	t.Parallel()

	var logger log.Logger

	// A zero logger discards without panicking.
	logger.Trace("store opened")
	logger.ErrorContext(t.Context(), "run failed")

	if got := logger.Level(); got != log.DefaultLevel {
		t.Errorf("zero Level() = %v, want %v", got, log.DefaultLevel)
	}

	var buf bytes.Buffer

	logger = logger.Wrap(log.WithOutput(&buf), log.WithPretty(false), log.WithLevel(log.LevelWarn))
	logger.Warn("history file unreadable", slog.String("path", "/tmp/history"))

	if rec := records(t, buf.String()); len(rec) != 1 || rec[0]["path"] != "/tmp/history" {
		t.Errorf("wrapped zero logger wrote %q", buf.String())
	}
}
