package repl

import (
	"context"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/formula/lang"
)

func TestDetectFunctionCall(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		cursor int // -1 means end of input
		want   functionCall
	}{
		{"no call", "greeting", -1, functionCall{}},
		{"first arg", "max(", -1, functionCall{"max", 0, true}},
		{"second arg", "max(1, ", -1, functionCall{"max", 1, true}},
		{"nested open", "max(1, min(2, ", -1, functionCall{"min", 1, true}},
		{"nested closed", "max(min(1, 2), ", -1, functionCall{"max", 1, true}},
		{"dotted", "path.join(a", -1, functionCall{"path.join", 0, true}},
		{"comma in string", `concat("a,b", `, -1, functionCall{"concat", 1, true}},
		{"paren in string", `concat("(", `, -1, functionCall{"concat", 1, true}},
		{"grouping", "[1, (2", -1, functionCall{}},
		{"closed", "f(a) + 1", -1, functionCall{}},
		{"in array", "max([1, ", -1, functionCall{}},
		{"array arg", "max([1, 2], ", -1, functionCall{"max", 1, true}},
		{"cursor before call", "max(1)", 0, functionCall{}},
		{"cursor inside", "max(1, 2)", 7, functionCall{"max", 1, true}},
		{"command arg", ":fmt max(", -1, functionCall{"max", 0, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cursor := tt.cursor
			if cursor < 0 {
				cursor = len(tt.input)
			}

			if got := detectFunctionCall(tt.input, cursor); got != tt.want {
				t.Errorf("detectFunctionCall(%q, %d) = %+v, want %+v",
					tt.input, cursor, got, tt.want)
			}
		})
	}
}

func TestParamsOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sig  string
		want []string
	}{
		{"max(x...) number", []string{"x..."}},
		{"path.rel(from, to) string", []string{"from", "to"}},
		{"number(value, fallback?) number", []string{"value", "fallback?"}},
		{"random() number", nil},
		{"bad", nil},
	}

	for _, tt := range tests {
		if got := paramsOf(tt.sig); !slices.Equal(got, tt.want) {
			t.Errorf("paramsOf(%q) = %q, want %q", tt.sig, got, tt.want)
		}
	}
}

func TestSignatureOf(t *testing.T) {
	t.Parallel()

	env := lang.NewEnv(lang.WithFunction("double",
		lang.EagerFunc(func(_ context.Context, _ *lang.Env, _ any, args []any) (any, error) {
			return lang.ToNumber(args[0]) * 2, nil
		}),
	))

	tests := []struct {
		name       string
		wantSig    string
		wantParams []string
	}{
		{"max", "max(x...) number", []string{"x..."}},
		{"path.join", "path.join(elem...) string", []string{"elem..."}},
		{"double", "double(...)", []string{"..."}},
		{"nope", "", nil},
	}

	for _, tt := range tests {
		sig, params := signatureOf(env, tt.name)
		if sig != tt.wantSig || !slices.Equal(params, tt.wantParams) {
			t.Errorf("signatureOf(%q) = (%q, %q), want (%q, %q)",
				tt.name, sig, params, tt.wantSig, tt.wantParams)
		}
	}
}

func TestIsVariadic(t *testing.T) {
	t.Parallel()

	for param, want := range map[string]bool{
		"...":       true,
		"elem...":   true,
		"value":     false,
		"fallback?": false,
	} {
		if got := isVariadic(param); got != want {
			t.Errorf("isVariadic(%q) = %v, want %v", param, got, want)
		}
	}
}

func TestRenderSignatureHint(t *testing.T) {
	t.Parallel()

	sig := "path.rel(from, to) string"

	got := renderSignatureHint(sig, paramsOf(sig), 1)
	for _, part := range []string{"path.rel", "from", "to", ") string"} {
		if !strings.Contains(got, part) {
			t.Errorf("hint %q missing %q", got, part)
		}
	}

	if got := renderSignatureHint("odd", nil, 0); !strings.Contains(got, "odd") {
		t.Errorf("hint %q missing signature", got)
	}
}
