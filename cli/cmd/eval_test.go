package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func run(ctx context.Context, t *testing.T, cmd interface {
	Run(ctx context.Context) error
},
) (string, error) {
	t.Helper()

	var buf bytes.Buffer

	err := cmd.Run(WithOutput(ctx, &buf))

	return buf.String(), err
}

func TestEval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		eval Eval
		want string
	}{
		{
			name: "arithmetic",
			eval: Eval{Exprs: []string{"1 + 2"}},
			want: "3\n",
		},
		{
			name: "assignments persist",
			eval: Eval{Exprs: []string{"x := 2", "x * 3"}},
			want: "2\n6\n",
		},
		{
			name: "definitions",
			eval: Eval{
				Env:   EnvFlags{Var: []string{"n=1 + 1", "m = n * 5"}},
				Exprs: []string{"m + n"},
			},
			want: "12\n",
		},
		{
			name: "json",
			eval: Eval{
				Output: Output{Output: outputJSON},
				Exprs:  []string{`[1, "a", {"k": null}]`},
			},
			want: `[1,"a",{"k":null}]` + "\n",
		},
		{
			name: "yaml",
			eval: Eval{
				Output: Output{Output: outputYAML, Indent: 2},
				Exprs:  []string{`{"a": 1, "b": "x"}`},
			},
			want: "a: 1\nb: x\n",
		},
		{
			name: "dump vars",
			eval: Eval{
				Output:   Output{Output: outputJSON},
				DumpVars: true,
				Exprs:    []string{"b := 1", "a := `v${b}`"},
			},
			want: "1\n\"v1\"\n" + `{"a":"v1","b":1}` + "\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := run(t.Context(), t, &tt.eval)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}

			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEval_Sources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := writeFile(t, dir, "calc.fx", "// comment\nrate * 100")
	yml := writeFile(t, dir, "vars.yaml", "rate: 0.25\nname: calc\n")
	jsn := writeFile(t, dir, "over.json", `{"rate": 0.5}`)

	ctx := WithInput(t.Context(), strings.NewReader("name"))

	got, err := run(ctx, t, &Eval{
		Env:  EnvFlags{Vars: []string{yml, jsn}},
		File: []string{file, "-"},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got != "50\ncalc\n" {
		t.Errorf("output = %q", got)
	}
}

func TestEval_Seed(t *testing.T) {
	t.Parallel()

	eval := func(seed string) string {
		got, err := run(t.Context(), t, &Eval{
			Env:   EnvFlags{Seed: seed},
			Exprs: []string{"[random(), randomInt(1, 100)]"},
		})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}

		return got
	}

	if a, b := eval("abc"), eval("abc"); a != b {
		t.Errorf("same seed produced %q and %q", a, b)
	}

	if a, b := eval("abc"), eval("xyz"); a == b {
		t.Errorf("different seeds produced %q", a)
	}
}

func TestEval_Store(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "vars.db")
	env := EnvFlags{Store: path, Scope: "budget", Var: []string{"base=40"}}

	if _, err := run(t.Context(), t, &Eval{Env: env, Exprs: []string{"total := base + 2"}}); err != nil {
		t.Fatalf("first session: %v", err)
	}

	got, err := run(t.Context(), t, &Eval{
		Env:      EnvFlags{Store: path, Scope: "budget"},
		Output:   Output{Output: outputJSON},
		DumpVars: true,
		Exprs:    []string{"total / 2"},
	})
	if err != nil {
		t.Fatalf("second session: %v", err)
	}

	if want := "21\n" + `{"base":40,"total":42}` + "\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	// Other scopes see nothing.
	got, err = run(t.Context(), t, &Eval{
		Env:   EnvFlags{Store: path},
		Exprs: []string{"total"},
	})
	if err != nil {
		t.Fatal(err)
	}

	if got != "total\n" {
		t.Errorf("default scope output = %q", got)
	}
}

func TestEval_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	list := writeFile(t, dir, "list.yaml", "- 1\n- 2\n")
	broken := writeFile(t, dir, "broken.json", `{"a":`)

	tests := []struct {
		name string
		eval Eval
		want error
	}{
		{"no input", Eval{}, ErrNoInput},
		{"no equals", Eval{Env: EnvFlags{Var: []string{"x"}}, Exprs: []string{"1"}}, ErrDefine},
		{"no name", Eval{Env: EnvFlags{Var: []string{" =1"}}, Exprs: []string{"1"}}, ErrDefine},
		{"bad definition", Eval{Env: EnvFlags{Var: []string{"x=1 +"}}, Exprs: []string{"1"}}, ErrDefine},
		{"vars not object", Eval{Env: EnvFlags{Vars: []string{list}}, Exprs: []string{"1"}}, ErrVarsFile},
		{"vars malformed", Eval{Env: EnvFlags{Vars: []string{broken}}, Exprs: []string{"1"}}, ErrVarsFile},
		{"syntax", Eval{Exprs: []string{"(1 +"}}, ErrEvaluate},
		{"store", Eval{Env: EnvFlags{Store: filepath.Join(dir, "no", "such.db")}, Exprs: []string{"1"}}, ErrStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := run(t.Context(), t, &tt.eval)
			if !errors.Is(err, tt.want) {
				t.Errorf("Run() error = %v, want %v", err, tt.want)
			}
		})
	}
}
