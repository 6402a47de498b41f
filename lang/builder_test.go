package lang

import "testing"

func TestBuilder(t *testing.T) {
	t.Parallel()

	b := NewBuilder()

	tests := []struct {
		name string
		node Node
		src  string
		want any
	}{
		{
			"assignment",
			b.Binary(b.Ident("x"), ":=", b.Call("max", b.Number(1), b.Number(2))),
			"x := max(1, 2)",
			2.0,
		},
		{
			"literals",
			b.Array(b.Null(), b.Bool(true), b.String("s")),
			`[null, true, "s"]`,
			[]any{nil, true, "s"},
		},
		{
			"object",
			b.Object(
				b.Prop("a", b.Number(1)),
				b.Prop(b.Computed(b.String("b")), b.Unary("-", b.Number(2))),
				b.Prop(3, b.Bool(false)),
			),
			`{"a": 1, ["b"]: -2, "3": false}`,
			`{"a":1,"b":-2,"3":false}`,
		},
		{
			"template",
			b.Template("v=", b.Cond(b.Bool(false), b.Number(1), b.Number(2))),
			"`v=${false ? 1 : 2}`",
			"v=2",
		},
		{
			"empty call",
			b.Call("do"),
			"do()",
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Format(tt.node); got != tt.src {
				t.Errorf("Format = %q, want %q", got, tt.src)
			}

			got, err := NewEnv().Evaluate(t.Context(), tt.node, nil)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}

			if p := plain(got); !equalPlain(p, tt.want) {
				t.Errorf("Evaluate = %#v, want %#v", p, tt.want)
			}
		})
	}
}

func TestBuilder_Shorthand(t *testing.T) {
	t.Parallel()

	b := NewBuilder()
	node := b.Object(b.Shorthand("port"))

	if got := Format(node); got != "{port}" {
		t.Errorf("Format = %q", got)
	}

	v, err := NewEnv(WithVars(map[string]any{"port": 80})).Evaluate(t.Context(), node, nil)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if got := ToString(v); got != `{"port":80}` {
		t.Errorf("Evaluate = %s", got)
	}
}

func equalPlain(a, b any) bool {
	x, xok := a.([]any)
	y, yok := b.([]any)

	if !xok || !yok {
		return a == b
	}

	if len(x) != len(y) {
		return false
	}

	for i := range x {
		if !equalPlain(x[i], y[i]) {
			return false
		}
	}

	return true
}
