package lang

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLibrary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source string
		want   any
	}{
		// Conversion.
		{"number('12px')", 12.0},
		{"number('x', 7)", 7.0},
		{"string(0)", "0"},
		{"string(null)", ""},
		{"array('0')", []any{"0"}},
		{"boolean('0')", false},
		{"array('a')", []any{"a"}},
		{"object(1)", "{}"},
		{"scalar([1])", ""},

		// Math.
		{"abs(-2)", 2.0},
		{"floor(1.7)", 1.0},
		{"ceil(1.2)", 2.0},
		{"round(2.5)", 3.0},
		{"round(-2.5)", -2.0},
		{"trunc(-1.7)", -1.0},
		{"sqrt(9)", 3.0},
		{"sign(-3)", -1.0},
		{"min(3, 1, 2)", 1.0},
		{"max()", math.Inf(-1)},

		// Strings.
		{"length('héllo')", 5.0},
		{"length([1, 2])", 2.0},
		{"length({a: 1})", 1.0},
		{"length(12)", 2.0},
		{"upper('ab') + lower('CD')", "ABcd"},
		{"trim('  x ')", "x"},
		{"concat('a', 1, null)", "a1"},
		{"substr('hello', 1, 3)", "ell"},
		{"substr('hello', -3)", "llo"},
		{"split('a,b', ',')", []any{"a", "b"}},
		{"join([1, 'b'], '-')", "1-b"},
		{"join([1, 2])", "1,2"},
		{"replace('aXbX', 'X', '-')", "a-b-"},
		{"contains('team', 'ea')", true},
		{"contains([1, 2], 2)", true},
		{"contains([1, 2], '2')", false},
		{"startsWith('formula', 'form')", true},
		{"endsWith('formula', 'form')", false},
		{"repeat('ab', 3)", "ababab"},
		{"repeat('ab', -1)", ""},

		// Arrays and objects.
		{"first([])", nil},
		{"last([1, 2, 3])", 3.0},
		{"slice([1, 2, 3, 4], 1, -1)", []any{2.0, 3.0}},
		{"slice('hello', -2)", "lo"},
		{"slice([1, 2], 5)", []any{}},
		{"includes(['a', 'b'], 'b')", true},
		{"indexOf('héllo', 'l')", 2.0},
		{"indexOf([1, 2], 3)", -1.0},
		{"reverse([1, 2, 3])", []any{3.0, 2.0, 1.0}},
		{"sort(['b', 10, 'a', 2])", []any{2.0, 10.0, "a", "b"}},
		{"keys({b: 1, a: 2})", []any{"b", "a"}},
		{"values({b: 1, a: 2})", []any{1.0, 2.0}},
		{"get({a: {b: [10, 20]}}, 'a.b.1')", 20.0},
		{"get({}, 'x', 'd')", "d"},
		{"has({a: null}, 'a')", true},
		{"has({a: 1}, 'a.b')", false},
		{"merge({a: 1, b: 2}, {b: 3, c: 4})", `{"a":1,"b":3,"c":4}`},

		// Encoding.
		{"toJSON({a: [1, 'x<y']})", `{"a":[1,"x<y"]}`},
		{"toJSON([1], 2)", "[\n  1\n]"},
		{`fromJSON('{"z": 1, "a": 2}')`, `{"z":1,"a":2}`},
		{"toYAML({a: 1, b: [true]})", "a: 1\nb:\n- true\n"},
		{"fromYAML('b: 1\\na: [x]')", `{"b":1,"a":["x"]}`},

		// Embedded programs.
		{"expr('a + b * 2', {a: 1, b: 2})", 5.0},
		{"expr('len(xs)', {xs: [1, 2, 3]})", 3.0},
		{"expr('name + \"!\"', {name: 'hi'})", "hi!"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			got, _, err := Evaluate(t.Context(), tt.source, nil)
			if err != nil {
				t.Fatalf("evaluate %q: %v", tt.source, err)
			}

			if !reflect.DeepEqual(plain(got), tt.want) {
				t.Errorf("evaluate %q = %#v, want %#v", tt.source, plain(got), tt.want)
			}
		})
	}
}

func TestLibrary_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		source string
		want   error
	}{
		{"fromJSON('{')", ErrInvalidArgument},
		{"fromYAML('a: [')", ErrInvalidArgument},
		{"expr('1 +')", ErrExprEvaluate},
		{"expr('missing()')", ErrExprEvaluate},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			t.Parallel()

			_, _, err := Evaluate(t.Context(), tt.source, nil)
			if !errors.Is(err, tt.want) {
				t.Errorf("evaluate %q: expected %v, got %v", tt.source, tt.want, err)
			}
		})
	}
}

func TestSignature(t *testing.T) {
	t.Parallel()

	sig, ok := Signature("substr")
	if !ok || !strings.HasPrefix(sig, "substr(") {
		t.Errorf("Signature(substr) = %q, %v", sig, ok)
	}

	if _, ok := Signature("add"); ok {
		t.Error("core functions have no library signature")
	}

	if _, ok := Signature("nope"); ok {
		t.Error("unknown names have no signature")
	}
}

func TestRandom_Deterministic(t *testing.T) {
	t.Parallel()

	a, b, c := NewRandom("seed"), NewRandom("seed"), NewRandom("other")

	same := true

	for range 8 {
		x, y, z := a(), b(), c()
		if x != y {
			t.Fatalf("equal seeds diverged: %v != %v", x, y)
		}

		if x < 0 || x >= 1 {
			t.Fatalf("value %v out of range", x)
		}

		same = same && x == z
	}

	if same {
		t.Error("different seeds produced the same sequence")
	}
}

func TestRandom_Functions(t *testing.T) {
	t.Parallel()

	const source = "[random(), randomInt(10, 20), pick(['a', 'b', 'c'])]"

	first, _, err := Evaluate(t.Context(), source, nil, WithSeed("s"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second, _, _ := Evaluate(t.Context(), source, nil, WithSeed("s"))
	if !reflect.DeepEqual(first, second) {
		t.Errorf("seeded evaluations differ: %v vs %v", first, second)
	}

	vals, _ := first.([]any)
	if n, _ := vals[1].(float64); n < 10 || n >= 20 || n != math.Floor(n) {
		t.Errorf("randomInt out of range: %v", vals[1])
	}

	fixed, _, _ := Evaluate(t.Context(), "random()", nil,
		WithRandom(func() float64 { return 0.25 }))
	if fixed != 0.25 {
		t.Errorf("WithRandom not used: %v", fixed)
	}

	if v, _, _ := Evaluate(t.Context(), "pick([])", nil); v != nil {
		t.Errorf("pick([]) = %v, want null", v)
	}
}

func TestHostLibrary(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")

	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("FORMULA_TEST_VAR", "set")

	env := NewEnv(WithVars(map[string]any{"dir": dir, "file": file}))

	tests := []struct {
		source string
		want   any
	}{
		{"file.exists(file)", true},
		{"file.isDir(dir)", true},
		{"file.isDir(file)", false},
		{"file.isRegular(file)", true},
		{"file.isSymlink(file)", false},
		{"file.exists(path.join(dir, 'missing'))", false},
		{"path.join('a', ['b', 'c'])", filepath.Join("a", "b", "c")},
		{"path.rel(dir, file)", "f.txt"},
		{"env('FORMULA_TEST_VAR')", "set"},
		{"env('FORMULA_TEST_UNSET', 'dflt')", "dflt"},
		{"keys(sys.platform())", []any{"os", "arch"}},
		{"sys.cwd() != ''", true},
	}

	for _, tt := range tests {
		got, err := env.EvaluateString(t.Context(), tt.source, nil)
		if err != nil {
			t.Errorf("evaluate %q: %v", tt.source, err)

			continue
		}

		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("evaluate %q = %#v, want %#v", tt.source, got, tt.want)
		}
	}

	list := string(os.PathListSeparator)

	got, err := env.EvaluateString(t.Context(), "mung.prefix('/usr/bin"+list+"/bin', dir)", nil)
	if err != nil {
		t.Fatalf("mung.prefix: %v", err)
	}

	if s, _ := got.(string); !strings.Contains(s, dir) {
		t.Errorf("mung.prefix result %q does not contain %q", s, dir)
	}

	got, err = env.EvaluateString(t.Context(), "mung.prefixif('/bin', path.join(dir, 'missing'))", nil)
	if err != nil {
		t.Fatalf("mung.prefixif: %v", err)
	}

	if s, _ := got.(string); strings.Contains(s, "missing") {
		t.Errorf("mung.prefixif kept a missing directory: %q", s)
	}
}

func TestGetTarget(t *testing.T) {
	tests := []struct {
		os, arch string
		want     string
	}{
		{"linux", "amd64", "x86_64"},
		{"linux", "386", "i386"},
		{"linux", "arm64", "aarch64"},
		{"darwin", "arm64", "arm64"},
		{"linux", "mipsle", "mipsel"},
		{"linux", "riscv64", "riscv64"},
	}

	for _, tt := range tests {
		t.Setenv("GOHOSTOS", tt.os)
		t.Setenv("GOHOSTARCH", tt.arch)

		if got := getTarget(); got.OS != tt.os || got.Arch != tt.want {
			t.Errorf("getTarget(%s/%s) = %+v, want arch %s", tt.os, tt.arch, got, tt.want)
		}
	}
}
