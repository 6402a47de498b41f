package profile

import (
	"slices"
	"testing"
)

func TestConfig_Options(t *testing.T) {
	t.Parallel()

	c := Make(WithMode("cpu"), WithPath("/tmp/p"), WithQuiet(true))

	mode, path, quiet := c()
	if mode != "cpu" || path != "/tmp/p" || !quiet {
		t.Errorf("Config() = %q, %q, %v", mode, path, quiet)
	}

	// Later options replace only their own field.
	mode, path, _ = WithMode("heap")(c)()
	if mode != "heap" || path != "/tmp/p" {
		t.Errorf("WithMode overwrote path: %q, %q", mode, path)
	}
}

func TestConfig_StartDisabled(t *testing.T) {
	t.Parallel()

	ctrl := Make(WithPath(t.TempDir())).Start()
	if _, ok := ctrl.(ignore); !ok {
		t.Fatalf("Start() with empty mode = %T, want no-op", ctrl)
	}

	ctrl.Stop()
}

func TestModes_Sorted(t *testing.T) {
	t.Parallel()

	modes := Modes()
	if !slices.IsSorted(modes) {
		t.Errorf("Modes() not sorted: %v", modes)
	}

	if slices.Contains(modes, "quiet") {
		t.Error("Modes() must not list quiet")
	}
}
