package lang

// This file defines library functions that describe the host system:
// platform identification, process environment, filesystem tests, path
// manipulation and PATH-like list editing.

import (
	"bufio"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ardnew/mung"
)

// hostLibrary returns the host-system functions.
func hostLibrary() map[string]libEntry {
	return map[string]libEntry{
		// System information.
		"sys.target": {simple(func([]any) any { return getTarget().object() }),
			"sys.target() object"},
		"sys.platform": {simple(func([]any) any { return getPlatform().object() }),
			"sys.platform() object"},
		"sys.hostname": {simple(func([]any) any { return getHostname() }),
			"sys.hostname() string"},
		"sys.user": {simple(func([]any) any { return getUser() }),
			"sys.user() string"},
		"sys.shell": {simple(func([]any) any { return getShell() }),
			"sys.shell() string"},
		"sys.cwd": {simple(func([]any) any { return getCwd() }),
			"sys.cwd() string"},
		"env": {simple(func(a []any) any {
			v, ok := os.LookupEnv(ToString(arg(a, 0)))
			if !ok {
				return arg(a, 1)
			}

			return v
		}), "env(name, default?) string"},

		// Filesystem tests.
		"file.exists":    {pathTest(fileExists), "file.exists(path) boolean"},
		"file.isDir":     {pathTest(fileIsDir), "file.isDir(path) boolean"},
		"file.isRegular": {pathTest(fileIsRegular), "file.isRegular(path) boolean"},
		"file.isSymlink": {pathTest(fileIsSymlink), "file.isSymlink(path) boolean"},

		// Path manipulation.
		"path.abs": {str1(pathAbs), "path.abs(path) string"},
		"path.join": {simple(func(a []any) any {
			return pathCat(strs(a)...)
		}), "path.join(elem...) string"},
		"path.rel": {simple(func(a []any) any {
			return pathRel(ToString(arg(a, 0)), ToString(arg(a, 1)))
		}), "path.rel(from, to) string"},

		// PATH-like list editing.
		"mung.prefix": {simple(func(a []any) any {
			return mungPrefix(ToString(arg(a, 0)), restStrs(a)...)
		}), "mung.prefix(list, item...) string"},
		"mung.prefixif": {simple(func(a []any) any {
			return mungPrefixIf(ToString(arg(a, 0)), fileIsDir, restStrs(a)...)
		}), "mung.prefixif(list, dir...) string"},
	}
}

func pathTest(fn func(string) bool) EagerFunc {
	return simple(func(a []any) any { return fn(ToString(arg(a, 0))) })
}

// strs flattens arguments into strings; array arguments contribute each
// element.
func strs(args []any) []string {
	out := make([]string, 0, len(args))

	for _, v := range args {
		if arr, ok := normalize(v).([]any); ok {
			for _, e := range arr {
				out = append(out, ToString(e))
			}

			continue
		}

		out = append(out, ToString(v))
	}

	return out
}

func restStrs(args []any) []string {
	if len(args) < 2 {
		return nil
	}

	return strs(args[1:])
}

// target contains string identifiers for a target operating system and
// instruction set architecture.
type target struct {
	OS   string
	Arch string
}

func (t target) object() *Object {
	return NewObject("os", t.OS, "arch", t.Arch)
}

// getTarget returns the host target using GNU GCC/LLVM naming conventions.
func getTarget() target {
	t := getPlatform()

	switch t.Arch {
	case "386":
		t.Arch = "i386"
	case "amd64":
		t.Arch = "x86_64"
	case "arm":
		if arm, ok := os.LookupEnv("GOARM"); ok {
			arm, _, _ = strings.Cut(arm, ",")
			switch arm = strings.TrimSpace(arm); arm {
			case "5", "6", "7":
				t.Arch = "armv" + arm
			}
		}
	case "arm64":
		if t.OS != "darwin" {
			t.Arch = "aarch64"
		}
	case "mipsle":
		t.Arch = "mipsel"
	}

	return t
}

// getPlatform returns the host target using Go conventions.
func getPlatform() target {
	o, ok := os.LookupEnv("GOHOSTOS")
	if !ok {
		if o, ok = os.LookupEnv("GOOS"); !ok {
			o = runtime.GOOS
		}
	}

	a, ok := os.LookupEnv("GOHOSTARCH")
	if !ok {
		if a, ok = os.LookupEnv("GOARCH"); !ok {
			a = runtime.GOARCH
		}
	}

	return target{OS: o, Arch: a}
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}

	return hostname
}

func getUser() string {
	u, err := user.Current()
	if err != nil {
		return ""
	}

	return u.Username
}

func getShell() string {
	if shell, ok := os.LookupEnv("SHELL"); ok {
		return shell
	}

	name := getUser()
	if name == "" {
		return ""
	}

	f, err := os.Open("/etc/passwd")
	if err != nil {
		return ""
	}

	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		e := strings.Split(s.Text(), ":")
		if len(e) > 6 && e[0] == name {
			return e[6]
		}
	}

	return ""
}

func getCwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return pathAbs(".")
	}

	return cwd
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return !os.IsNotExist(err)
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.IsDir()
}

func fileIsRegular(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}

func fileIsSymlink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeSymlink != 0
}

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func pathCat(elem ...string) string {
	return filepath.Join(elem...)
}

func pathRel(from, to string) string {
	p, err := filepath.Rel(pathAbs(from), pathAbs(to))
	if err != nil {
		return pathCat(from, to)
	}

	return p
}

func mungPrefix(key string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

func mungPrefixIf(
	key string,
	predicate func(string) bool,
	prefix ...string,
) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(predicate),
	).String()
}
