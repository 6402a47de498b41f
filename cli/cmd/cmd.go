package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"
)

type (
	contextKey struct{}
	inputKey   struct{}
	outputKey  struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// WithInput returns a new context.Context whose commands read "-" sources
// from r instead of os.Stdin.
func WithInput(ctx context.Context, r io.Reader) context.Context {
	return context.WithValue(ctx, inputKey{}, r)
}

// WithOutput returns a new context.Context whose commands write results to
// w instead of the kong application's stdout.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func inputFrom(ctx context.Context) io.Reader {
	if r, ok := ctx.Value(inputKey{}).(io.Reader); ok && r != nil {
		return r
	}

	return os.Stdin
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

// source is one expression read from the command line or a file.
type source struct {
	name string
	text string
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// readSources reads every named file once, in order. All occurrences of "-"
// collapse into a single read of the context's input, placed after the
// regular files. A file reached through several paths is read only once.
func readSources(ctx context.Context, paths []string) ([]source, error) {
	var (
		out      []source
		hasStdin bool
	)

	seen := make(map[fileKey]struct{})

	for _, path := range paths {
		if path == stdinSource {
			hasStdin = true

			continue
		}

		src, ok, err := readUniqueFile(path, seen)
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("path", path))
		}

		if ok {
			out = append(out, src)
		}
	}

	if hasStdin {
		data, err := io.ReadAll(inputFrom(ctx))
		if err != nil {
			return nil, ErrReadSource.Wrap(err).With(slog.String("path", stdinSource))
		}

		out = append(out, source{name: stdinSource, text: string(data)})
	}

	return out, nil
}

// readUniqueFile reads the file at path if it hasn't been seen before.
// It resolves symlinks and uses device/inode to detect duplicates.
func readUniqueFile(path string, seen map[fileKey]struct{}) (source, bool, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return source{}, false, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return source{}, false, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return source{}, false, nil
		}

		seen[key] = struct{}{}
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return source{}, false, err
	}

	return source{name: path, text: string(data)}, true, nil
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// collect returns the expressions given as arguments followed by the
// contents of files.
func collect(ctx context.Context, exprs, files []string) ([]source, error) {
	out := make([]source, 0, len(exprs)+len(files))

	for _, e := range exprs {
		out = append(out, source{name: "arg", text: e})
	}

	fromFiles, err := readSources(ctx, files)
	if err != nil {
		return nil, err
	}

	out = append(out, fromFiles...)

	if len(out) == 0 {
		return nil, ErrNoInput
	}

	return out, nil
}
