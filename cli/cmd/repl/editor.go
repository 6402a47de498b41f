package repl

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

const defaultEditor = "vi"

// editCommand implements [tea.ExecCommand]. It writes an expression to a
// temporary file, opens the user's editor on it, and reads back the result
// as a single line suitable for the input field.
type editCommand struct {
	ctx    context.Context
	logger log.Logger
	editor string
	source string
	result string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func newEditCommand(ctx context.Context, logger log.Logger, source string) *editCommand {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	return &editCommand{
		ctx:    ctx,
		logger: logger,
		editor: editor,
		source: source,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run opens the editor and stores the edited expression in c.result.
func (c *editCommand) Run() error {
	f, err := os.CreateTemp("", "formula-*.fx")
	if err != nil {
		return err
	}

	path := f.Name()
	defer os.Remove(path)

	_, err = f.WriteString(c.source + "\n")
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return err
	}

	args := strings.Fields(c.editor)
	cmd := exec.CommandContext(c.ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = c.stdin
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr

	if err := cmd.Run(); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c.result = joinLines(string(data))

	c.logger.TraceContext(c.ctx, "repl edit",
		slog.String("editor", args[0]),
		slog.Int("length", len(c.result)),
	)

	return nil
}

var newlines = strings.NewReplacer("\r\n", " ", "\n", " ")

// joinLines folds a multi-line expression onto one line. Comments are
// removed first so that they cannot swallow the lines joined after them.
func joinLines(source string) string {
	return strings.TrimSpace(newlines.Replace(lang.StripComments(source)))
}
