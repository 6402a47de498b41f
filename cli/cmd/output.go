package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/formula/lang"
)

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

// Output selects how results are rendered.
type Output struct {
	Output string `default:"text" enum:"text,json,yaml" help:"Result format (${enum})." short:"o"`
	Indent int    `default:"2"                          help:"Indent width for JSON and YAML (0 for compact)." short:"i"`
}

func (o Output) write(ctx context.Context, w io.Writer, value any) error {
	var err error

	switch o.Output {
	case outputJSON:
		err = lang.WriteJSON(ctx, w, value, o.Indent)
	case outputYAML:
		err = lang.WriteYAML(ctx, w, value, o.Indent)
	default:
		err = lang.WriteText(ctx, w, value)
	}

	if err != nil {
		return ErrOutput.Wrap(err).With(slog.String("format", o.Output))
	}

	return nil
}
