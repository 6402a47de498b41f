package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

// Fmt prints each expression in canonical form.
type Fmt struct {
	Check bool `help:"Print nothing; fail if a source is not in canonical form."`

	File []string `help:"Read an expression from FILE ('-' for stdin)." placeholder:"FILE" sep:"none" short:"f"`

	Exprs []string `arg:"" help:"Expressions to format." name:"expr" optional:""`
}

// Run executes the fmt command.
func (f *Fmt) Run(ctx context.Context) error {
	sources, err := collect(ctx, f.Exprs, f.File)
	if err != nil {
		return err
	}

	logger := log.Default()
	w := outputFrom(ctx)

	for _, src := range sources {
		node, err := lang.ParseString(ctx, src.text, lang.WithLogger(logger))
		if err != nil {
			return err
		}

		canonical := lang.Format(node)

		if f.Check {
			if strings.TrimSpace(src.text) != canonical {
				return ErrUnformatted.With(
					slog.String("source", src.name),
					slog.String("want", canonical),
				)
			}

			continue
		}

		if _, err := fmt.Fprintln(w, canonical); err != nil {
			return ErrOutput.Wrap(err)
		}
	}

	return nil
}
