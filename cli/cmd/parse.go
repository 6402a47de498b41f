package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

// Parse prints the syntax tree of each expression.
type Parse struct {
	Format string `default:"json" enum:"json,yaml" help:"Tree format (${enum})."                        short:"o"`
	Indent int    `default:"2"                     help:"Indent width (0 for compact)."                 short:"i"`
	Spans  bool   `                                help:"Include the offset and text of every node."`

	File []string `help:"Read an expression from FILE ('-' for stdin)." placeholder:"FILE" sep:"none" short:"f"`

	Exprs []string `arg:"" help:"Expressions to parse." name:"expr" optional:""`
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) error {
	sources, err := collect(ctx, p.Exprs, p.File)
	if err != nil {
		return err
	}

	logger := log.Default()
	out := Output{Output: p.Format, Indent: p.Indent}
	w := outputFrom(ctx)

	for _, src := range sources {
		node, err := lang.ParseString(ctx, src.text, lang.WithLogger(logger))
		if err != nil {
			return err
		}

		logger.TraceContext(ctx, "parse", slog.String("source", src.name))

		if err := out.write(ctx, w, lang.Tree(node, p.Spans)); err != nil {
			return err
		}
	}

	return nil
}
