package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ardnew/formula/log"
)

// Eval evaluates expressions in order against one environment, so variables
// assigned by one expression are visible to the next.
type Eval struct {
	Env    EnvFlags `embed:""`
	Output Output   `embed:""`

	File     []string `help:"Read an expression from FILE ('-' for stdin)." placeholder:"FILE" sep:"none" short:"f"`
	DumpVars bool     `help:"Print the variables after evaluating."`

	Exprs []string `arg:"" help:"Expressions to evaluate." name:"expr" optional:""`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	logger := log.Default()

	sources, err := collect(ctx, e.Exprs, e.File)
	if err != nil {
		return err
	}

	sess, err := e.Env.open(ctx, logger)
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, sess.Close()) }()

	w := outputFrom(ctx)

	for _, src := range sources {
		logger.TraceContext(ctx, "eval",
			slog.String("source", src.name),
			slog.Int("length", len(src.text)),
		)

		v, err := sess.env.EvaluateString(ctx, src.text, sess.scope)
		if err != nil {
			return ErrEvaluate.Wrap(err).With(slog.String("source", src.name))
		}

		if err := e.Output.write(ctx, w, v); err != nil {
			return err
		}
	}

	if !e.DumpVars {
		return nil
	}

	vars, err := sess.vars(ctx)
	if err != nil {
		return err
	}

	return e.Output.write(ctx, w, vars)
}
