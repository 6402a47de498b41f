package cmd

import (
	"context"
	"errors"

	"github.com/ardnew/formula/cli/cmd/repl"
	"github.com/ardnew/formula/log"
)

// Repl starts an interactive session.
type Repl struct {
	Env EnvFlags `embed:""`

	History string `default:"${history}" help:"History file." placeholder:"PATH" type:"path"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	logger := log.Default()

	sess, err := r.Env.open(ctx, logger)
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, sess.Close()) }()

	return repl.Run(ctx, repl.Config{
		Env:     sess.env,
		Scope:   sess.scope,
		Vars:    sess.vars,
		History: r.History,
		Logger:  logger,
	})
}
