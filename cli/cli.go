package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/formula/cli/cmd"
	"github.com/ardnew/formula/pkg"
	"github.com/ardnew/formula/store"
)

// CLI is the top-level command-line interface for formula.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Eval  cmd.Eval  `cmd:"" default:"withargs" help:"Evaluate expressions"`
	Parse cmd.Parse `cmd:""                    help:"Print the syntax tree of expressions"`
	Fmt   cmd.Fmt   `cmd:""                    help:"Print expressions in canonical form"`
	Repl  cmd.Repl  `cmd:""                    help:"Start an interactive session"`
}

// Run executes the formula CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	if err := mkdirAllRequired(); err != nil {
		return err
	}

	var cli CLI

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position.
	cli.Log.scan(args)

	return cli.run(ctx, pkg.ConfigPath(pkg.ConfigBase), args, kong.Exit(exit))
}

// run parses args and executes the selected command. Configuration files are
// read from config with a ".json", ".yaml" or ".yml" extension.
func (c *CLI) run(
	ctx context.Context,
	config string,
	args []string,
	opts ...kong.Option,
) error {
	vars := kong.Vars{
		cmd.ConfigIdentifier:  config,
		cmd.CacheIdentifier:   pkg.CacheDir(),
		cmd.HistoryIdentifier: pkg.CachePath(pkg.HistoryBase),
		"storeBucket":         store.DefaultBucket,
	}.
		CloneWith(c.Log.vars()).
		CloneWith(c.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	parser, err := kong.New(c,
		append([]kong.Option{
			kong.Name(pkg.Name),
			kong.Description(pkg.Description),
			kong.UsageOnError(),
			kong.ExplicitGroups(
				[]kong.Group{c.Log.group(), c.Pprof.group()},
			),
			kong.ConfigureHelp(
				kong.HelpOptions{
					Compact:             true,
					Summary:             true,
					Tree:                true,
					NoExpandSubcommands: true,
				}),
			kong.Configuration(kong.JSON, config+".json"),
			kong.Configuration(resolve, config+".yaml", config+".yml"),
			vars,
		}, opts...)...,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ktx.BindTo(ctx, (*context.Context)(nil))

	defer c.Log.start(ctx)()

	// No-op unless built with tag pprof and a mode is selected.
	defer c.Pprof.start(ctx)()

	return ktx.Run()
}
