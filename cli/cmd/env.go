package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
	"github.com/ardnew/formula/store"
)

// EnvFlags configure the evaluation environment shared by eval and repl.
type EnvFlags struct {
	Seed  string   `help:"Seed for the random source."                                                placeholder:"SEED"`
	Var   []string `help:"Define variable NAME as the value of EXPR before evaluating."               placeholder:"NAME=EXPR" sep:"none" short:"D"`
	Vars  []string `help:"Load variables from a JSON or YAML object file."                           placeholder:"FILE"      sep:"none" type:"existingfile"`
	Store string   `help:"Read and write variables in the bbolt database at PATH."                   placeholder:"PATH"                 type:"path"`
	Scope string   `help:"Store bucket holding the variables (default: ${storeBucket})."             placeholder:"NAME"`
}

// session is an evaluation environment with the scope its expressions run
// in and the store backing it, if any.
type session struct {
	env   *lang.Env
	scope any
	store *store.Store
}

// open builds the environment: it opens the store, loads the variable files
// and then evaluates each --var definition in order, so later definitions
// may refer to earlier ones.
func (f *EnvFlags) open(ctx context.Context, logger log.Logger) (*session, error) {
	s := &session{}

	opts := []lang.Option{
		lang.WithSeed(f.Seed),
		lang.WithLogger(logger),
	}

	if f.Scope != "" {
		s.scope = f.Scope
	}

	if f.Store != "" {
		db, err := store.Open(f.Store, store.WithLogger(logger))
		if err != nil {
			return nil, ErrStore.Wrap(err)
		}

		s.store = db
		opts = append(opts, lang.WithAccessor(db))
	}

	s.env = lang.NewEnv(opts...)

	if err := f.load(ctx, s); err != nil {
		return nil, errors.Join(err, s.Close())
	}

	return s, nil
}

func (f *EnvFlags) load(ctx context.Context, s *session) error {
	for _, path := range f.Vars {
		vars, err := readVars(path)
		if err != nil {
			return err
		}

		for _, name := range vars.Keys() {
			v, _ := vars.Get(name)
			if err := s.env.Set(ctx, s.scope, name, v); err != nil {
				return ErrVarsFile.Wrap(err).With(slog.String("path", path))
			}
		}
	}

	for _, def := range f.Var {
		name, expr, ok := strings.Cut(def, "=")

		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return ErrDefine.With(slog.String("definition", def))
		}

		v, err := s.env.EvaluateString(ctx, expr, s.scope)
		if err != nil {
			return ErrDefine.Wrap(err).With(slog.String("name", name))
		}

		if err := s.env.Set(ctx, s.scope, name, v); err != nil {
			return ErrDefine.Wrap(err).With(slog.String("name", name))
		}
	}

	return nil
}

// vars returns the variables visible to the session's scope.
func (s *session) vars(ctx context.Context) (*lang.Object, error) {
	if s.store == nil {
		return s.env.Vars(), nil
	}

	v, err := s.store.Vars(ctx, s.scope)
	if err != nil {
		return nil, ErrStore.Wrap(err)
	}

	return v, nil
}

// Close releases the store.
func (s *session) Close() error {
	if s == nil || s.store == nil {
		return nil
	}

	return s.store.Close()
}

// readVars decodes a JSON or YAML file holding a single object. Files
// ending in .json are decoded as JSON; anything else as YAML.
func readVars(path string) (*lang.Object, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, ErrVarsFile.Wrap(err).With(slog.String("path", path))
	}
	defer file.Close()

	var v any

	if strings.EqualFold(filepath.Ext(path), ".json") {
		v, err = lang.DecodeJSON(file)
	} else {
		v, err = lang.DecodeYAML(file)
	}

	if err != nil {
		return nil, ErrVarsFile.Wrap(err).With(slog.String("path", path))
	}

	switch obj := v.(type) {
	case *lang.Object:
		return obj, nil
	case nil:
		return &lang.Object{}, nil
	}

	return nil, ErrVarsFile.
		Wrap(lang.ErrInvalidArgument).
		With(slog.String("path", path), slog.String("reason", "not an object"))
}
