package cli

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/formula/lang"
)

// resolve is a [kong.ConfigurationLoader] for YAML configuration files.
//
// Nested mappings are flattened by joining keys with '-', so both of the
// following set --log-level:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Keys may use '_' in place of '-'. Flags of a subcommand may also be given
// under the command's name, which takes precedence over a top-level key:
//
//	output: json     # any command with an --output flag
//	eval:
//	  output: yaml   # eval only
//
// Command-line flags override configuration values. An empty file is an
// empty configuration.
func resolve(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	c := make(config)
	c.flatten("", doc)

	return c, nil
}

// config implements [kong.Resolver] over a flattened YAML document.
type config map[string]any

func (c config) flatten(prefix string, doc map[string]any) {
	for key, value := range doc {
		key = strings.ReplaceAll(key, "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		if sub, ok := value.(map[string]any); ok {
			c.flatten(key, sub)

			continue
		}

		if v := flagValue(value); v != nil {
			c[key] = v
		}
	}
}

// flagValue converts a decoded YAML value to a form the kong mappers accept.
// Numbers become their shortest decimal string.
func flagValue(value any) any {
	switch v := value.(type) {
	case string, bool:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return lang.FormatNumber(v)
	case []any:
		list := make([]any, 0, len(v))

		for _, elem := range v {
			if e := flagValue(elem); e != nil {
				list = append(list, e)
			}
		}

		return list
	case nil:
		return nil
	}

	return lang.ToString(value)
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
	if parent != nil && parent.Command != nil {
		if v, ok := c[parent.Command.Name+"-"+flag.Name]; ok {
			return v, nil
		}
	}

	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	return nil, nil //nolint:nilnil
}
