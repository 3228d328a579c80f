package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/dhoelle/tidy"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

type options struct {
	input      string
	output     string
	pretty     bool
	canonical  bool
	paths      []string
	configPath string
	verbose    bool
}

func (o *options) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.input, "input", formatJSON, "input format, one of json|yaml")
	f.StringVarP(&o.output, "output", "o", formatJSON, "output format, one of json|yaml")
	f.BoolVar(&o.pretty, "pretty", false, "indent JSON output")
	f.BoolVar(&o.canonical, "canonical", false, "write canonical JSON (RFC 8785)")
	f.StringArrayVar(&o.paths, "get", nil, "print the value at this dot-path instead of the document (repeatable)")
	f.StringVar(&o.configPath, "config", "", "YAML file holding the normalization settings")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "log debug output to stderr")
}

func (o *options) validate() error {
	switch o.input {
	case formatJSON, formatYAML:
	default:
		return fmt.Errorf("unknown input format %q", o.input)
	}
	switch o.output {
	case formatJSON, formatYAML:
	default:
		return fmt.Errorf("unknown output format %q", o.output)
	}
	if o.canonical && o.output != formatJSON {
		return errors.New("--canonical requires --output json")
	}
	if o.canonical && o.pretty {
		return errors.New("--canonical and --pretty are mutually exclusive")
	}
	return nil
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().
		Logger()
}

func run(cmd *cobra.Command, args []string, o *options) error {
	if err := o.validate(); err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), o.verbose)

	cfg := tidy.DefaultConfig()
	if o.configPath != "" {
		var err error
		if cfg, err = tidy.LoadConfigFile(o.configPath); err != nil {
			return err
		}
		logger.Debug().Str("path", o.configPath).Msg("loaded config")
	}

	data, source, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	logger.Debug().Str("source", source).Int("bytes", len(data)).Str("format", o.input).Msg("read input")

	e := tidy.New(cfg, tidy.WithLogger(logger))
	var normalized any
	if o.input == formatYAML {
		normalized, err = e.NormalizeYAML(data)
	} else {
		normalized, err = e.NormalizeJSON(data)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	out := cmd.OutOrStdout()
	if len(o.paths) > 0 {
		return writePaths(out, normalized, o.paths)
	}
	return o.write(out, normalized)
}

func readInput(stdin io.Reader, args []string) ([]byte, string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, "stdin", nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("failed to read input: %w", err)
	}
	return data, args[0], nil
}

// writePaths prints one JSON value per path. Unresolved paths print null.
func writePaths(w io.Writer, normalized any, paths []string) error {
	c, _ := normalized.(*tidy.Container)
	for _, p := range paths {
		var v any
		if c != nil {
			v = c.Get(p)
		}
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode value at %q: %w", p, err)
		}
		if _, err := fmt.Fprintln(w, string(b)); err != nil {
			return err
		}
	}
	return nil
}

func (o *options) write(w io.Writer, normalized any) error {
	var (
		b   []byte
		err error
	)
	switch {
	case o.output == formatYAML:
		b, err = yaml.Marshal(normalized)
	case o.canonical:
		if c, ok := normalized.(*tidy.Container); ok {
			b, err = c.ToCanonicalText()
		} else {
			b, err = json.Marshal(normalized)
		}
	case o.pretty:
		b, err = json.Marshal(normalized, jsontext.WithIndent("    "))
	default:
		b, err = json.Marshal(normalized)
	}
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	if len(b) == 0 || b[len(b)-1] != '\n' {
		b = append(b, '\n')
	}
	_, err = w.Write(b)
	return err
}
