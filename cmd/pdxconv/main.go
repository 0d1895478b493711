// Command pdxconv parses, formats, merges and inspects Paradox script files.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/modconv/pdx"
	"github.com/modconv/pdx/convert"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "pdxconv:", err)
		os.Exit(1)
	}
}

// env is the state shared by all commands, set up before any of them runs.
type env struct {
	logger *slog.Logger
	parser *pdx.Parser
}

func newApp(stdout, stderr io.Writer) *cli.App {
	e := &env{}
	return &cli.App{
		Name:      "pdxconv",
		Usage:     "read and convert Paradox script files",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "info", Usage: "debug, info, warn or error"},
			&cli.IntFlag{Name: "max-depth", Value: pdx.DefaultMaxDepth, Usage: "maximum block nesting"},
		},
		Before: func(c *cli.Context) error {
			e.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: parseLevel(c.String("log-level"))}))
			e.parser = pdx.NewParser().WithMaxDepth(c.Int("max-depth")).WithLogger(e.logger)
			return nil
		},
		ExitErrHandler: func(*cli.Context, error) {},
		Commands: []*cli.Command{
			e.parseCommand(),
			e.fmtCommand(),
			e.checkCommand(),
			e.mergeCommand(),
			e.inspectCommand(),
			e.convertCommand(),
		},
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (e *env) parseCommand() *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "print a script file as JSON",
		ArgsUsage: "FILE",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("parse: expected one file")
			}
			doc, err := e.parser.ParseFile(c.Args().First())
			if err != nil {
				return err
			}
			return writeJSON(c.App.Writer, doc)
		},
	}
}

func (e *env) fmtCommand() *cli.Command {
	return &cli.Command{
		Name:      "fmt",
		Usage:     "print a script file in canonical form",
		ArgsUsage: "FILE",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "write", Aliases: []string{"w"}, Usage: "rewrite the file in place"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("fmt: expected one file")
			}
			path := c.Args().First()
			doc, err := e.parser.ParseFile(path)
			if err != nil {
				return err
			}
			data, err := pdx.Marshal(doc)
			if err != nil {
				return fmt.Errorf("fmt %s: %w", path, err)
			}
			if c.Bool("write") {
				return os.WriteFile(path, data, 0o644)
			}
			_, err = c.App.Writer.Write(data)
			return err
		},
	}
}

func (e *env) checkCommand() *cli.Command {
	return &cli.Command{
		Name:      "check",
		Usage:     "parse every file of a directory and report failures",
		ArgsUsage: "DIR",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "pattern", Value: "*.txt", Usage: "file name pattern"},
			&cli.IntFlag{Name: "workers", Usage: "files parsed at once (default: number of CPUs)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("check: expected one directory")
			}
			results, err := e.parser.ParseDir(c.Context, c.Args().First(), c.String("pattern"), c.Int("workers"))
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(c.App.Writer, "FAIL %s: %v\n", r.Path, r.Err)
					continue
				}
				fmt.Fprintf(c.App.Writer, "ok   %s (%d keys)\n", r.Path, r.Doc.Len())
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}
}

func (e *env) mergeCommand() *cli.Command {
	return &cli.Command{
		Name:      "merge",
		Usage:     "merge script files in order and print the result",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "strategy", Value: string(pdx.MergeDeep), Usage: "deep, shallow or replace"},
			&cli.StringFlag{Name: "lists", Value: string(pdx.ListAppend), Usage: "append, replace or unique"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("merge: expected at least one file")
			}
			strategy := pdx.MergeStrategy(c.String("strategy"))
			switch strategy {
			case pdx.MergeDeep, pdx.MergeShallow, pdx.MergeReplace:
			default:
				return fmt.Errorf("merge: unknown strategy %q", strategy)
			}
			lists := pdx.ListStrategy(c.String("lists"))
			switch lists {
			case pdx.ListAppend, pdx.ListReplace, pdx.ListUnique:
			default:
				return fmt.Errorf("merge: unknown list strategy %q", lists)
			}

			merged, err := pdx.NewMerger().
				WithParser(e.parser).
				WithOptions(pdx.MergeOptions{Strategy: strategy, ListStrategy: lists}).
				MergeFiles(c.Args().Slice()...)
			if err != nil {
				return err
			}
			data, err := pdx.Marshal(merged)
			if err != nil {
				return err
			}
			_, err = c.App.Writer.Write(data)
			return err
		},
	}
}

func configFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML config file"},
		&cli.StringFlag{Name: "source", Usage: "source mod directory (overrides the config)"},
		&cli.StringFlag{Name: "tone-curve", Usage: "heightmap tone curve as 0..1 pairs (overrides the config)"},
		&cli.IntFlag{Name: "workers", Usage: "files parsed at once"},
		&cli.BoolFlag{Name: "check-modifiers", Usage: "reject unknown trait modifiers"},
	}
}

// loadConfig builds a conversion config from --config and the override flags.
func (e *env) loadConfig(c *cli.Context) (*convert.Config, error) {
	cfg := &convert.Config{}
	if path := c.String("config"); path != "" {
		loaded, err := convert.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if c.IsSet("source") {
		cfg.SourceDir = c.String("source")
	}
	if c.IsSet("tone-curve") {
		curve, err := convert.ParseToneCurve(c.String("tone-curve"))
		if err != nil {
			return nil, err
		}
		cfg.ToneCurve = curve
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.IsSet("check-modifiers") {
		cfg.CheckModifiers = c.Bool("check-modifiers")
	}
	if c.IsSet("max-depth") || cfg.MaxDepth == 0 {
		cfg.MaxDepth = c.Int("max-depth")
	}
	cfg.Logger = e.logger
	return cfg, nil
}

func (e *env) inspectCommand() *cli.Command {
	return &cli.Command{
		Name:  "inspect",
		Usage: "read a source mod and print what it contains as JSON",
		Flags: configFlags(),
		Action: func(c *cli.Context) error {
			cfg, err := e.loadConfig(c)
			if err != nil {
				return err
			}
			summary, err := convert.Inventory(c.Context, cfg)
			if err != nil {
				return err
			}
			return writeJSON(c.App.Writer, summary)
		},
	}
}

func (e *env) convertCommand() *cli.Command {
	flags := append([]cli.Flag{
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output directory (overrides the config)"},
		&cli.StringFlag{Name: "name", Usage: "mod name (overrides the config)"},
	}, configFlags()...)

	return &cli.Command{
		Name:  "convert",
		Usage: "read a source mod and write the converted mod with its maps",
		Flags: flags,
		Action: func(c *cli.Context) error {
			cfg, err := e.loadConfig(c)
			if err != nil {
				return err
			}
			if c.IsSet("output") {
				cfg.OutputDir = c.String("output")
			}
			if c.IsSet("name") {
				cfg.ModName = c.String("name")
			}
			summary, err := convert.Convert(c.Context, cfg, convert.DirScaffolder{}, convert.RasterConverter{})
			if err != nil {
				return err
			}
			return writeJSON(c.App.Writer, summary)
		},
	}
}

// writeJSON prints v indented, leaving comparison operators of raw
// conditions unescaped.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
