package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// evalOptions holds the flags of the eval command.
type evalOptions struct {
	Format string
	Meshes bool
}

func newRootCommand() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "brep",
		Short: "Build and inspect boundary representation shapes",
		Long: `brep evaluates Lisp shape scripts.

Scripts build faces, shells and solids, aggregate them into compounds and
synthesize closed volumes from loose boundaries.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newEvalCommand(func() *slog.Logger {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	}))
	return cmd
}

func newEvalCommand(logger func() *slog.Logger) *cobra.Command {
	var opts evalOptions

	cmd := &cobra.Command{
		Use:   "eval [file]",
		Short: "Evaluate a shape script",
		Long: `Eval runs a script and prints a report of the shape produced by its
last expression. With no file, or "-", the script is read from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			app, err := NewApp(logger())
			if err != nil {
				return fmt.Errorf("configure: %w", err)
			}
			result := app.Evaluate(source, opts.Meshes)

			if err := writeResult(cmd.OutOrStdout(), result, opts.Format); err != nil {
				return err
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("evaluation reported %d error(s)", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "json", "Output format (json or yaml)")
	cmd.Flags().BoolVarP(&opts.Meshes, "meshes", "m", false, "Include triangle meshes of every part")

	return cmd
}

func readSource(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(b), nil
}

func writeResult(w io.Writer, result EvalResult, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
