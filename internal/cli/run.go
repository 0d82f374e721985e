package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/qsql/internal/annot"
	"github.com/roach88/qsql/internal/backend"
	"github.com/roach88/qsql/internal/config"
	"github.com/roach88/qsql/internal/document"
	"github.com/roach88/qsql/internal/executor"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	NoLog      bool
	NoOutput   bool
	Permissive bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <file> [cells...]",
		Short: "Execute cells from an annotated SQL file",
		Long: `Execute query cells from an annotated SQL file.

With no cell names, every cell in the document executes in order. Cells
sharing a backend and connection string share one connection.

Example:
  qsql run ./queries.sql
  qsql run ./queries.sql daily_revenue signups --permissive`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCells(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.NoLog, "no-log", false, "disable the timing-log decorator")
	cmd.Flags().BoolVar(&opts.NoOutput, "no-output", false, "disable the parquet output decorator")
	cmd.Flags().BoolVar(&opts.Permissive, "permissive", false, "tolerate invalid cell configs instead of failing")

	return cmd
}

func runCells(opts *RunOptions, path string, names []string, cmd *cobra.Command) error {
	doc, err := document.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load document", err)
	}

	pipeline, err := buildPipeline(doc, opts)
	if err != nil {
		return WrapExitError(ExitFailure, "validation failed", err)
	}
	defer func() {
		if closeErr := pipeline.Close(); closeErr != nil {
			slog.Error("error closing connections", "error", closeErr)
		}
	}()

	if len(names) == 0 {
		for _, cell := range doc.Cells() {
			names = append(names, cell.Name)
		}
	}

	results, err := pipeline.ExecuteMany(cmd.Context(), names)
	if err != nil {
		return WrapExitError(ExitFailure, "execution failed", err)
	}

	for _, name := range names {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d row(s)\n", name, results[name].RowCount())
	}
	return nil
}

// buildPipeline assembles the standard composition: built-in parsers,
// resolver, and backends, with decorators per the command's flags.
func buildPipeline(doc *document.Document, opts *RunOptions) (executor.Component, error) {
	builder := executor.NewBuilder(
		doc,
		annot.Builtin().Parsers(),
		config.BuiltinResolver(),
		backend.Builtin(),
	)

	if !opts.NoLog {
		builder.WithLogging(slog.Default())
	}
	if !opts.NoOutput {
		builder.WithOutput(slog.Default())
	}
	if opts.Permissive {
		builder.Permissive()
	}

	return builder.Build()
}
