package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/qsql/internal/document"
	"github.com/roach88/qsql/internal/watcher"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RunOptions
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RunOptions: &RunOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Watch a file and re-execute changed cells",
		Long: `Watch an annotated SQL file and re-execute cells whose text changes.

Backend connections persist across file edits; only added and changed
cells re-execute. Runs until interrupted.

Example:
  qsql watch ./queries.sql --debounce 2s`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Debounce, "debounce", watcher.DefaultDebounce, "minimum interval between accepted change events")
	cmd.Flags().BoolVar(&opts.NoLog, "no-log", false, "disable the timing-log decorator")
	cmd.Flags().BoolVar(&opts.NoOutput, "no-output", false, "disable the parquet output decorator")
	cmd.Flags().BoolVar(&opts.Permissive, "permissive", false, "tolerate invalid cell configs instead of failing")

	return cmd
}

func watchFile(opts *WatchOptions, path string, cmd *cobra.Command) error {
	doc, err := document.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load document", err)
	}

	pipeline, err := buildPipeline(doc, opts.RunOptions)
	if err != nil {
		return WrapExitError(ExitFailure, "validation failed", err)
	}
	defer func() {
		if closeErr := pipeline.Close(); closeErr != nil {
			slog.Error("error closing connections", "error", closeErr)
		}
	}()

	w, err := watcher.New(path, pipeline,
		watcher.WithDebounce(opts.Debounce),
		watcher.WithLogger(slog.Default()),
	)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to start watcher", err)
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return WrapExitError(ExitFailure, "watcher stopped", err)
	}
	return nil
}
