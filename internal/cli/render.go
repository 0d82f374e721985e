package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qsql/internal/annot"
	"github.com/roach88/qsql/internal/config"
	"github.com/roach88/qsql/internal/document"
	"github.com/roach88/qsql/internal/template"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Set []string
}

// NewRenderCommand creates the render command.
//
// Rendering is a preview of the optional template stage: it applies a cell's
// `vars` annotation (plus any --set overrides) to the cell text and prints
// the result. Execution never renders; it always runs the raw text.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <file> <cell>",
		Short: "Print a cell's text with template variables applied",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "override a template variable (key=value, repeatable)")

	return cmd
}

func runRender(opts *RenderOptions, path, cellName string, cmd *cobra.Command) error {
	doc, err := document.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load document", err)
	}

	parsers := annot.Builtin().Parsers()
	resolver := config.BuiltinResolver()

	for _, cell := range doc.Cells() {
		if cell.Name != cellName {
			continue
		}

		vars := make(map[string]any)
		if cfg, _ := config.ValidateCell(doc.MergedConfig(cell, parsers), resolver); cfg != nil {
			for k, v := range cfg.Vars {
				vars[k] = v
			}
		}
		for _, kv := range opts.Set {
			key, value, found := strings.Cut(kv, "=")
			if !found {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid --set %q: expected key=value", kv))
			}
			vars[key] = value
		}

		rendered, err := template.Expand(cell.Text, vars)
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("failed to render cell %q", cellName), err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), rendered)
		return nil
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("cell %q not found in %s", cellName, path))
}
