package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/qsql/internal/annot"
	"github.com/roach88/qsql/internal/config"
	"github.com/roach88/qsql/internal/document"
	"github.com/roach88/qsql/internal/executor"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate every cell's configuration without executing",
		Long: `Validate the configuration of every cell in an annotated SQL file.

All cells are checked and all errors collected before anything is
reported; one broken cell never hides problems in its siblings.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], cmd)
		},
	}

	return cmd
}

func runValidate(path string, cmd *cobra.Command) error {
	doc, err := document.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load document", err)
	}

	report := executor.ValidateDocument(
		doc,
		annot.Builtin().Parsers(),
		config.BuiltinResolver(),
	)

	if report.HasErrors() {
		fmt.Fprintln(cmd.OutOrStdout(), report.Error())
		return NewExitError(ExitFailure,
			fmt.Sprintf("validation failed with %d error(s)", len(report.Errors)))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d cell(s) valid\n", path, len(doc.Cells()))
	return nil
}
