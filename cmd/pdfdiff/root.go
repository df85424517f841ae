package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/nao1215/pdfdiff/internal/model"
	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	exitFailure      = 1
	exitInvalidInput = 2
	exitEncrypted    = 3
	exitStorage      = 4
)

// NewRootCmd creates the root command for pdfdiff.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdfdiff",
		Short: "Visual and textual comparison of PDF documents",
		Long: `pdfdiff compares two PDF documents page by page.

For every page it renders both documents, highlights changed pixels in red,
counts added and removed words and scores text similarity. The results are
written as report.md and report.json together with three images per page
into a single zip archive.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and exits with a code describing the
// failure class.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, model.ErrEncryptedDocument):
		return exitEncrypted
	case errors.Is(err, model.ErrInvalidInput):
		return exitInvalidInput
	case errors.Is(err, model.ErrStorage):
		return exitStorage
	default:
		return exitFailure
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
