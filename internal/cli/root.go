// Package cli provides the command-line interface for timetracking.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/timetracking/internal/cli/commands"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		// Errors from the report itself were already logged.
		var reported *commands.ReportedError
		if !errors.As(err, &reported) {
			_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command. Run without a subcommand it
// prints the report for the given timesheet.
func NewRootCommand() *cobra.Command {
	rootCmd := commands.NewReportCommand()

	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
