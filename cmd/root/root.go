package root

import (
	"fmt"
	"os"

	"devenv-keeper/internal/logger"

	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "devenv-keeper",
	Short: "Health diagnostics and backups for the local development environment",
	Long: `devenv-keeper checks the shared containers, networks and services of the local
development environment and of each project, diagnoses the toolchain, and manages
the database backups taken by the global backup container.`,
	SilenceUsage: true,
}

// Format output format of report commands: text, json or yaml
var Format string

func init() {
	RootCmd.PersistentFlags().StringVarP(&Format, "format", "o", "text", "Output format (text|json|yaml)")
}

// ReportError prints the one-line diagnostic of a failed command
func ReportError(action string, err error) {
	logger.Errorf("%s failed: %v", action, err)
	fmt.Fprintf(os.Stderr, "❌ %s failed: %v\n", action, err)
}
