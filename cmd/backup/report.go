package backup

import (
	"fmt"
	"io"

	"devenv-keeper/services"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the latest report written by the backup script",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		finish("report", showReport(manager(), stdout))
	},
}

func showReport(m *services.BackupManager, w io.Writer) error {
	name, content, err := m.Report()
	if err != nil {
		return err
	}
	if name == "" {
		fmt.Fprintln(w, "⚠️  No backup report found")
		return nil
	}
	fmt.Fprintf(w, "📄 %s\n\n%s", name, content)
	return nil
}

func init() {
	backupCmd.AddCommand(reportCmd)
}
