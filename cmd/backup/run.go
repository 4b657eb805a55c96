package backup

import (
	"context"
	"fmt"
	"io"

	"devenv-keeper/services"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Take a backup of every database now",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		requireDocker()
		finish("run", runBackup(context.Background(), manager(), stdout))
	},
}

func runBackup(ctx context.Context, m *services.BackupManager, w io.Writer) error {
	fmt.Fprintln(w, "🗄️  Running backup...")
	recent, err := m.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "✅ Backup completed")
	if len(recent) == 0 {
		fmt.Fprintln(w, "No backup files found")
		return nil
	}
	fmt.Fprintln(w, "\nMost recent backups:")
	renderRecords(w, recent)
	return nil
}

func init() {
	backupCmd.AddCommand(runCmd)
}
