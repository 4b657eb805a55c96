package backup

import (
	"errors"
	"fmt"
	"io"
	"os"

	"devenv-keeper/cmd/root"
	"devenv-keeper/internal/logger"
	"devenv-keeper/internal/models"
	"devenv-keeper/internal/prompt"
	"devenv-keeper/internal/utils"
	"devenv-keeper/services"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Backup operations (run/list/restore/cleanup etc.)",
	Long:  `Run, inspect, restore and prune the database backups of the global environment`,
}

const backupExample = `  # take a backup now
  devenv-keeper backup run
  # restore, choosing from the most recent backups
  devenv-keeper backup restore
  # remove backups older than 30 days without asking
  devenv-keeper backup cleanup --days 30 --yes`

// prompter answers the questions of restore, cleanup and configure
var prompter prompt.Prompter = prompt.NewTerminal()

var stdout io.Writer = os.Stdout

// requireDocker stops the process when the docker CLI is missing
func requireDocker() {
	if err := utils.RequireCommands("docker"); err != nil {
		logger.Fatal(err)
	}
}

// finish reports the outcome of a backup action, a declined confirmation is not a failure
func finish(action string, err error) {
	if err == nil {
		return
	}
	if errors.Is(err, models.ErrConfirmationDeclined) {
		logger.Infof("%s cancelled by user", action)
		fmt.Fprintf(stdout, "%s cancelled\n", action)
		return
	}
	root.ReportError("backup "+action, err)
}

func manager() *services.BackupManager {
	return services.GetBackupManager()
}

func init() {
	root.RootCmd.AddCommand(backupCmd)

	backupCmd.Example = backupExample
}
