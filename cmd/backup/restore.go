package backup

import (
	"context"
	"fmt"
	"io"

	"devenv-keeper/internal/prompt"
	"devenv-keeper/services"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var restoreYes bool

var restoreCmd = &cobra.Command{
	Use:   "restore [file]",
	Short: "Restore a database from a backup file",
	Long:  "Restore the database named by the backup file. Without a file the most recent backups are offered. The database is overwritten, so the action must be confirmed.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		requireDocker()
		file := ""
		if len(args) > 0 {
			file = args[0]
		}
		finish("restore", restoreBackup(context.Background(), manager(), prompter, stdout, file, restoreYes))
	},
}

/**
 * Restore a backup after confirmation
 * @param {string} file - Backup file name, chosen interactively when empty
 * @param {bool} yes - Skip the confirmation
 * @throws
 * - ErrInvalidInput when the file does not follow the naming convention, before anything runs
 * - ErrConfirmationDeclined when the user does not confirm
 */
func restoreBackup(ctx context.Context, m *services.BackupManager, p prompt.Prompter, w io.Writer, file string, yes bool) error {
	if file == "" {
		candidates, err := m.RestoreCandidates()
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			fmt.Fprintln(w, "No backup files found")
			return nil
		}
		options := make([]prompt.Option, len(candidates))
		for i, r := range candidates {
			options[i] = prompt.Option{
				Label: fmt.Sprintf("%s (%s, %s)", r.FileName, humanize.Bytes(uint64(r.SizeBytes)), humanize.Time(r.ModifiedAt)),
				Value: r.FileName,
			}
		}
		if file, err = p.Select("Select the backup to restore", options); err != nil {
			return err
		}
	}

	plan, err := m.PlanRestore(file)
	if err != nil {
		return err
	}
	confirmed := yes
	if !confirmed {
		fmt.Fprintf(w, "⚠️  WARNING: %s\n", plan.Warning)
		if confirmed, err = p.Confirm(fmt.Sprintf("Restore %s into %s?", plan.FileName, plan.Database)); err != nil {
			return err
		}
	}
	if err := m.Execute(ctx, plan, confirmed); err != nil {
		return err
	}
	fmt.Fprintf(w, "✅ Database %s restored from %s\n", plan.Database, plan.FileName)
	return nil
}

func init() {
	restoreCmd.Flags().BoolVarP(&restoreYes, "yes", "y", false, "Do not ask for confirmation")
	backupCmd.AddCommand(restoreCmd)
}

