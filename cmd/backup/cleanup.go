package backup

import (
	"context"
	"fmt"
	"io"

	"devenv-keeper/internal/models"
	"devenv-keeper/internal/prompt"
	"devenv-keeper/services"

	"github.com/spf13/cobra"
)

// defaultRetention offered when the global .env has no retention yet
const defaultRetention = 30

var (
	cleanupDays int
	cleanupYes  bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete backups older than a number of days",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		requireDocker()
		finish("cleanup", cleanupBackups(context.Background(), manager(), prompter, stdout, cleanupDays, cleanupYes))
	},
}

func cleanupBackups(ctx context.Context, m *services.BackupManager, p prompt.Prompter, w io.Writer, days int, yes bool) error {
	if days == 0 {
		def := defaultRetention
		if cfg, err := m.LoadConfig(); err == nil && cfg.RetentionDays > 0 {
			def = cfg.RetentionDays
		}
		var err error
		days, err = p.Number("Delete backups older than how many days?", def, models.MinRetentionDays, models.MaxRetentionDays)
		if err != nil {
			return err
		}
	}

	plan, err := m.PlanCleanup(days)
	if err != nil {
		return err
	}
	confirmed := yes
	if !confirmed {
		fmt.Fprintf(w, "⚠️  WARNING: %s\n", plan.Warning)
		if confirmed, err = p.Confirm("Continue?"); err != nil {
			return err
		}
	}
	if err := m.Execute(ctx, plan, confirmed); err != nil {
		return err
	}
	fmt.Fprintf(w, "✅ Backups older than %d days removed\n", plan.RetentionDays)
	return nil
}

func init() {
	cleanupCmd.Flags().IntVarP(&cleanupDays, "days", "d", 0, "Age in days (1-365), asked when omitted")
	cleanupCmd.Flags().BoolVarP(&cleanupYes, "yes", "y", false, "Do not ask for confirmation")
	backupCmd.AddCommand(cleanupCmd)
}
