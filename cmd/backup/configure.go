package backup

import (
	"fmt"
	"io"

	"devenv-keeper/internal/models"
	"devenv-keeper/internal/prompt"
	"devenv-keeper/services"

	"github.com/spf13/cobra"
)

var (
	configureSchedule  string
	configureRetention int
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Set the backup schedule and retention",
	Long:  "Store BACKUP_SCHEDULE and BACKUP_RETENTION_DAYS in the global .env. Values not given as flags are asked for.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		finish("configure", configureBackups(manager(), prompter, stdout, configureSchedule, configureRetention))
	},
}

func configureBackups(m *services.BackupManager, p prompt.Prompter, w io.Writer, schedule string, retention int) error {
	var err error
	if schedule == "" {
		options := make([]prompt.Option, len(models.BackupSchedules))
		for i, s := range models.BackupSchedules {
			options[i] = prompt.Option{Label: fmt.Sprintf("%s (%s)", s.Label, s.Cron), Value: s.Cron}
		}
		if schedule, err = p.Select("Backup schedule", options); err != nil {
			return err
		}
	}
	if retention == 0 {
		if retention, err = p.Number("Keep backups for how many days?", defaultRetention,
			models.MinRetentionDays, models.MaxRetentionDays); err != nil {
			return err
		}
	}

	cfg, err := m.Configure(schedule, retention)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "✅ Backup schedule: %s, retention: %d days\n", cfg.Schedule, cfg.RetentionDays)
	fmt.Fprintf(w, "⚠️  %s\n", services.RestartNotice)
	return nil
}

func init() {
	configureCmd.Flags().StringVarP(&configureSchedule, "schedule", "s", "", "Cron expression, one of the supported schedules")
	configureCmd.Flags().IntVarP(&configureRetention, "retention", "r", 0, "Retention in days (1-365)")
	backupCmd.AddCommand(configureCmd)
}
