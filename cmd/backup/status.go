package backup

import (
	"context"
	"fmt"
	"strings"

	"devenv-keeper/cmd/root"
	"devenv-keeper/internal/models"
	"devenv-keeper/services"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the backup subsystem",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		requireDocker()
		format, err := services.ParseFormat(root.Format)
		if err != nil {
			finish("status", err)
			return
		}
		st := manager().Status(context.Background())
		finish("status", services.Encode(stdout, st, format, func() string { return renderStatus(st) }))
	},
}

func renderStatus(st *models.BackupStatus) string {
	var b strings.Builder
	b.WriteString("\n🗄️  BACKUP STATUS\n\n")

	if st.ContainerRunning {
		fmt.Fprintf(&b, "Container: ✅ %s\n", st.ContainerStatus)
	} else if st.ContainerStatus != "" {
		fmt.Fprintf(&b, "Container: ❌ %s\n", st.ContainerStatus)
	} else {
		b.WriteString("Container: ❌ not running\n")
	}

	if st.Config != nil {
		fmt.Fprintf(&b, "Schedule: %s, retention %d days\n", st.Config.Schedule, st.Config.RetentionDays)
	}
	b.WriteString("Cron:\n")
	if st.CrontabError != "" {
		fmt.Fprintf(&b, "  %s\n", st.CrontabError)
	}
	for _, l := range st.Crontab {
		fmt.Fprintf(&b, "  %s\n", l)
	}

	b.WriteString("Recent log:\n")
	if st.LogError != "" {
		fmt.Fprintf(&b, "  %s\n", st.LogError)
	}
	for _, l := range st.RecentLogs {
		fmt.Fprintf(&b, "  %s\n", l)
	}

	if st.CatalogError != "" {
		fmt.Fprintf(&b, "Backups: %s\n", st.CatalogError)
	} else {
		fmt.Fprintf(&b, "Backups: %d files, %s\n", st.Summary.Count, humanize.Bytes(uint64(st.Summary.TotalBytes)))
		if !st.Summary.Latest.IsZero() {
			fmt.Fprintf(&b, "Latest: %s (%s)\n", st.Summary.Latest.Format("2006-01-02 15:04:05"), humanize.Time(st.Summary.Latest))
		}
	}
	return b.String()
}


func init() {
	backupCmd.AddCommand(statusCmd)
}
