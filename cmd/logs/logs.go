package logs

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"devenv-keeper/cmd/root"
	"devenv-keeper/internal/config"
	"devenv-keeper/internal/logger"
	"devenv-keeper/internal/utils"
)

var (
	lines  int
	backup bool
	date   string
)

func init() {
	root.RootCmd.AddCommand(Cmd)
	Cmd.Flags().SortFlags = false
	Cmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of lines to show")
	Cmd.Flags().BoolVarP(&backup, "backup", "b", false, "Show the backup container log instead")
	Cmd.Flags().StringVarP(&date, "date", "d", "", "Day of the keeper log (YYYY-MM-DD), today by default")
}

// logPath file shown by the logs command
func logPath(cfg *config.AppConfig, backup bool, date string) (string, error) {
	if backup {
		return cfg.BackupLogPath(), nil
	}
	day := time.Now()
	if date != "" {
		var err error
		if day, err = time.Parse("2006-01-02", date); err != nil {
			return "", fmt.Errorf("invalid date '%s': %w", date, err)
		}
	}
	return filepath.Join(cfg.Log.Path, logger.LogFileName(day)), nil
}

var Cmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the last lines of the keeper or backup log",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		path, err := logPath(&config.Config, backup, date)
		if err != nil {
			root.ReportError("logs", err)
			return
		}
		tail, err := utils.TailLines(path, lines)
		if err != nil {
			root.ReportError("logs", fmt.Errorf("logs not available: %w", err))
			return
		}
		fmt.Printf("=== %s ===\n", path)
		for _, l := range tail {
			fmt.Println(l)
		}
	},
}
