package backup

import (
	"fmt"
	"io"
	"strings"

	"devenv-keeper/cmd/root"
	"devenv-keeper/internal/catalog"
	"devenv-keeper/internal/config"
	"devenv-keeper/internal/models"
	"devenv-keeper/services"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// perGroup records shown per database unless --all is given
const perGroup = 5

var (
	listRecent bool
	listAll    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups grouped by database",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		format, err := services.ParseFormat(root.Format)
		if err != nil {
			finish("list", err)
			return
		}
		finish("list", listBackups(manager(), stdout, format, listRecent, listAll))
	},
}

func renderRecords(w io.Writer, records []models.BackupRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Database", "File", "Size", "Modified"})
	for _, r := range records {
		t.AppendRow(table.Row{r.Database, r.FileName, humanize.Bytes(uint64(r.SizeBytes)),
			r.ModifiedAt.Format("2006-01-02 15:04:05")})
	}
	t.Render()
}

func renderGroups(w io.Writer, cat *catalog.Catalog, all bool) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Database", "File", "Size", "Modified"})
	for _, g := range cat.Groups() {
		shown := g.Records
		if !all && len(shown) > perGroup {
			shown = shown[:perGroup]
		}
		for i, r := range shown {
			db := ""
			if i == 0 {
				db = g.Database
			}
			t.AppendRow(table.Row{db, r.FileName, humanize.Bytes(uint64(r.SizeBytes)), humanize.Time(r.ModifiedAt)})
		}
		if hidden := len(g.Records) - len(shown); hidden > 0 {
			t.AppendRow(table.Row{"", fmt.Sprintf("... and %d more", hidden), "", ""})
		}
		t.AppendSeparator()
	}
	sum := cat.Summary()
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d files", sum.Count), humanize.Bytes(uint64(sum.TotalBytes)), ""})
	t.Render()
}

/**
 * Print the backup catalog
 * @param {Writer} w - Destination
 * @param {Format} format - text renders a table, json and yaml encode groups and summary
 * @param {bool} recent - Only the most recent backups across all databases
 * @param {bool} all - Every record of every database instead of the newest five
 */
func listBackups(m *services.BackupManager, w io.Writer, format services.Format, recent, all bool) error {
	cat, err := m.List()
	if err != nil {
		return err
	}
	if recent {
		records := cat.Recent(config.Config.Backup.RecentCount)
		return services.Encode(w, records, format, func() string {
			if len(records) == 0 {
				return "No backup files found\n"
			}
			var b strings.Builder
			renderRecords(&b, records)
			return b.String()
		})
	}
	out := struct {
		Groups  []models.BackupGroup `json:"groups" yaml:"groups"`
		Summary models.BackupSummary `json:"summary" yaml:"summary"`
	}{cat.Groups(), cat.Summary()}
	return services.Encode(w, out, format, func() string {
		if cat.Len() == 0 {
			return "No backup files found in " + cat.Dir + "\n"
		}
		var b strings.Builder
		renderGroups(&b, cat, all)
		return b.String()
	})
}

func init() {
	listCmd.Flags().BoolVarP(&listRecent, "recent", "r", false, "Only the most recent backups across all databases")
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "Every backup of every database")
	backupCmd.AddCommand(listCmd)
}
