package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"devenv-keeper/internal/config"
	"devenv-keeper/internal/models"
	"devenv-keeper/internal/prompt"
	"devenv-keeper/internal/utils"
	"devenv-keeper/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	calls []string
}

func (r *recordingRunner) Run(_ context.Context, cmd utils.Command) (string, error) {
	r.calls = append(r.calls, cmd.String())
	return "", nil
}

func newTestManager(t *testing.T, files ...string) (*services.BackupManager, *recordingRunner, *config.AppConfig) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.GlobalDir = root
	cfg.Paths.BackupDir = filepath.Join(root, "backups")
	cfg.Paths.EnvFile = filepath.Join(root, ".env")
	require.NoError(t, os.MkdirAll(cfg.Paths.BackupDir, 0755))

	base := time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC)
	for i, name := range files {
		path := filepath.Join(cfg.Paths.BackupDir, name)
		require.NoError(t, os.WriteFile(path, []byte("backup"), 0644))
		mod := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(path, mod, mod))
	}

	runner := &recordingRunner{}
	m := services.NewBackupManager(cfg, runner,
		services.WithSleeper(func(context.Context, time.Duration) error { return nil }))
	return m, runner, cfg
}

func TestRestoreDeclinedRunsNothing(t *testing.T) {
	m, runner, _ := newTestManager(t, "app_20240101_020000.sql.gz")
	p := &prompt.Scripted{Selections: []string{"app_20240101_020000.sql.gz"}, Confirms: []bool{false}}
	var out bytes.Buffer

	err := restoreBackup(context.Background(), m, p, &out, "", false)

	assert.ErrorIs(t, err, models.ErrConfirmationDeclined)
	assert.Empty(t, runner.calls)
	assert.Len(t, p.Asked, 2)
	assert.Contains(t, out.String(), `OVERWRITE the database "app"`)
}

func TestRestoreConfirmed(t *testing.T) {
	m, runner, _ := newTestManager(t, "app_20240101_020000.sql.gz", "shop_20240102_020000.sql.gz")
	p := &prompt.Scripted{Confirms: []bool{true}}
	var out bytes.Buffer

	require.NoError(t, restoreBackup(context.Background(), m, p, &out, "shop_20240102_020000.sql.gz", false))

	require.Len(t, runner.calls, 1)
	assert.True(t, strings.HasPrefix(runner.calls[0], "docker exec global-backup sh -c"))
	assert.Contains(t, runner.calls[0], "/backups/shop_20240102_020000.sql.gz")
	assert.Contains(t, out.String(), "Database shop restored")
}

func TestRestoreInvalidNameAbortsBeforePrompting(t *testing.T) {
	m, runner, _ := newTestManager(t)
	p := &prompt.Scripted{}

	err := restoreBackup(context.Background(), m, p, &bytes.Buffer{}, "dump.sql", true)

	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Empty(t, runner.calls)
	assert.Empty(t, p.Asked)
}

func TestRestoreWithoutBackups(t *testing.T) {
	m, runner, _ := newTestManager(t)
	var out bytes.Buffer

	require.NoError(t, restoreBackup(context.Background(), m, &prompt.Scripted{}, &out, "", false))
	assert.Contains(t, out.String(), "No backup files found")
	assert.Empty(t, runner.calls)
}

func TestCleanupAsksForDays(t *testing.T) {
	m, runner, _ := newTestManager(t)
	p := &prompt.Scripted{Numbers: []int{14}, Confirms: []bool{true}}

	require.NoError(t, cleanupBackups(context.Background(), m, p, &bytes.Buffer{}, 0, false))
	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0], "-mtime +14 -delete")
}

func TestCleanupDefaultsToStoredRetention(t *testing.T) {
	m, runner, _ := newTestManager(t)
	_, err := m.Configure("0 2 * * *", 7)
	require.NoError(t, err)
	p := &prompt.Scripted{}

	require.NoError(t, cleanupBackups(context.Background(), m, p, &bytes.Buffer{}, 0, true))
	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0], "-mtime +7 ")
	assert.Len(t, p.Asked, 1, "only the number is asked with --yes")
}

func TestCleanupRejectsOutOfRange(t *testing.T) {
	m, runner, _ := newTestManager(t)

	err := cleanupBackups(context.Background(), m, &prompt.Scripted{}, &bytes.Buffer{}, 400, true)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Empty(t, runner.calls)
}

func TestConfigureAsksMissingValues(t *testing.T) {
	m, _, cfg := newTestManager(t)
	p := &prompt.Scripted{Selections: []string{"0 3 * * *"}, Numbers: []int{10}}
	var out bytes.Buffer

	require.NoError(t, configureBackups(m, p, &out, "", 0))

	data, err := os.ReadFile(cfg.Paths.EnvFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `BACKUP_SCHEDULE="0 3 * * *"`)
	assert.Contains(t, string(data), "BACKUP_RETENTION_DAYS=10")
	assert.Contains(t, out.String(), services.RestartNotice)
}

func TestConfigureRejectsUnknownSchedule(t *testing.T) {
	m, _, cfg := newTestManager(t)

	err := configureBackups(m, &prompt.Scripted{}, &bytes.Buffer{}, "* * * * *", 5)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	_, statErr := os.Stat(cfg.Paths.EnvFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestListBackups(t *testing.T) {
	var files []string
	for d := 1; d <= 7; d++ {
		files = append(files, "app_2024010"+string(rune('0'+d))+"_020000.sql.gz")
	}
	files = append(files, "shop_20240109_020000.sql.gz")
	m, _, _ := newTestManager(t, files...)

	var out bytes.Buffer
	require.NoError(t, listBackups(m, &out, services.FormatText, false, false))
	text := out.String()
	assert.Contains(t, text, "app_20240107_020000.sql.gz")
	assert.NotContains(t, text, "app_20240101_020000.sql.gz")
	assert.Contains(t, text, "... and 2 more")
	assert.Contains(t, text, "shop_20240109_020000.sql.gz")
	assert.Contains(t, strings.ToLower(text), "8 files")

	out.Reset()
	require.NoError(t, listBackups(m, &out, services.FormatText, false, true))
	assert.Contains(t, out.String(), "app_20240101_020000.sql.gz")
	assert.NotContains(t, out.String(), "more")

	out.Reset()
	require.NoError(t, listBackups(m, &out, services.FormatJSON, false, false))
	var decoded struct {
		Groups  []models.BackupGroup `json:"groups"`
		Summary models.BackupSummary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	require.Len(t, decoded.Groups, 2)
	assert.Len(t, decoded.Groups[0].Records, 7, "json output is never truncated")
	assert.Equal(t, 8, decoded.Summary.Count)
}

func TestShowReport(t *testing.T) {
	m, _, cfg := newTestManager(t)
	var out bytes.Buffer

	require.NoError(t, showReport(m, &out))
	assert.Contains(t, out.String(), "No backup report found")

	require.NoError(t, os.WriteFile(filepath.Join(cfg.Paths.BackupDir, "backup_report_20240102_020000.txt"), []byte("2 databases\n"), 0644))
	out.Reset()
	require.NoError(t, showReport(m, &out))
	assert.Contains(t, out.String(), "backup_report_20240102_020000.txt")
	assert.Contains(t, out.String(), "2 databases")
}

func TestFinishTreatsDeclineAsSuccess(t *testing.T) {
	var out bytes.Buffer
	old := stdout
	stdout = &out
	t.Cleanup(func() { stdout = old })

	finish("restore", models.ErrConfirmationDeclined)
	assert.Equal(t, "restore cancelled\n", out.String())
}

func TestRenderStatus(t *testing.T) {
	text := renderStatus(&models.BackupStatus{
		ContainerRunning: true,
		ContainerStatus:  "Up 2 hours",
		CrontabError:     "cron not configured",
		LogError:         "logs not available",
		Summary:          models.BackupSummary{Count: 3, TotalBytes: 2048},
	})
	assert.Contains(t, text, "Container: ✅ Up 2 hours")
	assert.Contains(t, text, "cron not configured")
	assert.Contains(t, text, "logs not available")
	assert.Contains(t, text, "Backups: 3 files, 2.0 kB")
}
