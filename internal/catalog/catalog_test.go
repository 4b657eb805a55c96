package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"devenv-keeper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBackup(t *testing.T, dir, name string, size int, mod time.Time) {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, make([]byte, size), 0644))
	require.NoError(t, os.Chtimes(p, mod, mod))
}

func TestParseFileName(t *testing.T) {
	db, ts, ok := ParseFileName("app_20240102_020000.sql.gz")
	require.True(t, ok)
	assert.Equal(t, "app", db)
	assert.Equal(t, "20240102_020000", ts)
	assert.Equal(t, "app_20240102_020000.sql.gz", FileName(db, ts))

	db, ts, ok = ParseFileName("my_shop_db_20240102_020000.sql.gz")
	require.True(t, ok)
	assert.Equal(t, "my_shop_db", db)
	assert.Equal(t, FileName(db, ts), "my_shop_db_20240102_020000.sql.gz")

	for _, bad := range []string{
		"app.sql.gz",
		"app_2024_020000.sql.gz",
		"app_20240102_020000.sql",
		"_20240102_020000.sql.gz",
		"backup_report_20240102_020000.txt",
		"app_20240102_020000.sql.gz.tmp",
	} {
		_, _, ok := ParseFileName(bad)
		assert.False(t, ok, bad)
	}
}

func TestScanScenario(t *testing.T) {
	dir := t.TempDir()
	day1 := time.Date(2024, 1, 1, 2, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 2, 2, 0, 0, 0, time.UTC)
	writeBackup(t, dir, "app_20240101_020000.sql.gz", 100, day1)
	writeBackup(t, dir, "app_20240102_020000.sql.gz", 150, day2)
	writeBackup(t, dir, "notes.txt", 10, day2)
	writeBackup(t, dir, "backup_report_20240102_020000.txt", 10, day2)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "old_20240101_020000.sql.gz"), 0755))

	c, err := Scan(dir)
	require.NoError(t, err)

	groups := c.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, "app", groups[0].Database)
	require.Len(t, groups[0].Records, 2)
	assert.Equal(t, "app_20240102_020000.sql.gz", groups[0].Records[0].FileName)
	assert.Equal(t, "app_20240101_020000.sql.gz", groups[0].Records[1].FileName)

	sum := c.Summary()
	assert.Equal(t, 2, sum.Count)
	assert.Equal(t, int64(250), sum.TotalBytes)
	assert.True(t, sum.Latest.Equal(day2))

	latest, ok := c.Latest()
	require.True(t, ok)
	assert.Equal(t, "20240102_020000", latest.Timestamp)
}

func TestGroupsPartitionRecords(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var records []models.BackupRecord
	for i, db := range []string{"shop", "blog", "shop", "crm", "blog", "shop"} {
		ts := base.Add(time.Duration(i) * time.Hour)
		stamp := ts.Format("20060102_150405")
		records = append(records, models.BackupRecord{
			Database: db, Timestamp: stamp, FileName: FileName(db, stamp), ModifiedAt: ts,
		})
	}
	c := New("", records)

	groups := c.Groups()
	var names []string
	total := 0
	seen := map[string]bool{}
	for _, g := range groups {
		names = append(names, g.Database)
		total += len(g.Records)
		for i, r := range g.Records {
			assert.Equal(t, g.Database, r.Database)
			assert.False(t, seen[r.FileName], "record in two groups")
			seen[r.FileName] = true
			if i > 0 {
				assert.False(t, r.ModifiedAt.After(g.Records[i-1].ModifiedAt))
			}
		}
	}
	assert.Equal(t, []string{"blog", "crm", "shop"}, names)
	assert.Equal(t, len(records), total)
}

func TestRecent(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var records []models.BackupRecord
	for i := 0; i < 15; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		records = append(records, models.BackupRecord{Database: "db", FileName: FileName("db", ts.Format("20060102_150405")), ModifiedAt: ts})
	}
	c := New("", records)

	recent := c.Recent(10)
	require.Len(t, recent, 10)
	assert.True(t, recent[0].ModifiedAt.Equal(base.Add(14*time.Hour)))
	assert.Len(t, c.Recent(50), 15)
	assert.Empty(t, New("", nil).Recent(10))
}

func TestScanMissingDir(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrBackupDirNotFound)
}

func TestLatestReport(t *testing.T) {
	dir := t.TempDir()
	_, _, err := LatestReport(dir, "")
	assert.ErrorIs(t, err, models.ErrNotFound)

	now := time.Now()
	writeBackup(t, dir, "backup_report_20240101_020000.txt", 0, now)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "backup_report_20240102_020000.txt"), []byte("2 databases dumped"), 0644))

	name, content, err := LatestReport(dir, DefaultReportPrefix)
	require.NoError(t, err)
	assert.Equal(t, "backup_report_20240102_020000.txt", name)
	assert.Equal(t, "2 databases dumped", string(content))

	_, _, err = LatestReport(filepath.Join(dir, "missing"), "")
	assert.ErrorIs(t, err, ErrBackupDirNotFound)
}
