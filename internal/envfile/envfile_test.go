package envfile

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"devenv-keeper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backupBlock(schedule, days string) (string, []string) {
	return "# Backup settings", []string{
		`BACKUP_SCHEDULE="` + schedule + `"`,
		"BACKUP_RETENTION_DAYS=" + days,
	}
}

var backupKeys = []string{"BACKUP_SCHEDULE", "BACKUP_RETENTION_DAYS"}

func TestReplaceTwiceKeepsOneBlock(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MYSQL_ROOT_PASSWORD=secret\nBACKUP_RETENTION_DAYS=3\n"), 0600))
	s := New(path)

	header, lines := backupBlock("0 2 * * *", "7")
	require.NoError(t, s.Replace(backupKeys, header, lines))
	header, lines = backupBlock("0 */6 * * *", "30")
	require.NoError(t, s.Replace(backupKeys, header, lines))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Equal(t, 1, strings.Count(text, "BACKUP_RETENTION_DAYS="))
	assert.Equal(t, 1, strings.Count(text, "BACKUP_SCHEDULE="))
	assert.Equal(t, 1, strings.Count(text, "# Backup settings"))
	assert.Contains(t, text, "MYSQL_ROOT_PASSWORD=secret")

	values, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, "0 */6 * * *", values["BACKUP_SCHEDULE"])
	assert.Equal(t, "30", values["BACKUP_RETENTION_DAYS"])
	assert.Equal(t, "secret", values["MYSQL_ROOT_PASSWORD"])

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestReplaceCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "global", ".env")
	s := New(path)

	header, lines := backupBlock("0 3 * * *", "14")
	require.NoError(t, s.Replace(backupKeys, header, lines))

	v, err := s.Get("BACKUP_RETENTION_DAYS")
	require.NoError(t, err)
	assert.Equal(t, "14", v)
}

func TestReplaceDoesNotTouchSimilarKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("OLD_BACKUP_SCHEDULE=x\nBACKUP_SCHEDULE_NOTE=y\n"), 0644))
	s := New(path)

	header, lines := backupBlock("0 2 * * *", "7")
	require.NoError(t, s.Replace(backupKeys, header, lines))

	values, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, "x", values["OLD_BACKUP_SCHEDULE"])
	assert.Equal(t, "y", values["BACKUP_SCHEDULE_NOTE"])
}

func TestConcurrentReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	s := New(path)

	var wg sync.WaitGroup
	for _, days := range []string{"1", "2", "3", "4", "5", "6", "7", "8"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			header, lines := backupBlock("0 2 * * *", days)
			assert.NoError(t, s.Replace(backupKeys, header, lines))
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "BACKUP_RETENTION_DAYS="))
}

func TestGetMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := New(filepath.Join(dir, ".env")).Get("SITE_URL")
	assert.ErrorIs(t, err, models.ErrNotFound)

	path := filepath.Join(dir, "project.env")
	require.NoError(t, os.WriteFile(path, []byte("DB_NAME=shop\n"), 0644))
	_, err = New(path).Get("SITE_URL")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestReadSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "SITE_URL=shop.localhost\nBAD-KEY=1\njust words\nexport\nFOO=\"unterminated\nOTHER=2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	s := New(path)

	values, err := s.Read()
	require.NoError(t, err)
	assert.Equal(t, "shop.localhost", values["SITE_URL"])
	assert.Equal(t, "2", values["OTHER"])
	assert.NotContains(t, values, "BAD-KEY")

	url, err := s.Get("SITE_URL")
	require.NoError(t, err)
	assert.Equal(t, "shop.localhost", url)
}

func TestParseReportsSkippedLines(t *testing.T) {
	values, skipped := Parse("A=1\r\nBAD-KEY=1\r\n\r\nB=\"two\"\r\n")

	assert.Equal(t, map[string]string{"A": "1", "B": "two"}, values)
	require.Len(t, skipped, 1)
	assert.Equal(t, 2, skipped[0].Number)
	assert.ErrorIs(t, skipped[0].Err, models.ErrConfigParse)
}

func TestParseWellFormedContent(t *testing.T) {
	values, skipped := Parse("# comment\nexport A=1\nB='x y'\n")

	assert.Empty(t, skipped)
	assert.Equal(t, map[string]string{"A": "1", "B": "x y"}, values)
}
