package utils

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"devenv-keeper/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCommandLine(t *testing.T) {
	data := map[string]string{"File": "app_20240101_020000.sql.gz", "Database": "app"}
	cmd, args, err := GetCommandLine("gunzip -c /backups/{{.File}} | mysql {{quote .Database}}",
		[]string{"{{.Database}}", " fixed "}, data)
	require.NoError(t, err)
	assert.Equal(t, "gunzip -c /backups/app_20240101_020000.sql.gz | mysql 'app'", cmd)
	assert.Equal(t, []string{"app", "fixed"}, args)

	_, _, err = GetCommandLine("{{.Broken", nil, data)
	assert.Error(t, err)
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "''", ShellQuote(""))
	assert.Equal(t, "'a b'", ShellQuote("a b"))
	assert.Equal(t, `'it'"'"'s'`, ShellQuote("it's"))
}

func TestExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	r := NewExecRunner()

	var stream bytes.Buffer
	out, err := r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo hello"}, Stream: &stream})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)
	assert.Equal(t, "hello\n", stream.String())

	out, err = r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "echo boom; exit 3"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrCommandFailed))
	var ce *models.CommandError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 3, ce.ExitCode)
	assert.Equal(t, "boom", out)

	_, err = r.Run(context.Background(), Command{Name: "definitely-not-a-real-binary-xyz"})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, -1, ce.ExitCode)
}

func TestRequireCommands(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
	assert.NoError(t, RequireCommands("sh"))
	err := RequireCommands("sh", "definitely-not-a-real-binary-xyz")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Contains(t, err.Error(), "definitely-not-a-real-binary-xyz")
}

func TestDiskAvailableMB(t *testing.T) {
	mb, err := DiskAvailableMB(t.TempDir())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, mb, int64(0))

	_, err = DiskAvailableMB("/definitely/not/here")
	assert.Error(t, err)
}

func TestTailLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.log")
	require.NoError(t, os.WriteFile(path, []byte("one\ntwo\n\nthree\n\n\nfour\n  \n"), 0644))

	lines, err := TailLines(path, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"three", "four"}, lines)

	lines, err = TailLines(path, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three", "four"}, lines)

	_, err = TailLines(filepath.Join(t.TempDir(), "missing.log"), 2)
	assert.Error(t, err)
}
