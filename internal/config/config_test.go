package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "global-traefik", cfg.Global.ProxyContainer)
	assert.Equal(t, "global-mariadb", cfg.Global.DatabaseContainer)
	assert.Equal(t, "global-phpmyadmin", cfg.Global.AdminContainer)
	assert.Equal(t, "sr-reverse-proxy", cfg.Global.ProxyNetwork)
	assert.Equal(t, "sr-public_network", cfg.Global.PublicNetwork)
	assert.Equal(t, 3306, cfg.Global.DatabasePort)
	assert.Equal(t, []int{80, 443, 3306, 8080, 8092}, cfg.Diagnostics.Ports)
	assert.Len(t, cfg.Diagnostics.Tools, 5)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, 5*time.Second, cfg.PortTimeout())
	assert.Equal(t, 5*time.Second, cfg.SettleDelay())
	assert.Equal(t, filepath.Join(cfg.Paths.GlobalDir, "backups"), cfg.Paths.BackupDir)
	assert.Equal(t, filepath.Join(cfg.Paths.GlobalDir, ".env"), cfg.Paths.EnvFile)
}

func TestLoadConfigFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := `
paths:
  global_dir: /srv/global
global:
  proxy_container: edge-proxy
probe:
  http_timeout: 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	t.Setenv("DEVENV_BACKUP_CONTAINER", "edge-backup")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "edge-proxy", cfg.Global.ProxyContainer)
	assert.Equal(t, "/srv/global/backups", cfg.Paths.BackupDir)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, "edge-backup", cfg.Backup.Container)
	assert.Equal(t, "global-mariadb", cfg.Global.DatabaseContainer)
}

func TestLoadConfigRejectsBrokenFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("global: [unclosed"), 0644))

	_, err := LoadConfig()
	assert.Error(t, err)
}
