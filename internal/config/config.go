package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"devenv-keeper/internal/env"

	"github.com/spf13/viper"
)

/**
 * Server configuration parameters
 * @property {string} address - Server listening address (e.g. ":8099")
 * @property {string} mode - gin mode (debug/release/test)
 * @property {string} socket - Optional unix socket path served next to address
 * @property {int} monitor_interval - Seconds between background global checks, 0 disables them
 */
type ServerConfig struct {
	Address         string `mapstructure:"address"`
	Mode            string `mapstructure:"mode"`
	Socket          string `mapstructure:"socket"`
	MonitorInterval int    `mapstructure:"monitor_interval"`
}

/**
 * Logging configuration
 * @property {string} level - Log level (debug/info/warn/error)
 * @property {string} path - Log directory, "console" disables the file sink
 * @property {int} keep_days - Age after which log files are removed
 */
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Path     string `mapstructure:"path"`
	KeepDays int    `mapstructure:"keep_days"`
}

// PathsConfig locations of the development environment on disk
type PathsConfig struct {
	GlobalDir string `mapstructure:"global_dir"`
	SitesDir  string `mapstructure:"sites_dir"`
	BackupDir string `mapstructure:"backup_dir"`
	EnvFile   string `mapstructure:"env_file"`
}

// GlobalConfig names of the shared containers, networks and endpoints
type GlobalConfig struct {
	ProxyContainer    string `mapstructure:"proxy_container"`
	DatabaseContainer string `mapstructure:"database_container"`
	AdminContainer    string `mapstructure:"admin_container"`
	ProxyNetwork      string `mapstructure:"proxy_network"`
	PublicNetwork     string `mapstructure:"public_network"`
	ProxyAPIURL       string `mapstructure:"proxy_api_url"`
	DatabaseHost      string `mapstructure:"database_host"`
	DatabasePort      int    `mapstructure:"database_port"`
	AdminURL          string `mapstructure:"admin_url"`
}

// ProjectConfig layout conventions of a project directory
type ProjectConfig struct {
	ComposeFile string `mapstructure:"compose_file"`
	EnvFile     string `mapstructure:"env_file"`
	SiteMarker  string `mapstructure:"site_marker"`
	WebSuffix   string `mapstructure:"web_suffix"`
	AppSuffix   string `mapstructure:"app_suffix"`
	URLScheme   string `mapstructure:"url_scheme"`
}

// BackupConfig how the backup container is driven
type BackupConfig struct {
	Container      string `mapstructure:"container"`
	Service        string `mapstructure:"service"`
	Script         string `mapstructure:"script"`
	SettleDelay    int    `mapstructure:"settle_delay"`
	ReportPrefix   string `mapstructure:"report_prefix"`
	LogFile        string `mapstructure:"log_file"`
	RemoteDir      string `mapstructure:"remote_dir"`
	RestoreCommand string `mapstructure:"restore_command"`
	RecentCount    int    `mapstructure:"recent_count"`
	RestoreChoices int    `mapstructure:"restore_choices"`
}

// ToolConfig one toolchain entry checked by diagnose
type ToolConfig struct {
	Name    string   `mapstructure:"name"`
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

type DiagnosticsConfig struct {
	Tools []ToolConfig `mapstructure:"tools"`
	Ports []int        `mapstructure:"ports"`
}

// ProbeConfig probe budgets in seconds
type ProbeConfig struct {
	HTTPTimeout int    `mapstructure:"http_timeout"`
	PortTimeout int    `mapstructure:"port_timeout"`
	DockerHost  string `mapstructure:"docker_host"`
}

type AppConfig struct {
	Server      ServerConfig      `mapstructure:"server"`
	Log         LogConfig         `mapstructure:"log"`
	Paths       PathsConfig       `mapstructure:"paths"`
	Global      GlobalConfig      `mapstructure:"global"`
	Project     ProjectConfig     `mapstructure:"project"`
	Backup      BackupConfig      `mapstructure:"backup"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Probe       ProbeConfig       `mapstructure:"probe"`
}

// MetricsConfig destination of the metrics command
type MetricsConfig struct {
	Pushgateway string `mapstructure:"pushgateway"`
	Job         string `mapstructure:"job"`
}

// MinDiskMB free space below which diagnose recommends cleaning up
const MinDiskMB = 1000

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "127.0.0.1:8099")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.socket", "")
	v.SetDefault("server.monitor_interval", 300)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", filepath.Join(env.KeeperDir, "logs"))
	v.SetDefault("log.keep_days", 7)

	v.SetDefault("paths.global_dir", "~/devenv-global")
	v.SetDefault("paths.sites_dir", "~/sites")
	v.SetDefault("paths.backup_dir", "")
	v.SetDefault("paths.env_file", "")

	v.SetDefault("global.proxy_container", "global-traefik")
	v.SetDefault("global.database_container", "global-mariadb")
	v.SetDefault("global.admin_container", "global-phpmyadmin")
	v.SetDefault("global.proxy_network", "sr-reverse-proxy")
	v.SetDefault("global.public_network", "sr-public_network")
	v.SetDefault("global.proxy_api_url", "http://localhost:8080/api/http/services")
	v.SetDefault("global.database_host", "localhost")
	v.SetDefault("global.database_port", 3306)
	v.SetDefault("global.admin_url", "http://localhost:8092")

	v.SetDefault("project.compose_file", "docker-compose.yml")
	v.SetDefault("project.env_file", ".env")
	v.SetDefault("project.site_marker", "<SITE_NAME>")
	v.SetDefault("project.web_suffix", "-nginx")
	v.SetDefault("project.app_suffix", "-phpfpm")
	v.SetDefault("project.url_scheme", "https")

	v.SetDefault("backup.container", "global-backup")
	v.SetDefault("backup.service", "backup")
	v.SetDefault("backup.script", "/usr/local/bin/backup.sh")
	v.SetDefault("backup.settle_delay", 5)
	v.SetDefault("backup.report_prefix", "backup_report_")
	v.SetDefault("backup.log_file", "backup.log")
	v.SetDefault("backup.remote_dir", "/backups")
	v.SetDefault("backup.restore_command",
		"gunzip -c {{quote (printf \"%s/%s\" .RemoteDir .File)}} | mysql -h mariadb -u root -p${MYSQL_ROOT_PASSWORD:-root} {{quote .Database}}")
	v.SetDefault("backup.recent_count", 10)
	v.SetDefault("backup.restore_choices", 20)

	v.SetDefault("metrics.pushgateway", "")
	v.SetDefault("metrics.job", "devenv_keeper")

	v.SetDefault("probe.http_timeout", 10)
	v.SetDefault("probe.port_timeout", 5)
	v.SetDefault("probe.docker_host", "unix:///var/run/docker.sock")
}

/**
 * Fill values that viper defaults cannot express
 * @param {AppConfig} cfg - Unmarshalled configuration
 * @returns {AppConfig} Returns the same configuration with derived values set
 */
func collectConfig(cfg *AppConfig) *AppConfig {
	cfg.Paths.GlobalDir = env.ExpandHome(cfg.Paths.GlobalDir)
	cfg.Paths.SitesDir = env.ExpandHome(cfg.Paths.SitesDir)
	if cfg.Paths.BackupDir == "" {
		cfg.Paths.BackupDir = filepath.Join(cfg.Paths.GlobalDir, "backups")
	}
	cfg.Paths.BackupDir = env.ExpandHome(cfg.Paths.BackupDir)
	if cfg.Paths.EnvFile == "" {
		cfg.Paths.EnvFile = filepath.Join(cfg.Paths.GlobalDir, ".env")
	}
	cfg.Paths.EnvFile = env.ExpandHome(cfg.Paths.EnvFile)
	cfg.Log.Path = env.ExpandHome(cfg.Log.Path)

	if len(cfg.Diagnostics.Tools) == 0 {
		cfg.Diagnostics.Tools = []ToolConfig{
			{Name: "Docker", Command: "docker", Args: []string{"--version"}},
			{Name: "Docker Compose", Command: "docker", Args: []string{"compose", "version"}},
			{Name: "mkcert", Command: "mkcert", Args: []string{"-version"}},
			{Name: "Node.js", Command: "node", Args: []string{"--version"}},
			{Name: "npm", Command: "npm", Args: []string{"--version"}},
		}
	}
	if len(cfg.Diagnostics.Ports) == 0 {
		cfg.Diagnostics.Ports = []int{80, 443, 3306, 8080, 8092}
	}
	return cfg
}

/**
 * Load application configuration
 * @returns {AppConfig} Returns configuration merged from defaults, config.yaml and DEVENV_* variables
 * @description
 * - config.yaml is searched in the working directory and the keeper directory
 * - A missing file is not an error, the defaults apply
 */
func LoadConfig() (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("DEVENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(env.KeeperDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return collectConfig(&cfg), nil
}

// Default configuration built from defaults only, ignoring files and environment
func Default() *AppConfig {
	v := viper.New()
	setDefaults(v)
	var cfg AppConfig
	_ = v.Unmarshal(&cfg)
	return collectConfig(&cfg)
}

func (c *AppConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.Probe.HTTPTimeout) * time.Second
}

func (c *AppConfig) MonitorInterval() time.Duration {
	return time.Duration(c.Server.MonitorInterval) * time.Second
}

func (c *AppConfig) PortTimeout() time.Duration {
	return time.Duration(c.Probe.PortTimeout) * time.Second
}

func (c *AppConfig) SettleDelay() time.Duration {
	return time.Duration(c.Backup.SettleDelay) * time.Second
}

// BackupLogPath host path of the backup container log
func (c *AppConfig) BackupLogPath() string {
	return filepath.Join(c.Paths.BackupDir, c.Backup.LogFile)
}

var Config AppConfig

func init() {
	cfg, err := LoadConfig()
	if err != nil {
		cfg = Default()
	}
	Config = *cfg
}
