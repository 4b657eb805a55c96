package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"devenv-keeper/internal/catalog"
	"devenv-keeper/internal/config"
	"devenv-keeper/internal/envfile"
	"devenv-keeper/internal/logger"
	"devenv-keeper/internal/models"
	"devenv-keeper/internal/utils"
)

const (
	ScheduleKey  = "BACKUP_SCHEDULE"
	RetentionKey = "BACKUP_RETENTION_DAYS"
	backupHeader = "# Backup settings"
	logTailLines = 5
)

var databaseNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// RestartNotice printed after the backup configuration changed
const RestartNotice = "restart the global environment to apply the new backup settings"

/**
 * Backup lifecycle of the global environment
 * @property {Runner} runner - Runs docker commands
 * @property {Store} env - Global .env holding the schedule and retention
 * @description
 * - One operation per call, no state is kept between calls
 * - Destructive operations are split into Plan and Execute
 */
type BackupManager struct {
	cfg    *config.AppConfig
	runner utils.Runner
	env    *envfile.Store
	sleep  func(ctx context.Context, d time.Duration) error
	out    io.Writer
}

type BackupOption func(*BackupManager)

// WithSleeper replaces the wait after starting the backup container
func WithSleeper(f func(ctx context.Context, d time.Duration) error) BackupOption {
	return func(m *BackupManager) { m.sleep = f }
}

// WithOutput streams the output of long running commands to w
func WithOutput(w io.Writer) BackupOption {
	return func(m *BackupManager) { m.out = w }
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func NewBackupManager(cfg *config.AppConfig, runner utils.Runner, opts ...BackupOption) *BackupManager {
	m := &BackupManager{
		cfg:    cfg,
		runner: runner,
		env:    envfile.New(cfg.Paths.EnvFile),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var backupManager *BackupManager

func GetBackupManager() *BackupManager {
	if backupManager == nil {
		backupManager = NewBackupManager(&config.Config, utils.NewExecRunner(), WithOutput(os.Stdout))
	}
	return backupManager
}

func (m *BackupManager) docker(args ...string) utils.Command {
	return utils.Command{Name: "docker", Args: args, Dir: m.cfg.Paths.GlobalDir}
}

func (m *BackupManager) exec(args ...string) utils.Command {
	return m.docker(append([]string{"exec", m.cfg.Backup.Container}, args...)...)
}

// ContainerStatus status text of the backup container, empty when it is not running
func (m *BackupManager) ContainerStatus(ctx context.Context) (string, error) {
	out, err := m.runner.Run(ctx, m.docker("ps", "--filter", "name="+m.cfg.Backup.Container, "--format", "{{.Status}}"))
	if err != nil {
		return "", fmt.Errorf("query backup container: %w", err)
	}
	return firstLine(out), nil
}

/**
 * Run a backup now
 * @param {Context} ctx - Cancels the commands
 * @returns {[]BackupRecord} Returns the most recent backups after the run
 * @throws
 * - CommandError when starting the container or the backup script fails, nothing is retried
 */
func (m *BackupManager) Run(ctx context.Context) ([]models.BackupRecord, error) {
	logger.Info("running manual backup")
	status, err := m.ContainerStatus(ctx)
	if err != nil {
		return nil, err
	}
	if status == "" {
		logger.Warnf("backup container %s is not running, starting it", m.cfg.Backup.Container)
		start := m.docker("compose", "up", "-d", m.cfg.Backup.Service)
		start.Stream = m.out
		if _, err := m.runner.Run(ctx, start); err != nil {
			return nil, fmt.Errorf("start backup container: %w", err)
		}
		if err := m.sleep(ctx, m.cfg.SettleDelay()); err != nil {
			return nil, err
		}
	}

	script := m.exec(m.cfg.Backup.Script)
	script.Stream = m.out
	if _, err := m.runner.Run(ctx, script); err != nil {
		return nil, fmt.Errorf("backup script: %w", err)
	}
	logger.Info("backup finished")

	c, err := m.List()
	if err != nil {
		return nil, err
	}
	return c.Recent(m.cfg.Backup.RecentCount), nil
}

// List scans the backups directory
func (m *BackupManager) List() (*catalog.Catalog, error) {
	return catalog.Scan(m.cfg.Paths.BackupDir)
}

/**
 * Latest backup report
 * @returns {string} Returns the report file name, empty when none exists
 * @returns {string} Returns the report content
 * @description
 * - A missing report or directory is not an error, the name is empty and a warning is logged
 */
func (m *BackupManager) Report() (string, string, error) {
	name, content, err := catalog.LatestReport(m.cfg.Paths.BackupDir, m.cfg.Backup.ReportPrefix)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, catalog.ErrBackupDirNotFound) {
			logger.Warnf("no backup report found: %v", err)
			return "", "", nil
		}
		return "", "", err
	}
	return name, string(content), nil
}

// RestoreCandidates most recent backups offered for restore
func (m *BackupManager) RestoreCandidates() ([]models.BackupRecord, error) {
	c, err := m.List()
	if err != nil {
		return nil, err
	}
	return c.Recent(m.cfg.Backup.RestoreChoices), nil
}

/**
 * Validate a restore request
 * @param {string} fileName - Backup file name
 * @returns {DestructivePlan} Returns the plan naming the database that will be overwritten
 * @throws
 * - ErrInvalidInput when the name does not follow the backup naming convention
 */
func (m *BackupManager) PlanRestore(fileName string) (*models.DestructivePlan, error) {
	db, _, ok := catalog.ParseFileName(fileName)
	if !ok || strings.ContainsAny(fileName, "/\\") {
		return nil, fmt.Errorf("cannot determine database from backup '%s': %w", fileName, models.ErrInvalidInput)
	}
	if !databaseNamePattern.MatchString(db) {
		return nil, fmt.Errorf("invalid database name '%s' in backup '%s': %w", db, fileName, models.ErrInvalidInput)
	}
	return &models.DestructivePlan{
		Kind:     models.PlanRestore,
		Database: db,
		FileName: fileName,
		Warning:  fmt.Sprintf("this will OVERWRITE the database \"%s\"", db),
	}, nil
}

func validRetention(days int) error {
	if days < models.MinRetentionDays || days > models.MaxRetentionDays {
		return fmt.Errorf("days must be between %d and %d, got %d: %w",
			models.MinRetentionDays, models.MaxRetentionDays, days, models.ErrInvalidInput)
	}
	return nil
}

// PlanCleanup validates a cleanup of backups older than days
func (m *BackupManager) PlanCleanup(days int) (*models.DestructivePlan, error) {
	if err := validRetention(days); err != nil {
		return nil, err
	}
	return &models.DestructivePlan{
		Kind:          models.PlanCleanup,
		RetentionDays: days,
		Warning:       fmt.Sprintf("backups older than %d days will be deleted", days),
	}, nil
}

/**
 * Execute a destructive plan
 * @param {Context} ctx - Cancels the command
 * @param {DestructivePlan} plan - Plan from PlanRestore or PlanCleanup
 * @param {bool} confirmed - Explicit user confirmation
 * @throws
 * - ErrConfirmationDeclined when not confirmed, nothing is run
 * - CommandError when the command fails
 */
func (m *BackupManager) Execute(ctx context.Context, plan *models.DestructivePlan, confirmed bool) error {
	if plan == nil {
		return fmt.Errorf("no plan: %w", models.ErrInvalidInput)
	}
	if !confirmed {
		logger.Infof("%s cancelled", plan.Kind)
		return models.ErrConfirmationDeclined
	}

	var cmd utils.Command
	switch plan.Kind {
	case models.PlanRestore:
		script, _, err := utils.GetCommandLine(m.cfg.Backup.RestoreCommand, nil, map[string]string{
			"RemoteDir": m.cfg.Backup.RemoteDir,
			"File":      plan.FileName,
			"Database":  plan.Database,
		})
		if err != nil {
			return err
		}
		cmd = m.exec("sh", "-c", script)
		logger.Infof("restoring backup %s into %s", plan.FileName, plan.Database)
	case models.PlanCleanup:
		if err := validRetention(plan.RetentionDays); err != nil {
			return err
		}
		cmd = m.exec("find", m.cfg.Backup.RemoteDir, "-name", "*.sql.gz", "-type", "f",
			"-mtime", "+"+strconv.Itoa(plan.RetentionDays), "-delete")
		logger.Infof("removing backups older than %d days", plan.RetentionDays)
	default:
		return fmt.Errorf("unknown plan '%s': %w", plan.Kind, models.ErrInvalidInput)
	}

	cmd.Stream = m.out
	if _, err := m.runner.Run(ctx, cmd); err != nil {
		return fmt.Errorf("%s: %w", plan.Kind, err)
	}
	return nil
}

/**
 * Store schedule and retention in the global .env
 * @param {string} schedule - One of models.BackupSchedules
 * @param {int} retentionDays - 1 to 365
 * @returns {BackupConfig} Returns the stored configuration
 * @description
 * - Nothing is restarted, the caller shows RestartNotice
 */
func (m *BackupManager) Configure(schedule string, retentionDays int) (*models.BackupConfig, error) {
	if !models.IsValidSchedule(schedule) {
		return nil, fmt.Errorf("unsupported schedule '%s': %w", schedule, models.ErrInvalidInput)
	}
	if err := validRetention(retentionDays); err != nil {
		return nil, err
	}
	lines := []string{
		fmt.Sprintf("%s=\"%s\"", ScheduleKey, schedule),
		fmt.Sprintf("%s=%d", RetentionKey, retentionDays),
	}
	if err := m.env.Replace([]string{ScheduleKey, RetentionKey}, backupHeader, lines); err != nil {
		return nil, fmt.Errorf("save backup settings: %w", err)
	}
	logger.Infof("backup settings saved: schedule=%q retention=%d", schedule, retentionDays)
	return &models.BackupConfig{Schedule: schedule, RetentionDays: retentionDays}, nil
}

// LoadConfig reads schedule and retention back from the global .env
func (m *BackupManager) LoadConfig() (*models.BackupConfig, error) {
	values, err := m.env.Read()
	if err != nil {
		return nil, err
	}
	schedule, ok := values[ScheduleKey]
	if !ok {
		return nil, fmt.Errorf("%s: %w", ScheduleKey, models.ErrNotFound)
	}
	cfg := &models.BackupConfig{Schedule: schedule}
	if raw, ok := values[RetentionKey]; ok {
		days, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%s=%q: %w", RetentionKey, raw, models.ErrConfigParse)
		}
		cfg.RetentionDays = days
	}
	return cfg, nil
}

/**
 * Status of the backup subsystem
 * @param {Context} ctx - Cancels the docker commands
 * @returns {BackupStatus} Returns container, schedule, log tail and catalog summary
 * @description
 * - Every part degrades on its own, a failure is recorded in the matching error field
 */
func (m *BackupManager) Status(ctx context.Context) *models.BackupStatus {
	st := &models.BackupStatus{}

	if status, err := m.ContainerStatus(ctx); err != nil {
		st.ContainerStatus = err.Error()
	} else {
		st.ContainerStatus = status
		st.ContainerRunning = status != ""
	}

	if out, err := m.runner.Run(ctx, m.exec("crontab", "-l")); err != nil {
		st.CrontabError = "cron not configured"
	} else {
		for _, l := range strings.Split(out, "\n") {
			if strings.TrimSpace(l) != "" {
				st.Crontab = append(st.Crontab, strings.TrimSpace(l))
			}
		}
	}

	if cfg, err := m.LoadConfig(); err == nil {
		st.Config = cfg
	}

	if lines, err := utils.TailLines(m.cfg.BackupLogPath(), logTailLines); err != nil {
		st.LogError = "logs not available"
	} else {
		st.RecentLogs = lines
	}

	if c, err := m.List(); err != nil {
		st.CatalogError = err.Error()
	} else {
		st.Summary = c.Summary()
	}
	return st
}
