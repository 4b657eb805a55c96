package models

import "time"

// BackupRecord one database dump file in the backups directory
// @Description Backup file derived from its name and file metadata
type BackupRecord struct {
	Database   string    `json:"database" yaml:"database" example:"app"`
	Timestamp  string    `json:"timestamp" yaml:"timestamp" example:"20240102_020000"`
	FileName   string    `json:"fileName" yaml:"fileName" example:"app_20240102_020000.sql.gz"`
	SizeBytes  int64     `json:"sizeBytes" yaml:"sizeBytes" example:"2048"`
	ModifiedAt time.Time `json:"modifiedAt" yaml:"modifiedAt"`
}

// BackupGroup records of one database, newest first
type BackupGroup struct {
	Database string         `json:"database" yaml:"database"`
	Records  []BackupRecord `json:"records" yaml:"records"`
}

// BackupSummary totals over a catalog
type BackupSummary struct {
	Count      int       `json:"count" yaml:"count"`
	TotalBytes int64     `json:"totalBytes" yaml:"totalBytes"`
	Latest     time.Time `json:"latest,omitempty" yaml:"latest,omitempty"`
}

// BackupConfig schedule and retention stored in the global .env
type BackupConfig struct {
	Schedule      string `json:"schedule" yaml:"schedule" example:"0 2 * * *"`
	RetentionDays int    `json:"retentionDays" yaml:"retentionDays" example:"7"`
}

// ScheduleOption one of the allowed backup schedules
type ScheduleOption struct {
	Cron  string
	Label string
}

// BackupSchedules the cron expressions accepted by configure
var BackupSchedules = []ScheduleOption{
	{Cron: "0 2 * * *", Label: "daily at 02:00"},
	{Cron: "0 3 * * *", Label: "daily at 03:00"},
	{Cron: "0 */6 * * *", Label: "every 6 hours"},
	{Cron: "0 */12 * * *", Label: "every 12 hours"},
	{Cron: "0 2 * * 0", Label: "weekly on Sunday at 02:00"},
}

// IsValidSchedule reports whether cron is one of BackupSchedules
func IsValidSchedule(cron string) bool {
	for _, s := range BackupSchedules {
		if s.Cron == cron {
			return true
		}
	}
	return false
}

const (
	MinRetentionDays = 1
	MaxRetentionDays = 365
)

type PlanKind string

const (
	PlanRestore PlanKind = "restore"
	PlanCleanup PlanKind = "cleanup"
)

// DestructivePlan a validated destructive action waiting for confirmation
type DestructivePlan struct {
	Kind          PlanKind `json:"kind"`
	Database      string   `json:"database,omitempty"`
	FileName      string   `json:"fileName,omitempty"`
	RetentionDays int      `json:"retentionDays,omitempty"`
	Warning       string   `json:"warning"`
}

// BackupStatus state of the backup subsystem, each part filled independently
// @Description Backup container, schedule, log tail and catalog summary
type BackupStatus struct {
	ContainerRunning bool          `json:"containerRunning"`
	ContainerStatus  string        `json:"containerStatus"`
	Crontab          []string      `json:"crontab,omitempty"`
	CrontabError     string        `json:"crontabError,omitempty"`
	Config           *BackupConfig `json:"config,omitempty"`
	RecentLogs       []string      `json:"recentLogs,omitempty"`
	LogError         string        `json:"logError,omitempty"`
	Summary          BackupSummary `json:"summary"`
	CatalogError     string        `json:"catalogError,omitempty"`
}
