// Package catalog reads the backups directory. It never modifies files.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"devenv-keeper/internal/models"
)

var ErrBackupDirNotFound = errors.New("backup directory not found")

// DefaultReportPrefix prefix of the reports written by the backup script
const DefaultReportPrefix = "backup_report_"

var fileNamePattern = regexp.MustCompile(`^(.+)_(\d{8}_\d{6})\.sql\.gz$`)

/**
 * Split a backup file name into database and timestamp
 * @param {string} name - File name, e.g. app_20240102_020000.sql.gz
 * @returns {string} Returns the database name
 * @returns {string} Returns the YYYYMMDD_HHMMSS timestamp
 * @returns {bool} Returns false when the name does not follow the convention
 */
func ParseFileName(name string) (database, timestamp string, ok bool) {
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// FileName builds the backup file name for database and timestamp
func FileName(database, timestamp string) string {
	return database + "_" + timestamp + ".sql.gz"
}

// Catalog backup records, newest first
type Catalog struct {
	Dir     string
	records []models.BackupRecord
}

// New sorts records by modification time, newest first
func New(dir string, records []models.BackupRecord) *Catalog {
	sorted := append([]models.BackupRecord(nil), records...)
	sortNewestFirst(sorted)
	return &Catalog{Dir: dir, records: sorted}
}

func sortNewestFirst(records []models.BackupRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].ModifiedAt.Equal(records[j].ModifiedAt) {
			return records[i].ModifiedAt.After(records[j].ModifiedAt)
		}
		return records[i].FileName > records[j].FileName
	})
}

/**
 * Scan the backups directory
 * @param {string} dir - Flat directory holding *.sql.gz dumps
 * @returns {Catalog} Returns the records of every conforming file
 * @throws
 * - ErrBackupDirNotFound when dir does not exist
 */
func Scan(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", dir, ErrBackupDirNotFound)
		}
		return nil, fmt.Errorf("read backup directory: %w", err)
	}

	var records []models.BackupRecord
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		db, ts, ok := ParseFileName(e.Name())
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		records = append(records, models.BackupRecord{
			Database:   db,
			Timestamp:  ts,
			FileName:   e.Name(),
			SizeBytes:  info.Size(),
			ModifiedAt: info.ModTime(),
		})
	}
	return New(dir, records), nil
}

// Records all records, newest first
func (c *Catalog) Records() []models.BackupRecord {
	return append([]models.BackupRecord(nil), c.records...)
}

func (c *Catalog) Len() int {
	return len(c.records)
}

// Groups records by database, databases ascending, records newest first
func (c *Catalog) Groups() []models.BackupGroup {
	byDB := map[string][]models.BackupRecord{}
	for _, r := range c.records {
		byDB[r.Database] = append(byDB[r.Database], r)
	}
	names := make([]string, 0, len(byDB))
	for name := range byDB {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]models.BackupGroup, 0, len(names))
	for _, name := range names {
		groups = append(groups, models.BackupGroup{Database: name, Records: byDB[name]})
	}
	return groups
}

// Recent the n most recent records across all databases
func (c *Catalog) Recent(n int) []models.BackupRecord {
	if n < 0 || n > len(c.records) {
		n = len(c.records)
	}
	return append([]models.BackupRecord(nil), c.records[:n]...)
}

// Latest the most recent record
func (c *Catalog) Latest() (models.BackupRecord, bool) {
	if len(c.records) == 0 {
		return models.BackupRecord{}, false
	}
	return c.records[0], true
}

// Find a record by file name
func (c *Catalog) Find(fileName string) (models.BackupRecord, bool) {
	for _, r := range c.records {
		if r.FileName == fileName {
			return r, true
		}
	}
	return models.BackupRecord{}, false
}

func (c *Catalog) Summary() models.BackupSummary {
	s := models.BackupSummary{Count: len(c.records)}
	for _, r := range c.records {
		s.TotalBytes += r.SizeBytes
	}
	if latest, ok := c.Latest(); ok {
		s.Latest = latest.ModifiedAt
	}
	return s
}

/**
 * Find the newest backup report
 * @param {string} dir - Backups directory
 * @param {string} prefix - Report file prefix, DefaultReportPrefix when empty
 * @returns {string} Returns the report file name
 * @returns {[]byte} Returns the report content
 * @throws
 * - models.ErrNotFound when no report exists
 * - ErrBackupDirNotFound when dir does not exist
 */
func LatestReport(dir, prefix string) (string, []byte, error) {
	if prefix == "" {
		prefix = DefaultReportPrefix
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("%s: %w", dir, ErrBackupDirNotFound)
		}
		return "", nil, fmt.Errorf("read backup directory: %w", err)
	}
	latest := ""
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) && e.Name() > latest {
			latest = e.Name()
		}
	}
	if latest == "" {
		return "", nil, fmt.Errorf("backup report: %w", models.ErrNotFound)
	}
	content, err := os.ReadFile(filepath.Join(dir, latest))
	if err != nil {
		return "", nil, fmt.Errorf("read backup report: %w", err)
	}
	return latest, content, nil
}
