// Package envfile reads and rewrites dotenv files. Rewrites hold an
// exclusive lock on a sidecar file and replace the file by rename.
package envfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"devenv-keeper/internal/logger"
	"devenv-keeper/internal/models"

	"github.com/joho/godotenv"
)

// Store one dotenv file on disk
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) lockPath() string {
	return s.path + ".lock"
}

// Read parses the file, a missing file yields models.ErrNotFound.
// Malformed lines are skipped with a warning.
func (s *Store) Read() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", s.path, models.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	values, skipped := Parse(string(data))
	for _, line := range skipped {
		logger.Warnf("%s: skipping line %d: %v", s.path, line.Number, line.Err)
	}
	return values, nil
}

// SkippedLine a line Parse could not read
type SkippedLine struct {
	Number int
	Err    error
}

/**
 * Parse dotenv content
 * @param {string} content - File content
 * @returns {map} Returns the parsed values
 * @returns {[]SkippedLine} Returns the lines that were dropped
 * @description
 * - Parses the whole content at once, falls back to one line at a time on error
 * - In the fallback each failing line is skipped and wrapped in models.ErrConfigParse
 */
func Parse(content string) (map[string]string, []SkippedLine) {
	if values, err := godotenv.Unmarshal(content); err == nil {
		return values, nil
	}
	values := make(map[string]string)
	var skipped []SkippedLine
	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parsed, err := godotenv.Unmarshal(line)
		if err != nil {
			skipped = append(skipped, SkippedLine{Number: i + 1, Err: fmt.Errorf("%w: %v", models.ErrConfigParse, err)})
			continue
		}
		for k, v := range parsed {
			values[k] = v
		}
	}
	return values, skipped
}

// Get returns one value, models.ErrNotFound when the file or key is absent
func (s *Store) Get(key string) (string, error) {
	values, err := s.Read()
	if err != nil {
		return "", err
	}
	v, ok := values[key]
	if !ok {
		return "", fmt.Errorf("%s in %s: %w", key, s.path, models.ErrNotFound)
	}
	return v, nil
}

func keyPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?` + regexp.QuoteMeta(key) + `[ \t]*=.*(?:\r?\n|$)`)
}

func linePattern(line string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^[ \t]*` + regexp.QuoteMeta(line) + `[ \t]*(?:\r?\n|$)`)
}

/**
 * Replace a block of keys in the file
 * @param {[]string} keys - Keys whose existing lines are removed
 * @param {string} header - Optional comment line removed and re-added with the block
 * @param {[]string} lines - KEY=value lines appended after removal
 * @description
 * - Holds an exclusive flock on <path>.lock for the whole read-modify-write
 * - Writes a temp file in the same directory and renames it over the original
 * - A missing file is created
 */
func (s *Store) Replace(keys []string, header string, lines []string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create env directory: %w", err)
	}
	unlock, err := lockFile(s.lockPath())
	if err != nil {
		return fmt.Errorf("lock %s: %w", s.path, err)
	}
	defer unlock()

	mode := os.FileMode(0644)
	content := ""
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
		data, err := os.ReadFile(s.path)
		if err != nil {
			return fmt.Errorf("read %s: %w", s.path, err)
		}
		content = string(data)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", s.path, err)
	}

	for _, key := range keys {
		content = keyPattern(key).ReplaceAllString(content, "")
	}
	if header != "" {
		content = linePattern(header).ReplaceAllString(content, "")
	}
	content = strings.TrimRight(content, "\r\n")

	var b strings.Builder
	b.WriteString(content)
	if content != "" {
		b.WriteString("\n\n")
	}
	if header != "" {
		b.WriteString(header + "\n")
	}
	for _, l := range lines {
		b.WriteString(l + "\n")
	}

	return writeAtomic(s.path, []byte(b.String()), mode)
}

func writeAtomic(path string, data []byte, mode os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
