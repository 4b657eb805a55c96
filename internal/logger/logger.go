package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"devenv-keeper/internal/config"

	"github.com/charmbracelet/lipgloss"
)

var (
	defaultLogger *Logger
	exitFunc      = os.Exit
)

// Logger writes JSON lines to the log file and colored lines to the console
type Logger struct {
	mu      *sync.Mutex
	file    *slog.Logger
	console io.Writer
	level   slog.Level
	attrs   []any
}

// GetLogLevelFromString 将字符串转换为日志级别
func GetLogLevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// LogFileName daily log file name
func LogFileName(t time.Time) string {
	return "devenv-" + t.Format("2006-01-02") + ".log"
}

// InitLogger 初始化日志系统, CLI mode
func InitLogger(cfg *config.LogConfig) {
	InitLoggerWithMode(cfg, false)
}

/**
 * Initialize the logging system for the given run mode
 * @param {LogConfig} cfg - Logging configuration
 * @param {bool} isServerMode - true for the HTTP status server, false for CLI commands
 * @description
 * - JSON lines go to <path>/devenv-<date>.log unless path is "console"
 * - Server mode also writes colored lines to stderr
 * - DEVENV_DEBUG=true forces debug level and console output
 */
func InitLoggerWithMode(cfg *config.LogConfig, isServerMode bool) {
	level := GetLogLevelFromString(cfg.Level)
	debug := strings.EqualFold(os.Getenv("DEVENV_DEBUG"), "true")
	if debug {
		level = slog.LevelDebug
	}

	l := &Logger{mu: &sync.Mutex{}, level: level}
	if cfg.Path == "console" || cfg.Path == "" {
		l.console = os.Stderr
	} else {
		if w := setupLogFileOutput(cfg.Path); w != nil {
			h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
			l.file = slog.New(h).With("pid", os.Getpid())
		} else {
			l.console = os.Stderr
		}
		if isServerMode || debug {
			l.console = os.Stderr
		}
	}
	defaultLogger = l
}

// New logger with explicit sinks, either may be nil
func New(file io.Writer, console io.Writer, level slog.Level) *Logger {
	l := &Logger{mu: &sync.Mutex{}, console: console, level: level}
	if file != nil {
		l.file = slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level}))
	}
	return l
}

// SetDefault replaces the package logger
func SetDefault(l *Logger) {
	defaultLogger = l
}

// setupLogFileOutput 设置日志文件输出
func setupLogFileOutput(logDir string) io.Writer {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %v\n", err)
		return nil
	}
	logPath := filepath.Join(logDir, LogFileName(time.Now()))
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		return nil
	}
	return file
}

/**
 * Remove log files older than keepDays
 * @param {string} logDir - Log directory
 * @param {int} keepDays - Age limit in days
 * @returns {int} Returns the number of removed files
 */
func CleanOldLogs(logDir string, keepDays int) (int, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read log directory: %w", err)
	}
	cutoff := time.Now().AddDate(0, 0, -keepDays)
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "devenv-") || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(logDir, name)); err == nil {
			removed++
		}
	}
	return removed, nil
}

// With returns a logger that adds key/value pairs to every entry
func (l *Logger) With(args ...any) *Logger {
	child := *l
	child.attrs = append(append([]any{}, l.attrs...), args...)
	return &child
}

var levelStyles = map[slog.Level]lipgloss.Style{
	slog.LevelDebug: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	slog.LevelInfo:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	slog.LevelWarn:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	slog.LevelError: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
}

func consoleLine(level slog.Level, msg string, attrs []any) string {
	var b strings.Builder
	b.WriteString(levelStyles[level].Render("[" + level.String() + "]"))
	b.WriteString(" ")
	b.WriteString(msg)
	for i := 0; i+1 < len(attrs); i += 2 {
		fmt.Fprintf(&b, " %v=%v", attrs[i], attrs[i+1])
	}
	return b.String()
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	if l == nil || level < l.level {
		return
	}
	attrs := append(append([]any{}, l.attrs...), args...)
	if l.file != nil {
		l.file.Log(context.Background(), level, msg, attrs...)
	}
	if l.console != nil {
		l.mu.Lock()
		fmt.Fprintln(l.console, consoleLine(level, msg, attrs))
		l.mu.Unlock()
	}
}

func (l *Logger) Debug(msg string, args ...any) { l.log(slog.LevelDebug, msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.log(slog.LevelInfo, msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.log(slog.LevelWarn, msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.log(slog.LevelError, msg, args...) }

func sprint(v ...interface{}) string {
	return strings.TrimSuffix(fmt.Sprintln(v...), "\n")
}

// With returns a child of the package logger carrying the given key/value pairs
func With(args ...any) *Logger {
	if defaultLogger == nil {
		return nil
	}
	return defaultLogger.With(args...)
}

// Debug 输出调试日志
func Debug(v ...interface{}) {
	defaultLogger.log(slog.LevelDebug, sprint(v...))
}

// Debugf 输出格式化调试日志
func Debugf(format string, v ...interface{}) {
	defaultLogger.log(slog.LevelDebug, fmt.Sprintf(format, v...))
}

// Info 输出信息日志
func Info(v ...interface{}) {
	defaultLogger.log(slog.LevelInfo, sprint(v...))
}

// Infof 输出格式化信息日志
func Infof(format string, v ...interface{}) {
	defaultLogger.log(slog.LevelInfo, fmt.Sprintf(format, v...))
}

// Warn 输出警告日志
func Warn(v ...interface{}) {
	defaultLogger.log(slog.LevelWarn, sprint(v...))
}

// Warnf 输出格式化警告日志
func Warnf(format string, v ...interface{}) {
	defaultLogger.log(slog.LevelWarn, fmt.Sprintf(format, v...))
}

// Error 输出错误日志
func Error(v ...interface{}) {
	defaultLogger.log(slog.LevelError, sprint(v...))
}

// Errorf 输出格式化错误日志
func Errorf(format string, v ...interface{}) {
	defaultLogger.log(slog.LevelError, fmt.Sprintf(format, v...))
}

// Fatal 输出致命错误日志并退出程序
func Fatal(v ...interface{}) {
	msg := sprint(v...)
	if defaultLogger != nil {
		defaultLogger.log(slog.LevelError, msg)
	}
	fmt.Fprintf(os.Stderr, "FATAL: %s\n", msg)
	exitFunc(1)
}

// Fatalf 输出格式化致命错误日志并退出程序
func Fatalf(format string, v ...interface{}) {
	Fatal(fmt.Sprintf(format, v...))
}
