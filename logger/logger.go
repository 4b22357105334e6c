// Package logger provides leveled logging for blogapp on top of go-logging,
// with an optional file backend and a small in-memory buffer of recent
// entries that admins can read back over the API.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/op/go-logging"
)

const (
	moduleName       = "blogapp"
	maxLogBufferSize = 2048
	timeFormat       = "2006/01/02 15:04:05"
)

type entry struct {
	time  string
	level logging.Level
	log   string
}

var (
	logger  = logging.MustGetLogger(moduleName)
	logFile *os.File

	mu        sync.Mutex
	logBuffer []entry
)

// ParseLevel converts a textual level ("debug", "info", "warn", "error")
// into a go-logging level. Unknown values fall back to INFO.
func ParseLevel(s string) logging.Level {
	switch s {
	case "debug":
		return logging.DEBUG
	case "notice":
		return logging.NOTICE
	case "warn", "warning":
		return logging.WARNING
	case "error":
		return logging.ERROR
	default:
		return logging.INFO
	}
}

// InitLogger sets up a stderr backend at the given level and, when filePath
// is non-empty, a file backend that always records DEBUG.
func InitLogger(level logging.Level, filePath string) error {
	backends := make([]logging.Backend, 0, 2)

	console := logging.NewBackendFormatter(logging.NewLogBackend(os.Stderr, "", 0), newFormatter())
	leveled := logging.AddModuleLevel(console)
	leveled.SetLevel(level, moduleName)
	backends = append(backends, leveled)

	if filePath != "" {
		if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
			return fmt.Errorf("create log folder: %w", err)
		}
		file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o660)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		if logFile != nil {
			_ = logFile.Close()
		}
		logFile = file
		fileBackend := logging.AddModuleLevel(logging.NewBackendFormatter(logging.NewLogBackend(file, "", 0), newFormatter()))
		fileBackend.SetLevel(logging.DEBUG, moduleName)
		backends = append(backends, fileBackend)
	}

	logger.SetBackend(logging.MultiLogger(backends...))
	return nil
}

func newFormatter() logging.Formatter {
	return logging.MustStringFormatter(`%{time:` + timeFormat + `} %{level:.4s} - %{message}`)
}

// CloseLogger closes the log file, if any.
func CloseLogger() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func Debug(args ...any) {
	logger.Debug(args...)
	addToBuffer(logging.DEBUG, fmt.Sprint(args...))
}

func Debugf(format string, args ...any) {
	logger.Debugf(format, args...)
	addToBuffer(logging.DEBUG, fmt.Sprintf(format, args...))
}

func Info(args ...any) {
	logger.Info(args...)
	addToBuffer(logging.INFO, fmt.Sprint(args...))
}

func Infof(format string, args ...any) {
	logger.Infof(format, args...)
	addToBuffer(logging.INFO, fmt.Sprintf(format, args...))
}

func Warning(args ...any) {
	logger.Warning(args...)
	addToBuffer(logging.WARNING, fmt.Sprint(args...))
}

func Warningf(format string, args ...any) {
	logger.Warningf(format, args...)
	addToBuffer(logging.WARNING, fmt.Sprintf(format, args...))
}

func Error(args ...any) {
	logger.Error(args...)
	addToBuffer(logging.ERROR, fmt.Sprint(args...))
}

func Errorf(format string, args ...any) {
	logger.Errorf(format, args...)
	addToBuffer(logging.ERROR, fmt.Sprintf(format, args...))
}

func addToBuffer(level logging.Level, msg string) {
	mu.Lock()
	defer mu.Unlock()
	if len(logBuffer) >= maxLogBufferSize {
		logBuffer = logBuffer[1:]
	}
	logBuffer = append(logBuffer, entry{
		time:  time.Now().Format(timeFormat),
		level: level,
		log:   msg,
	})
}

// GetLogs returns up to n of the most recent entries at or above the
// severity named by level, newest first.
func GetLogs(n int, level string) []string {
	threshold := ParseLevel(level)

	mu.Lock()
	defer mu.Unlock()

	if n > len(logBuffer) {
		n = len(logBuffer)
	}
	output := make([]string, 0, n)
	for i := len(logBuffer) - 1; i >= 0 && len(output) < n; i-- {
		if logBuffer[i].level <= threshold {
			output = append(output, fmt.Sprintf("%s %s - %s", logBuffer[i].time, logBuffer[i].level, logBuffer[i].log))
		}
	}
	return output
}
