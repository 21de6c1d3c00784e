// Package logger provides a structured file logger for engine runs, adapted
// from the teacher's internal/logger.Logger (symbol/interval-scoped file,
// leveled entries, mutex-guarded writes on the standard log package). This
// is ambient observability the driver uses to narrate fills and halts, not
// a CLI.
package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Level string

const (
	LevelInfo       Level = "INFO"
	LevelFill       Level = "FILL"
	LevelSkip       Level = "SKIP"
	LevelWarn       Level = "WARN"
	LevelBankruptcy Level = "BANKRUPTCY"
)

// Logger writes leveled, timestamped lines to a per-run log file.
type Logger struct {
	runID string
	file  *os.File
	log   *log.Logger
	mu    sync.Mutex
}

// New creates a logger writing to <dir>/<runID>.log, creating dir if needed.
func New(dir, runID string) (*Logger, error) {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	path := filepath.Join(dir, runID+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	l := &Logger{
		runID: runID,
		file:  file,
		log:   log.New(file, "", 0),
	}
	l.Log(LevelInfo, "run %s started", runID)
	return l, nil
}

// Log writes one leveled line.
func (l *Logger) Log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	l.log.Printf("[%s] [%s] %s", ts, level, fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) { l.Log(LevelInfo, format, args...) }
func (l *Logger) Fill(format string, args ...interface{}) { l.Log(LevelFill, format, args...) }
func (l *Logger) Skip(format string, args ...interface{}) { l.Log(LevelSkip, format, args...) }
func (l *Logger) Warn(format string, args ...interface{}) { l.Log(LevelWarn, format, args...) }

// Bankruptcy logs the bankruptcy marker described in spec.md §4.5.
func (l *Logger) Bankruptcy(symbol string, tsMinute int64, equity float64) {
	l.Log(LevelBankruptcy, "equity %.8f at or below the bankruptcy floor at symbol=%s ts=%d, run halted", equity, symbol, tsMinute)
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
