package logsink

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"
)

const (
	LevelError = "ERROR"
	LevelInfo  = "INFO"
)

// Logger is the append-only sink failures and informational events are reported to.
type Logger interface {
	LogError(message string)
	LogMessage(message string)
}

// FileLogger appends `[<timestamp>] <LEVEL>: <message>` lines to a file.
// The file is opened per entry so external rotation or deletion is tolerated.
type FileLogger struct {
	path string
	loc  *time.Location
	now  func() time.Time
	mu   sync.Mutex
}

// NewFileLogger creates a FileLogger writing to path with timestamps in the named IANA zone.
func NewFileLogger(path, timezone string) (*FileLogger, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("could not load timezone %q: %w", timezone, err)
	}
	return &FileLogger{path: path, loc: loc, now: time.Now}, nil
}

// SetClock overrides the time source.
func (l *FileLogger) SetClock(now func() time.Time) {
	l.now = now
}

// Path returns the log file path
func (l *FileLogger) Path() string {
	return l.path
}

func (l *FileLogger) LogError(message string) {
	l.write(LevelError, message)
}

func (l *FileLogger) LogMessage(message string) {
	l.write(LevelInfo, message)
}

// Format renders a single log line, without the trailing newline.
func Format(ts time.Time, level, message string) string {
	// Entries are one line each
	message = strings.ReplaceAll(message, "\n", " ")
	return fmt.Sprintf("[%s] %s: %s", ts.Format(time.RFC3339Nano), level, message)
}

func (l *FileLogger) write(level, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := Format(l.now().In(l.loc), level, message)

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		slog.Error("could not open log file", "path", l.path, "error", err)
		return
	}
	defer f.Close()

	if _, err := f.WriteString(line + "\n"); err != nil {
		slog.Error("could not write log file", "path", l.path, "error", err)
	}
}

// Entry is a captured log line
type Entry struct {
	Level   string
	Message string
}

// Memory records entries in memory. Useful in tests and dry runs.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
}

func (m *Memory) LogError(message string) {
	m.add(LevelError, message)
}

func (m *Memory) LogMessage(message string) {
	m.add(LevelInfo, message)
}

func (m *Memory) add(level, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, Entry{Level: level, Message: message})
}

// Entries returns a copy of the recorded entries
func (m *Memory) Entries() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}

// Errors returns the recorded error entries
func (m *Memory) Errors() []Entry {
	var errs []Entry
	for _, e := range m.Entries() {
		if e.Level == LevelError {
			errs = append(errs, e)
		}
	}
	return errs
}
