package auditlog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// timestampLayout is ISO-8601 local date-time with sub-second precision,
// matching what the reader accepts.
const timestampLayout = "2006-01-02T15:04:05.000000"

// Logger appends one line per significant action to an unbounded text log:
// "<timestamp> - <message>". It never rewrites or rotates the file.
type Logger struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewLogger returns a logger appending to the file at path. Parent
// directories and the file itself are created on first use.
func NewLogger(path string) *Logger {
	return &Logger{path: path, now: time.Now}
}

// Path returns the location of the log file.
func (l *Logger) Path() string { return l.path }

// EnsureFile creates the parent directory and an empty log file if none
// exists yet.
func (l *Logger) EnsureFile() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", l.path, err)
	}
	return f.Close()
}

// Record appends a single timestamped line. A failure here surfaces to the
// caller; by then the record store has already been rewritten, so the two
// files can diverge on I/O failure. That non-atomicity is accepted.
func (l *Logger) Record(message string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", l.path, err)
	}
	defer f.Close()

	line := l.now().Format(timestampLayout) + " - " + message + "\n"
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append %s: %w", l.path, err)
	}
	return nil
}
