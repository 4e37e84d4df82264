// Package logger provides structured logging: a rotating file sink plus an
// in-memory ring buffer the tray can surface without re-reading the log
// file from disk.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps *logrus.Logger with rotation and a bounded in-memory buffer.
type Logger struct {
	*logrus.Logger
	logFile     *lumberjack.Logger
	initialized bool
}

var (
	instance *Logger
	once     sync.Once
)

// Get returns the singleton logger instance.
func Get() *Logger {
	once.Do(func() {
		instance = &Logger{Logger: logrus.New()}
	})
	return instance
}

// Init wires the logger's level and output according to the configured
// enabled flag / level string and a size-rotated file under logDir
// (10 MB per file, up to 5 compressed backups kept for at most 7 days;
// files are not rotated by day).
// Passing enabled=false sets the level to PanicLevel, effectively silencing
// everything but a hard crash — matching logging_enabled=false turning
// logging off rather than removing the sink outright.
func (l *Logger) Init(enabled bool, level, logDir string) error {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	if !enabled {
		parsed = logrus.PanicLevel
	}
	l.SetLevel(parsed)

	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	if logDir == "" {
		l.SetOutput(os.Stdout)
		l.initialized = true
		return nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	l.logFile = &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "WinDusky.log"),
		MaxSize:    10,
		MaxBackups: 5,
		MaxAge:     7,
		Compress:   true,
	}
	l.SetOutput(io.MultiWriter(os.Stdout, l.logFile))

	l.initialized = true
	l.Info("logger initialized")
	return nil
}

// Close flushes and closes the rotating file sink, if one is open.
func (l *Logger) Close() {
	if l.logFile != nil {
		l.logFile.Close()
	}
}

// LogEntry is a single buffered log line, kept for the tray's recent-activity view.
type LogEntry struct {
	Timestamp time.Time
	Level     string
	Message   string
}

// LogBuffer is a circular buffer of the most recent log entries.
type LogBuffer struct {
	entries  []LogEntry
	capacity int
	head     int
	count    int
	mu       sync.RWMutex
}

// NewLogBuffer creates a log buffer holding up to capacity entries.
func NewLogBuffer(capacity int) *LogBuffer {
	return &LogBuffer{entries: make([]LogEntry, capacity), capacity: capacity}
}

// Add appends a new entry, overwriting the oldest once full.
func (b *LogBuffer) Add(level, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.entries[b.head] = LogEntry{Timestamp: time.Now(), Level: level, Message: message}
	b.head = (b.head + 1) % b.capacity
	if b.count < b.capacity {
		b.count++
	}
}

// GetAll returns every buffered entry, oldest first.
func (b *LogBuffer) GetAll() []LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.count == 0 {
		return nil
	}
	result := make([]LogEntry, b.count)
	start := (b.head - b.count + b.capacity) % b.capacity
	for i := 0; i < b.count; i++ {
		result[i] = b.entries[(start+i)%b.capacity]
	}
	return result
}

// GetFiltered returns only the buffered entries matching one of levels.
func (b *LogBuffer) GetFiltered(levels ...string) []LogEntry {
	all := b.GetAll()
	if len(levels) == 0 {
		return all
	}
	set := make(map[string]bool, len(levels))
	for _, l := range levels {
		set[l] = true
	}
	var filtered []LogEntry
	for _, e := range all {
		if set[e.Level] {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Clear empties the buffer.
func (b *LogBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.head, b.count = 0, 0
}

// BufferedHook is a logrus hook that mirrors every entry into a LogBuffer.
type BufferedHook struct {
	buffer *LogBuffer
}

// NewBufferedHook creates a hook backed by a buffer of the given capacity.
func NewBufferedHook(capacity int) *BufferedHook {
	return &BufferedHook{buffer: NewLogBuffer(capacity)}
}

// Levels reports that this hook fires for every log level.
func (h *BufferedHook) Levels() []logrus.Level { return logrus.AllLevels }

// Fire records entry into the buffer.
func (h *BufferedHook) Fire(entry *logrus.Entry) error {
	h.buffer.Add(entry.Level.String(), entry.Message)
	return nil
}

// GetBuffer returns the hook's underlying buffer.
func (h *BufferedHook) GetBuffer() *LogBuffer { return h.buffer }

// WithFields is a thin convenience wrapper over logrus.WithFields.
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.Logger.WithFields(fields)
}

// Overlay, Rules, Hotkey, and Magnifier tag a message with the component
// that produced it, matching the teacher's per-subsystem logging helpers.
func (l *Logger) Overlay(format string, args ...interface{}) {
	l.WithField("component", "overlay").Infof(format, args...)
}

func (l *Logger) Rules(format string, args ...interface{}) {
	l.WithField("component", "rules").Infof(format, args...)
}

func (l *Logger) Hotkey(format string, args ...interface{}) {
	l.WithField("component", "hotkey").Infof(format, args...)
}

func (l *Logger) Magnifier(format string, args ...interface{}) {
	l.WithField("component", "magnifier").Infof(format, args...)
}
