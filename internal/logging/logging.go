package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	// LevelDebug is the debug log level
	LevelDebug LogLevel = iota
	// LevelInfo is the info log level
	LevelInfo
	// LevelWarn is the warning log level
	LevelWarn
	// LevelError is the error log level
	LevelError
)

// queueSize bounds the number of lines waiting for the writer goroutine.
const queueSize = 1024

var (
	currentLevel atomic.Int32
	levelOnce    sync.Once

	sinkOnce sync.Once
	queue    chan entry
	dropped  atomic.Int64
)

// entry is either a line to print or a flush marker (done != nil).
type entry struct {
	line string
	done chan struct{}
}

// ParseLevel converts a level name to a LogLevel.
// The second return value is false if the name is not recognized.
func ParseLevel(s string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	}
	return LevelInfo, false
}

// initLevel initializes the log level from environment variables
func initLevel() {
	levelOnce.Do(func() {
		if debug := os.Getenv("DEBUG"); debug != "" {
			switch strings.ToLower(debug) {
			case "1", "true", "yes", "on":
				currentLevel.Store(int32(LevelDebug))
				return
			}
		}

		// Unknown or empty LOG_LEVEL falls back to info
		level, _ := ParseLevel(os.Getenv("LOG_LEVEL"))
		currentLevel.Store(int32(level))
	})
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	initLevel()
	return LogLevel(currentLevel.Load())
}

// SetLevel overrides the level derived from the environment.
func SetLevel(level LogLevel) {
	initLevel()
	currentLevel.Store(int32(level))
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return GetLevel() <= LevelDebug
}

func startSink() {
	sinkOnce.Do(func() {
		queue = make(chan entry, queueSize)
		go func() {
			for e := range queue {
				if e.done != nil {
					close(e.done)
					continue
				}
				log.Print(e.line)
			}
		}()
	})
}

// emit enqueues a formatted line without ever blocking the caller.
func emit(prefix, format string, args ...interface{}) {
	startSink()
	select {
	case queue <- entry{line: prefix + fmt.Sprintf(format, args...)}:
	default:
		dropped.Add(1)
	}
}

// Flush waits until every line queued before the call has been written,
// or until timeout elapses. It returns false on timeout.
func Flush(timeout time.Duration) bool {
	startSink()
	done := make(chan struct{})
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case queue <- entry{done: done}:
	case <-timer.C:
		return false
	}

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

// Dropped returns how many lines were discarded because the queue was full.
func Dropped() int64 {
	return dropped.Load()
}

// SetOutput redirects the underlying logger. Intended for tests and for
// the CLI tools that log to stderr.
func SetOutput(w io.Writer) {
	log.SetOutput(w)
}

// Debug logs a debug message (only if DEBUG=true or LOG_LEVEL=debug)
func Debug(format string, args ...interface{}) {
	if GetLevel() <= LevelDebug {
		emit("[DEBUG] ", format, args...)
	}
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	if GetLevel() <= LevelInfo {
		emit("[INFO] ", format, args...)
	}
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	if GetLevel() <= LevelWarn {
		emit("[WARN] ", format, args...)
	}
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	if GetLevel() <= LevelError {
		emit("[ERROR] ", format, args...)
	}
}

// Fatal flushes pending lines, logs the message synchronously and exits
func Fatal(format string, args ...interface{}) {
	Flush(2 * time.Second)
	log.Fatalf("[FATAL] "+format, args...)
}

// Printf queues a message that is printed regardless of level
func Printf(format string, args ...interface{}) {
	emit("", format, args...)
}

// String returns the string representation of a log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", l)
	}
}
