package logger

import (
	"fmt"
	"os"
	"sync"
)

// Level represents the verbosity level for logging
type Level int

const (
	// LevelSilent means no verbose output
	LevelSilent Level = 0
	// LevelVerbose means standard verbose output (-v)
	LevelVerbose Level = 1
	// LevelDebug means detailed debugging output (-vv)
	LevelDebug Level = 2
)

// Logger handles verbose output at different levels. All output goes to
// stderr so findings on stdout stay pipeable.
type Logger struct {
	level Level
	mu    sync.Mutex
}

// New creates a new logger with the specified verbosity level
func New(level int) *Logger {
	return &Logger{level: Level(level)}
}

// IsVerbose returns true if verbose mode is enabled (-v or -vv)
func (l *Logger) IsVerbose() bool {
	return l.level >= LevelVerbose
}

// IsDebug returns true if debug mode is enabled (-vv)
func (l *Logger) IsDebug() bool {
	return l.level >= LevelDebug
}

// V logs a message at verbose level (-v)
func (l *Logger) V(format string, args ...interface{}) {
	if l.IsVerbose() {
		l.write("[*] ", format, args...)
	}
}

// VV logs a message at debug level (-vv)
func (l *Logger) VV(format string, args ...interface{}) {
	if l.IsDebug() {
		l.write("[VV] ", format, args...)
	}
}

// Info logs an informational message (always shown)
func (l *Logger) Info(format string, args ...interface{}) {
	l.write("[+] ", format, args...)
}

// Error logs an error message (always shown)
func (l *Logger) Error(format string, args ...interface{}) {
	l.write("[!] ", format, args...)
}

// Section logs a section header for debug mode
func (l *Logger) Section(title string) {
	if l.IsDebug() {
		l.write("", "\n[VV] === %s ===", title)
	}
}

// Detail logs an indented detail line for debug mode
func (l *Logger) Detail(format string, args ...interface{}) {
	if l.IsDebug() {
		l.write("[VV]   ", format, args...)
	}
}

func (l *Logger) write(prefix, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(os.Stderr, prefix+format+"\n", args...)
}
