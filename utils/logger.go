package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Logger provides leveled, timestamped logging throughout the application.
type Logger struct {
	info    *log.Logger
	warn    *log.Logger
	err     *log.Logger
	debug   *log.Logger
	verbose bool
	mu      sync.Mutex
}

// NewLogger creates a Logger writing to stdout/stderr. Debug output is only
// emitted when verbose is true.
func NewLogger(verbose bool) *Logger {
	return newLogger(os.Stdout, os.Stderr, verbose)
}

// NewLoggerTo creates a Logger that sends every level to w.
func NewLoggerTo(w io.Writer, verbose bool) *Logger {
	return newLogger(w, w, verbose)
}

// NewDiscardLogger returns a Logger that drops everything.
func NewDiscardLogger() *Logger {
	return newLogger(io.Discard, io.Discard, false)
}

func newLogger(out, errOut io.Writer, verbose bool) *Logger {
	flags := 0
	return &Logger{
		info:    log.New(out, "", flags),
		warn:    log.New(out, "", flags),
		err:     log.New(errOut, "", flags),
		debug:   log.New(out, "", flags),
		verbose: verbose,
	}
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) Info(format string, args ...any) {
	l.print(l.info, "\033[32mINFO\033[0m ", format, args...)
}

func (l *Logger) Warn(format string, args ...any) {
	l.print(l.warn, "\033[33mWARN\033[0m ", format, args...)
}

func (l *Logger) Error(format string, args ...any) {
	l.print(l.err, "\033[31mERROR\033[0m", format, args...)
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.print(l.debug, "\033[36mDEBUG\033[0m", format, args...)
}

// Downloads may log from several goroutines.
func (l *Logger) print(dst *log.Logger, level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	dst.Printf("[%s] %s %s\n", l.timestamp(), level, fmt.Sprintf(format, args...))
}
