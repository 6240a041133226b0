// Package logging provides run-scoped logging for formpilot components.
// Each process run gets a unique ID; all components append to the same
// run log file under ~/.formpilot/logs while echoing to stdout, since the
// tool's contract is human-readable progress lines on standard output.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger writes leveled, component-tagged log lines.
type Logger struct {
	runID     string
	component string
	file      *os.File
	out       io.Writer
	mu        sync.Mutex
	closeOnce sync.Once
}

var (
	runID     string
	runIDOnce sync.Once

	logDir   string
	initOnce sync.Once
	initErr  error
)

// getRunID returns or creates the ID shared by all loggers in this run.
func getRunID() string {
	runIDOnce.Do(func() {
		runID = uuid.New().String()
	})
	return runID
}

func initLogDirectory() error {
	initOnce.Do(func() {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			initErr = fmt.Errorf("failed to get home directory: %w", err)
			return
		}
		logDir = filepath.Join(homeDir, ".formpilot", "logs")
		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
		}
	})
	return initErr
}

// NewLogger creates a logger for one component. When the log directory or
// file cannot be created the logger degrades to stdout only; that is not
// an error worth failing a submission over, so none is returned.
func NewLogger(component string) *Logger {
	l := &Logger{
		runID:     getRunID(),
		component: component,
		out:       os.Stdout,
	}

	if err := initLogDirectory(); err != nil {
		log.Printf("WARNING: file logging disabled: %v", err)
		return l
	}

	path := filepath.Join(logDir, fmt.Sprintf("%s-formpilot.log", l.runID))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		log.Printf("WARNING: file logging disabled: %v", err)
		return l
	}
	l.file = file
	return l
}

// RunID returns the ID shared by all loggers in this process run.
func (l *Logger) RunID() string {
	return l.runID
}

func (l *Logger) write(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	message := fmt.Sprintf(format, v...)
	fmt.Fprintln(l.out, message)

	if l.file != nil {
		timestamp := time.Now().Format("2006-01-02 15:04:05.000")
		fmt.Fprintf(l.file, "[%s] [%s] [%s] %s\n", timestamp, l.component, level, message)
	}
}

// Infof logs an info-level message.
func (l *Logger) Infof(format string, v ...interface{}) {
	l.write("INFO", format, v...)
}

// Warnf logs a warning-level message.
func (l *Logger) Warnf(format string, v ...interface{}) {
	l.write("WARN", format, v...)
}

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, v ...interface{}) {
	l.write("ERROR", format, v...)
}

// SetOutput redirects the echo stream; used by tests to capture output.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
