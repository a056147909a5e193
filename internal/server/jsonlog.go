// jsonlog.go - Structured JSON logging for production environments
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// LogLevel represents the severity of a log entry
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Logger provides structured JSON logging
type Logger struct {
	output     io.Writer
	minLevel   LogLevel
	enableJSON bool
}

// LogEntry represents a structured log entry
type LogEntry struct {
	Level   LogLevel       `json:"level"`
	Time    string         `json:"time"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// DefaultLogger is the global logger instance
var DefaultLogger *Logger

func init() {
	// JSON output is opt-in; plain key=value lines otherwise.
	enableJSON := os.Getenv("DRIFT_LOG_FORMAT") == "json" || os.Getenv("DRIFT_ENV") == "production"

	DefaultLogger = &Logger{
		output:     os.Stdout,
		minLevel:   getLogLevel(),
		enableJSON: enableJSON,
	}
}

// getLogLevel returns the configured log level from environment
func getLogLevel() LogLevel {
	switch os.Getenv("DRIFT_LOG_LEVEL") {
	case "debug":
		return LogLevelDebug
	case "warn":
		return LogLevelWarn
	case "error":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

func (l *Logger) shouldLog(level LogLevel) bool {
	levels := map[LogLevel]int{
		LogLevelDebug: 0,
		LogLevelInfo:  1,
		LogLevelWarn:  2,
		LogLevelError: 3,
	}
	return levels[level] >= levels[l.minLevel]
}

func (l *Logger) log(level LogLevel, msg string, fields map[string]any, err error) {
	if !l.shouldLog(level) {
		return
	}

	if !l.enableJSON {
		if err != nil {
			log.Printf("level=%s msg=%q fields=%v err=%v", level, msg, fields, err)
		} else {
			log.Printf("level=%s msg=%q fields=%v", level, msg, fields)
		}
		return
	}

	entry := LogEntry{
		Level:   level,
		Time:    time.Now().UTC().Format(time.RFC3339),
		Message: msg,
		Fields:  fields,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	b, merr := json.Marshal(entry)
	if merr != nil {
		fmt.Fprintf(l.output, `{"level":"error","msg":"failed to marshal log entry"}`+"\n")
		return
	}
	fmt.Fprintln(l.output, string(b))
}

// Debug logs a debug-level message
func Debug(msg string, fields map[string]any) {
	DefaultLogger.log(LogLevelDebug, msg, fields, nil)
}

// Info logs an info-level message
func Info(msg string, fields map[string]any) {
	DefaultLogger.log(LogLevelInfo, msg, fields, nil)
}

// Warn logs a warning-level message
func Warn(msg string, fields map[string]any) {
	DefaultLogger.log(LogLevelWarn, msg, fields, nil)
}

// Error logs an error-level message with an error cause
func Error(msg string, fields map[string]any, err error) {
	DefaultLogger.log(LogLevelError, msg, fields, err)
}
