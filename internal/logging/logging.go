package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
)

// Level represents a logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	PROGRESS // Special level that always displays
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case PROGRESS:
		return "PROGRESS"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level. Unknown names yield INFO and an error.
func ParseLevel(name string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG, nil
	case "", "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown log level %q", name)
	}
}

// Format represents the log output format
type Format int

const (
	Text Format = iota
	JSON
)

// ParseFormat converts "text" or "json" to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text":
		return Text, nil
	case "json":
		return JSON, nil
	default:
		return Text, fmt.Errorf("unknown log format %q", name)
	}
}

// Logger handles structured logging
type Logger struct {
	out         io.Writer
	level       Level
	format      Format
	lastLogTime time.Time
	logMutex    sync.RWMutex
	fields      map[string]interface{}
}

// LogConfig contains logger configuration
type LogConfig struct {
	Level  Level
	Format Format
}

var (
	defaultLogger = &Logger{
		out:         os.Stdout,
		level:       INFO,
		format:      Text,
		lastLogTime: time.Now(),
		logMutex:    sync.RWMutex{},
	}

	// Color definitions
	debugColor    = color.New(color.FgCyan)
	infoColor     = color.New(color.FgGreen)
	warnColor     = color.New(color.FgYellow)
	errorColor    = color.New(color.FgRed)
	progressColor = color.New(color.FgBlue, color.Bold)
)

// New creates a logger writing to out.
func New(out io.Writer, config LogConfig) *Logger {
	return &Logger{
		out:         out,
		level:       config.Level,
		format:      config.Format,
		lastLogTime: time.Now(),
	}
}

// Configure sets up the default logger
func Configure(config LogConfig) {
	defaultLogger.logMutex.Lock()
	defer defaultLogger.logMutex.Unlock()
	defaultLogger.level = config.Level
	defaultLogger.format = config.Format
}

// SetOutput redirects the default logger.
func SetOutput(out io.Writer) {
	defaultLogger.logMutex.Lock()
	defer defaultLogger.logMutex.Unlock()
	defaultLogger.out = out
}

// SetField attaches a field to every entry written by the default logger.
// The run id is set this way once per invocation.
func SetField(key string, value interface{}) {
	defaultLogger.logMutex.Lock()
	defer defaultLogger.logMutex.Unlock()
	if defaultLogger.fields == nil {
		defaultLogger.fields = make(map[string]interface{})
	}
	defaultLogger.fields[key] = value
}

type logEntry struct {
	Timestamp string                 `json:"timestamp"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Data      interface{}            `json:"data,omitempty"`
}

func (l *Logger) log(level Level, msg string, data interface{}) {
	l.logMutex.Lock()
	defer l.logMutex.Unlock()

	// Always show PROGRESS level, otherwise respect level setting
	if level != PROGRESS && level < l.level {
		return
	}

	if level != PROGRESS {
		l.lastLogTime = time.Now()
	}

	timestamp := time.Now().Format("2006/01/02 15:04:05")

	if l.format == JSON {
		entry := logEntry{
			Timestamp: timestamp,
			Level:     level.String(),
			Message:   msg,
			Fields:    l.fields,
			Data:      data,
		}
		if err := json.NewEncoder(l.out).Encode(entry); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode log entry: %v\n", err)
		}
		return
	}

	var levelColor *color.Color
	switch level {
	case DEBUG:
		levelColor = debugColor
	case INFO:
		levelColor = infoColor
	case WARN:
		levelColor = warnColor
	case ERROR:
		levelColor = errorColor
	case PROGRESS:
		levelColor = progressColor
	default:
		levelColor = infoColor
	}

	levelStr := levelColor.Sprintf("%-5s", level.String())
	fmt.Fprintf(l.out, "%s %s: %s", timestamp, levelStr, msg)
	if len(l.fields) > 0 {
		fmt.Fprintf(l.out, " %+v", l.fields)
	}
	if data != nil {
		fmt.Fprintf(l.out, " %+v", data)
	}
	fmt.Fprintln(l.out)
}

func (l *Logger) Debug(msg string, data ...interface{}) {
	l.log(DEBUG, msg, firstOrNil(data))
}

func (l *Logger) Info(msg string, data ...interface{}) {
	l.log(INFO, msg, firstOrNil(data))
}

func (l *Logger) Warn(msg string, data ...interface{}) {
	l.log(WARN, msg, firstOrNil(data))
}

func (l *Logger) Error(msg string, err error, data ...interface{}) {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	l.log(ERROR, msg, firstOrNil(data))
}

func (l *Logger) Progress(msg string, data interface{}) {
	l.log(PROGRESS, msg, data)
}

// firstOrNil returns the first element of data if present, nil otherwise
func firstOrNil(data []interface{}) interface{} {
	if len(data) > 0 {
		return data[0]
	}
	return nil
}

// RunStart logs the start of a price list run
func (l *Logger) RunStart(runID string, services []string, format string) {
	l.Info("Starting price list run", map[string]interface{}{
		"run_id":   runID,
		"services": services,
		"format":   format,
	})
}

// ServiceStart logs the start of processing for one service
func (l *Logger) ServiceStart(service, source string) {
	l.Info("Processing service", map[string]interface{}{
		"service": service,
		"source":  source,
	})
}

// ServiceComplete logs the outcome of processing one service
func (l *Logger) ServiceComplete(service string, terms, rowErrors int, elapsed time.Duration) {
	l.Info("Service completed", map[string]interface{}{
		"service":    service,
		"terms":      terms,
		"row_errors": rowErrors,
		"duration":   elapsed.Round(time.Millisecond).String(),
	})
}

// ServiceError logs a failed service
func (l *Logger) ServiceError(service string, err error) {
	l.Error("Service failed", err, map[string]interface{}{
		"service": service,
	})
}

// RunComplete logs the completion of a run
func (l *Logger) RunComplete(succeeded, failed, totalTerms int) {
	l.Info("Price list run complete", map[string]interface{}{
		"succeeded":   succeeded,
		"failed":      failed,
		"total_terms": totalTerms,
	})
}

// GetLastLogTime returns the time of the last non-PROGRESS log
func (l *Logger) GetLastLogTime() time.Time {
	l.logMutex.RLock()
	defer l.logMutex.RUnlock()
	return l.lastLogTime
}

// GetLastLogTime returns the time of the last non-PROGRESS log using the default logger
func GetLastLogTime() time.Time {
	return defaultLogger.GetLastLogTime()
}

// Default logger methods
func Debug(msg string, data ...interface{}) {
	defaultLogger.Debug(msg, data...)
}

func Info(msg string, data ...interface{}) {
	defaultLogger.Info(msg, data...)
}

func Warn(msg string, data ...interface{}) {
	defaultLogger.Warn(msg, data...)
}

func Error(msg string, err error, data ...interface{}) {
	defaultLogger.Error(msg, err, data...)
}

func Progress(msg string, data ...interface{}) {
	defaultLogger.Progress(msg, firstOrNil(data))
}

func RunStart(runID string, services []string, format string) {
	defaultLogger.RunStart(runID, services, format)
}

func ServiceStart(service, source string) {
	defaultLogger.ServiceStart(service, source)
}

func ServiceComplete(service string, terms, rowErrors int, elapsed time.Duration) {
	defaultLogger.ServiceComplete(service, terms, rowErrors, elapsed)
}

func ServiceError(service string, err error) {
	defaultLogger.ServiceError(service, err)
}

func RunComplete(succeeded, failed, totalTerms int) {
	defaultLogger.RunComplete(succeeded, failed, totalTerms)
}
