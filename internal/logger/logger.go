package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

// Level represents logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

var levelColors = map[Level]string{
	DEBUG: "\033[36m", // Cyan
	INFO:  "\033[32m", // Green
	WARN:  "\033[33m", // Yellow
	ERROR: "\033[31m", // Red
	FATAL: "\033[35m", // Magenta
}

const (
	colorReset      = "\033[0m"
	timestampFormat = "2006-01-02 15:04:05.000"
)

// String returns the upper-case level name
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// Logger writes leveled, structured log lines for one component.
// A nil *Logger is valid and discards everything.
type Logger struct {
	mu          *sync.Mutex
	level       Level
	output      io.Writer
	component   string
	format      string // "text" or "json"
	colorOutput bool
	fields      Fields
	now         func() time.Time
}

// Fields represents structured logging fields
type Fields map[string]interface{}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init initializes the default logger
func Init(level, format string, component string) {
	once.Do(func() {
		defaultLogger = New(level, format, component)
	})
}

// New creates a logger writing to stderr
func New(levelStr, format, component string) *Logger {
	return NewWithOutput(os.Stderr, levelStr, format, component)
}

// NewWithOutput creates a logger writing to w. Color is only used for text
// output on a terminal.
func NewWithOutput(w io.Writer, levelStr, format, component string) *Logger {
	format = strings.ToLower(format)
	if format != "json" {
		format = "text"
	}

	return &Logger{
		mu:          &sync.Mutex{},
		level:       ParseLevel(levelStr),
		output:      w,
		component:   component,
		format:      format,
		colorOutput: format == "text" && isTerminal(w),
		now:         time.Now,
	}
}

// Discard returns a logger that drops every message
func Discard() *Logger {
	return NewWithOutput(io.Discard, "fatal", "text", "")
}

// WithComponent returns a copy of the logger tagged with a different component
func (l *Logger) WithComponent(component string) *Logger {
	if l == nil {
		return nil
	}
	c := l.clone()
	c.component = component
	return c
}

// WithFields returns a copy of the logger that adds fields to every line
func (l *Logger) WithFields(fields Fields) *Logger {
	if l == nil {
		return nil
	}
	c := l.clone()
	c.fields = mergeFields(l.fields, fields)
	return c
}

// Enabled reports whether messages at level would be written
func (l *Logger) Enabled(level Level) bool {
	return l != nil && level >= l.level
}

// Debug logs a debug message
func (l *Logger) Debug(msg string, fields ...Fields) {
	l.log(DEBUG, msg, fields)
}

// Info logs an info message
func (l *Logger) Info(msg string, fields ...Fields) {
	l.log(INFO, msg, fields)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string, fields ...Fields) {
	l.log(WARN, msg, fields)
}

// Error logs an error message
func (l *Logger) Error(msg string, fields ...Fields) {
	l.log(ERROR, msg, fields)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(msg string, fields ...Fields) {
	l.log(FATAL, msg, fields)
	os.Exit(1)
}

func (l *Logger) clone() *Logger {
	c := *l
	return &c
}

func (l *Logger) log(level Level, msg string, fields []Fields) {
	if !l.Enabled(level) {
		return
	}

	all := mergeFields(append([]Fields{l.fields}, fields...)...)
	timestamp := l.now().Format(timestampFormat)

	var line string
	if l.format == "json" {
		line = l.formatJSON(timestamp, level, msg, all)
	} else {
		line = l.formatText(timestamp, level, msg, all)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprint(l.output, line)
}

// formatText renders: [TIMESTAMP] LEVEL [COMPONENT] message key=value ...
func (l *Logger) formatText(timestamp string, level Level, msg string, fields Fields) string {
	var b strings.Builder

	if l.colorOutput {
		b.WriteString(levelColors[level])
	}
	fmt.Fprintf(&b, "[%s] %-5s", timestamp, level)
	if l.colorOutput {
		b.WriteString(colorReset)
	}

	if l.component != "" {
		fmt.Fprintf(&b, " [%s]", l.component)
	}
	b.WriteString(" ")
	b.WriteString(msg)

	for _, k := range sortedKeys(fields) {
		fmt.Fprintf(&b, " %s=%v", k, fieldValue(fields[k]))
	}

	b.WriteString("\n")
	return b.String()
}

func (l *Logger) formatJSON(timestamp string, level Level, msg string, fields Fields) string {
	entry := make(map[string]interface{}, len(fields)+5)
	for k, v := range fields {
		entry[k] = fieldValue(v)
	}
	entry["timestamp"] = timestamp
	entry["level"] = level.String()
	entry["message"] = msg
	if l.component != "" {
		entry["component"] = l.component
	}

	// Caller of Error/Fatal: runtime.Caller -> formatJSON -> log -> Error -> caller
	if level >= ERROR {
		if _, file, line, ok := runtime.Caller(3); ok {
			entry["caller"] = fmt.Sprintf("%s:%d", file, line)
		}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		data, _ = json.Marshal(map[string]string{
			"timestamp": timestamp,
			"level":     level.String(),
			"message":   msg,
			"log_error": err.Error(),
		})
	}
	return string(data) + "\n"
}

// ParseLevel converts a level name to a Level, defaulting to INFO
func ParseLevel(levelStr string) Level {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// fieldValue makes errors and stringers readable in both formats
func fieldValue(v interface{}) interface{} {
	switch val := v.(type) {
	case error:
		return val.Error()
	case fmt.Stringer:
		return val.String()
	default:
		return v
	}
}

func mergeFields(fields ...Fields) Fields {
	result := Fields{}
	for _, f := range fields {
		for k, v := range f {
			result[k] = v
		}
	}
	return result
}

func sortedKeys(fields Fields) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Default logger convenience functions
func Debug(msg string, fields ...Fields) {
	if defaultLogger != nil {
		defaultLogger.Debug(msg, fields...)
	} else {
		log.Printf("[DEBUG] %s", msg)
	}
}

func Info(msg string, fields ...Fields) {
	if defaultLogger != nil {
		defaultLogger.Info(msg, fields...)
	} else {
		log.Printf("[INFO] %s", msg)
	}
}

func Warn(msg string, fields ...Fields) {
	if defaultLogger != nil {
		defaultLogger.Warn(msg, fields...)
	} else {
		log.Printf("[WARN] %s", msg)
	}
}

func Error(msg string, fields ...Fields) {
	if defaultLogger != nil {
		defaultLogger.Error(msg, fields...)
	} else {
		log.Printf("[ERROR] %s", msg)
	}
}

func Fatal(msg string, fields ...Fields) {
	if defaultLogger != nil {
		defaultLogger.Fatal(msg, fields...)
	} else {
		log.Fatalf("[FATAL] %s", msg)
	}
}

// GetDefault returns the default logger, or a discarding one before Init
func GetDefault() *Logger {
	if defaultLogger == nil {
		return Discard()
	}
	return defaultLogger
}
