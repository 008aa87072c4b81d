package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Category  string `json:"category"`
	Message   string `json:"message"`
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
}

type Options struct {
	// Level is one of debug, info, warn, error.
	Level string
	// Dir enables JSON-lines output to <Dir>/airport-<date>.log.
	Dir   string
	Color bool
	Out   io.Writer
}

type Logger struct {
	mu           sync.Mutex
	out          io.Writer
	logFile      *os.File
	minLevel     LogLevel
	colorEnabled bool
	exit         func(int)
}

func New(opts Options) (*Logger, error) {
	l := &Logger{
		out:          opts.Out,
		minLevel:     ParseLevel(opts.Level),
		colorEnabled: opts.Color,
		exit:         os.Exit,
	}
	if l.out == nil {
		l.out = os.Stdout
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
		name := filepath.Join(opts.Dir, fmt.Sprintf("airport-%s.log", time.Now().Format("2006-01-02")))
		f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		l.logFile = f
	}
	return l, nil
}

// Discard returns a logger that writes nowhere.
func Discard() *Logger {
	return &Logger{out: io.Discard, minLevel: FATAL + 1, exit: os.Exit}
}

func ParseLevel(s string) LogLevel {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

func (l *Logger) log(level LogLevel, category, message string) {
	if l == nil || level < l.minLevel {
		return
	}

	_, file, line, ok := runtime.Caller(2)
	if ok {
		file = filepath.Base(file)
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Level:     levelToString(level),
		Category:  strings.ToUpper(category),
		Message:   message,
		File:      file,
		Line:      line,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprint(l.out, l.formatTerminalOutput(entry))
	if l.logFile != nil {
		if data, err := json.Marshal(entry); err == nil {
			l.logFile.Write(append(data, '\n'))
		}
	}
}

func (l *Logger) formatTerminalOutput(entry LogEntry) string {
	timestamp := entry.Timestamp[11:19]

	var levelColor *color.Color
	switch entry.Level {
	case "DEBUG":
		levelColor = color.New(color.FgCyan)
	case "INFO":
		levelColor = color.New(color.FgGreen)
	case "WARN":
		levelColor = color.New(color.FgYellow)
	default:
		levelColor = color.New(color.FgRed, color.Bold)
	}
	categoryColor := color.New(color.Bold)
	fileColor := color.New(color.FgMagenta)
	timeColor := color.New(color.FgBlue)

	if !l.colorEnabled {
		for _, c := range []*color.Color{levelColor, categoryColor, fileColor, timeColor} {
			c.DisableColor()
		}
	}

	out := fmt.Sprintf("%s %s %s %s",
		timeColor.Sprint(timestamp),
		levelColor.Sprintf("%-5s", entry.Level),
		categoryColor.Sprintf("[%-10s]", entry.Category),
		entry.Message,
	)
	if entry.File != "" && entry.Line > 0 {
		out += fileColor.Sprintf(" (%s:%d)", entry.File, entry.Line)
	}
	return out + "\n"
}

func levelToString(level LogLevel) string {
	switch level {
	case DEBUG:
		return "DEBUG"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "INFO"
	}
}

func (l *Logger) Debug(category, message string) { l.log(DEBUG, category, message) }
func (l *Logger) Info(category, message string)  { l.log(INFO, category, message) }
func (l *Logger) Warn(category, message string)  { l.log(WARN, category, message) }
func (l *Logger) Error(category, message string) { l.log(ERROR, category, message) }

func (l *Logger) Fatal(category, message string) {
	l.log(FATAL, category, message)
	l.exit(1)
}

func (l *Logger) Infof(category, format string, args ...any) {
	l.log(INFO, category, fmt.Sprintf(format, args...))
}

func (l *Logger) Warnf(category, format string, args ...any) {
	l.log(WARN, category, fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(category, format string, args ...any) {
	l.log(ERROR, category, fmt.Sprintf(format, args...))
}

func (l *Logger) LogAPI(method, path string, status int, duration time.Duration) {
	l.log(INFO, "API", fmt.Sprintf("%s %s - %d (%s)", method, path, status, duration))
}

func (l *Logger) LogOrder(action string, orderID int64, message string) {
	l.log(INFO, "ORDER", fmt.Sprintf("[%s] %d - %s", action, orderID, message))
}

func (l *Logger) LogKafka(action, topic, message string) {
	l.log(INFO, "KAFKA", fmt.Sprintf("[%s] %s - %s", action, topic, message))
}

func (l *Logger) Close() {
	if l != nil && l.logFile != nil {
		l.logFile.Close()
	}
}
