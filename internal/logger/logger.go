// internal/logger/logger.go

package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

var (
	levelNames = map[Level]string{
		DEBUG: "DEBUG",
		INFO:  "INFO",
		WARN:  "WARN",
		ERROR: "ERROR",
		FATAL: "FATAL",
	}

	levelColors = map[Level]string{
		DEBUG: "\033[36m",
		INFO:  "\033[32m",
		WARN:  "\033[33m",
		ERROR: "\033[31m",
		FATAL: "\033[35m",
	}

	resetColor = "\033[0m"
)

// Logger writes leveled, printf-style log lines to the console and optionally
// to a file. File output never carries color codes.
type Logger struct {
	level      Level
	mu         sync.Mutex
	consoleOut io.Writer
	fileOut    io.Writer
	logFile    *os.File
	useColors  bool
}

type Config struct {
	Level       Level
	LogFilePath string
	UseColors   bool
}

func New(cfg Config) (*Logger, error) {
	l := &Logger{
		level:      cfg.Level,
		consoleOut: os.Stdout,
		useColors:  cfg.UseColors,
	}

	if cfg.LogFilePath != "" {
		if err := l.setupLogFile(cfg.LogFilePath); err != nil {
			return nil, fmt.Errorf("failed to setup log file: %w", err)
		}
	}

	return l, nil
}

func (l *Logger) setupLogFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	l.logFile = file
	l.fileOut = file
	return nil
}

func (l *Logger) Close() error {
	if l.logFile != nil {
		return l.logFile.Close()
	}
	return nil
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)

	if l.consoleOut != nil {
		levelStr := levelNames[level]
		if l.useColors {
			levelStr = levelColors[level] + "[" + levelNames[level] + "]" + resetColor
		} else {
			levelStr = "[" + levelStr + "]"
		}
		fmt.Fprintf(l.consoleOut, "%s %s | %s\n", levelStr, timestamp, message)
	}

	if l.fileOut != nil {
		fmt.Fprintf(l.fileOut, "%s [%s] %s\n", timestamp, levelNames[level], message)
	}

	if level == FATAL {
		os.Exit(1)
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.log(FATAL, format, args...)
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

func ParseLevel(s string) Level {
	switch s {
	case "debug", "DEBUG":
		return DEBUG
	case "info", "INFO":
		return INFO
	case "warn", "WARN", "warning", "WARNING":
		return WARN
	case "error", "ERROR":
		return ERROR
	case "fatal", "FATAL":
		return FATAL
	default:
		return INFO
	}
}
