// Package logger provides the structured logger shared by the content engine,
// the HTTP app and the CLI.
package logger

import (
	"strings"

	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Logger is the minimal logging surface used across inkpress.
type Logger interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Fields carries structured key/values for the *WithFields helpers.
type Fields map[string]any

// Log is the process-wide logger. It logs at info until SetLevel replaces it.
var Log Logger = NewLogger("info")

// SetLevel rebuilds Log at the named level, defaulting to info.
func SetLevel(level string) {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = "info"
	}
	Log = NewLogger(level)
}

// NewLogger builds a gookit/slog console logger emitting JSON lines.
func NewLogger(level string) Logger {
	logLevel := slog.LevelByName(level)

	var levels slog.Levels
	for _, lv := range slog.AllLevels {
		if lv <= logLevel {
			levels = append(levels, lv)
		}
	}

	h := handler.NewConsoleHandler(levels)
	formatter := slog.NewJSONFormatter(func(f *slog.JSONFormatter) {
		f.Fields = []string{
			slog.FieldKeyDatetime,
			slog.FieldKeyLevel,
			slog.FieldKeyMessage,
		}
		f.Aliases = slog.StringMap{
			slog.FieldKeyDatetime: "time",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "msg",
		}
		f.TimeFormat = "2006-01-02T15:04:05Z07:00"
	})
	h.SetFormatter(formatter)

	return slog.NewWithHandlers(h)
}

// InfoWithFields logs msg with fields attached when l is a slog logger.
func InfoWithFields(l Logger, msg string, fields Fields) {
	if lg, ok := l.(*slog.Logger); ok {
		lg.WithFields(slog.M(fields)).Info(msg)
		return
	}
	l.Infof("%s %v", msg, map[string]any(fields))
}

// WarnWithFields logs msg at warn level with fields attached.
func WarnWithFields(l Logger, msg string, fields Fields) {
	if lg, ok := l.(*slog.Logger); ok {
		lg.WithFields(slog.M(fields)).Warn(msg)
		return
	}
	l.Warnf("%s %v", msg, map[string]any(fields))
}

// ErrorWithFields logs msg at error level with fields attached.
func ErrorWithFields(l Logger, msg string, fields Fields) {
	if lg, ok := l.(*slog.Logger); ok {
		lg.WithFields(slog.M(fields)).Error(msg)
		return
	}
	l.Errorf("%s %v", msg, map[string]any(fields))
}
