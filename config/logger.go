package config

import (
	"github.com/gookit/slog"
	"github.com/gookit/slog/handler"
)

// Log is the minimal logger interface the rest of the application uses.
// Kept as an interface so tests can swap in a quiet implementation.
type Log interface {
	Debug(args ...any)
	Info(args ...any)
	Warn(args ...any)
	Error(args ...any)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Logger is the process-wide logger instance. It works at info level even
// before InitApp is called.
var Logger Log = NewLogger("info")

// NewLogger builds a gookit/slog JSON logger at the given level name.
func NewLogger(level string) Log {
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
			slog.FieldKeyDatetime: "datetime",
			slog.FieldKeyLevel:    "level",
			slog.FieldKeyMessage:  "message",
		}
		f.TimeFormat = "2006-01-02T15:04:05"
	})
	h.SetFormatter(formatter)

	return slog.NewWithHandlers(h)
}

// Fields carries structured log fields for the WithFields helpers.
type Fields map[string]any

// InfoWithFields emits a JSON log line with top-level structured fields,
// used by the request trace middleware.
func InfoWithFields(msg string, fields Fields) {
	if lg, ok := Logger.(*slog.Logger); ok {
		lg.WithFields(slog.M(fields)).Info(msg)
		return
	}
	Logger.Info(msg)
}

func ErrorWithFields(msg string, fields Fields) {
	if lg, ok := Logger.(*slog.Logger); ok {
		lg.WithFields(slog.M(fields)).Error(msg)
		return
	}
	Logger.Error(msg)
}
