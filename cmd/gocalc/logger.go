package main

import (
	"io"
	"log/slog"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// newLogger builds a JSON logger on w, teeing into a rotating file when the
// config asks for one. The returned closer releases that file.
func newLogger(cfg loggerConfig, w io.Writer) (*slog.Logger, io.Closer) {
	opts := &slog.HandlerOptions{
		Level:     logLevelFromString(cfg.LogLevel),
		AddSource: cfg.IncludeSrc,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.SourceKey {
				source, _ := a.Value.Any().(*slog.Source)
				if source != nil {
					source.File = filepath.Base(source.File)
				}
			}
			return a
		},
	}

	var closer io.Closer = nopCloser{}
	if cfg.LogToFile && cfg.Filename != "" {
		logTarget := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize, // megabytes
			MaxAge:     cfg.MaxAge,  // days
			MaxBackups: cfg.MaxBackups,
			Compress:   cfg.CompressOldLogs,
		}
		w = io.MultiWriter(w, logTarget)
		closer = logTarget
	}
	return slog.New(slog.NewJSONHandler(w, opts)), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func logLevelFromString(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
