// Package logging builds the application's zerolog logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger at the named level. When file is non-empty, log
// output additionally goes to a size-rotated file; console output stays
// human-readable, the file gets JSON lines.
func New(level string, file string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}

	var out io.Writer = console
	if file != "" {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err == nil {
			out = zerolog.MultiLevelWriter(console, &lumberjack.Logger{
				Filename:   file,
				MaxSize:    100, // MB
				MaxAge:     30,  // days
				MaxBackups: 10,
				Compress:   true,
				LocalTime:  true,
			})
		}
	}

	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
