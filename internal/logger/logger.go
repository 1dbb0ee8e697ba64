// Package logger builds the notifier's JSON slog logger. Output goes to a
// size-rotated file:
//
//	<logDir>/system.log
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Rotation limits of system.log.
const (
	maxSizeMB  = 50
	maxBackups = 5
	maxAgeDays = 30
)

// NewSystemLogger creates a JSON slog.Logger that writes to <logDir>/system.log,
// and to console as well when it is non-nil. The returned closer releases the
// log file. The directory is created if it does not exist.
func NewSystemLogger(logDir string, level slog.Level, console io.Writer) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(logDir, 0750); err != nil {
		return nil, nil, fmt.Errorf("creating log directory %q: %w", logDir, err)
	}

	file := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "system.log"),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}

	var w io.Writer = file
	if console != nil {
		w = io.MultiWriter(file, console)
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler), file, nil
}
