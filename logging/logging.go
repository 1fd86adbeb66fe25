// Package logging builds the zerolog logger used by the change tracker and
// its command line tool.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	permission = 0664
)

// Build collects logger settings.
type Build struct {
	writer io.Writer
	path   string
	level  zerolog.Level
}

// Logger is a built logger and the file it writes to, if any.
type Logger struct {
	zerolog.Logger
	File *os.File
}

func New() *Build {
	return &Build{level: zerolog.InfoLevel}
}

func (b *Build) FromPath(path string) *Build {
	b.path = path
	return b
}

func (b *Build) FromWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

// WithLevel sets the minimum level by name (trace, debug, info, warn, error).
// Unknown names keep the current level.
func (b *Build) WithLevel(level string) *Build {
	if lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level))); err == nil && lvl != zerolog.NoLevel {
		b.level = lvl
	}
	return b
}

// Make opens the log file when a path is set and returns the logger. Without
// a path or writer it logs to stderr.
func (b *Build) Make() (*Logger, error) {
	out := &Logger{}
	var w io.Writer = os.Stderr
	if b.writer != nil {
		w = b.writer
	}
	if b.path != "" {
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		out.File = f
		w = zerolog.SyncWriter(f)
	}
	out.Logger = zerolog.New(w).Level(b.level).With().Timestamp().Logger()
	return out, nil
}

// Close closes the log file, if one was opened.
func (l *Logger) Close() error {
	if l == nil || l.File == nil {
		return nil
	}
	return l.File.Close()
}
