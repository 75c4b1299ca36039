// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package mcplog provides leveled logging over the standard log.Logger,
// with optional file rotation for daemon deployments where stdout may be
// reserved for a stdio transport.
package mcplog

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Level is the logging verbosity threshold.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel parses MCP_LOG_LEVEL-style strings ("debug", "info", "warn",
// "error"), defaulting to LevelInfo for an unrecognized value.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger is a leveled wrapper around a standard log.Logger.
type Logger struct {
	level Level
	std   *log.Logger
}

// New returns a Logger writing to w at the given level.
func New(w io.Writer, level Level) *Logger {
	return &Logger{level: level, std: log.New(w, "", log.LstdFlags)}
}

// NewRotating returns a Logger that writes to both os.Stderr (so a stdio
// transport's stdout is never polluted) and a lumberjack-rotated file at
// path. Rotation defaults mirror a conservative daemon footprint: 5 MiB
// per file, one backup retained, backups older than a day discarded.
func NewRotating(path string, level Level) *Logger {
	fileLogger := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    5,
		MaxBackups: 1,
		MaxAge:     1,
		Compress:   false,
	}
	return New(io.MultiWriter(fileLogger, os.Stderr), level)
}

// SetLevel adjusts the logger's threshold.
func (l *Logger) SetLevel(level Level) { l.level = level }

func (l *Logger) log(level Level, tag, format string, v ...any) {
	if l.level > level {
		return
	}
	l.std.Printf(tag+format, v...)
}

func (l *Logger) Debug(format string, v ...any) { l.log(LevelDebug, "DEBUG: ", format, v...) }
func (l *Logger) Info(format string, v ...any)  { l.log(LevelInfo, "", format, v...) }
func (l *Logger) Warn(format string, v ...any)  { l.log(LevelWarn, "WARNING: ", format, v...) }
func (l *Logger) Error(format string, v ...any) { l.log(LevelError, "ERROR: ", format, v...) }

// Fatal logs unconditionally and exits the process.
func (l *Logger) Fatal(format string, v ...any) {
	l.std.Printf("FATAL: "+format, v...)
	os.Exit(1)
}

// CleanupOldLogs removes every rotated log file matching "<baseName>-*.log"
// in dir, including backups the current MaxBackups setting would keep.
func CleanupOldLogs(dir, baseName string) {
	matches, err := filepath.Glob(filepath.Join(dir, baseName+"-*.log"))
	if err != nil {
		return
	}
	for _, f := range matches {
		_ = os.Remove(f)
	}
}

// Default is a process-wide logger used by packages that don't carry their
// own, constructed at package initialization from MCP_LOG_LEVEL.
var Default = New(os.Stderr, ParseLevel(os.Getenv("MCP_LOG_LEVEL")))

// Discard returns a Logger that drops everything, for tests.
func Discard() *Logger {
	return New(io.Discard, LevelError+1)
}
