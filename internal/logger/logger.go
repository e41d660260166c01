/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package logger provides a configurable logger that can be silenced for MCP integrations.
package logger

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

var current atomic.Pointer[log.Logger]

func init() {
	current.Store(newLogger(os.Stderr, log.WarnLevel))
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Prefix: "cjsresolve",
		Level:  level,
	})
}

// SetOutput configures the logger output destination.
// Use io.Discard to silence all logging.
func SetOutput(w io.Writer) {
	current.Store(newLogger(w, current.Load().GetLevel()))
}

// SetVerbose enables debug output, which traces every filesystem probe.
func SetVerbose(verbose bool) {
	if verbose {
		current.Load().SetLevel(log.DebugLevel)
		return
	}
	current.Load().SetLevel(log.WarnLevel)
}

// Warn logs a warning message.
func Warn(format string, args ...any) {
	current.Load().Warnf(format, args...)
}

// Info logs an informational message.
func Info(format string, args ...any) {
	current.Load().Infof(format, args...)
}

// Debug logs a debug message.
func Debug(format string, args ...any) {
	current.Load().Debugf(format, args...)
}
