// Copyright 2017 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package log defines the small logging capability core-internal packages
// depend on, and a default implementation backed by go-kit/log.
package log

import (
	"fmt"
	"os"

	kitlog "github.com/go-kit/log"
)

// Logger is the leveled logging capability the core accepts from its
// caller. Core packages take a Logger through constructor injection rather
// than reaching for a process-global logger, so a library embedder can
// route output (or silence it) without this module dictating the sink.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Nop is a Logger that discards everything. It is the default when the
// caller supplies none.
var Nop Logger = nopLogger{}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// kitLogger adapts a go-kit/log.Logger to Logger, tagging each line with a
// level key the way go-kit's own examples do.
type kitLogger struct {
	base kitlog.Logger
}

// NewKitLogger returns a Logger backed by go-kit/log that logs through w,
// adding the standard caller/timestamp context go-kit's own examples
// attach. The line format is whatever w produces.
func NewKitLogger(w kitlog.Logger) Logger {
	return &kitLogger{base: kitlog.With(w, "ts", kitlog.DefaultTimestampUTC, "caller", kitlog.DefaultCaller)}
}

// NewStderrLogger is a convenience constructor for the common case: logfmt
// lines to stderr.
func NewStderrLogger() Logger {
	return NewKitLogger(kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr)))
}

func (l *kitLogger) Debugf(format string, args ...interface{}) {
	l.log("debug", format, args...)
}

func (l *kitLogger) Warnf(format string, args ...interface{}) {
	l.log("warn", format, args...)
}

func (l *kitLogger) Errorf(format string, args ...interface{}) {
	l.log("error", format, args...)
}

func (l *kitLogger) log(level, format string, args ...interface{}) {
	l.base.Log("level", level, "msg", fmt.Sprintf(format, args...))
}
