// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package log implements context-tagged, verbosity-gated logging. Messages
// are rendered through redact so that the arguments can be marked as
// sensitive; context tags attached with logtags are emitted with every
// entry.
package log

import (
	"context"
	"os"
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/redact"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger     atomic.Pointer[zap.Logger]
	verbosity  atomic.Int32
	redactable atomic.Bool
)

func init() {
	logger.Store(newStderrLogger())
}

func newStderrLogger() *zap.Logger {
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(os.Stderr),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}

// SetLogger installs l as the destination for all log entries and
// returns a function restoring the previous one.
func SetLogger(l *zap.Logger) (restore func()) {
	if l == nil {
		l = zap.NewNop()
	}
	prev := logger.Swap(l)
	return func() { logger.Store(prev) }
}

// SetVerbosity sets the level up to which VEventf emits entries and
// returns a function restoring the previous level.
func SetVerbosity(level int32) (restore func()) {
	prev := verbosity.Swap(level)
	return func() { verbosity.Store(prev) }
}

// SetRedactable controls whether redaction markers are kept in the
// emitted messages.
func SetRedactable(b bool) (restore func()) {
	prev := redactable.Swap(b)
	return func() { redactable.Store(prev) }
}

// V returns true if the logging verbosity is set to the specified level or
// higher.
func V(level int32) bool {
	return verbosity.Load() >= level
}

// Infof logs to the INFO severity.
func Infof(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, zapcore.InfoLevel, format, args)
}

// Warningf logs to the WARNING severity.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, zapcore.WarnLevel, format, args)
}

// Errorf logs to the ERROR severity.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	logf(ctx, zapcore.ErrorLevel, format, args)
}

// VEventf logs at the DEBUG severity if the verbosity is at least
// level.
func VEventf(ctx context.Context, level int32, format string, args ...interface{}) {
	if !V(level) {
		return
	}
	logf(ctx, zapcore.DebugLevel, format, args)
}

func logf(ctx context.Context, lvl zapcore.Level, format string, args []interface{}) {
	l := logger.Load()
	if !l.Core().Enabled(lvl) {
		return
	}
	msg := renderMessage(format, args)
	var fields []zap.Field
	var tags strings.Builder
	if formatTags(ctx, false /* brackets */, &tags) {
		fields = append(fields, zap.String("tags", tags.String()))
	}
	if ce := l.Check(lvl, msg); ce != nil {
		ce.Write(fields...)
	}
}

func renderMessage(format string, args []interface{}) string {
	s := redact.Sprintf(format, args...)
	if redactable.Load() {
		return string(s)
	}
	return s.StripMarkers()
}
