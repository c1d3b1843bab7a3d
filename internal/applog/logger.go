// Package applog wraps *zap.Logger with methods named for the patch
// engine's own pipeline events instead of generic Info/Debug call sites,
// the same shape as the teacher's internal/agent/logger.go wraps zap for
// tool/LLM events.
package applog

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a structured, run-scoped logger. The zero value is not usable;
// construct one with New.
type Logger struct {
	zap *zap.Logger
	run string
}

// New creates a Logger that writes JSON-encoded records to logPath, tagged
// with runID on every entry. An empty logPath disables logging entirely. A
// development logger (readable console encoding instead of JSON) is used
// when development is true.
func New(logPath, runID string, development bool) (*Logger, error) {
	if logPath == "" {
		return &Logger{zap: zap.NewNop(), run: runID}, nil
	}

	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	var encoderConfig zapcore.EncoderConfig
	var encoder zapcore.Encoder
	if development {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoderConfig = zap.NewProductionEncoderConfig()
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(logFile), zapcore.DebugLevel)
	return &Logger{zap: zap.New(core).With(zap.String("run_id", runID)), run: runID}, nil
}

// Close flushes any buffered log entries.
func (l *Logger) Close() error {
	if l == nil || l.zap == nil {
		return nil
	}
	return l.zap.Sync()
}

// PatchParsed logs a successfully parsed patch file.
func (l *Logger) PatchParsed(patchID string, fileCount, modCount int) {
	l.zap.Info("patch parsed",
		zap.String("patch_id", patchID),
		zap.Int("file_count", fileCount),
		zap.Int("modification_count", modCount),
	)
}

// ModificationApplied logs a modification that changed a file's buffer.
func (l *Logger) ModificationApplied(path string, action string, index int) {
	l.zap.Debug("modification applied",
		zap.String("path", path),
		zap.String("action", action),
		zap.Int("index", index),
	)
}

// ModificationSkipped logs a modification judged already-applied (an
// idempotency no-op).
func (l *Logger) ModificationSkipped(path string, action string, index int, reason string) {
	l.zap.Debug("modification skipped",
		zap.String("path", path),
		zap.String("action", action),
		zap.Int("index", index),
		zap.String("reason", reason),
	)
}

// ModificationFailed logs a modification that errored.
func (l *Logger) ModificationFailed(path string, action string, index int, err error) {
	l.zap.Warn("modification failed",
		zap.String("path", path),
		zap.String("action", action),
		zap.Int("index", index),
		zap.Error(err),
	)
}

// FilesCommitted logs the final set of files written to disk.
func (l *Logger) FilesCommitted(paths []string) {
	l.zap.Info("files committed", zap.Strings("paths", paths), zap.Int("count", len(paths)))
}

// RunFailed logs a run that could not proceed at all (parse error, path
// safety violation, ALL_CHANGES_FAILED, ...).
func (l *Logger) RunFailed(stage string, err error) {
	l.zap.Error("run failed", zap.String("stage", stage), zap.Error(err))
}
