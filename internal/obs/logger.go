// Package obs wires structured logging for the sync engine: a
// zap.Logger writing JSON-encoded entries through a lumberjack rolling
// file, with a safe no-op default so a Manager or Introspector constructed
// without a logger never nil-panics.
package obs

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileOptions controls the rotating log file a Logger writes to.
type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultFileOptions matches common rotation defaults: 100MB per file, 5
// backups, 28 days retention, gzip compression of rotated files.
func DefaultFileOptions(path string) FileOptions {
	return FileOptions{Path: path, MaxSizeMB: 100, MaxBackups: 5, MaxAgeDays: 28, Compress: true}
}

// New builds a zap.Logger that writes JSON lines to the rotating file
// described by opts and console-encoded lines to stderr.
func New(opts FileOptions) (*zap.Logger, error) {
	fileWriter := zapcore.AddSync(&lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   opts.Compress,
	})

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), fileWriter, zapcore.InfoLevel),
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.Lock(os.Stderr), zapcore.InfoLevel),
	)

	return zap.New(core, zap.AddCaller()), nil
}

// Nop returns a logger that discards everything, the same safe default the
// adapter pattern this is grounded on falls back to before SetLogger is
// called.
func Nop() *zap.Logger {
	return zap.NewNop()
}
