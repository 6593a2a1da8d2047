package utils

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// Logger returns the process-wide zap logger. When LOG_FILE is set, log
// lines are teed to that file and stdout; LOG_LEVEL=debug lowers the
// threshold.
func Logger() *zap.Logger {
	if logger != nil {
		return logger
	}

	lvl := zapcore.InfoLevel
	if os.Getenv("LOG_LEVEL") == "debug" {
		lvl = zapcore.DebugLevel
	}

	logFile := os.Getenv("LOG_FILE")
	if logFile == "" {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		l, err := cfg.Build()
		if err != nil {
			l = zap.NewNop()
		}
		logger = l
		return logger
	}

	_ = os.MkdirAll(filepath.Dir(logFile), 0o755)
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		l, _ := zap.NewProduction()
		logger = l
		return logger
	}
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	logger = zap.New(zapcore.NewTee(
		zapcore.NewCore(enc, zapcore.AddSync(f), lvl),
		zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl),
	))
	return logger
}
