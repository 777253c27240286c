package logger

import (
	"log"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger  = zap.NewNop()
	skippedLogger = zap.NewNop()
	globalMu      sync.RWMutex
)

// SetupLogger initializes the global logger for the given environment:
// human-readable debug output for local/dev, JSON for everything else.
func SetupLogger(env, level string) *zap.Logger {
	var cfg zap.Config
	switch env {
	case "local", "dev":
		cfg = zap.NewDevelopmentConfig()
	default:
		cfg = zap.NewProductionConfig()
	}

	if parsed, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}

	built, err := cfg.Build()
	if err != nil {
		log.Fatalf("cannot build logger: %s", err)
	}

	globalMu.Lock()
	globalLogger = built
	skippedLogger = built.WithOptions(zap.AddCallerSkip(1))
	globalMu.Unlock()

	return built
}

// Logger returns the global logger. Safe for concurrent use.
func Logger() *zap.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

func skipped() *zap.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return skippedLogger
}

func Debug(msg string, fields ...zap.Field) { skipped().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { skipped().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { skipped().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { skipped().Error(msg, fields...) }
