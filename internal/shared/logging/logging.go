package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.Mutex
	logger = zap.NewNop()
)

// Init builds the process-wide logger. Verbose enables debug level and
// development-style output; otherwise a compact production config is used
// with timestamps in ISO 8601.
func Init(verbose bool) error {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	l, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	logger = l
	mu.Unlock()
	return nil
}

// L returns the process-wide logger. Before Init it is a no-op logger,
// which keeps tests quiet without nil checks at call sites.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Sync flushes buffered log entries. Safe to call on the no-op logger.
func Sync() {
	mu.Lock()
	l := logger
	mu.Unlock()
	_ = l.Sync()
}
