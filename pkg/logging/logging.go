// Package logging wires ectologger to a zap sink.
package logging

import (
	"encoding/json"

	"github.com/Gobusters/ectologger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the application logger. Structured messages from ectologger are
// serialized and written through zap so log shipping stays consistent with the
// rest of the platform.
func New(level string, pretty bool) (ectologger.Logger, *zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if pretty {
		zcfg = zap.NewDevelopmentConfig()
	}

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	zlog, err := zcfg.Build(zap.WithCaller(false))
	if err != nil {
		return nil, nil, err
	}

	logger := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		payload, err := json.Marshal(msg)
		if err != nil {
			zlog.Error("failed to serialize log message", zap.Error(err))
			return
		}
		zlog.Info(string(payload))
	})

	return logger, zlog, nil
}

// NewNoop returns a logger that discards everything. Used in tests.
func NewNoop() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}
