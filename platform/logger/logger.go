// Package logger builds the zap logger shared by every binary.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New constructs a production sugared logger tagged with the service name.
// It writes to stdout unless other outputs are given.
func New(service string, outputs ...string) (*zap.SugaredLogger, error) {
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}
	config := zap.NewProductionConfig()
	config.OutputPaths = outputs
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.DisableStacktrace = true
	config.InitialFields = map[string]interface{}{
		"service": service,
	}

	log, err := config.Build()
	if err != nil {
		return nil, err
	}

	return log.Sugar(), nil
}
