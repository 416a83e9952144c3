package logging

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the service logger: JSON to stdout, mirrored to Logstash when
// logstashAddr is set. The returned func flushes and closes the sinks.
func New(level, logstashAddr string) (*zap.Logger, func(), error) {
	lvl := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, nil, fmt.Errorf("logging: invalid level %q: %w", level, err)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)

	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), lvl)}

	var shipper *LogstashWriter
	if logstashAddr != "" {
		w, err := NewLogstashWriter(logstashAddr)
		if err != nil {
			return nil, nil, err
		}
		shipper = w
		cores = append(cores, zapcore.NewCore(encoder, w, lvl))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("service", "placebook-api"))

	cleanup := func() {
		_ = logger.Sync()
		if shipper != nil {
			if dropped := shipper.Dropped(); dropped > 0 {
				fmt.Fprintf(os.Stderr, "logstash: %d entries dropped\n", dropped)
			}
			_ = shipper.Close()
		}
	}
	return logger, cleanup, nil
}
