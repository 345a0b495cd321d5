package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	// Production selects JSON output at info level; otherwise a colored
	// console encoder at debug level.
	Production bool
	// File, when set, also writes JSON logs to a rotated file.
	File string
}

// New builds the process logger and installs it as the zap global.
func New(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	if opts.Production {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	var logger *zap.Logger
	if opts.File != "" {
		consoleEncoder := zapcore.NewConsoleEncoder(cfg.EncoderConfig)
		if opts.Production {
			consoleEncoder = zapcore.NewJSONEncoder(cfg.EncoderConfig)
		}
		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(rotatingFile(opts.File)),
				cfg.Level,
			),
			zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), cfg.Level),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	} else {
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return nil, err
		}
	}

	zap.ReplaceGlobals(logger)
	return logger, nil
}

func rotatingFile(path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    64,
		MaxBackups: 7,
		MaxAge:     7,
	}
}
