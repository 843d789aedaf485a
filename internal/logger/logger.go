package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type FileOptions struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
}

func New(env string) (*zap.Logger, error) {
	return NewWithFile(env, FileOptions{})
}

// NewWithFile builds the console logger and, when a path is given, tees JSON
// entries into a size-rotated file.
func NewWithFile(env string, file FileOptions) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if env == "development" || env == "local" {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	log, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	path := strings.TrimSpace(file.Path)
	if path == "" {
		return log, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    positiveOr(file.MaxSizeMB, 50),
		MaxBackups: positiveOr(file.MaxBackups, 5),
		Compress:   true,
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(rotator), cfg.Level)

	return log.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	})), nil
}

func positiveOr(value int, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
