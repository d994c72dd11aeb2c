package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var Instance = newLogger(levelFromEnv())

func levelFromEnv() zapcore.Level {
	if v, ok := os.LookupEnv("CARDTEXT_DEBUG"); ok && v != "" && v != "0" {
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

func newLogger(level zapcore.Level) *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}

func Debug(msg string, fields ...zap.Field) {
	Instance.Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	Instance.Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Instance.Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Instance.Error(msg, fields...)
}

func Panic(msg string, fields ...zap.Field) {
	Instance.Panic(msg, fields...)
}

func Fatal(msg string, fields ...zap.Field) {
	Instance.Fatal(msg, fields...)
}
