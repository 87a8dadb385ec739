package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps zap's SugaredLogger.
type Logger struct {
	*zap.SugaredLogger
}

// defaultZapLevel defines the fallback log level when an unknown level string is provided.
const defaultZapLevel = zapcore.DebugLevel

// Rolling file limits when a log file is configured.
const (
	logFileMaxSizeMB  = 50
	logFileMaxBackups = 3
	logFileMaxAgeDays = 28
)

// toZapLevel converts a textual level to zapcore.Level using known level constants.
func toZapLevel(levelStr string) zapcore.Level {
	switch levelStr {
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return defaultZapLevel
	}
}

// newConsoleCore builds a zapcore.Core with a console encoder. Output goes
// to stdout, plus a size-rotated file when filePath is non-empty.
func newConsoleCore(level zapcore.Level, filePath string) zapcore.Core {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder

	encoder := zapcore.NewConsoleEncoder(cfg)

	ws := zapcore.AddSync(zapcore.Lock(os.Stdout))
	if filePath != "" {
		file := &lumberjack.Logger{
			Filename:   filePath,
			MaxSize:    logFileMaxSizeMB,
			MaxBackups: logFileMaxBackups,
			MaxAge:     logFileMaxAgeDays,
		}
		ws = zapcore.NewMultiWriteSyncer(ws, zapcore.AddSync(file))
	}
	return zapcore.NewCore(encoder, ws, zap.NewAtomicLevelAt(level))
}

// newZapLogger constructs a sugared zap logger with the provided level string.
func newZapLogger(levelStr, filePath string) *Logger {
	core := newConsoleCore(toZapLevel(levelStr), filePath)
	return &Logger{
		SugaredLogger: zap.New(core).Sugar(),
	}
}
