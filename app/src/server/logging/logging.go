package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileName is the rotated log file inside the log directory.
const FileName = "server.log"

// NewDevelopmentLogger is a console-only logger for tools and early startup.
func NewDevelopmentLogger() *zap.Logger {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, _ := config.Build()
	return logger
}

// New logs to stdout and, when logDir is set, also to a rotated JSON file.
func New(logDir string) *zap.Logger {
	return newWithConsole(logDir, zapcore.AddSync(os.Stdout))
}

func newWithConsole(logDir string, console zapcore.WriteSyncer) *zap.Logger {
	var cores []zapcore.Core

	// file core, JSON
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0o755); err == nil {
			encoderConfig := zap.NewProductionEncoderConfig()
			encoderConfig.TimeKey = "timestamp"
			encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
			encoderConfig.LevelKey = "level"
			encoderConfig.MessageKey = "message"
			encoderConfig.CallerKey = "caller"
			encoderConfig.StacktraceKey = "stacktrace"

			fileWriter := zapcore.AddSync(&lumberjack.Logger{
				Filename:   filepath.Join(logDir, FileName),
				MaxSize:    5,    // 5MB
				MaxBackups: 3,    // backups kept
				MaxAge:     3,    // days
				Compress:   true, // gzip rotated files
			})
			cores = append(cores, zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				fileWriter,
				zap.InfoLevel,
			))
		}
	}

	// console core
	consoleEncoder := zap.NewDevelopmentEncoderConfig()
	consoleEncoder.EncodeTime = zapcore.ISO8601TimeEncoder
	cores = append(cores, zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEncoder),
		console,
		zap.DebugLevel,
	))

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}
