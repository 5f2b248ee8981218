package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	base  *zap.Logger
	sugar *zap.SugaredLogger
	mu    sync.RWMutex
)

func init() {
	// 未调用SetupLogger时(例如测试)使用空日志
	base = zap.NewNop()
	sugar = base.Sugar()
}

// SetupLogger 初始化日志配置
// level: "debug", "info", "warn", "error" (默认: "info")
// format: "json" 或 "console" (默认: "json")
func SetupLogger(level, format, serviceName string) error {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	if serviceName != "" {
		l = l.With(zap.String("service_name", serviceName))
	}
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		l = l.With(zap.String("hostname", hostname))
	}

	Replace(l)
	return nil
}

// Replace 替换全局日志实例
func Replace(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	base = l
	sugar = l.WithOptions(zap.AddCallerSkip(1)).Sugar()
}

// L 返回结构化日志实例
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Info 记录信息级别的日志
func Info(format string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Infof(format, v...)
}

// Warning 记录警告级别的日志
func Warning(format string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Warnf(format, v...)
}

// Error 记录错误级别的日志
func Error(format string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Errorf(format, v...)
}

// Sync 刷新缓冲的日志
func Sync() {
	_ = L().Sync()
}
