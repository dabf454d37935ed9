package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel 日志级别
type LogLevel = zapcore.Level

const (
	DEBUG = zapcore.DebugLevel
	INFO  = zapcore.InfoLevel
	WARN  = zapcore.WarnLevel
	ERROR = zapcore.ErrorLevel
	FATAL = zapcore.FatalLevel
)

// 日志文件轮转参数
const (
	rotateMaxSizeMB  = 100
	rotateMaxBackups = 3
	rotateMaxAgeDays = 28
)

// LogConfig 日志配置接口，由 config.LogConfig 实现
type LogConfig interface {
	GetLevel() string
	GetOutput() string
	GetFile() string
}

// Logger printf 风格的 zap 封装。
// 方法与包级函数都直接调用 zap，调用栈深度一致，caller 统一跳过一层。
type Logger struct {
	zapLogger *zap.Logger
}

var defaultLogger = mustNew(INFO, os.Stdout)

func mustNew(level LogLevel, w io.Writer) *Logger {
	l, err := NewWithWriter(level, w)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	return l
}

// NewWithWriter 创建输出到指定 writer 的日志器，debug 级别使用控制台格式
func NewWithWriter(level LogLevel, w io.Writer) (*Logger, error) {
	if w == nil {
		return nil, fmt.Errorf("log writer is nil")
	}

	cfg := encoderConfig(level)
	encoder := zapcore.NewJSONEncoder(cfg)
	if level == DEBUG {
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	return &Logger{zapLogger: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))}, nil
}

// Init 根据配置创建日志器并设置为默认日志器
func Init(cfg LogConfig) error {
	w, err := outputWriter(cfg.GetOutput(), cfg.GetFile())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	l, err := NewWithWriter(ParseLogLevel(cfg.GetLevel()), w)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	SetDefaultLogger(l)
	return nil
}

// outputWriter 选择输出目标，file 模式按大小轮转
func outputWriter(output, file string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "file":
		if file == "" {
			return nil, fmt.Errorf("log file path is empty")
		}
		return &lumberjack.Logger{
			Filename:   file,
			MaxSize:    rotateMaxSizeMB,
			MaxBackups: rotateMaxBackups,
			MaxAge:     rotateMaxAgeDays,
			Compress:   true,
		}, nil
	case "stderr":
		return os.Stderr, nil
	default:
		return os.Stdout, nil
	}
}

func encoderConfig(level LogLevel) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	if level == DEBUG {
		cfg = zap.NewDevelopmentEncoderConfig()
	}

	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format(time.DateTime))
	}
	cfg.CallerKey = "caller"
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.LevelKey = "level"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.MessageKey = "message"
	return cfg
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.zapLogger.Debug(fmt.Sprintf(format, args...))
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.zapLogger.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.zapLogger.Warn(fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.zapLogger.Error(fmt.Sprintf(format, args...))
}

func (l *Logger) Fatal(format string, args ...interface{}) {
	l.zapLogger.Fatal(fmt.Sprintf(format, args...))
}

// Sync 刷新缓冲
func (l *Logger) Sync() {
	_ = l.zapLogger.Sync()
}

// With 返回携带结构化字段的子日志器，用于请求关联ID等
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zapLogger: l.zapLogger.With(fields...)}
}

// SetDefaultLogger 替换默认日志器，旧日志器会先刷新
func SetDefaultLogger(l *Logger) {
	if defaultLogger != nil {
		defaultLogger.Sync()
	}
	defaultLogger = l
}

func Debug(format string, args ...interface{}) {
	defaultLogger.zapLogger.Debug(fmt.Sprintf(format, args...))
}

func Info(format string, args ...interface{}) {
	defaultLogger.zapLogger.Info(fmt.Sprintf(format, args...))
}

func Warn(format string, args ...interface{}) {
	defaultLogger.zapLogger.Warn(fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	defaultLogger.zapLogger.Error(fmt.Sprintf(format, args...))
}

func Fatal(format string, args ...interface{}) {
	defaultLogger.zapLogger.Fatal(fmt.Sprintf(format, args...))
}

func Sync() {
	defaultLogger.Sync()
}

func With(fields ...zap.Field) *Logger {
	return defaultLogger.With(fields...)
}

// ParseLogLevel 解析日志级别字符串，无法识别时为 info
func ParseLogLevel(level string) LogLevel {
	if strings.EqualFold(level, "warning") {
		return WARN
	}
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return INFO
	}
	return parsed
}
