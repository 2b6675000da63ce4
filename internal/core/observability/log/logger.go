package log

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Log = (*Logger)(nil)

var (
	innerLogger          *Logger
	loggerInitializeOnce sync.Once
)

// Config selects the level and encoding of a Logger.
type Config struct {
	Level  Level
	Format string // "json" or "console"
}

type Logger struct {
	zapLogger *zap.Logger
	zapLevel  zap.AtomicLevel
}

// New builds a JSON logger writing to stderr.
func New(level Level) *Logger {
	return NewWithConfig(Config{Level: level, Format: "json"})
}

func NewWithConfig(cfg Config) *Logger {
	atomicLevel := zap.NewAtomicLevelAt(toZapLevel(cfg.Level))

	encoding, encoderConfig := "json", zap.NewProductionEncoderConfig()
	if cfg.Format == "console" {
		encoding, encoderConfig = "console", zap.NewDevelopmentEncoderConfig()
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	config := zap.Config{
		Level:       atomicLevel,
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}

	zapLogger, err := config.Build()
	if err != nil {
		panic(err)
	}

	logger := &Logger{
		zapLogger: zapLogger,
		zapLevel:  atomicLevel,
	}

	loggerInitializeOnce.Do(func() { innerLogger = logger })

	return logger
}

// Nop discards everything. Used by tests and as a fallback.
func Nop() *Logger {
	return &Logger{zapLogger: zap.NewNop(), zapLevel: zap.NewAtomicLevelAt(zap.FatalLevel)}
}

// Provide returns the first logger built in this process, or a no-op logger.
func Provide() *Logger {
	if innerLogger == nil {
		return Nop()
	}
	return innerLogger
}

func (l *Logger) Log(level Level, msg string, fields ...Field) {
	if !l.zapLevel.Enabled(toZapLevel(level)) {
		return
	}
	l.zapLogger.Log(toZapLevel(level), msg, toZapFields(fields...)...)
}

func (l *Logger) Debug(msg string, fields ...Field) {
	l.zapLogger.Debug(msg, toZapFields(fields...)...)
}

func (l *Logger) Info(msg string, fields ...Field) {
	l.zapLogger.Info(msg, toZapFields(fields...)...)
}

func (l *Logger) Warn(msg string, fields ...Field) {
	l.zapLogger.Warn(msg, toZapFields(fields...)...)
}

func (l *Logger) Error(msg string, fields ...Field) {
	l.zapLogger.Error(msg, toZapFields(fields...)...)
}

func (l *Logger) Fatal(msg string, fields ...Field) {
	l.zapLogger.Fatal(msg, toZapFields(fields...)...)
}

func (l *Logger) With(fields ...Field) Log {
	return &Logger{
		zapLogger: l.zapLogger.With(toZapFields(fields...)...),
		zapLevel:  l.zapLevel,
	}
}

// WithContext returns l unchanged; nothing is propagated through contexts yet.
func (l *Logger) WithContext(_ context.Context) Log {
	return l
}

// SetLevel is shared with every logger derived through With.
func (l *Logger) SetLevel(level Level) {
	l.zapLevel.SetLevel(toZapLevel(level))
}

func (l *Logger) GetLevel() Level {
	return fromZapLevel(l.zapLevel.Level())
}

func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

// Helper functions to convert between levels and fields

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zap.DebugLevel
	case LevelInfo:
		return zap.InfoLevel
	case LevelWarn:
		return zap.WarnLevel
	case LevelError:
		return zap.ErrorLevel
	case LevelFatal:
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}

func fromZapLevel(level zapcore.Level) Level {
	switch level {
	case zap.DebugLevel:
		return LevelDebug
	case zap.InfoLevel:
		return LevelInfo
	case zap.WarnLevel:
		return LevelWarn
	case zap.ErrorLevel:
		return LevelError
	case zap.FatalLevel:
		return LevelFatal
	default:
		return LevelInfo
	}
}

func toZapFields(fields ...Field) []zap.Field {
	zapFields := make([]zap.Field, len(fields))
	for i, f := range fields {
		switch f.Type {
		case BoolType:
			zapFields[i] = zap.Bool(f.Key, f.Value.(bool))
		case DurationType:
			zapFields[i] = zap.Duration(f.Key, f.Value.(time.Duration))
		case Float64Type:
			zapFields[i] = zap.Float64(f.Key, f.Value.(float64))
		case IntType:
			zapFields[i] = zap.Int(f.Key, f.Value.(int))
		case Int64Type:
			zapFields[i] = zap.Int64(f.Key, f.Value.(int64))
		case StringType:
			zapFields[i] = zap.String(f.Key, f.Value.(string))
		case StringerType:
			zapFields[i] = zap.Stringer(f.Key, f.Value.(interface{ String() string }))
		case Uint64Type:
			zapFields[i] = zap.Uint64(f.Key, f.Value.(uint64))
		case ObjectType:
			zapFields[i] = zap.Object(f.Key, objectMarshaler{f.Value.(ObjectMarshaler)})
		case ErrorType:
			zapFields[i] = zap.NamedError(f.Key, f.Value.(error))
		default:
			zapFields[i] = zap.Any(f.Key, f.Value)
		}
	}
	return zapFields
}

type objectMarshaler struct{ ObjectMarshaler }

func (m objectMarshaler) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	return m.ObjectMarshaler.MarshalLogObject(enc)
}
