package log

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Log interface {
	Log(level Level, msg string, fields ...Field)

	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	With(fields ...Field) Log
	WithContext(ctx context.Context) Log

	SetLevel(level Level)
	GetLevel() Level
	Sync() error
}

type Level uint8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	default:
		return fmt.Sprintf("level(%d)", uint8(l))
	}
}

// ParseLevel maps a config string to a Level. Empty means info.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

type Field struct {
	Key   string
	Type  FieldType
	Value any
}

// A FieldType indicates which member of the Field union struct should be used
// and how it should be serialized.
type FieldType uint8

const (
	UnknownType FieldType = iota
	BoolType
	DurationType
	Float64Type
	IntType
	Int64Type
	StringType
	StringerType
	Uint64Type
	ObjectType
	ErrorType
)

// ObjectEncoder is the part of the backend encoder exposed to ObjectMarshaler.
type ObjectEncoder interface {
	AddBool(key string, value bool)
	AddFloat64(key string, value float64)
	AddInt64(key string, value int64)
	AddString(key, value string)
}

// ObjectMarshaler lets a type log itself as a structured object.
type ObjectMarshaler interface {
	MarshalLogObject(enc ObjectEncoder) error
}

func Any(key string, val any) Field {
	return Field{Key: key, Type: UnknownType, Value: val}
}

func Bool(key string, val bool) Field {
	return Field{Key: key, Type: BoolType, Value: val}
}

func Duration(key string, val time.Duration) Field {
	return Field{Key: key, Type: DurationType, Value: val}
}

func Float64(key string, val float64) Field {
	return Field{Key: key, Type: Float64Type, Value: val}
}

func Int(key string, val int) Field {
	return Field{Key: key, Type: IntType, Value: val}
}

func Int64(key string, val int64) Field {
	return Field{Key: key, Type: Int64Type, Value: val}
}

func String(key string, val string) Field {
	return Field{Key: key, Type: StringType, Value: val}
}

// Stringer defers formatting until the entry is actually written.
func Stringer(key string, val fmt.Stringer) Field {
	return Field{Key: key, Type: StringerType, Value: val}
}

func Uint64(key string, val uint64) Field {
	return Field{Key: key, Type: Uint64Type, Value: val}
}

func Object(key string, val ObjectMarshaler) Field {
	return Field{Key: key, Type: ObjectType, Value: val}
}

func Error(val error) Field {
	return Field{Key: "error", Type: ErrorType, Value: val}
}

func ErrorWithKey(key string, val error) Field {
	return Field{Key: key, Type: ErrorType, Value: val}
}
