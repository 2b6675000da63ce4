package log

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type point struct{ x, y float64 }

func (p point) MarshalLogObject(enc ObjectEncoder) error {
	enc.AddFloat64("x", p.x)
	enc.AddFloat64("y", p.y)
	return nil
}

func observed(level Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	atomicLevel := zap.NewAtomicLevelAt(toZapLevel(level))
	return &Logger{zapLogger: zap.New(core), zapLevel: atomicLevel}, logs
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
		err  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"fatal", LevelFatal, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_LogRespectsLevel(t *testing.T) {
	l, logs := observed(LevelWarn)

	l.Log(LevelInfo, "dropped")
	l.Log(LevelError, "kept", String("k", "v"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	require.Equal(t, "kept", entry.Message)
	require.Equal(t, "v", entry.ContextMap()["k"])

	l.SetLevel(LevelDebug)
	require.Equal(t, LevelDebug, l.GetLevel())
	l.Log(LevelInfo, "now kept")
	require.Equal(t, 2, logs.Len())
}

func TestLogger_FieldTypes(t *testing.T) {
	l, logs := observed(LevelDebug)

	l.With(String("component", "test")).Info("fields",
		Bool("b", true),
		Duration("d", time.Second),
		Float64("f", 1.5),
		Int("i", 3),
		Int64("i64", 4),
		Uint64("u", 5),
		Object("p", point{1, 2}),
		Error(errors.New("boom")),
		Any("any", []int{1}),
	)

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	require.Equal(t, "test", ctx["component"])
	require.Equal(t, true, ctx["b"])
	require.Equal(t, 1.5, ctx["f"])
	require.Equal(t, "boom", ctx["error"])
	require.Equal(t, map[string]any{"x": 1.0, "y": 2.0}, ctx["p"])
}

func TestProvideFallsBackToNop(t *testing.T) {
	require.NotNil(t, Provide())
	require.NotPanics(t, func() { Nop().Info("discarded") })
}
