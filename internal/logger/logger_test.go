package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"fatal":   zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok, s)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("loud")
	require.False(t, ok)
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, zapcore.DebugLevel)

	ctx := ToContext(context.Background(), l)
	ctx = WithName(ctx, "install")
	ctx = WithKV(ctx, "dep", "boost")

	InfoKV(ctx, "copied", "files", 3)
	DebugKV(ctx, "details")

	out := buf.String()
	require.Contains(t, out, "install")
	require.Contains(t, out, "copied")
	require.Contains(t, out, `"dep": "boost"`)
	require.Contains(t, out, `"files": 3`)
	require.Contains(t, out, "DEBUG")
}

func TestFromContext_Fallback(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}
