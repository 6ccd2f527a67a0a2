package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func spanContext(t *testing.T) context.Context {
	t.Helper()
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})
	return trace.ContextWithSpanContext(context.Background(), sc)
}

func TestFromContext(t *testing.T) {
	t.Run("returns stored logger", func(t *testing.T) {
		l := zap.NewExample()
		ctx := WithContext(context.Background(), l)
		assert.Same(t, l, FromContext(ctx))
	})

	t.Run("falls back to nop", func(t *testing.T) {
		assert.NotNil(t, FromContext(context.Background()))
	})

	t.Run("ignores values of the wrong type", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), LoggerKey, "not a logger")
		assert.NotNil(t, FromContext(ctx))
	})
}

func TestContextIDs(t *testing.T) {
	ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-42")
	ctx = WithSessionID(ctx, "sess-7")

	assert.Equal(t, "req-42", GetRequestID(ctx))
	assert.Equal(t, "sess-7", GetSessionID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
	assert.Empty(t, GetSessionID(context.Background()))
}

func TestGetTraceID(t *testing.T) {
	assert.Empty(t, GetTraceID(context.Background()))
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", GetTraceID(spanContext(t)))
}

func TestContextLogger(t *testing.T) {
	t.Run("enriches entries with context fields", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		ctx := WithContext(spanContext(t), zap.New(core))
		ctx = context.WithValue(ctx, RequestIDKey, "req-1")
		ctx = WithSessionID(ctx, "sess-1")

		L(ctx).Info("filter applied", zap.String("column", "title"))

		logs := recorded.All()
		require.Len(t, logs, 1)
		fields := logs[0].ContextMap()
		assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
		assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
		assert.Equal(t, "req-1", fields["request_id"])
		assert.Equal(t, "sess-1", fields["session_id"])
		assert.Equal(t, "title", fields["column"])
	})

	t.Run("omits empty context fields", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)

		WithLogger(context.Background(), zap.New(core)).Warn("plain")

		logs := recorded.All()
		require.Len(t, logs, 1)
		assert.Empty(t, logs[0].Context)
	})

	t.Run("With chains fields", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)

		cl := WithLogger(context.Background(), zap.New(core)).
			With(zap.String("table", "catalog")).
			With(zap.Int("rows", 3))
		cl.Debug("loaded")
		cl.Error("failed")

		logs := recorded.All()
		require.Len(t, logs, 2)
		assert.Equal(t, "catalog", logs[0].ContextMap()["table"])
		assert.Equal(t, int64(3), logs[1].ContextMap()["rows"])
	})

	t.Run("nil logger does not panic", func(t *testing.T) {
		cl := WithLogger(context.Background(), nil)
		assert.NotPanics(t, func() {
			cl.Info("x")
			cl.With(zap.String("k", "v")).Info("y")
		})
	})
}
