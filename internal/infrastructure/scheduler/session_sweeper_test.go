package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeEvictor struct {
	calls atomic.Int32
	ids   []string
}

func (f *fakeEvictor) EvictIdle() []string {
	f.calls.Add(1)
	return f.ids
}

func TestSessionSweeper_Sweep(t *testing.T) {
	evictor := &fakeEvictor{ids: []string{"a", "b"}}
	s := NewSessionSweeper("@every 1m", evictor, nil)

	assert.Equal(t, 2, s.Sweep())
	assert.Equal(t, 2, s.Sweep())
	assert.Equal(t, 4, s.Swept())
	assert.Equal(t, int32(2), evictor.calls.Load())
}

func TestSessionSweeper_Lifecycle(t *testing.T) {
	t.Run("empty schedule disables the sweeper", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		s := NewSessionSweeper("", &fakeEvictor{}, zap.New(core))

		require.NoError(t, s.Start())
		assert.Equal(t, 1, logs.FilterMessage("Session sweeper disabled").Len())
		assert.NoError(t, s.Stop(context.Background()))
	})

	t.Run("invalid schedule", func(t *testing.T) {
		s := NewSessionSweeper("not a cron", &fakeEvictor{}, zap.NewNop())
		err := s.Start()
		assert.True(t, errors.Is(err, ErrInvalidSchedule))
	})

	t.Run("runs on schedule until stopped", func(t *testing.T) {
		evictor := &fakeEvictor{ids: []string{"idle"}}
		s := NewSessionSweeper("@every 1s", evictor, zap.NewNop())

		require.NoError(t, s.Start())
		assert.ErrorIs(t, s.Start(), ErrAlreadyRunning)

		assert.Eventually(t, func() bool { return evictor.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, s.Stop(ctx))
		assert.GreaterOrEqual(t, s.Swept(), 1)
		assert.NoError(t, s.Stop(ctx), "second stop is a no-op")
	})
}

func TestCronLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := cronLogger{logger: zap.New(core)}

	l.Info("schedule", "entry", 1)
	l.Error(errors.New("boom"), "job panicked", "entry", 1)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "boom", entries[1].ContextMap()["error"])
}
