package goroutine

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedLogger() (*zap.SugaredLogger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.ErrorLevel)
	return zap.New(core).Sugar(), logs
}

func TestRecover_NoPanic(t *testing.T) {
	logger, logs := observedLogger()

	func() {
		defer Recover("quiet", logger)
	}()

	assert.Equal(t, 0, logs.Len())
}

func TestRecover_LogsPanic(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
	}{
		{"string", "boom"},
		{"error", errors.New("broken pipe")},
		{"int", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := observedLogger()

			require.NotPanics(t, func() {
				defer Recover("worker-"+tt.name, logger)
				panic(tt.value)
			})

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			fields := entry.ContextMap()
			assert.Equal(t, "Goroutine panic recovered", entry.Message)
			assert.Equal(t, "worker-"+tt.name, fields["goroutine"])
			assert.Contains(t, fields["stack"], "goroutine")
		})
	}
}

func TestRecover_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		defer Recover("no-logger", nil)
		panic("boom")
	})
}

func TestGo(t *testing.T) {
	logger, logs := observedLogger()
	var wg sync.WaitGroup

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 5; i++ {
		Go(&wg, "ok", logger, func() {
			mu.Lock()
			ran++
			mu.Unlock()
		})
	}
	Go(&wg, "panicky", logger, func() { panic("boom") })

	wg.Wait()
	assert.Equal(t, 5, ran)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "panicky", logs.All()[0].ContextMap()["goroutine"])
}
