package logger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogThrottler(t *testing.T) {
	t.Run("first warn per key passes, repeats drop to debug", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		throttler := NewLogThrottler(zap.New(core), time.Minute)

		for i := 0; i < 3; i++ {
			throttler.Warn("key-a", "noisy event")
		}

		warns := logs.FilterLevelExact(zap.WarnLevel)
		debugs := logs.FilterLevelExact(zap.DebugLevel)
		assert.Equal(t, 1, warns.Len())
		assert.Equal(t, 2, debugs.Len())
	})

	t.Run("keys throttle independently", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		throttler := NewLogThrottler(zap.New(core), time.Minute)

		throttler.Warn("key-a", "event")
		throttler.Warn("key-b", "event")
		throttler.Warn("key-a", "event")

		assert.Equal(t, 2, logs.Len())
	})

	t.Run("zero interval gets a default", func(t *testing.T) {
		throttler := NewLogThrottler(zap.NewNop(), 0)
		assert.Equal(t, 5*time.Minute, throttler.interval)
	})
}
