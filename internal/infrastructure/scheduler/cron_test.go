package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickerSchedulerRunsImmediatelyAndOnTicks(t *testing.T) {
	var runs atomic.Int32
	s := NewTickerScheduler(10 * time.Millisecond)

	require.NoError(t, s.Start(context.Background(), func(time.Time) { runs.Add(1) }))
	require.NoError(t, s.Start(context.Background(), func(time.Time) { t.Error("second Start must not schedule") }))

	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)
	require.NoError(t, s.Stop(context.Background()))

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no runs after Stop")
	assert.NoError(t, s.Stop(context.Background()))
}

func TestNewTickerSchedulerDefaultInterval(t *testing.T) {
	assert.Equal(t, defaultInterval, NewTickerScheduler(0).interval)
}
