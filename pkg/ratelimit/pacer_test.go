package ratelimit

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacerSpacing(t *testing.T) {
	pacer := NewPacer(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, pacer.Wait(ctx))
	}
	elapsed := time.Since(start)

	// First token is immediate, the next two wait one interval each.
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
}

func TestPacerDisabled(t *testing.T) {
	pacer := NewPacer(0)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 10; i++ {
		require.NoError(t, pacer.Wait(ctx))
	}
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestPacerContextCancelled(t *testing.T) {
	pacer := NewPacer(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, pacer.Wait(ctx)) // first token is free
	cancel()
	assert.Error(t, pacer.Wait(ctx))
}

func TestSleepFor(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	margin := 15 * time.Second
	fallback := 900 * time.Second

	t.Run("future reset adds margin", func(t *testing.T) {
		reset := strconv.FormatInt(now.Add(10*time.Second).Unix(), 10)
		assert.Equal(t, 25*time.Second, SleepFor(reset, now, margin, fallback))
	})

	t.Run("past reset uses fallback", func(t *testing.T) {
		reset := strconv.FormatInt(now.Add(-time.Minute).Unix(), 10)
		assert.Equal(t, fallback, SleepFor(reset, now, margin, fallback))
	})

	t.Run("reset equal to now uses fallback", func(t *testing.T) {
		reset := strconv.FormatInt(now.Unix(), 10)
		assert.Equal(t, fallback, SleepFor(reset, now, margin, fallback))
	})

	t.Run("missing header uses fallback", func(t *testing.T) {
		assert.Equal(t, fallback, SleepFor("", now, margin, fallback))
	})

	t.Run("malformed header uses fallback", func(t *testing.T) {
		assert.Equal(t, fallback, SleepFor("soon", now, margin, fallback))
	})
}
