package extractors

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryPolicy_Schedule(t *testing.T) {
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, DefaultRetryPolicy.Schedule())

	policy := RetryPolicy{MaxAttempts: 4, BackoffBase: 1.5}
	assert.Equal(t, []time.Duration{1500 * time.Millisecond, 2250 * time.Millisecond, 3375 * time.Millisecond}, policy.Schedule())

	assert.Empty(t, RetryPolicy{MaxAttempts: 1, BackoffBase: 2}.Schedule())
}

func TestBackoff_StateMachine(t *testing.T) {
	b := NewBackoff(RetryPolicy{MaxAttempts: 3, BackoffBase: 2})

	require.True(t, b.Begin())
	assert.Equal(t, 1, b.Attempt())
	delay, ok := b.Failed()
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, delay)

	require.True(t, b.Begin())
	assert.Equal(t, 2, b.Attempt())
	delay, ok = b.Failed()
	require.True(t, ok)
	assert.Equal(t, 4*time.Second, delay)

	require.True(t, b.Begin())
	assert.Equal(t, 3, b.Attempt())
	_, ok = b.Failed()
	assert.False(t, ok, "после последней попытки ожидания нет")

	assert.False(t, b.Begin())
	assert.Equal(t, 3, b.Attempt())
}

func TestBackoff_AtLeastOneAttempt(t *testing.T) {
	b := NewBackoff(RetryPolicy{})
	assert.True(t, b.Begin())
	assert.False(t, b.Begin())
}

func TestClockSleep(t *testing.T) {
	clock := clockwork.NewFakeClock()
	sleep := ClockSleep(clock)

	done := make(chan error, 1)
	go func() { done <- sleep(context.Background(), 4*time.Second) }()

	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	clock.Advance(4 * time.Second)
	require.NoError(t, <-done)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, time.Hour), context.Canceled)
}
