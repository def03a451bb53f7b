package extractors

import (
	"context"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
)

// SleepFunc ожидает d или отмену контекста
type SleepFunc func(ctx context.Context, d time.Duration) error

// ClockSleep возвращает SleepFunc поверх clockwork.Clock
func ClockSleep(clock clockwork.Clock) SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		select {
		case <-clock.After(d):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RetryPolicy задаёт число попыток и основание экспоненциальной задержки
type RetryPolicy struct {
	MaxAttempts int
	BackoffBase float64
}

// DefaultRetryPolicy - 3 попытки, задержки 2с и 4с
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, BackoffBase: 2}

// Delay возвращает задержку после n-й неудачной попытки (n начинается с 1): base^n секунд
func (p RetryPolicy) Delay(n int) time.Duration {
	return time.Duration(math.Pow(p.BackoffBase, float64(n)) * float64(time.Second))
}

// Schedule возвращает все задержки между попытками
func (p RetryPolicy) Schedule() []time.Duration {
	if p.MaxAttempts <= 1 {
		return nil
	}
	delays := make([]time.Duration, 0, p.MaxAttempts-1)
	for n := 1; n < p.MaxAttempts; n++ {
		delays = append(delays, p.Delay(n))
	}
	return delays
}

// Backoff - состояние повторов одного запроса
type Backoff struct {
	policy  RetryPolicy
	attempt int
}

// NewBackoff создает счётчик попыток для политики
func NewBackoff(policy RetryPolicy) *Backoff {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &Backoff{policy: policy}
}

// Begin начинает очередную попытку; false - попытки исчерпаны
func (b *Backoff) Begin() bool {
	if b.attempt >= b.policy.MaxAttempts {
		return false
	}
	b.attempt++
	return true
}

// Attempt возвращает номер текущей попытки (с 1)
func (b *Backoff) Attempt() int {
	return b.attempt
}

// Failed фиксирует неудачу текущей попытки и возвращает задержку перед следующей.
// ok=false означает, что следующей попытки не будет и ждать не нужно.
func (b *Backoff) Failed() (delay time.Duration, ok bool) {
	if b.attempt >= b.policy.MaxAttempts {
		return 0, false
	}
	return b.policy.Delay(b.attempt), true
}
