package backoff

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/lib/pq"
)

// Postgres-коды, при которых повтор транзакции имеет смысл
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// Policy политика ограниченных повторов с джиттером
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultPolicy политика по умолчанию для конкуренции за строки БД
var DefaultPolicy = Policy{
	MaxAttempts: 3,
	BaseDelay:   20 * time.Millisecond,
	MaxDelay:    250 * time.Millisecond,
}

// IsRetryableDBError сообщает, является ли ошибка транзиентной ошибкой конкуренции
// (serialization failure, deadlock, lock timeout), после которой транзакцию
// можно безопасно повторить целиком
func IsRetryableDBError(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	switch string(pqErr.Code) {
	case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
		return true
	default:
		return false
	}
}

// Retry выполняет fn до MaxAttempts раз, пока retryable(err) возвращает true.
// Между попытками спит экспоненциально растущий интервал с полным джиттером.
// Возвращает последнюю ошибку, если все попытки исчерпаны.
func (p Policy) Retry(ctx context.Context, retryable func(error) bool, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(p.delay(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil || !retryable(lastErr) {
			return lastErr
		}
	}

	return lastErr
}

// delay вычисляет задержку перед попыткой attempt (full jitter)
func (p Policy) delay(attempt int) time.Duration {
	max := p.BaseDelay << (attempt - 1)
	if max > p.MaxDelay {
		max = p.MaxDelay
	}
	return time.Duration(rand.Int63n(int64(max) + 1))
}
