package rate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/apperr"
)

const (
	minuteWindow    = time.Minute
	tenMinuteWindow = 10 * time.Minute
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

// LimitedError reports how long the caller has to wait.
type LimitedError struct {
	RetryAfterSec int64
}

func (e *LimitedError) Error() string {
	return fmt.Sprintf("too many messages, retry in %ds", e.RetryAfterSec)
}

func (e *LimitedError) Is(target error) bool {
	return target == apperr.ErrRateLimited
}

// Limiter caps appeal messages per creator over a one and a ten minute window.
type Limiter struct {
	store         WindowStore
	perMinute     int
	perTenMinutes int
}

func NewLimiter(store WindowStore, perMinute, perTenMinutes int) *Limiter {
	if perMinute < 0 {
		perMinute = 0
	}
	if perTenMinutes < 0 {
		perTenMinutes = 0
	}

	return &Limiter{
		store:         store,
		perMinute:     perMinute,
		perTenMinutes: perTenMinutes,
	}
}

// AllowMessage counts one message for userID. Store failures fail closed.
func (l *Limiter) AllowMessage(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperr.Validation("sender_id", "sender is required")
	}
	if l == nil || (l.perMinute == 0 && l.perTenMinutes == 0) {
		return nil
	}
	if l.store == nil {
		return apperr.Dependency("rate limit", fmt.Errorf("rate limiter store is nil"))
	}

	retryAfterSec := int64(0)

	if l.perMinute > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, minuteKey(userID), minuteWindow)
		if err != nil {
			return apperr.Dependency("rate limit", err)
		}
		if count > int64(l.perMinute) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if l.perTenMinutes > 0 {
		count, ttl, err := l.store.IncrementWindow(ctx, tenMinuteKey(userID), tenMinuteWindow)
		if err != nil {
			return apperr.Dependency("rate limit", err)
		}
		if count > int64(l.perTenMinutes) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if retryAfterSec > 0 {
		return &LimitedError{RetryAfterSec: retryAfterSec}
	}
	return nil
}

// RetryAfter reports the remaining wait without counting a message.
func (l *Limiter) RetryAfter(ctx context.Context, userID string) (int64, error) {
	if l == nil || l.store == nil {
		return 0, nil
	}

	retryAfterSec := int64(0)

	if l.perMinute > 0 {
		count, ttl, err := l.store.WindowState(ctx, minuteKey(userID))
		if err != nil {
			return 0, apperr.Dependency("rate limit state", err)
		}
		if count >= int64(l.perMinute) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	if l.perTenMinutes > 0 {
		count, ttl, err := l.store.WindowState(ctx, tenMinuteKey(userID))
		if err != nil {
			return 0, apperr.Dependency("rate limit state", err)
		}
		if count >= int64(l.perTenMinutes) {
			retryAfterSec = maxInt64(retryAfterSec, ceilSeconds(ttl))
		}
	}

	return retryAfterSec, nil
}

func minuteKey(userID string) string {
	return "rate:appeal_msg:min:" + userID
}

func tenMinuteKey(userID string) string {
	return "rate:appeal_msg:10m:" + userID
}

func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 1
	}
	sec := int64(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	return sec
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
