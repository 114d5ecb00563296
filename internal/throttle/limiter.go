package throttle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is the pluggable submission throttle contract. The wizard and
// the intake endpoint only depend on this interface, so the local history
// heuristic can be swapped for a durable server-side implementation without
// touching either caller.
type RateLimiter interface {
	CanSubmit(ctx context.Context, deviceID, email string, now time.Time) (Decision, error)
	RecordSuccess(ctx context.Context, deviceID, email string, now time.Time) error
}

// =============================================================================
// Local limiter (history store + guard policy)
// =============================================================================

// LocalLimiter applies the guard policy against a device-keyed history store.
type LocalLimiter struct {
	store Store
}

// NewLocalLimiter creates a limiter over the given history store.
func NewLocalLimiter(store Store) *LocalLimiter {
	return &LocalLimiter{store: store}
}

// CanSubmit implements RateLimiter.
func (l *LocalLimiter) CanSubmit(ctx context.Context, deviceID, email string, now time.Time) (Decision, error) {
	h, err := l.store.Load(ctx, deviceID)
	if err != nil {
		return Decision{}, err
	}
	return CanSubmit(h, email, now), nil
}

// RecordSuccess implements RateLimiter. The history is read, advanced and
// written back as one local operation per submission.
func (l *LocalLimiter) RecordSuccess(ctx context.Context, deviceID, email string, now time.Time) error {
	h, err := l.store.Load(ctx, deviceID)
	if err != nil {
		return err
	}
	return l.store.Save(ctx, deviceID, RecordSuccess(h, email, now))
}

// =============================================================================
// Redis limiter
// =============================================================================

// RedisLimiter is the durable implementation of the same policy: cooldowns
// and the device lock are modeled as keys with TTLs, the lifetime counter as
// a plain counter that never expires.
type RedisLimiter struct {
	client *redis.Client
}

// NewRedisLimiter creates a limiter over an existing Redis client.
func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client}
}

func emailKey(email string) string   { return "lead:email:" + NormalizeEmail(email) }
func deviceKey(device string) string { return "lead:device:" + device }
func blockKey(device string) string  { return "lead:block:" + device }

// CanSubmit implements RateLimiter.
func (l *RedisLimiter) CanSubmit(ctx context.Context, deviceID, email string, now time.Time) (Decision, error) {
	blockTTL, err := l.client.TTL(ctx, blockKey(deviceID)).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("throttle: redis block check: %w", err)
	}
	if blockTTL > 0 {
		return Decision{Reason: ReasonDeviceBlocked, RetryAt: now.Add(blockTTL)}, nil
	}

	emailTTL, err := l.client.TTL(ctx, emailKey(email)).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("throttle: redis cooldown check: %w", err)
	}
	if emailTTL > 0 {
		return Decision{Reason: ReasonEmailCooldown, RetryAt: now.Add(emailTTL)}, nil
	}

	return Allowed, nil
}

// RecordSuccess implements RateLimiter.
func (l *RedisLimiter) RecordSuccess(ctx context.Context, deviceID, email string, now time.Time) error {
	if err := l.client.Set(ctx, emailKey(email), now.UnixMilli(), EmailCooldown).Err(); err != nil {
		return fmt.Errorf("throttle: redis cooldown set: %w", err)
	}

	count, err := l.client.Incr(ctx, deviceKey(deviceID)).Result()
	if err != nil {
		return fmt.Errorf("throttle: redis counter: %w", err)
	}

	if count >= DeviceLimit {
		if err := l.client.Set(ctx, blockKey(deviceID), now.UnixMilli(), DeviceLockout).Err(); err != nil {
			return fmt.Errorf("throttle: redis block set: %w", err)
		}
	}
	return nil
}

// SanitizeEmailKey reduces an email to the character set safe for cookie and
// storage key names: anything outside [a-z0-9] becomes an underscore.
func SanitizeEmailKey(email string) string {
	normalized := NormalizeEmail(email)
	var b strings.Builder
	b.Grow(len(normalized))
	for _, r := range normalized {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

var (
	_ RateLimiter = (*LocalLimiter)(nil)
	_ RateLimiter = (*RedisLimiter)(nil)
)
