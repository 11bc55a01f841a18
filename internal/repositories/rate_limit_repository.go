package repositories

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

// RateLimitRepository provides an atomic way to check and increment rate limit counters.
type RateLimitRepository interface {
	// IncrementAndCheck atomically increments a counter for the given key and checks if it exceeds the limit.
	// It returns true if the request is allowed (count <= limit), and false otherwise.
	IncrementAndCheck(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	// CleanupExpired removes all counter keys that have expired.
	CleanupExpired(ctx context.Context) error
}

type rateLimitRepository struct {
	db DB
}

func NewRateLimitRepository(db DB) RateLimitRepository {
	return &rateLimitRepository{db: db}
}

func (r *rateLimitRepository) IncrementAndCheck(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	query := `
        INSERT INTO rate_limit_attempts (key, attempt_count, expires_at)
        VALUES ($1, 1, NOW() + $2::interval)
        ON CONFLICT (key) DO UPDATE
        SET attempt_count = CASE
            WHEN rate_limit_attempts.expires_at < NOW() THEN 1
            ELSE rate_limit_attempts.attempt_count + 1
        END,
        expires_at = CASE
            WHEN rate_limit_attempts.expires_at < NOW() THEN NOW() + $2::interval
            ELSE rate_limit_attempts.expires_at
        END
        RETURNING attempt_count;
    `

	var currentCount int
	err := r.db.QueryRow(ctx, query, key, window).Scan(&currentCount)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("%w: rate limit counter: %v", utils.ErrStoreUnavailable, err)
	}

	return currentCount <= limit, nil
}

func (r *rateLimitRepository) CleanupExpired(ctx context.Context) error {
	query := `DELETE FROM rate_limit_attempts WHERE expires_at < NOW()`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("%w: cleanup rate limit counters: %v", utils.ErrStoreUnavailable, err)
	}
	return nil
}

// ---------------------------------------------------------------------
// In-memory counters (STORE_BACKEND=memory)
// ---------------------------------------------------------------------

type rateLimitCounter struct {
	count     int
	expiresAt time.Time
}

type memoryRateLimitRepository struct {
	mu       sync.Mutex
	counters map[string]*rateLimitCounter
}

func NewMemoryRateLimitRepository() RateLimitRepository {
	return &memoryRateLimitRepository{counters: make(map[string]*rateLimitCounter)}
}

func (r *memoryRateLimitRepository) IncrementAndCheck(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	c, ok := r.counters[key]
	if !ok || now.After(c.expiresAt) {
		r.counters[key] = &rateLimitCounter{count: 1, expiresAt: now.Add(window)}
		return 1 <= limit, nil
	}
	c.count++
	return c.count <= limit, nil
}

func (r *memoryRateLimitRepository) CleanupExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for key, c := range r.counters {
		if now.After(c.expiresAt) {
			delete(r.counters, key)
		}
	}
	return nil
}
