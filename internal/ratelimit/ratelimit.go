// Package ratelimit provides PostgreSQL-backed sliding window rate limiting
// for attendance attempts. Unlike the in-memory per-IP limiter in the HTTP
// layer, these counters are shared across instances and keyed by actor, so a
// device hopping between replicas still hits the same window.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// DB interface for database operations
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// ActorLimiter provides PostgreSQL-based rate limiting with sliding window
type ActorLimiter struct {
	db     DB
	window time.Duration
}

// NewActorLimiter creates a new rate limiter with sliding window
func NewActorLimiter(db *pgxpool.Pool, window time.Duration) *ActorLimiter {
	return &ActorLimiter{
		db:     db,
		window: window,
	}
}

// NewActorLimiterWithDB creates a rate limiter with custom DB interface
func NewActorLimiterWithDB(db DB, window time.Duration) *ActorLimiter {
	return &ActorLimiter{
		db:     db,
		window: window,
	}
}

// CheckAttemptLimit counts this attempt against the actor's window and
// returns domain.ErrRateLimitExceeded once the limit is passed. A limit of
// zero or less disables the check.
func (r *ActorLimiter) CheckAttemptLimit(ctx context.Context, actorID string, limit int) error {
	if limit <= 0 {
		return nil
	}

	now := time.Now()
	windowStart := now.Add(-r.window)
	key := fmt.Sprintf("attempt_rate:%s", actorID)

	// Use ON CONFLICT to atomically increment or insert counter
	query := `
		WITH current_count AS (
			INSERT INTO rate_limit_counters (key, count, window_start, window_end, actor_id)
			VALUES ($1, 1, $2, $3, $4)
			ON CONFLICT (key)
			DO UPDATE SET
				count = CASE
					WHEN rate_limit_counters.window_end < $2 THEN 1
					ELSE rate_limit_counters.count + 1
				END,
				window_start = CASE
					WHEN rate_limit_counters.window_end < $2 THEN $2
					ELSE rate_limit_counters.window_start
				END,
				window_end = $3
			RETURNING count, window_start
		)
		SELECT count FROM current_count
	`

	var count int
	err := r.db.QueryRow(ctx, query, key, windowStart, now, actorID).Scan(&count)
	if err != nil {
		return fmt.Errorf("check attempt rate limit: %w", err)
	}

	if count > limit {
		return domain.ErrRateLimitExceeded
	}

	return nil
}

// CleanupExpired removes expired rate limit counters (run via cron)
func (r *ActorLimiter) CleanupExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM rate_limit_counters WHERE window_end < NOW() - INTERVAL '1 hour'`
	result, err := r.db.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

// GetCurrentCount returns the current count for an actor (for monitoring)
func (r *ActorLimiter) GetCurrentCount(ctx context.Context, actorID string) (int, error) {
	key := fmt.Sprintf("attempt_rate:%s", actorID)
	windowStart := time.Now().Add(-r.window)

	query := `
		SELECT count
		FROM rate_limit_counters
		WHERE key = $1 AND window_end > $2
	`

	var count int
	err := r.db.QueryRow(ctx, query, key, windowStart).Scan(&count)
	if err != nil {
		return 0, nil // No records = 0 count
	}

	return count, nil
}

// ResetLimit resets the rate limit for an actor (admin operation)
func (r *ActorLimiter) ResetLimit(ctx context.Context, actorID string) error {
	key := fmt.Sprintf("attempt_rate:%s", actorID)
	query := `DELETE FROM rate_limit_counters WHERE key = $1`
	_, err := r.db.Exec(ctx, query, key)
	return err
}
