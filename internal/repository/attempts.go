package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// AttemptRepository is the rolling per-actor attendance attempt history.
// Retention is enforced on append: anything beyond the newest
// domain.AttemptHistoryCap rows per actor is deleted.
type AttemptRepository struct {
	pool PgxPool
}

func NewAttemptRepository(pool PgxPool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

func (r *AttemptRepository) Append(ctx context.Context, attempt domain.AttendanceAttempt) error {
	query := `
		INSERT INTO attendance_attempts
			(id, actor_id, ts, device_fingerprint, ip_address, gps, liveness, location, succeeded, blocked, fraud_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	gps, err := json.Marshal(attempt.GPS)
	if err != nil {
		return fmt.Errorf("marshal gps fix: %w", err)
	}

	liveness, err := marshalNullable(attempt.Liveness)
	if err != nil {
		return fmt.Errorf("marshal liveness result: %w", err)
	}
	location, err := marshalNullable(attempt.Location)
	if err != nil {
		return fmt.Errorf("marshal location result: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		attempt.ID,
		attempt.ActorID,
		attempt.Timestamp,
		attempt.DeviceFingerprint,
		attempt.IPAddress,
		gps,
		liveness,
		location,
		attempt.Succeeded,
		attempt.Blocked,
		attempt.FraudScore,
	)
	if err != nil {
		return fmt.Errorf("append attempt: %w", err)
	}

	return r.trim(ctx, attempt.ActorID)
}

// trim evicts rows beyond the retention cap, oldest first.
func (r *AttemptRepository) trim(ctx context.Context, actorID string) error {
	query := `
		DELETE FROM attendance_attempts
		WHERE actor_id = $1 AND id NOT IN (
			SELECT id FROM attendance_attempts
			WHERE actor_id = $1
			ORDER BY ts DESC, id
			LIMIT $2
		)
	`

	if _, err := r.pool.Exec(ctx, query, actorID, domain.AttemptHistoryCap); err != nil {
		return fmt.Errorf("trim attempt history: %w", err)
	}
	return nil
}

func (r *AttemptRepository) Recent(ctx context.Context, actorID string, limit int) ([]domain.AttendanceAttempt, error) {
	query := `
		SELECT id, actor_id, ts, device_fingerprint, ip_address, gps, liveness, location, succeeded, blocked, fraud_score
		FROM attendance_attempts
		WHERE actor_id = $1
		ORDER BY ts DESC, id
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, actorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.AttendanceAttempt
	for rows.Next() {
		var attempt domain.AttendanceAttempt
		var gps, liveness, location []byte

		if err := rows.Scan(
			&attempt.ID,
			&attempt.ActorID,
			&attempt.Timestamp,
			&attempt.DeviceFingerprint,
			&attempt.IPAddress,
			&gps,
			&liveness,
			&location,
			&attempt.Succeeded,
			&attempt.Blocked,
			&attempt.FraudScore,
		); err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}

		if err := json.Unmarshal(gps, &attempt.GPS); err != nil {
			return nil, fmt.Errorf("unmarshal gps fix: %w", err)
		}
		if err := unmarshalNullable(liveness, &attempt.Liveness); err != nil {
			return nil, fmt.Errorf("unmarshal liveness result: %w", err)
		}
		if err := unmarshalNullable(location, &attempt.Location); err != nil {
			return nil, fmt.Errorf("unmarshal location result: %w", err)
		}

		attempts = append(attempts, attempt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attempts: %w", err)
	}

	return attempts, nil
}

func (r *AttemptRepository) CountSince(ctx context.Context, actorID string, cutoff time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM attendance_attempts
		WHERE actor_id = $1 AND ts >= $2
	`

	var count int
	if err := r.pool.QueryRow(ctx, query, actorID, cutoff).Scan(&count); err != nil {
		return 0, fmt.Errorf("count attempts since cutoff: %w", err)
	}
	return count, nil
}

func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalNullable[T any](data []byte, out **T) error {
	if len(data) == 0 {
		*out = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*out = &v
	return nil
}
