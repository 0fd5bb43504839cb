package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// FixRepository keeps the single last-known fix per actor, shared across
// instances so impossible-travel detection survives restarts.
type FixRepository struct {
	pool PgxPool
}

func NewFixRepository(pool PgxPool) *FixRepository {
	return &FixRepository{pool: pool}
}

func (r *FixRepository) LastFix(ctx context.Context, actorID string) (*domain.KnownFix, error) {
	query := `
		SELECT latitude, longitude, recorded_at
		FROM last_known_fixes
		WHERE actor_id = $1
	`

	var fix domain.KnownFix
	err := r.pool.QueryRow(ctx, query, actorID).Scan(
		&fix.Latitude,
		&fix.Longitude,
		&fix.RecordedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get last known fix: %w", err)
	}

	return &fix, nil
}

func (r *FixRepository) SaveFix(ctx context.Context, actorID string, fix domain.KnownFix) error {
	query := `
		INSERT INTO last_known_fixes (actor_id, latitude, longitude, recorded_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (actor_id) DO UPDATE
		SET latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			recorded_at = EXCLUDED.recorded_at
	`

	if _, err := r.pool.Exec(ctx, query, actorID, fix.Latitude, fix.Longitude, fix.RecordedAt); err != nil {
		return fmt.Errorf("save last known fix: %w", err)
	}
	return nil
}
