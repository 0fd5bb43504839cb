package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// GeofenceRepository stores the registered attendance perimeters. Polygon
// vertices are kept as JSONB so circle and polygon fences share one table.
type GeofenceRepository struct {
	pool PgxPool
}

func NewGeofenceRepository(pool PgxPool) *GeofenceRepository {
	return &GeofenceRepository{pool: pool}
}

func (r *GeofenceRepository) Create(ctx context.Context, fence domain.Geofence) error {
	query := `
		INSERT INTO geofences (id, name, kind, active, center_lat, center_lng, radius_meters, vertices, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`

	vertices, err := json.Marshal(fence.Vertices)
	if err != nil {
		return fmt.Errorf("marshal geofence vertices: %w", err)
	}

	_, err = r.pool.Exec(ctx, query,
		fence.ID,
		fence.Name,
		fence.Kind,
		fence.Active,
		fence.Center.Lat,
		fence.Center.Lng,
		fence.RadiusMeters,
		vertices,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrGeofenceExists
		}
		return fmt.Errorf("create geofence: %w", err)
	}

	return nil
}

// ListActive returns the fences attendance checks evaluate against.
func (r *GeofenceRepository) ListActive(ctx context.Context) ([]domain.Geofence, error) {
	return r.list(ctx, `
		SELECT id, name, kind, active, center_lat, center_lng, radius_meters, vertices
		FROM geofences
		WHERE active
		ORDER BY name
	`)
}

func (r *GeofenceRepository) List(ctx context.Context) ([]domain.Geofence, error) {
	return r.list(ctx, `
		SELECT id, name, kind, active, center_lat, center_lng, radius_meters, vertices
		FROM geofences
		ORDER BY name
	`)
}

func (r *GeofenceRepository) list(ctx context.Context, query string) ([]domain.Geofence, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list geofences: %w", err)
	}
	defer rows.Close()

	var fences []domain.Geofence
	for rows.Next() {
		var fence domain.Geofence
		var vertices []byte

		if err := rows.Scan(
			&fence.ID,
			&fence.Name,
			&fence.Kind,
			&fence.Active,
			&fence.Center.Lat,
			&fence.Center.Lng,
			&fence.RadiusMeters,
			&vertices,
		); err != nil {
			return nil, fmt.Errorf("scan geofence: %w", err)
		}

		if len(vertices) > 0 {
			if err := json.Unmarshal(vertices, &fence.Vertices); err != nil {
				return nil, fmt.Errorf("unmarshal geofence vertices: %w", err)
			}
		}

		fences = append(fences, fence)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate geofences: %w", err)
	}

	return fences, nil
}

// SetActive toggles a fence without deleting its definition.
func (r *GeofenceRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE geofences SET active = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("set geofence active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGeofenceNotFound
	}

	return nil
}

func (r *GeofenceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM geofences WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete geofence: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGeofenceNotFound
	}

	return nil
}
