package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// EnrollmentRepository stores one registered face template per actor.
type EnrollmentRepository struct {
	pool PgxPool
}

func NewEnrollmentRepository(pool PgxPool) *EnrollmentRepository {
	return &EnrollmentRepository{pool: pool}
}

// Save upserts the actor's template. Re-enrollment overwrites the previous
// template in place.
func (r *EnrollmentRepository) Save(ctx context.Context, actorID string, template domain.FaceEmbedding) error {
	query := `
		INSERT INTO enrollment_templates (actor_id, embedding, algorithm_id, captured_at, quality_confidence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (actor_id) DO UPDATE
		SET embedding = EXCLUDED.embedding,
			algorithm_id = EXCLUDED.algorithm_id,
			captured_at = EXCLUDED.captured_at,
			quality_confidence = EXCLUDED.quality_confidence,
			updated_at = NOW()
	`

	_, err := r.pool.Exec(ctx, query,
		actorID,
		toVector(template.Vector),
		template.AlgorithmID,
		template.CapturedAt,
		template.QualityConfidence,
	)
	if err != nil {
		return fmt.Errorf("save enrollment template: %w", err)
	}

	return nil
}

func (r *EnrollmentRepository) Get(ctx context.Context, actorID string) (*domain.FaceEmbedding, error) {
	query := `
		SELECT embedding, algorithm_id, captured_at, quality_confidence
		FROM enrollment_templates
		WHERE actor_id = $1
	`

	var template domain.FaceEmbedding
	var embedding pgvector.Vector

	err := r.pool.QueryRow(ctx, query, actorID).Scan(
		&embedding,
		&template.AlgorithmID,
		&template.CapturedAt,
		&template.QualityConfidence,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get enrollment template: %w", err)
	}

	template.Vector = fromVector(embedding)
	return &template, nil
}

// toVector converts to the float32 representation pgvector stores.
func toVector(v []float64) pgvector.Vector {
	floats := make([]float32, len(v))
	for i, x := range v {
		floats[i] = float32(x)
	}
	return pgvector.NewVector(floats)
}

func fromVector(vec pgvector.Vector) []float64 {
	s := vec.Slice()
	if s == nil {
		return nil
	}
	out := make([]float64, len(s))
	for i, x := range s {
		out[i] = float64(x)
	}
	return out
}
