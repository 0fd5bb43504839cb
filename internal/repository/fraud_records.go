package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// FraudRecordRepository is the append-only fraud record log. Records are never
// deleted; review resolves them in place.
type FraudRecordRepository struct {
	pool PgxPool
}

func NewFraudRecordRepository(pool PgxPool) *FraudRecordRepository {
	return &FraudRecordRepository{pool: pool}
}

func (r *FraudRecordRepository) Create(ctx context.Context, record domain.FraudRecord) error {
	query := `
		INSERT INTO fraud_records (id, actor_id, ts, fraud_type, severity, fraud_score, indicators, blocked, resolved)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.ActorID,
		record.Timestamp,
		record.Type,
		record.Severity,
		record.FraudScore,
		record.Indicators,
		record.Blocked,
		record.Resolved,
	)
	if err != nil {
		return fmt.Errorf("create fraud record: %w", err)
	}

	return nil
}

func (r *FraudRecordRepository) Get(ctx context.Context, id uuid.UUID) (*domain.FraudRecord, error) {
	query := `
		SELECT id, actor_id, ts, fraud_type, severity, fraud_score, indicators, blocked, resolved
		FROM fraud_records
		WHERE id = $1
	`

	record, err := scanFraudRecord(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFraudRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get fraud record: %w", err)
	}

	return record, nil
}

// List returns records newest first. An empty actorID lists across all actors.
func (r *FraudRecordRepository) List(ctx context.Context, actorID string, limit int) ([]domain.FraudRecord, error) {
	query := `
		SELECT id, actor_id, ts, fraud_type, severity, fraud_score, indicators, blocked, resolved
		FROM fraud_records
		WHERE ($1 = '' OR actor_id = $1)
		ORDER BY ts DESC, id
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, actorID, limit)
	if err != nil {
		return nil, fmt.Errorf("list fraud records: %w", err)
	}
	defer rows.Close()

	var records []domain.FraudRecord
	for rows.Next() {
		record, err := scanFraudRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fraud record: %w", err)
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fraud records: %w", err)
	}

	return records, nil
}

func (r *FraudRecordRepository) Resolve(ctx context.Context, id uuid.UUID, resolved bool) error {
	query := `UPDATE fraud_records SET resolved = $2 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, resolved)
	if err != nil {
		return fmt.Errorf("resolve fraud record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrFraudRecordNotFound
	}

	return nil
}

func scanFraudRecord(row pgx.Row) (*domain.FraudRecord, error) {
	var record domain.FraudRecord
	err := row.Scan(
		&record.ID,
		&record.ActorID,
		&record.Timestamp,
		&record.Type,
		&record.Severity,
		&record.FraudScore,
		&record.Indicators,
		&record.Blocked,
		&record.Resolved,
	)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
