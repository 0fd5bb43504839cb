package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AggregationType defines how metrics are aggregated
type AggregationType string

const (
	AggregationSum   AggregationType = "sum"
	AggregationAvg   AggregationType = "avg"
	AggregationCount AggregationType = "count"
	AggregationMax   AggregationType = "max"
)

// Metric names computed from the attempt history and fraud records.
const (
	MetricAttempts       = "attempts"
	MetricAccepted       = "accepted_attempts"
	MetricFailed         = "failed_attempts"
	MetricBlocked        = "blocked_attempts"
	MetricFraudRecords   = "fraud_records"
	MetricAvgFraudScore  = "avg_fraud_score"
	MetricDistinctActors = "distinct_actors"
)

// AggregatedMetric represents a pre-computed metric
type AggregatedMetric struct {
	ID              uuid.UUID       `json:"id"`
	MetricName      string          `json:"metric_name"`
	MetricValue     float64         `json:"metric_value"`
	AggregationType AggregationType `json:"aggregation_type"`
	PeriodStart     time.Time       `json:"period_start"`
	PeriodEnd       time.Time       `json:"period_end"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Snapshot summarizes attendance activity over one window.
type Snapshot struct {
	WindowStart            time.Time `json:"window_start"`
	WindowEnd              time.Time `json:"window_end"`
	Attempts               int64     `json:"attempts"`
	Accepted               int64     `json:"accepted"`
	Blocked                int64     `json:"blocked"`
	DistinctActors         int64     `json:"distinct_actors"`
	AvgFraudScore          float64   `json:"avg_fraud_score"`
	FraudRecords           int64     `json:"fraud_records"`
	UnresolvedFraudRecords int64     `json:"unresolved_fraud_records"`
}

// DB interface for database operations
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Repository handles database operations for metrics
type Repository struct {
	db DB
}

// NewRepository creates a new metrics repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// NewRepositoryWithDB creates a repository with a custom DB interface
func NewRepositoryWithDB(db DB) *Repository {
	return &Repository{db: db}
}

// GetMetricValue computes one metric live from the attempt history or the
// fraud records, scoped to the given window.
func (r *Repository) GetMetricValue(ctx context.Context, metricName, aggregation string, windowStart, windowEnd time.Time) (float64, error) {
	var query string

	switch metricName {
	case MetricAttempts:
		query = `SELECT COUNT(*) FROM attendance_attempts WHERE ts >= $1 AND ts < $2`
	case MetricAccepted:
		query = `SELECT COUNT(*) FROM attendance_attempts WHERE ts >= $1 AND ts < $2 AND succeeded`
	case MetricFailed:
		query = `SELECT COUNT(*) FROM attendance_attempts WHERE ts >= $1 AND ts < $2 AND NOT succeeded`
	case MetricBlocked:
		query = `SELECT COUNT(*) FROM attendance_attempts WHERE ts >= $1 AND ts < $2 AND blocked`
	case MetricDistinctActors:
		query = `SELECT COUNT(DISTINCT actor_id) FROM attendance_attempts WHERE ts >= $1 AND ts < $2`
	case MetricAvgFraudScore:
		query = `SELECT COALESCE(AVG(fraud_score), 0) FROM attendance_attempts WHERE ts >= $1 AND ts < $2`
	case MetricFraudRecords:
		query = `SELECT COUNT(*) FROM fraud_records WHERE ts >= $1 AND ts < $2`
	default:
		return 0, fmt.Errorf("unknown metric: %s", metricName)
	}

	var value float64
	if err := r.db.QueryRow(ctx, query, windowStart, windowEnd).Scan(&value); err != nil {
		return 0, fmt.Errorf("get metric %s: %w", metricName, err)
	}

	return value, nil
}

// Snapshot summarizes the window for the admin stats endpoint.
func (r *Repository) Snapshot(ctx context.Context, windowStart, windowEnd time.Time) (*Snapshot, error) {
	s := &Snapshot{
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
	}

	attemptsQuery := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE succeeded),
		       COUNT(*) FILTER (WHERE blocked),
		       COUNT(DISTINCT actor_id),
		       COALESCE(AVG(fraud_score), 0)
		FROM attendance_attempts
		WHERE ts >= $1 AND ts < $2
	`

	err := r.db.QueryRow(ctx, attemptsQuery, windowStart, windowEnd).Scan(
		&s.Attempts, &s.Accepted, &s.Blocked, &s.DistinctActors, &s.AvgFraudScore,
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot attempts: %w", err)
	}

	fraudQuery := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE NOT resolved)
		FROM fraud_records
		WHERE ts >= $1 AND ts < $2
	`

	err = r.db.QueryRow(ctx, fraudQuery, windowStart, windowEnd).Scan(
		&s.FraudRecords, &s.UnresolvedFraudRecords,
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot fraud records: %w", err)
	}

	return s, nil
}

// SaveMetric stores an aggregated metric
func (r *Repository) SaveMetric(ctx context.Context, metric *AggregatedMetric) error {
	query := `
		INSERT INTO metrics_aggregated (
			metric_name, metric_value, aggregation_type, period_start, period_end
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (metric_name, aggregation_type, period_start)
		DO UPDATE SET
			metric_value = EXCLUDED.metric_value,
			period_end = EXCLUDED.period_end
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query,
		metric.MetricName,
		metric.MetricValue,
		metric.AggregationType,
		metric.PeriodStart,
		metric.PeriodEnd,
	).Scan(&metric.ID, &metric.CreatedAt)

	return err
}

// GetSeries retrieves stored metric points within a time range
func (r *Repository) GetSeries(
	ctx context.Context,
	metricName string,
	aggregationType AggregationType,
	start, end time.Time,
) ([]*AggregatedMetric, error) {
	query := `
		SELECT id, metric_name, metric_value, aggregation_type,
		       period_start, period_end, created_at
		FROM metrics_aggregated
		WHERE metric_name = $1
		  AND aggregation_type = $2
		  AND period_start >= $3
		  AND period_end <= $4
		ORDER BY period_start ASC
	`

	rows, err := r.db.Query(ctx, query, metricName, aggregationType, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var metrics []*AggregatedMetric
	for rows.Next() {
		metric := &AggregatedMetric{}
		err := rows.Scan(
			&metric.ID,
			&metric.MetricName,
			&metric.MetricValue,
			&metric.AggregationType,
			&metric.PeriodStart,
			&metric.PeriodEnd,
			&metric.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		metrics = append(metrics, metric)
	}

	return metrics, rows.Err()
}

// DeleteOldMetrics removes metrics older than the specified duration
func (r *Repository) DeleteOldMetrics(ctx context.Context, olderThan time.Duration) (int64, error) {
	query := `
		DELETE FROM metrics_aggregated
		WHERE period_end < $1
	`

	cutoff := time.Now().Add(-olderThan)
	result, err := r.db.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}
