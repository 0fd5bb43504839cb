// Package metrics computes attendance activity metrics from the attempt
// history and fraud records, and rolls them up into hourly points for the
// stats endpoint and the alert engine.
package metrics

import (
	"context"
	"log/slog"
	"time"
)

const metricsRetention = 90 * 24 * time.Hour

// hourlyMetrics are rolled up by the aggregator each tick.
var hourlyMetrics = []struct {
	name        string
	aggregation AggregationType
}{
	{MetricAttempts, AggregationCount},
	{MetricAccepted, AggregationCount},
	{MetricFailed, AggregationCount},
	{MetricBlocked, AggregationCount},
	{MetricFraudRecords, AggregationCount},
	{MetricDistinctActors, AggregationCount},
	{MetricAvgFraudScore, AggregationAvg},
}

// Aggregator performs periodic metrics aggregation
type Aggregator struct {
	repo     *Repository
	logger   *slog.Logger
	interval time.Duration
	now      func() time.Time
	done     chan struct{}
}

// NewAggregator creates a new metrics aggregator worker
func NewAggregator(repo *Repository, logger *slog.Logger, interval time.Duration) *Aggregator {
	if interval == 0 {
		interval = 1 * time.Minute
	}

	return &Aggregator{
		repo:     repo,
		logger:   logger,
		interval: interval,
		now:      time.Now,
		done:     make(chan struct{}),
	}
}

// Start begins the aggregation worker
func (a *Aggregator) Start(ctx context.Context) {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.Info("metrics aggregator started", "interval", a.interval)

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("metrics aggregator stopped")
			return
		case <-a.done:
			a.logger.Info("metrics aggregator stopped")
			return
		case <-ticker.C:
			a.aggregate(ctx)
		}
	}
}

// Stop gracefully shuts down the aggregator
func (a *Aggregator) Stop() {
	close(a.done)
}

// aggregate rolls up the current hour so far, upserting on each tick.
func (a *Aggregator) aggregate(ctx context.Context) {
	a.logger.Debug("running metrics aggregation")

	now := a.now()
	periodStart := now.Truncate(time.Hour)

	for _, m := range hourlyMetrics {
		value, err := a.repo.GetMetricValue(ctx, m.name, string(m.aggregation), periodStart, now)
		if err != nil {
			a.logger.Error("failed to compute metric", "metric", m.name, "error", err)
			continue
		}

		metric := &AggregatedMetric{
			MetricName:      m.name,
			MetricValue:     value,
			AggregationType: m.aggregation,
			PeriodStart:     periodStart,
			PeriodEnd:       now,
		}

		if err := a.repo.SaveMetric(ctx, metric); err != nil {
			a.logger.Error("failed to save metric", "metric", m.name, "error", err)
		}
	}

	deleted, err := a.repo.DeleteOldMetrics(ctx, metricsRetention)
	if err != nil {
		a.logger.Error("failed to delete old metrics", "error", err)
	} else if deleted > 0 {
		a.logger.Info("deleted old metrics", "count", deleted)
	}
}
