package admin

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/metrics"
)

const (
	defaultStatsWindowHours = 24
	maxStatsWindowHours     = 720
)

// StatsProvider summarizes attendance activity for one window.
type StatsProvider interface {
	Snapshot(ctx context.Context, windowStart, windowEnd time.Time) (*metrics.Snapshot, error)
}

// StatsHandler exposes aggregate attendance statistics.
type StatsHandler struct {
	metrics StatsProvider
	logger  *slog.Logger
}

func NewStatsHandler(metrics StatsProvider, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{
		metrics: metrics,
		logger:  logger,
	}
}

// Get GET /v1/admin/stats?hours=
func (h *StatsHandler) Get(c *fiber.Ctx) error {
	hours := defaultStatsWindowHours
	if raw := c.Query("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxStatsWindowHours {
			return domain.ErrValidationFailed.WithError(errors.New("hours must be between 1 and 720"))
		}
		hours = parsed
	}

	windowEnd := time.Now().UTC()
	windowStart := windowEnd.Add(-time.Duration(hours) * time.Hour)

	snapshot, err := h.metrics.Snapshot(c.Context(), windowStart, windowEnd)
	if err != nil {
		h.logger.Error("failed to compute stats snapshot", "error", err)
		return domain.ErrInternal.WithError(err)
	}

	return c.JSON(snapshot)
}
