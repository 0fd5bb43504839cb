package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/service"
	"github.com/saturnino-fabrica-de-software/presenca/internal/ws"
)

const (
	maxImageSize = 10 * 1024 * 1024 // 10MB
)

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// AttendanceService interface for the service
type AttendanceService interface {
	MarkAttendance(ctx context.Context, input service.MarkAttendanceInput) (*service.AttendanceResult, error)
}

// ActorLimiter caps attempts per actor inside a sliding window. The counter
// is shared across instances, unlike the per-IP limiter on the route.
type ActorLimiter interface {
	CheckAttemptLimit(ctx context.Context, actorID string, limit int) error
}

// DecisionFeed publishes evaluated attempts to live dashboard listeners.
type DecisionFeed interface {
	Broadcast(eventType ws.EventType, data interface{})
}

// AttendanceHandler handles attendance attempt requests
type AttendanceHandler struct {
	service      AttendanceService
	limiter      ActorLimiter
	attemptLimit int
	feed         DecisionFeed
	logger       *slog.Logger
}

// NewAttendanceHandler creates a new AttendanceHandler instance
func NewAttendanceHandler(service AttendanceService, logger *slog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		service: service,
		logger:  logger,
	}
}

// WithActorLimiter enables the per-actor attempt cap.
func (h *AttendanceHandler) WithActorLimiter(limiter ActorLimiter, limit int) *AttendanceHandler {
	h.limiter = limiter
	h.attemptLimit = limit
	return h
}

// WithDecisionFeed streams each evaluated attempt to the live feed.
func (h *AttendanceHandler) WithDecisionFeed(feed DecisionFeed) *AttendanceHandler {
	h.feed = feed
	return h
}

// Mark POST /v1/attendance - evaluate one attendance attempt
func (h *AttendanceHandler) Mark(c *fiber.Ctx) error {
	// 1. Extract required identity fields from form
	actorID := strings.TrimSpace(c.FormValue("actor_id"))
	if actorID == "" {
		return domain.ErrValidationFailed.WithError(errors.New("actor_id is required"))
	}

	fingerprint := strings.TrimSpace(c.FormValue("device_fingerprint"))
	if fingerprint == "" {
		return domain.ErrValidationFailed.WithError(errors.New("device_fingerprint is required"))
	}

	// 2. Enforce the per-actor attempt cap
	if h.limiter != nil {
		if err := h.limiter.CheckAttemptLimit(c.Context(), actorID, h.attemptLimit); err != nil {
			return err
		}
	}

	// 3. Parse the GPS fix
	gps, err := parseGPSFix(c)
	if err != nil {
		return err
	}

	// 4. Extract and validate the capture image
	imageBytes, err := extractAndValidateImage(c, "image")
	if err != nil {
		return fmt.Errorf("mark attendance: %w", err)
	}

	// 5. Run the trust pipeline
	result, err := h.service.MarkAttendance(c.Context(), service.MarkAttendanceInput{
		ActorID:           actorID,
		DeviceFingerprint: fingerprint,
		IPAddress:         c.IP(),
		UserAgent:         c.Get("User-Agent"),
		DeviceTimezone:    strings.TrimSpace(c.FormValue("device_timezone")),
		GPS:               gps,
		Image:             imageBytes,
	})
	if err != nil {
		return err
	}

	if h.feed != nil {
		h.feed.Broadcast(ws.EventDecision, result)
	}

	return c.JSON(result)
}

// parseGPSFix reads latitude, longitude and accuracy_meters from the form.
func parseGPSFix(c *fiber.Ctx) (domain.GPSFix, error) {
	lat, err := parseCoordinate(c.FormValue("latitude"), -90, 90)
	if err != nil {
		return domain.GPSFix{}, domain.ErrValidationFailed.WithError(fmt.Errorf("latitude: %w", err))
	}

	lng, err := parseCoordinate(c.FormValue("longitude"), -180, 180)
	if err != nil {
		return domain.GPSFix{}, domain.ErrValidationFailed.WithError(fmt.Errorf("longitude: %w", err))
	}

	fix := domain.GPSFix{Latitude: lat, Longitude: lng}

	if raw := strings.TrimSpace(c.FormValue("accuracy_meters")); raw != "" {
		accuracy, err := strconv.ParseFloat(raw, 64)
		if err != nil || accuracy < 0 {
			return domain.GPSFix{}, domain.ErrValidationFailed.WithError(errors.New("accuracy_meters must be a non-negative number"))
		}
		fix.AccuracyMeters = accuracy
	}

	return fix, nil
}

func parseCoordinate(raw string, min, max float64) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, errors.New("is required")
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.New("must be a number")
	}
	if value < min || value > max {
		return 0, fmt.Errorf("must be between %g and %g", min, max)
	}

	return value, nil
}

// extractAndValidateImage extracts and validates an image from the form
func extractAndValidateImage(c *fiber.Ctx, field string) ([]byte, error) {
	// 1. Extract file
	file, err := c.FormFile(field)
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	// 2. Validate size
	if file.Size > maxImageSize {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	if file.Size == 0 {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	// 3. Validate Content-Type
	contentType := file.Header.Get("Content-Type")
	if !validImageTypes[contentType] {
		return nil, domain.ErrInvalidImage.WithError(nil)
	}

	// 4. Read image bytes
	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	return imageBytes, nil
}
