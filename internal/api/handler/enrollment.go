package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// EnrollmentService interface for the service
type EnrollmentService interface {
	Enroll(ctx context.Context, actorID string, captures [][]byte) (*domain.FaceEmbedding, error)
}

// EnrollmentHandler handles face template enrollment
type EnrollmentHandler struct {
	service EnrollmentService
	logger  *slog.Logger
}

// NewEnrollmentHandler creates a new EnrollmentHandler instance
func NewEnrollmentHandler(service EnrollmentService, logger *slog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		service: service,
		logger:  logger,
	}
}

// EnrollResponse response for enroll endpoint
type EnrollResponse struct {
	ActorID           string  `json:"actor_id"`
	AlgorithmID       string  `json:"algorithm_id"`
	QualityConfidence float64 `json:"quality_confidence"`
	CapturedAt        string  `json:"captured_at"`
}

// Enroll POST /v1/enroll - register an actor's face template
func (h *EnrollmentHandler) Enroll(c *fiber.Ctx) error {
	// 1. Extract actor_id from form
	actorID := strings.TrimSpace(c.FormValue("actor_id"))
	if actorID == "" {
		return domain.ErrValidationFailed.WithError(errors.New("actor_id is required"))
	}

	// 2. Extract the capture images
	captures, err := extractCaptures(c)
	if err != nil {
		return fmt.Errorf("enroll: %w", err)
	}

	// 3. Call service to enroll
	template, err := h.service.Enroll(c.Context(), actorID, captures)
	if err != nil {
		return err
	}

	// 4. Return response
	return c.Status(fiber.StatusCreated).JSON(EnrollResponse{
		ActorID:           actorID,
		AlgorithmID:       template.AlgorithmID,
		QualityConfidence: template.QualityConfidence,
		CapturedAt:        template.CapturedAt.Format("2006-01-02T15:04:05Z"),
	})
}

// extractCaptures reads every "images" part from the multipart form.
func extractCaptures(c *fiber.Ctx) ([][]byte, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	files := form.File["images"]
	if len(files) == 0 {
		return nil, domain.ErrNoEnrollmentCaptures
	}

	captures := make([][]byte, 0, len(files))
	for _, file := range files {
		if file.Size == 0 || file.Size > maxImageSize {
			return nil, domain.ErrInvalidImage.WithError(nil)
		}
		if !validImageTypes[file.Header.Get("Content-Type")] {
			return nil, domain.ErrInvalidImage.WithError(nil)
		}

		f, err := file.Open()
		if err != nil {
			return nil, domain.ErrInvalidImage.WithError(err)
		}

		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, domain.ErrInvalidImage.WithError(err)
		}

		captures = append(captures, data)
	}

	return captures, nil
}
