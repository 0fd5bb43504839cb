package admin

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// GeofenceStore is the administrative fence registry.
type GeofenceStore interface {
	Create(ctx context.Context, fence domain.Geofence) error
	List(ctx context.Context) ([]domain.Geofence, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// GeofenceHandler manages the registered attendance perimeters.
type GeofenceHandler struct {
	store  GeofenceStore
	logger *slog.Logger
}

func NewGeofenceHandler(store GeofenceStore, logger *slog.Logger) *GeofenceHandler {
	return &GeofenceHandler{
		store:  store,
		logger: logger,
	}
}

type CreateGeofenceRequest struct {
	Name         string          `json:"name"`
	Kind         string          `json:"kind"`
	Center       *domain.LatLng  `json:"center,omitempty"`
	RadiusMeters float64         `json:"radius_meters,omitempty"`
	Vertices     []domain.LatLng `json:"vertices,omitempty"`
}

// List GET /v1/admin/geofences
func (h *GeofenceHandler) List(c *fiber.Ctx) error {
	fences, err := h.store.List(c.Context())
	if err != nil {
		h.logger.Error("failed to list geofences", "error", err)
		return domain.ErrInternal.WithError(err)
	}

	if fences == nil {
		fences = []domain.Geofence{}
	}

	return c.JSON(fiber.Map{
		"geofences": fences,
	})
}

// Create POST /v1/admin/geofences
func (h *GeofenceHandler) Create(c *fiber.Ctx) error {
	var req CreateGeofenceRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	fence, err := fenceFromRequest(req)
	if err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	if err := h.store.Create(c.Context(), fence); err != nil {
		return err
	}

	h.logger.Info("geofence created",
		"geofence_id", fence.ID,
		"name", fence.Name,
		"kind", fence.Kind,
	)

	return c.Status(fiber.StatusCreated).JSON(fence)
}

func fenceFromRequest(req CreateGeofenceRequest) (domain.Geofence, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Geofence{}, errors.New("name is required")
	}

	fence := domain.Geofence{
		ID:     uuid.New(),
		Name:   name,
		Active: true,
	}

	switch domain.GeofenceKind(req.Kind) {
	case domain.GeofenceRadius:
		if req.Center == nil {
			return domain.Geofence{}, errors.New("center is required for radius fences")
		}
		if req.RadiusMeters <= 0 {
			return domain.Geofence{}, errors.New("radius_meters must be positive")
		}
		fence.Kind = domain.GeofenceRadius
		fence.Center = *req.Center
		fence.RadiusMeters = req.RadiusMeters
	case domain.GeofencePolygon:
		if len(req.Vertices) < 3 {
			return domain.Geofence{}, errors.New("polygon fences need at least 3 vertices")
		}
		fence.Kind = domain.GeofencePolygon
		fence.Vertices = req.Vertices
	default:
		return domain.Geofence{}, errors.New("kind must be radius or polygon")
	}

	return fence, nil
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

// SetActive PATCH /v1/admin/geofences/:id/active
func (h *GeofenceHandler) SetActive(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(errors.New("invalid geofence id"))
	}

	var req SetActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	if err := h.store.SetActive(c.Context(), id, req.Active); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"id":     id,
		"active": req.Active,
	})
}

// Delete DELETE /v1/admin/geofences/:id
func (h *GeofenceHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(errors.New("invalid geofence id"))
	}

	if err := h.store.Delete(c.Context(), id); err != nil {
		return err
	}

	h.logger.Info("geofence deleted", "geofence_id", id)

	return c.SendStatus(fiber.StatusNoContent)
}
