package admin

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/audit"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/fraud"
)

const defaultRecordLimit = 50

// FraudHandler exposes the fraud review surface: listing and resolving fraud
// records, and lifting device/IP blocks.
type FraudHandler struct {
	records     fraud.RecordStore
	blocklist   fraud.BlocklistStore
	auditLogger audit.Logger
	logger      *slog.Logger
}

func NewFraudHandler(records fraud.RecordStore, blocklist fraud.BlocklistStore, auditLogger audit.Logger, logger *slog.Logger) *FraudHandler {
	return &FraudHandler{
		records:     records,
		blocklist:   blocklist,
		auditLogger: auditLogger,
		logger:      logger,
	}
}

type FraudRecordResponse struct {
	ID         uuid.UUID `json:"id"`
	ActorID    string    `json:"actor_id"`
	Timestamp  string    `json:"timestamp"`
	Type       string    `json:"type"`
	Severity   string    `json:"severity"`
	FraudScore float64   `json:"fraud_score"`
	Indicators []string  `json:"indicators"`
	Blocked    bool      `json:"blocked"`
	Resolved   bool      `json:"resolved"`
}

func toFraudRecordResponse(r domain.FraudRecord) FraudRecordResponse {
	return FraudRecordResponse{
		ID:         r.ID,
		ActorID:    r.ActorID,
		Timestamp:  r.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		Type:       string(r.Type),
		Severity:   string(r.Severity),
		FraudScore: r.FraudScore,
		Indicators: r.Indicators,
		Blocked:    r.Blocked,
		Resolved:   r.Resolved,
	}
}

// List GET /v1/admin/fraud-records?actor_id=&limit=
func (h *FraudHandler) List(c *fiber.Ctx) error {
	limit := defaultRecordLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			return domain.ErrValidationFailed.WithError(errors.New("limit must be between 1 and 500"))
		}
		limit = parsed
	}

	records, err := h.records.List(c.Context(), strings.TrimSpace(c.Query("actor_id")), limit)
	if err != nil {
		h.logger.Error("failed to list fraud records", "error", err)
		return domain.ErrInternal.WithError(err)
	}

	response := make([]FraudRecordResponse, 0, len(records))
	for _, r := range records {
		response = append(response, toFraudRecordResponse(r))
	}

	return c.JSON(fiber.Map{
		"records": response,
	})
}

// Get GET /v1/admin/fraud-records/:id
func (h *FraudHandler) Get(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(errors.New("invalid record id"))
	}

	record, err := h.records.Get(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(toFraudRecordResponse(*record))
}

type ResolveRequest struct {
	Resolved bool `json:"resolved"`
}

// Resolve POST /v1/admin/fraud-records/:id/resolve
func (h *FraudHandler) Resolve(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(errors.New("invalid record id"))
	}

	req := ResolveRequest{Resolved: true}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.ErrValidationFailed.WithError(err)
		}
	}

	if err := h.records.Resolve(c.Context(), id, req.Resolved); err != nil {
		return err
	}

	_ = h.auditLogger.Log(c.Context(), audit.Event{
		EventType: audit.EventFraudRecordResolved,
		Success:   true,
		Metadata: map[string]string{
			"record_id": id.String(),
			"resolved":  strconv.FormatBool(req.Resolved),
		},
	})

	return c.JSON(fiber.Map{
		"id":       id,
		"resolved": req.Resolved,
	})
}

type UnblockDeviceRequest struct {
	Fingerprint string `json:"fingerprint"`
}

// UnblockDevice POST /v1/admin/unblock/device
func (h *FraudHandler) UnblockDevice(c *fiber.Ctx) error {
	var req UnblockDeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	req.Fingerprint = strings.TrimSpace(req.Fingerprint)
	if req.Fingerprint == "" {
		return domain.ErrValidationFailed.WithError(errors.New("fingerprint is required"))
	}

	if err := h.blocklist.UnblockDevice(c.Context(), req.Fingerprint); err != nil {
		h.logger.Error("failed to unblock device", "fingerprint", req.Fingerprint, "error", err)
		return domain.ErrInternal.WithError(err)
	}

	_ = h.auditLogger.Log(c.Context(), audit.Event{
		EventType: audit.EventDeviceUnblocked,
		Success:   true,
		Metadata: map[string]string{
			"fingerprint": req.Fingerprint,
		},
	})

	h.logger.Info("device unblocked", "fingerprint", req.Fingerprint)

	return c.SendStatus(fiber.StatusNoContent)
}

type UnblockIPRequest struct {
	IPAddress string `json:"ip_address"`
}

// UnblockIP POST /v1/admin/unblock/ip
func (h *FraudHandler) UnblockIP(c *fiber.Ctx) error {
	var req UnblockIPRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	req.IPAddress = strings.TrimSpace(req.IPAddress)
	if req.IPAddress == "" {
		return domain.ErrValidationFailed.WithError(errors.New("ip_address is required"))
	}

	if err := h.blocklist.UnblockIP(c.Context(), req.IPAddress); err != nil {
		h.logger.Error("failed to unblock ip", "ip", req.IPAddress, "error", err)
		return domain.ErrInternal.WithError(err)
	}

	_ = h.auditLogger.Log(c.Context(), audit.Event{
		EventType: audit.EventIPUnblocked,
		Success:   true,
		Metadata: map[string]string{
			"ip_address": req.IPAddress,
		},
	})

	h.logger.Info("ip unblocked", "ip", req.IPAddress)

	return c.SendStatus(fiber.StatusNoContent)
}
