package admin

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// TokenIssuer mints short-lived admin session tokens.
type TokenIssuer interface {
	GenerateToken() (string, error)
	ExpiresIn() time.Duration
}

// SessionHandler exchanges the static admin key for a session token.
type SessionHandler struct {
	tokens TokenIssuer
	logger *slog.Logger
}

func NewSessionHandler(tokens TokenIssuer, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		tokens: tokens,
		logger: logger,
	}
}

type SessionResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// Create POST /v1/admin/session
func (h *SessionHandler) Create(c *fiber.Ctx) error {
	token, err := h.tokens.GenerateToken()
	if err != nil {
		h.logger.Error("failed to issue session token", "error", err)
		return domain.ErrInternal.WithError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(SessionResponse{
		Token:     token,
		ExpiresIn: int(h.tokens.ExpiresIn().Seconds()),
	})
}
