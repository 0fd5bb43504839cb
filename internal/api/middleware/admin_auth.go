package middleware

import (
	"crypto/subtle"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// AdminAuthConfig holds configuration for the admin review surface.
type AdminAuthConfig struct {
	// APIKey is the shared key required on every admin request.
	APIKey string
	// ValidateToken, when set, also accepts bearer session tokens issued
	// in exchange for the key.
	ValidateToken func(token string) error
	Logger        *slog.Logger
}

// AdminAuth guards the admin routes. Credentials are accepted either as
// "Authorization: Bearer <key-or-token>" or in the X-Admin-Key header.
func AdminAuth(cfg AdminAuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.APIKey == "" {
			cfg.Logger.Error("admin api key not configured, rejecting request",
				slog.String("path", c.Path()),
			)
			return domain.ErrUnauthorized
		}

		provided := extractAdminKey(c)
		if provided == "" {
			cfg.Logger.Debug("missing admin credentials", slog.String("path", c.Path()))
			return domain.ErrUnauthorized
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.APIKey)) == 1 {
			return c.Next()
		}

		if cfg.ValidateToken != nil {
			if err := cfg.ValidateToken(provided); err == nil {
				return c.Next()
			}
		}

		cfg.Logger.Warn("invalid admin credentials",
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
		)
		return domain.ErrUnauthorized
	}
}

func extractAdminKey(c *fiber.Ctx) string {
	if auth := c.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return strings.TrimSpace(c.Get("X-Admin-Key"))
}
