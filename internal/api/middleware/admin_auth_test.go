package middleware

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

func adminTestApp(apiKey string) *fiber.App {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := err.(*domain.AppError); ok {
				return c.Status(appErr.StatusCode).JSON(appErr)
			}
			return c.Status(500).SendString(err.Error())
		},
	})

	app.Use(AdminAuth(AdminAuthConfig{APIKey: apiKey, Logger: logger}))
	app.Get("/admin", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	return app
}

func TestAdminAuth(t *testing.T) {
	tests := []struct {
		name           string
		configuredKey  string
		header         string
		value          string
		expectedStatus int
	}{
		{
			name:           "valid bearer token",
			configuredKey:  "secret-admin-key",
			header:         "Authorization",
			value:          "Bearer secret-admin-key",
			expectedStatus: 200,
		},
		{
			name:           "valid x-admin-key header",
			configuredKey:  "secret-admin-key",
			header:         "X-Admin-Key",
			value:          "secret-admin-key",
			expectedStatus: 200,
		},
		{
			name:           "wrong key",
			configuredKey:  "secret-admin-key",
			header:         "X-Admin-Key",
			value:          "wrong-key",
			expectedStatus: 401,
		},
		{
			name:           "missing credentials",
			configuredKey:  "secret-admin-key",
			expectedStatus: 401,
		},
		{
			name:           "unconfigured key rejects everything",
			configuredKey:  "",
			header:         "X-Admin-Key",
			value:          "anything",
			expectedStatus: 401,
		},
		{
			name:           "bearer prefix without key",
			configuredKey:  "secret-admin-key",
			header:         "Authorization",
			value:          "Bearer ",
			expectedStatus: 401,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := adminTestApp(tt.configuredKey)

			req := httptest.NewRequest("GET", "/admin", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}

			resp, err := app.Test(req)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestAdminAuth_SessionToken(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	validate := func(token string) error {
		if token == "valid-session-token" {
			return nil
		}
		return domain.ErrUnauthorized
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if appErr, ok := err.(*domain.AppError); ok {
				return c.Status(appErr.StatusCode).JSON(appErr)
			}
			return c.Status(500).SendString(err.Error())
		},
	})
	app.Use(AdminAuth(AdminAuthConfig{
		APIKey:        "secret-admin-key",
		ValidateToken: validate,
		Logger:        logger,
	}))
	app.Get("/admin", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})

	tests := []struct {
		name           string
		value          string
		expectedStatus int
	}{
		{"static key still works", "Bearer secret-admin-key", 200},
		{"valid session token", "Bearer valid-session-token", 200},
		{"invalid session token", "Bearer forged-token", 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/admin", nil)
			req.Header.Set("Authorization", tt.value)

			resp, err := app.Test(req)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}
