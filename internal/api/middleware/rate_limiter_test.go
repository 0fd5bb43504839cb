package middleware

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	t.Run("allows requests within limit", func(t *testing.T) {
		config := RateLimiterConfig{
			Max:    5,
			Window: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return "client-a"
			},
		}

		rl := NewRateLimiter(config)

		app := fiber.New()
		app.Use(rl.Handler())
		app.Get("/test", func(c *fiber.Ctx) error {
			return c.SendString("OK")
		})

		for i := 0; i < 5; i++ {
			req := httptest.NewRequest("GET", "/test", nil)
			resp, err := app.Test(req)
			assert.NoError(t, err)
			assert.Equal(t, 200, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, "OK", string(body))
		}
	})

	t.Run("blocks requests over limit", func(t *testing.T) {
		config := RateLimiterConfig{
			Max:    2,
			Window: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return "client-a"
			},
		}

		rl := NewRateLimiter(config)

		app := fiber.New(fiber.Config{
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				return c.Status(429).JSON(fiber.Map{"error": "rate limit"})
			},
		})
		app.Use(rl.Handler())
		app.Get("/test", func(c *fiber.Ctx) error {
			return c.SendString("OK")
		})

		// First 2 should succeed
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest("GET", "/test", nil)
			resp, _ := app.Test(req)
			assert.Equal(t, 200, resp.StatusCode)
		}

		// Third should be rate limited
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)
		assert.Equal(t, 429, resp.StatusCode)
	})

	t.Run("different clients have separate limits", func(t *testing.T) {
		var currentClient string

		config := RateLimiterConfig{
			Max:    2,
			Window: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return currentClient
			},
		}

		rl := NewRateLimiter(config)

		app := fiber.New(fiber.Config{
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				return c.Status(429).JSON(fiber.Map{"error": "rate limit"})
			},
		})
		app.Use(rl.Handler())
		app.Get("/test", func(c *fiber.Ctx) error {
			return c.SendString("OK")
		})

		// Client A uses 2 requests
		currentClient = "10.0.0.1"
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest("GET", "/test", nil)
			resp, _ := app.Test(req)
			assert.Equal(t, 200, resp.StatusCode)
		}

		// Client A is now rate limited
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)
		assert.Equal(t, 429, resp.StatusCode)

		// Client B can still make requests
		currentClient = "10.0.0.2"
		req = httptest.NewRequest("GET", "/test", nil)
		resp, _ = app.Test(req)
		assert.Equal(t, 200, resp.StatusCode)
	})

	t.Run("rate limit headers are set", func(t *testing.T) {
		config := RateLimiterConfig{
			Max:    10,
			Window: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return "client-a"
			},
		}

		rl := NewRateLimiter(config)

		app := fiber.New()
		app.Use(rl.Handler())
		app.Get("/test", func(c *fiber.Ctx) error {
			return c.SendString("OK")
		})

		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, "10", resp.Header.Get("X-RateLimit-Limit"))
		assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, resp.Header.Get("X-RateLimit-Reset"))
	})

	t.Run("empty key skips limiting", func(t *testing.T) {
		config := RateLimiterConfig{
			Max:    2,
			Window: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return ""
			},
		}

		rl := NewRateLimiter(config)

		app := fiber.New()
		app.Use(rl.Handler())
		app.Get("/test", func(c *fiber.Ctx) error {
			return c.SendString("OK")
		})

		for i := 0; i < 10; i++ {
			req := httptest.NewRequest("GET", "/test", nil)
			resp, _ := app.Test(req)
			assert.Equal(t, 200, resp.StatusCode)
		}
	})
}

func TestDefaultRateLimiterConfig(t *testing.T) {
	config := DefaultRateLimiterConfig()

	assert.Equal(t, 60, config.Max)
	assert.Equal(t, time.Minute, config.Window)
	assert.NotNil(t, config.KeyGenerator)
}

func TestRateLimiter_Stop(t *testing.T) {
	t.Run("stops cleanup goroutine gracefully", func(t *testing.T) {
		config := RateLimiterConfig{
			Max:    10,
			Window: time.Second,
			KeyGenerator: func(c *fiber.Ctx) string {
				return "test"
			},
		}

		rl := NewRateLimiter(config)

		// Stop should not panic or block
		rl.Stop()
	})
}

func TestIntToString(t *testing.T) {
	tests := []struct {
		input    int
		expected string
	}{
		{0, "0"},
		{1, "1"},
		{10, "10"},
		{100, "100"},
		{1000, "1000"},
		{-1, "-1"},
		{-100, "-100"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, intToString(tt.input))
	}
}

func TestRateLimiter_PerEndpoint(t *testing.T) {
	t.Run("applies different limits per endpoint", func(t *testing.T) {
		config := RateLimiterConfig{
			Max:    100,
			Window: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return "client-a"
			},
			PerEndpoint: map[string]EndpointRateLimit{
				"/v1/admin/geofences": {Requests: 2, Window: time.Minute},
				"/v1/admin/unblock":   {Requests: 1, Window: time.Minute},
			},
		}

		rl := NewRateLimiter(config)

		app := fiber.New(fiber.Config{
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				return c.Status(429).JSON(fiber.Map{"error": "rate limit"})
			},
		})
		app.Use(rl.Handler())
		app.Get("/v1/admin/geofences", func(c *fiber.Ctx) error {
			return c.SendString("OK")
		})
		app.Post("/v1/admin/unblock/device", func(c *fiber.Ctx) error {
			return c.SendString("OK")
		})
		app.Post("/v1/attendance", func(c *fiber.Ctx) error {
			return c.SendString("OK")
		})

		// /v1/admin/geofences allows 2 requests
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest("GET", "/v1/admin/geofences", nil)
			resp, _ := app.Test(req)
			assert.Equal(t, 200, resp.StatusCode)
		}

		// Third request is rate limited
		req := httptest.NewRequest("GET", "/v1/admin/geofences", nil)
		resp, _ := app.Test(req)
		assert.Equal(t, 429, resp.StatusCode)

		// The unblock prefix also covers nested routes, allowing only 1
		req = httptest.NewRequest("POST", "/v1/admin/unblock/device", nil)
		resp, _ = app.Test(req)
		assert.Equal(t, 200, resp.StatusCode)

		req = httptest.NewRequest("POST", "/v1/admin/unblock/device", nil)
		resp, _ = app.Test(req)
		assert.Equal(t, 429, resp.StatusCode)

		// Unmatched routes use the default limit
		for i := 0; i < 10; i++ {
			req = httptest.NewRequest("POST", "/v1/attendance", nil)
			resp, _ = app.Test(req)
			assert.Equal(t, 200, resp.StatusCode)
		}
	})

	t.Run("different endpoints have separate counters", func(t *testing.T) {
		config := RateLimiterConfig{
			Max:    100,
			Window: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return "client-a"
			},
			PerEndpoint: map[string]EndpointRateLimit{
				"/endpoint-a": {Requests: 2, Window: time.Minute},
				"/endpoint-b": {Requests: 2, Window: time.Minute},
			},
		}

		rl := NewRateLimiter(config)

		app := fiber.New(fiber.Config{
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				return c.Status(429).JSON(fiber.Map{"error": "rate limit"})
			},
		})
		app.Use(rl.Handler())
		app.Get("/endpoint-a", func(c *fiber.Ctx) error {
			return c.SendString("OK")
		})
		app.Get("/endpoint-b", func(c *fiber.Ctx) error {
			return c.SendString("OK")
		})

		// Use all requests for endpoint-a
		for i := 0; i < 2; i++ {
			req := httptest.NewRequest("GET", "/endpoint-a", nil)
			resp, _ := app.Test(req)
			assert.Equal(t, 200, resp.StatusCode)
		}

		// endpoint-a is now rate limited
		req := httptest.NewRequest("GET", "/endpoint-a", nil)
		resp, _ := app.Test(req)
		assert.Equal(t, 429, resp.StatusCode)

		// endpoint-b still has quota available
		for i := 0; i < 2; i++ {
			req = httptest.NewRequest("GET", "/endpoint-b", nil)
			resp, _ = app.Test(req)
			assert.Equal(t, 200, resp.StatusCode)
		}

		// Now endpoint-b is also rate limited
		req = httptest.NewRequest("GET", "/endpoint-b", nil)
		resp, _ = app.Test(req)
		assert.Equal(t, 429, resp.StatusCode)
	})

	t.Run("rate limit headers reflect endpoint-specific limits", func(t *testing.T) {
		config := RateLimiterConfig{
			Max:    100,
			Window: time.Minute,
			KeyGenerator: func(c *fiber.Ctx) string {
				return "client-a"
			},
			PerEndpoint: map[string]EndpointRateLimit{
				"/v1/admin/fraud-records": {Requests: 60, Window: time.Minute},
			},
		}

		rl := NewRateLimiter(config)

		app := fiber.New()
		app.Use(rl.Handler())
		app.Get("/v1/admin/fraud-records", func(c *fiber.Ctx) error {
			return c.SendString("OK")
		})
		app.Post("/v1/attendance", func(c *fiber.Ctx) error {
			return c.SendString("OK")
		})

		// Check headers for endpoint with custom limit
		req := httptest.NewRequest("GET", "/v1/admin/fraud-records", nil)
		resp, _ := app.Test(req)
		assert.Equal(t, "60", resp.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, "59", resp.Header.Get("X-RateLimit-Remaining"))

		// Check headers for endpoint with default limit
		req = httptest.NewRequest("POST", "/v1/attendance", nil)
		resp, _ = app.Test(req)
		assert.Equal(t, "100", resp.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, "99", resp.Header.Get("X-RateLimit-Remaining"))
	})
}

func TestAdminRateLimits(t *testing.T) {
	limits := AdminRateLimits()

	assert.Equal(t, 60, limits["/v1/admin/fraud-records"].Requests)
	assert.Equal(t, time.Minute, limits["/v1/admin/fraud-records"].Window)

	assert.Equal(t, 30, limits["/v1/admin/geofences"].Requests)
	assert.Equal(t, time.Minute, limits["/v1/admin/geofences"].Window)

	assert.Equal(t, 20, limits["/v1/admin/unblock"].Requests)
	assert.Equal(t, time.Minute, limits["/v1/admin/unblock"].Window)
}
