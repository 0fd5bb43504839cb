package admin

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) GenerateToken() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockTokenIssuer) ExpiresIn() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

func TestSessionHandler_Create(t *testing.T) {
	mockIssuer := new(MockTokenIssuer)
	mockIssuer.On("GenerateToken").Return("signed.session.token", nil)
	mockIssuer.On("ExpiresIn").Return(time.Hour)

	h := NewSessionHandler(mockIssuer, testLogger())
	app := adminTestApp(func(r fiber.Router) {
		r.Post("/v1/admin/session", h.Create)
	})

	req := httptest.NewRequest("POST", "/v1/admin/session", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 201, resp.StatusCode)

	var body SessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "signed.session.token", body.Token)
	assert.Equal(t, 3600, body.ExpiresIn)

	mockIssuer.AssertExpectations(t)
}

func TestSessionHandler_Create_IssuerFailure(t *testing.T) {
	mockIssuer := new(MockTokenIssuer)
	mockIssuer.On("GenerateToken").Return("", assert.AnError)

	h := NewSessionHandler(mockIssuer, testLogger())
	app := adminTestApp(func(r fiber.Router) {
		r.Post("/v1/admin/session", h.Create)
	})

	req := httptest.NewRequest("POST", "/v1/admin/session", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}
