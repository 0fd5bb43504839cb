package admin

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/presenca/internal/metrics"
)

type MockStatsProvider struct {
	mock.Mock
}

func (m *MockStatsProvider) Snapshot(ctx context.Context, windowStart, windowEnd time.Time) (*metrics.Snapshot, error) {
	args := m.Called(ctx, windowStart, windowEnd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*metrics.Snapshot), args.Error(1)
}

func TestStatsHandler_Get(t *testing.T) {
	mockProvider := new(MockStatsProvider)
	snapshot := &metrics.Snapshot{
		Attempts:               120,
		Accepted:               110,
		Blocked:                4,
		DistinctActors:         35,
		AvgFraudScore:          0.12,
		FraudRecords:           6,
		UnresolvedFraudRecords: 2,
	}
	mockProvider.On("Snapshot", mock.Anything, mock.MatchedBy(func(start time.Time) bool {
		// Default window is 24 hours
		return time.Since(start) > 23*time.Hour && time.Since(start) < 25*time.Hour
	}), mock.Anything).Return(snapshot, nil)

	h := NewStatsHandler(mockProvider, testLogger())
	app := adminTestApp(func(r fiber.Router) {
		r.Get("/v1/admin/stats", h.Get)
	})

	req := httptest.NewRequest("GET", "/v1/admin/stats", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	var body metrics.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(120), body.Attempts)
	assert.Equal(t, int64(4), body.Blocked)
	assert.Equal(t, int64(2), body.UnresolvedFraudRecords)

	mockProvider.AssertExpectations(t)
}

func TestStatsHandler_Get_CustomWindow(t *testing.T) {
	mockProvider := new(MockStatsProvider)
	mockProvider.On("Snapshot", mock.Anything, mock.MatchedBy(func(start time.Time) bool {
		return time.Since(start) > 47*time.Hour && time.Since(start) < 49*time.Hour
	}), mock.Anything).Return(&metrics.Snapshot{}, nil)

	h := NewStatsHandler(mockProvider, testLogger())
	app := adminTestApp(func(r fiber.Router) {
		r.Get("/v1/admin/stats", h.Get)
	})

	req := httptest.NewRequest("GET", "/v1/admin/stats?hours=48", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	mockProvider.AssertExpectations(t)
}

func TestStatsHandler_Get_InvalidWindow(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"not a number", "hours=abc"},
		{"zero", "hours=0"},
		{"too large", "hours=721"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockProvider := new(MockStatsProvider)
			h := NewStatsHandler(mockProvider, testLogger())
			app := adminTestApp(func(r fiber.Router) {
				r.Get("/v1/admin/stats", h.Get)
			})

			req := httptest.NewRequest("GET", "/v1/admin/stats?"+tt.query, nil)
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, 422, resp.StatusCode)

			mockProvider.AssertNotCalled(t, "Snapshot")
		})
	}
}

func TestStatsHandler_Get_ProviderFailure(t *testing.T) {
	mockProvider := new(MockStatsProvider)
	mockProvider.On("Snapshot", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, assert.AnError)

	h := NewStatsHandler(mockProvider, testLogger())
	app := adminTestApp(func(r fiber.Router) {
		r.Get("/v1/admin/stats", h.Get)
	})

	req := httptest.NewRequest("GET", "/v1/admin/stats", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}
