package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// EnrollmentRepository Tests

func TestEnrollmentRepository_Save(t *testing.T) {
	capturedAt := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	template := domain.FaceEmbedding{
		Vector:            []float64{0.1, 0.2, 0.3},
		AlgorithmID:       "facenet-128",
		CapturedAt:        capturedAt,
		QualityConfidence: 0.92,
	}

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   string
	}{
		{
			name: "successful upsert",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO enrollment_templates`).
					WithArgs("employee-1", toVector(template.Vector), "facenet-128", capturedAt, 0.92).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "database error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO enrollment_templates`).
					WithArgs("employee-1", toVector(template.Vector), "facenet-128", capturedAt, 0.92).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: "save enrollment template",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewEnrollmentRepository(mock)
			err = repo.Save(context.Background(), "employee-1", template)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEnrollmentRepository_Get(t *testing.T) {
	capturedAt := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		want      *domain.FaceEmbedding
		wantErr   error
	}{
		{
			name: "template found",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{
					"embedding", "algorithm_id", "captured_at", "quality_confidence",
				}).AddRow(
					pgvector.NewVector([]float32{0.5, 0.25}),
					"facenet-128",
					capturedAt,
					0.9,
				)

				mock.ExpectQuery(`SELECT embedding, algorithm_id, captured_at, quality_confidence FROM enrollment_templates`).
					WithArgs("employee-1").
					WillReturnRows(rows)
			},
			want: &domain.FaceEmbedding{
				Vector:            []float64{0.5, 0.25},
				AlgorithmID:       "facenet-128",
				CapturedAt:        capturedAt,
				QualityConfidence: 0.9,
			},
		},
		{
			name: "template missing",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT embedding, algorithm_id, captured_at, quality_confidence FROM enrollment_templates`).
					WithArgs("employee-1").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrTemplateNotFound,
		},
		{
			name: "database error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT embedding, algorithm_id, captured_at, quality_confidence FROM enrollment_templates`).
					WithArgs("employee-1").
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: errors.New("get enrollment template: connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewEnrollmentRepository(mock)
			got, err := repo.Get(context.Background(), "employee-1")

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, domain.ErrTemplateNotFound) {
					assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
				} else {
					assert.Contains(t, err.Error(), "get enrollment template")
				}
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.InDeltaSlice(t, tt.want.Vector, got.Vector, 0.0001)
				assert.Equal(t, tt.want.AlgorithmID, got.AlgorithmID)
				assert.Equal(t, tt.want.CapturedAt, got.CapturedAt)
				assert.InDelta(t, tt.want.QualityConfidence, got.QualityConfidence, 0.0001)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// AttemptRepository Tests

func sampleAttempt(t *testing.T) (domain.AttendanceAttempt, []byte) {
	t.Helper()

	attempt := domain.AttendanceAttempt{
		ID:                uuid.New(),
		ActorID:           "employee-1",
		Timestamp:         time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
		DeviceFingerprint: "device-abc",
		IPAddress:         "200.100.50.25",
		GPS: domain.GPSFix{
			Latitude:       -23.5505,
			Longitude:      -46.6333,
			AccuracyMeters: 10,
		},
		Succeeded:  true,
		FraudScore: 0.1,
	}

	gps, err := json.Marshal(attempt.GPS)
	require.NoError(t, err)
	return attempt, gps
}

func TestAttemptRepository_Append(t *testing.T) {
	attempt, gps := sampleAttempt(t)

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   string
	}{
		{
			name: "insert then trim",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO attendance_attempts`).
					WithArgs(
						attempt.ID, "employee-1", attempt.Timestamp, "device-abc", "200.100.50.25",
						gps, []byte(nil), []byte(nil), true, false, 0.1,
					).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
				mock.ExpectExec(`DELETE FROM attendance_attempts`).
					WithArgs("employee-1", domain.AttemptHistoryCap).
					WillReturnResult(pgxmock.NewResult("DELETE", 0))
			},
		},
		{
			name: "insert failure",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO attendance_attempts`).
					WithArgs(
						attempt.ID, "employee-1", attempt.Timestamp, "device-abc", "200.100.50.25",
						gps, []byte(nil), []byte(nil), true, false, 0.1,
					).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: "append attempt",
		},
		{
			name: "trim failure",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO attendance_attempts`).
					WithArgs(
						attempt.ID, "employee-1", attempt.Timestamp, "device-abc", "200.100.50.25",
						gps, []byte(nil), []byte(nil), true, false, 0.1,
					).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
				mock.ExpectExec(`DELETE FROM attendance_attempts`).
					WithArgs("employee-1", domain.AttemptHistoryCap).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: "trim attempt history",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewAttemptRepository(mock)
			err = repo.Append(context.Background(), attempt)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAttemptRepository_Recent(t *testing.T) {
	attempt, gps := sampleAttempt(t)

	liveness := &domain.LivenessResult{IsLive: true, Confidence: 0.85}
	livenessJSON, err := json.Marshal(liveness)
	require.NoError(t, err)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{
		"id", "actor_id", "ts", "device_fingerprint", "ip_address",
		"gps", "liveness", "location", "succeeded", "blocked", "fraud_score",
	}).AddRow(
		attempt.ID, attempt.ActorID, attempt.Timestamp, attempt.DeviceFingerprint, attempt.IPAddress,
		gps, livenessJSON, []byte(nil), attempt.Succeeded, attempt.Blocked, attempt.FraudScore,
	)

	mock.ExpectQuery(`SELECT id, actor_id, ts, device_fingerprint, ip_address, gps, liveness, location, succeeded, blocked, fraud_score`).
		WithArgs("employee-1", 10).
		WillReturnRows(rows)

	repo := NewAttemptRepository(mock)
	got, err := repo.Recent(context.Background(), "employee-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)

	assert.Equal(t, attempt.ID, got[0].ID)
	assert.Equal(t, attempt.GPS, got[0].GPS)
	require.NotNil(t, got[0].Liveness)
	assert.True(t, got[0].Liveness.IsLive)
	assert.InDelta(t, 0.85, got[0].Liveness.Confidence, 0.0001)
	assert.Nil(t, got[0].Location)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttemptRepository_CountSince(t *testing.T) {
	cutoff := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("employee-1", cutoff).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))

	repo := NewAttemptRepository(mock)
	got, err := repo.CountSince(context.Background(), "employee-1", cutoff)
	require.NoError(t, err)
	assert.Equal(t, 4, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// BlocklistRepository Tests

func TestBlocklistRepository_IsDeviceBlocked(t *testing.T) {
	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		want      bool
		wantErr   string
	}{
		{
			name: "blocked",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM blocked_devices`).
					WithArgs("device-abc").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
			},
			want: true,
		},
		{
			name: "not blocked",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM blocked_devices`).
					WithArgs("device-abc").
					WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
			},
			want: false,
		},
		{
			name: "database error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM blocked_devices`).
					WithArgs("device-abc").
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: "check device blocklist",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewBlocklistRepository(mock)
			got, err := repo.IsDeviceBlocked(context.Background(), "device-abc")

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBlocklistRepository_BlockDevice(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO blocked_devices`).
		WithArgs("device-abc").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewBlocklistRepository(mock)
	require.NoError(t, repo.BlockDevice(context.Background(), "device-abc"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlocklistRepository_BlockIP_Idempotent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	// Re-blocking an already blocked IP hits the conflict clause and affects
	// zero rows, which is still a success.
	mock.ExpectExec(`INSERT INTO blocked_ips`).
		WithArgs("200.100.50.25").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	repo := NewBlocklistRepository(mock)
	require.NoError(t, repo.BlockIP(context.Background(), "200.100.50.25"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlocklistRepository_Unblock(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM blocked_devices`).
		WithArgs("device-abc").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`DELETE FROM blocked_ips`).
		WithArgs("200.100.50.25").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	repo := NewBlocklistRepository(mock)
	require.NoError(t, repo.UnblockDevice(context.Background(), "device-abc"))
	require.NoError(t, repo.UnblockIP(context.Background(), "200.100.50.25"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

// FraudRecordRepository Tests

func sampleFraudRecord() domain.FraudRecord {
	return domain.FraudRecord{
		ID:         uuid.New(),
		ActorID:    "employee-1",
		Timestamp:  time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC),
		Type:       domain.FraudFaceSpoofing,
		Severity:   domain.SeverityHigh,
		FraudScore: 0.7,
		Indicators: []string{"face_spoofing_detected", "liveness_failed"},
		Blocked:    true,
	}
}

func TestFraudRecordRepository_Create(t *testing.T) {
	record := sampleFraudRecord()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO fraud_records`).
		WithArgs(
			record.ID, record.ActorID, record.Timestamp, record.Type, record.Severity,
			record.FraudScore, record.Indicators, record.Blocked, record.Resolved,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewFraudRecordRepository(mock)
	require.NoError(t, repo.Create(context.Background(), record))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFraudRecordRepository_Get(t *testing.T) {
	record := sampleFraudRecord()

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "record found",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{
					"id", "actor_id", "ts", "fraud_type", "severity", "fraud_score", "indicators", "blocked", "resolved",
				}).AddRow(
					record.ID, record.ActorID, record.Timestamp, record.Type, record.Severity,
					record.FraudScore, record.Indicators, record.Blocked, record.Resolved,
				)

				mock.ExpectQuery(`SELECT id, actor_id, ts, fraud_type, severity, fraud_score, indicators, blocked, resolved`).
					WithArgs(record.ID).
					WillReturnRows(rows)
			},
		},
		{
			name: "record missing",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT id, actor_id, ts, fraud_type, severity, fraud_score, indicators, blocked, resolved`).
					WithArgs(record.ID).
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrFraudRecordNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewFraudRecordRepository(mock)
			got, err := repo.Get(context.Background(), record.ID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, record.ID, got.ID)
				assert.Equal(t, record.Type, got.Type)
				assert.Equal(t, record.Severity, got.Severity)
				assert.Equal(t, record.Indicators, got.Indicators)
				assert.True(t, got.Blocked)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFraudRecordRepository_List(t *testing.T) {
	record := sampleFraudRecord()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{
		"id", "actor_id", "ts", "fraud_type", "severity", "fraud_score", "indicators", "blocked", "resolved",
	}).AddRow(
		record.ID, record.ActorID, record.Timestamp, record.Type, record.Severity,
		record.FraudScore, record.Indicators, record.Blocked, record.Resolved,
	)

	mock.ExpectQuery(`SELECT id, actor_id, ts, fraud_type, severity, fraud_score, indicators, blocked, resolved`).
		WithArgs("employee-1", 20).
		WillReturnRows(rows)

	repo := NewFraudRecordRepository(mock)
	got, err := repo.List(context.Background(), "employee-1", 20)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, record.ID, got[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFraudRecordRepository_Resolve(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "resolved",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE fraud_records SET resolved`).
					WithArgs(id, true).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "record missing",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE fraud_records SET resolved`).
					WithArgs(id, true).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			wantErr: domain.ErrFraudRecordNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewFraudRecordRepository(mock)
			err = repo.Resolve(context.Background(), id, true)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// FixRepository Tests

func TestFixRepository_LastFix(t *testing.T) {
	recordedAt := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		want      *domain.KnownFix
	}{
		{
			name: "fix found",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"latitude", "longitude", "recorded_at"}).
					AddRow(-23.5505, -46.6333, recordedAt)

				mock.ExpectQuery(`SELECT latitude, longitude, recorded_at FROM last_known_fixes`).
					WithArgs("employee-1").
					WillReturnRows(rows)
			},
			want: &domain.KnownFix{Latitude: -23.5505, Longitude: -46.6333, RecordedAt: recordedAt},
		},
		{
			name: "no fix yet",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`SELECT latitude, longitude, recorded_at FROM last_known_fixes`).
					WithArgs("employee-1").
					WillReturnError(pgx.ErrNoRows)
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewFixRepository(mock)
			got, err := repo.LastFix(context.Background(), "employee-1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFixRepository_SaveFix(t *testing.T) {
	recordedAt := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO last_known_fixes`).
		WithArgs("employee-1", -23.5505, -46.6333, recordedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	repo := NewFixRepository(mock)
	err = repo.SaveFix(context.Background(), "employee-1", domain.KnownFix{
		Latitude:   -23.5505,
		Longitude:  -46.6333,
		RecordedAt: recordedAt,
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// GeofenceRepository Tests

func TestGeofenceRepository_ListActive(t *testing.T) {
	circleID := uuid.New()
	polygonID := uuid.New()

	polygonVertices, err := json.Marshal([]domain.LatLng{
		{Lat: -23.55, Lng: -46.64}, {Lat: -23.55, Lng: -46.62}, {Lat: -23.54, Lng: -46.63},
	})
	require.NoError(t, err)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{
		"id", "name", "kind", "active", "center_lat", "center_lng", "radius_meters", "vertices",
	}).AddRow(
		circleID, "Campus Centro", domain.GeofenceRadius, true, -23.5505, -46.6333, 150.0, []byte("null"),
	).AddRow(
		polygonID, "Campus Norte", domain.GeofencePolygon, true, 0.0, 0.0, 0.0, polygonVertices,
	)

	mock.ExpectQuery(`SELECT id, name, kind, active, center_lat, center_lng, radius_meters, vertices FROM geofences WHERE active`).
		WillReturnRows(rows)

	repo := NewGeofenceRepository(mock)
	fences, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, fences, 2)

	assert.Equal(t, "Campus Centro", fences[0].Name)
	assert.Equal(t, domain.GeofenceRadius, fences[0].Kind)
	assert.InDelta(t, 150.0, fences[0].RadiusMeters, 0.0001)
	assert.Empty(t, fences[0].Vertices)

	assert.Equal(t, "Campus Norte", fences[1].Name)
	assert.Equal(t, domain.GeofencePolygon, fences[1].Kind)
	assert.Len(t, fences[1].Vertices, 3)
	assert.InDelta(t, -46.64, fences[1].Vertices[0].Lng, 0.0001)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGeofenceRepository_Create_Duplicate(t *testing.T) {
	fence := domain.Geofence{
		ID:           uuid.New(),
		Name:         "Campus Centro",
		Kind:         domain.GeofenceRadius,
		Active:       true,
		Center:       domain.LatLng{Lat: -23.5505, Lng: -46.6333},
		RadiusMeters: 150,
	}

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO geofences`).
		WithArgs(
			fence.ID, fence.Name, fence.Kind, fence.Active,
			fence.Center.Lat, fence.Center.Lng, fence.RadiusMeters, pgxmock.AnyArg(),
		).
		WillReturnError(errors.New(`duplicate key value violates unique constraint "geofences_pkey" (SQLSTATE 23505)`))

	repo := NewGeofenceRepository(mock)
	err = repo.Create(context.Background(), fence)
	assert.ErrorIs(t, err, domain.ErrGeofenceExists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGeofenceRepository_SetActive_NotFound(t *testing.T) {
	id := uuid.New()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`UPDATE geofences SET active`).
		WithArgs(id, false).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	repo := NewGeofenceRepository(mock)
	err = repo.SetActive(context.Background(), id, false)
	assert.ErrorIs(t, err, domain.ErrGeofenceNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGeofenceRepository_Delete(t *testing.T) {
	id := uuid.New()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`DELETE FROM geofences`).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	repo := NewGeofenceRepository(mock)
	require.NoError(t, repo.Delete(context.Background(), id))

	assert.NoError(t, mock.ExpectationsWereMet())
}
