package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRecord(blocked bool) domain.FraudRecord {
	return domain.FraudRecord{
		ID:         uuid.New(),
		ActorID:    "employee-1",
		Timestamp:  time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Type:       domain.FraudFaceSpoofing,
		Severity:   domain.SeverityHigh,
		FraudScore: 0.85,
		Indicators: []string{"face_spoofing_detected"},
		Blocked:    blocked,
	}
}

func TestNotifier_Send_SignsPayload(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	var gotSignature, gotEvent string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSignature = r.Header.Get("X-Presenca-Signature")
		gotEvent = r.Header.Get("X-Presenca-Event")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewNotifierWithDB(mock, server.URL, "shared-secret", testLogger())

	err = n.Send(context.Background(), EventPayload{
		Type:      EventFraudDetected,
		Data:      sampleRecord(false),
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.Equal(t, EventFraudDetected, gotEvent)
	assert.True(t, Verify("shared-secret", gotBody, gotSignature))

	var event EventPayload
	require.NoError(t, json.Unmarshal(gotBody, &event))
	assert.Equal(t, EventFraudDetected, event.Type)

	// Successful delivery never touches the queue
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifier_Send_FailureEnqueues(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	mock.ExpectExec("INSERT INTO webhook_queue").
		WithArgs(EventFraudDetected, pgxmock.AnyArg(), "HTTP 500").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	n := NewNotifierWithDB(mock, server.URL, "shared-secret", testLogger())

	err = n.Send(context.Background(), EventPayload{
		Type:      EventFraudDetected,
		Data:      sampleRecord(false),
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotifier_NotifyFraudRecord_BlockedEventType(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	var gotEvent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotEvent = r.Header.Get("X-Presenca-Event")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewNotifierWithDB(mock, server.URL, "shared-secret", testLogger())

	n.NotifyFraudRecord(context.Background(), sampleRecord(true))
	assert.Equal(t, EventActorBlocked, gotEvent)

	n.NotifyFraudRecord(context.Background(), sampleRecord(false))
	assert.Equal(t, EventFraudDetected, gotEvent)
}

func TestWorker_ProcessQueue_DeliversAndMarksComplete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	jobID := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "event_type", "payload", "attempts", "max_attempts"}).
		AddRow(jobID, EventFraudDetected, []byte(`{"type":"fraud.detected"}`), 1, 5)

	mock.ExpectQuery("SELECT id, event_type, payload").WillReturnRows(rows)
	mock.ExpectExec("UPDATE webhook_queue").
		WithArgs(jobID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	n := NewNotifierWithDB(mock, server.URL, "shared-secret", testLogger())
	w := NewWorkerWithDB(mock, n, testLogger())

	err = w.processQueue(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorker_ProcessQueue_SchedulesRetryOnFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	jobID := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "event_type", "payload", "attempts", "max_attempts"}).
		AddRow(jobID, EventFraudDetected, []byte(`{"type":"fraud.detected"}`), 2, 5)

	mock.ExpectQuery("SELECT id, event_type, payload").WillReturnRows(rows)
	mock.ExpectExec("UPDATE webhook_queue").
		WithArgs(pgxmock.AnyArg(), "HTTP 502", jobID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	n := NewNotifierWithDB(mock, server.URL, "shared-secret", testLogger())
	w := NewWorkerWithDB(mock, n, testLogger())

	err = w.processQueue(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWorker_ProcessQueue_ExhaustedAttemptsMarkFailed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	jobID := uuid.New()
	rows := pgxmock.NewRows([]string{"id", "event_type", "payload", "attempts", "max_attempts"}).
		AddRow(jobID, EventActorBlocked, []byte(`{"type":"actor.blocked"}`), 5, 5)

	mock.ExpectQuery("SELECT id, event_type, payload").WillReturnRows(rows)
	mock.ExpectExec("UPDATE webhook_queue").
		WithArgs("HTTP 502", jobID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	n := NewNotifierWithDB(mock, server.URL, "shared-secret", testLogger())
	w := NewWorkerWithDB(mock, n, testLogger())

	err = w.processQueue(context.Background())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
