// Package webhook delivers fraud events to an operator-configured HTTP
// endpoint. Payloads are signed with an HMAC shared secret; failed
// deliveries land in a Postgres queue and are retried by the Worker.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// DB interface for database operations
type DB interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// Notifier posts fraud events to a single configured endpoint.
type Notifier struct {
	db     DB
	url    string
	secret string
	client *http.Client
	logger *slog.Logger
}

func NewNotifier(db *pgxpool.Pool, url, secret string, logger *slog.Logger) *Notifier {
	return NewNotifierWithDB(db, url, secret, logger)
}

// NewNotifierWithDB creates a notifier with a custom DB interface.
func NewNotifierWithDB(db DB, url, secret string, logger *slog.Logger) *Notifier {
	return &Notifier{
		db:     db,
		url:    url,
		secret: secret,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// NotifyFraudRecord satisfies fraud.Notifier. Failures are queued for
// retry, never surfaced to the evaluation.
func (n *Notifier) NotifyFraudRecord(ctx context.Context, record domain.FraudRecord) {
	eventType := EventFraudDetected
	if record.Blocked {
		eventType = EventActorBlocked
	}

	event := EventPayload{
		Type:      eventType,
		Data:      record,
		Timestamp: time.Now().UTC(),
	}

	if err := n.Send(ctx, event); err != nil {
		n.logger.Error("failed to dispatch fraud event",
			"record_id", record.ID,
			"event_type", eventType,
			"error", err,
		)
	}
}

// Send delivers one event. A failed delivery is enqueued for retry; only
// a marshal or enqueue failure is returned.
func (n *Notifier) Send(ctx context.Context, event EventPayload) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := n.deliver(ctx, event.Type, payload); err != nil {
		return n.enqueue(ctx, event.Type, payload, err.Error())
	}

	return nil
}

func (n *Notifier) deliver(ctx context.Context, eventType string, payload []byte) error {
	signature := Sign(n.secret, payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Presenca-Signature", signature)
	req.Header.Set("X-Presenca-Event", eventType)
	req.Header.Set("User-Agent", "Presenca-Webhook/1.0")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	return nil
}

func (n *Notifier) enqueue(ctx context.Context, eventType string, payload []byte, errorMsg string) error {
	query := `
		INSERT INTO webhook_queue (event_type, payload, next_retry_at, last_error)
		VALUES ($1, $2, NOW() + INTERVAL '1 second', $3)
	`

	_, err := n.db.Exec(ctx, query, eventType, payload, errorMsg)
	if err != nil {
		return fmt.Errorf("enqueue webhook: %w", err)
	}

	return nil
}
