package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/presenca/internal/webhook"
)

// EventSender delivers triggered alerts to the configured webhook endpoint.
type EventSender interface {
	Send(ctx context.Context, event webhook.EventPayload) error
}

type Notifier struct {
	sender EventSender
	logger *slog.Logger
}

// NewNotifier creates a notifier. The sender may be nil when no webhook
// endpoint is configured; webhook channels are then skipped with a warning.
func NewNotifier(sender EventSender, logger *slog.Logger) *Notifier {
	return &Notifier{
		sender: sender,
		logger: logger,
	}
}

func (n *Notifier) Send(ctx context.Context, alert *Alert, history *AlertHistory) error {
	var errors []error

	for _, channel := range alert.Channels {
		if err := n.sendToChannel(ctx, channel, alert, history); err != nil {
			n.logger.Error("failed to send to channel",
				"channel_type", channel.Type,
				"alert_id", alert.ID,
				"error", err,
			)
			errors = append(errors, err)
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("failed to send %d/%d notifications", len(errors), len(alert.Channels))
	}

	return nil
}

func (n *Notifier) sendToChannel(ctx context.Context, channel Channel, alert *Alert, history *AlertHistory) error {
	switch channel.Type {
	case ChannelWebhook:
		return n.sendWebhook(ctx, alert, history)
	case ChannelLog:
		n.logAlert(alert, history)
		return nil
	default:
		return fmt.Errorf("unsupported channel type: %s", channel.Type)
	}
}

func (n *Notifier) sendWebhook(ctx context.Context, alert *Alert, history *AlertHistory) error {
	if n.sender == nil {
		n.logger.Warn("no webhook endpoint configured, skipping alert delivery",
			"alert_id", alert.ID,
		)
		return nil
	}

	payload := webhook.EventPayload{
		Type:      "alert.triggered",
		Timestamp: time.Now().UTC(),
		Data: map[string]interface{}{
			"alert": map[string]interface{}{
				"id":       alert.ID,
				"name":     alert.Name,
				"severity": alert.Severity,
			},
			"history": map[string]interface{}{
				"id":           history.ID,
				"triggered_at": history.TriggeredAt,
				"metadata":     history.Metadata,
			},
		},
	}

	if err := n.sender.Send(ctx, payload); err != nil {
		return fmt.Errorf("send webhook: %w", err)
	}

	n.logger.Info("alert notification sent",
		"alert_id", alert.ID,
		"alert_name", alert.Name,
	)

	return nil
}

func (n *Notifier) logAlert(alert *Alert, history *AlertHistory) {
	attrs := []any{
		slog.String("alert_id", alert.ID.String()),
		slog.String("alert_name", alert.Name),
		slog.Time("triggered_at", history.TriggeredAt),
	}

	switch alert.Severity {
	case SeverityCritical:
		n.logger.Error("alert triggered", attrs...)
	case SeverityWarning:
		n.logger.Warn("alert triggered", attrs...)
	default:
		n.logger.Info("alert triggered", attrs...)
	}
}
