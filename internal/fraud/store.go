// Package fraud scores attendance attempts for fraud, maintains per-actor
// attempt history and the global blocklists, and decides whether an attempt
// should be blocked.
package fraud

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// HistoryStore keeps the rolling per-actor attempt history. Implementations
// enforce the retention cap on append and must be safe for concurrent use;
// the engine serializes writers per actor on top of that.
type HistoryStore interface {
	// Append stores a new attempt, evicting the oldest entry beyond the cap.
	Append(ctx context.Context, attempt domain.AttendanceAttempt) error
	// Recent returns up to limit attempts for the actor, newest first.
	Recent(ctx context.Context, actorID string, limit int) ([]domain.AttendanceAttempt, error)
	// CountSince counts the actor's attempts recorded at or after the cutoff.
	CountSince(ctx context.Context, actorID string, cutoff time.Time) (int, error)
}

// BlocklistStore holds the global device and IP blocklists. Additions come
// from the engine; removal is an administrative action only.
type BlocklistStore interface {
	IsDeviceBlocked(ctx context.Context, fingerprint string) (bool, error)
	IsIPBlocked(ctx context.Context, ip string) (bool, error)
	BlockDevice(ctx context.Context, fingerprint string) error
	BlockIP(ctx context.Context, ip string) error
	UnblockDevice(ctx context.Context, fingerprint string) error
	UnblockIP(ctx context.Context, ip string) error
}

// RecordStore is the append-only fraud record log. Resolve is the single
// mutation, reserved for the external review surface.
type RecordStore interface {
	Create(ctx context.Context, record domain.FraudRecord) error
	Get(ctx context.Context, id uuid.UUID) (*domain.FraudRecord, error)
	// List returns records newest first, optionally filtered by actor.
	List(ctx context.Context, actorID string, limit int) ([]domain.FraudRecord, error)
	// Resolve toggles the record's resolved flag.
	Resolve(ctx context.Context, id uuid.UUID, resolved bool) error
}
