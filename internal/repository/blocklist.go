package repository

import (
	"context"
	"fmt"
)

// BlocklistRepository holds the global device and IP blocklists. Blocking is
// idempotent; unblocking a missing entry is a no-op.
type BlocklistRepository struct {
	pool PgxPool
}

func NewBlocklistRepository(pool PgxPool) *BlocklistRepository {
	return &BlocklistRepository{pool: pool}
}

func (r *BlocklistRepository) IsDeviceBlocked(ctx context.Context, fingerprint string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM blocked_devices WHERE fingerprint = $1)`

	var blocked bool
	if err := r.pool.QueryRow(ctx, query, fingerprint).Scan(&blocked); err != nil {
		return false, fmt.Errorf("check device blocklist: %w", err)
	}
	return blocked, nil
}

func (r *BlocklistRepository) IsIPBlocked(ctx context.Context, ip string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM blocked_ips WHERE ip_address = $1)`

	var blocked bool
	if err := r.pool.QueryRow(ctx, query, ip).Scan(&blocked); err != nil {
		return false, fmt.Errorf("check ip blocklist: %w", err)
	}
	return blocked, nil
}

func (r *BlocklistRepository) BlockDevice(ctx context.Context, fingerprint string) error {
	query := `
		INSERT INTO blocked_devices (fingerprint, blocked_at)
		VALUES ($1, NOW())
		ON CONFLICT (fingerprint) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, fingerprint); err != nil {
		return fmt.Errorf("block device: %w", err)
	}
	return nil
}

func (r *BlocklistRepository) BlockIP(ctx context.Context, ip string) error {
	query := `
		INSERT INTO blocked_ips (ip_address, blocked_at)
		VALUES ($1, NOW())
		ON CONFLICT (ip_address) DO NOTHING
	`

	if _, err := r.pool.Exec(ctx, query, ip); err != nil {
		return fmt.Errorf("block ip: %w", err)
	}
	return nil
}

func (r *BlocklistRepository) UnblockDevice(ctx context.Context, fingerprint string) error {
	query := `DELETE FROM blocked_devices WHERE fingerprint = $1`

	if _, err := r.pool.Exec(ctx, query, fingerprint); err != nil {
		return fmt.Errorf("unblock device: %w", err)
	}
	return nil
}

func (r *BlocklistRepository) UnblockIP(ctx context.Context, ip string) error {
	query := `DELETE FROM blocked_ips WHERE ip_address = $1`

	if _, err := r.pool.Exec(ctx, query, ip); err != nil {
		return fmt.Errorf("unblock ip: %w", err)
	}
	return nil
}
