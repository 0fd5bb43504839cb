// Package location cross-validates a device-reported GPS fix against an
// independent network-derived fix and produces a location trust verdict.
package location

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// ErrNoFix is returned when a resolver cannot produce a network fix for the
// given address.
var ErrNoFix = errors.New("no network fix available")

// Resolver turns an IP address into an independent network fix. Resolution
// is best-effort; callers treat failures as "signal absent", never fatal.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, ip string) (*domain.NetworkFix, error)
}

// defaultAttemptTimeout bounds each resolver attempt inside a chain so a
// slow provider cannot stall the whole evaluation.
const defaultAttemptTimeout = 2 * time.Second

// Chain tries resolvers in order and returns the first fix produced. Each
// attempt runs under its own timeout.
type Chain struct {
	resolvers      []Resolver
	attemptTimeout time.Duration
	logger         *slog.Logger
}

// NewChain creates a resolver chain. Resolvers are consulted in the given
// order, so place the cheapest or most reliable provider first.
func NewChain(logger *slog.Logger, resolvers ...Resolver) *Chain {
	return &Chain{
		resolvers:      resolvers,
		attemptTimeout: defaultAttemptTimeout,
		logger:         logger,
	}
}

// WithAttemptTimeout overrides the per-resolver timeout.
func (c *Chain) WithAttemptTimeout(d time.Duration) *Chain {
	c.attemptTimeout = d
	return c
}

// Name implements Resolver.
func (c *Chain) Name() string {
	return "chain"
}

// Resolve tries each resolver until one succeeds. It returns ErrNoFix when
// every provider fails or the address is empty.
func (c *Chain) Resolve(ctx context.Context, ip string) (*domain.NetworkFix, error) {
	if ip == "" {
		return nil, ErrNoFix
	}

	for _, r := range c.resolvers {
		attemptCtx, cancel := context.WithTimeout(ctx, c.attemptTimeout)
		fix, err := r.Resolve(attemptCtx, ip)
		cancel()

		if err == nil && fix != nil {
			return fix, nil
		}
		if err == nil {
			err = ErrNoFix
		}

		if c.logger != nil {
			c.logger.Debug("network fix resolver failed",
				slog.String("resolver", r.Name()),
				slog.String("error", err.Error()),
			)
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	return nil, ErrNoFix
}
