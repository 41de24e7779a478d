package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"backoffice/internal/config"
)

// breakerStorage trips after repeated backend failures so that requests fail
// fast with ErrUnavailable instead of piling up on a dead object store.
type breakerStorage struct {
	next Storage
	cb   *gobreaker.CircuitBreaker
}

// WithBreaker wraps s in a circuit breaker.
func WithBreaker(s Storage, c config.BreakerConfig, log *zap.Logger) Storage {
	if log == nil {
		log = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "object-storage",
		MaxRequests: c.MaxRequests,
		Interval:    c.Interval,
		Timeout:     c.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < c.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= c.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit_breaker_state_change",
				zap.String("component", "storage"),
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// A cancelled request says nothing about backend health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &breakerStorage{next: s, cb: cb}
}

func (b *breakerStorage) run(fn func() (any, error)) (any, error) {
	v, err := b.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return v, err
}

func (b *breakerStorage) Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (Object, error) {
	v, err := b.run(func() (any, error) { return b.next.Put(ctx, key, r, opt) })
	if err != nil {
		return Object{}, err
	}
	return v.(Object), nil
}

func (b *breakerStorage) Delete(ctx context.Context, key string) error {
	_, err := b.run(func() (any, error) { return nil, b.next.Delete(ctx, key) })
	return err
}

// PresignGet is computed locally by the client and bypasses the breaker.
func (b *breakerStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return b.next.PresignGet(ctx, key, expiry)
}
