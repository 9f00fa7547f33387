package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
)

// EventSource is a long-lived stream of change events. Run blocks until the
// context is cancelled or the transport fails.
type EventSource interface {
	Run(ctx context.Context, apply func(orders.ChangeEvent)) error
}

// Subscription is an explicit handle over the live feed. Close releases it
// on every exit path; closing twice is safe.
type Subscription struct {
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

// Subscribe starts consuming the feed and reconciling events into the store.
// The returned subscription must be closed when the consuming view goes away.
func (s *Store) Subscribe(ctx context.Context, src EventSource) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(sub.done)
		if err := src.Run(ctx, s.ApplyEvent); err != nil && ctx.Err() == nil {
			s.log.Error("change feed stopped", zap.Error(err))
		}
	}()

	return sub
}

// Close stops the feed and waits for the consuming goroutine to finish, so
// no reconciliation call can land after Close returns.
func (sub *Subscription) Close() {
	sub.closeOnce.Do(func() {
		sub.cancel()
		<-sub.done
	})
}
