package store

import (
	"context"

	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
)

// StatusWriter is the write side of the gateway the store needs for status
// changes.
type StatusWriter interface {
	UpdateOrderStatus(ctx context.Context, id string, status orders.Status) error
}

// ApplyStatusChange validates the requested transition against the cached
// current status, then issues the write. The cache itself is updated by the
// change-feed confirmation rather than optimistically, so a rejected write
// leaves the displayed status exactly as it was.
func (s *Store) ApplyStatusChange(ctx context.Context, w StatusWriter, id string, requested orders.Status) error {
	current, ok := s.Get(id)
	if !ok {
		return &orders.NotFoundError{Entity: "order", ID: id}
	}
	if !orders.CanTransition(current.Status, requested) {
		return &orders.InvalidTransitionError{From: current.Status, To: requested}
	}
	return w.UpdateOrderStatus(ctx, id, requested)
}
