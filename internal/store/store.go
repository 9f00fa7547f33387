// Package store keeps the console's in-memory order list consistent with
// the backend: one bulk load, then reconciliation of an unbounded stream of
// change events. The list is most-recent-first; event delivery order is not
// guaranteed, so every rule replaces by identifier rather than diffing by
// version.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
)

// OrderFetcher is the slice of the data-access gateway the store depends on.
type OrderFetcher interface {
	FetchOrders(ctx context.Context) ([]orders.Order, error)
}

type Store struct {
	mu       sync.Mutex
	list     []orders.Order
	selected string // "" = nothing selected

	gateway OrderFetcher
	log     *zap.Logger
}

func New(gateway OrderFetcher, log *zap.Logger) *Store {
	return &Store{gateway: gateway, log: log}
}

// Load fetches the full order list and replaces the cache wholesale. On
// failure the previous cache is left untouched and the error is returned to
// the caller.
func (s *Store) Load(ctx context.Context) error {
	fetched, err := s.gateway.FetchOrders(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = fetched
	if s.selected != "" {
		if _, ok := s.find(s.selected); !ok {
			s.selected = ""
		}
	}
	return nil
}

// ApplyEvent reconciles one change event into the cache. It is idempotent:
// applying the same event twice leaves the cache identical after the second
// application. The cache never holds two entries with the same id.
func (s *Store) ApplyEvent(ev orders.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch ev.Kind {
	case orders.ChangeInsert:
		s.upsert(ev.Order)
	case orders.ChangeUpdate:
		// unknown id: the backend is the source of truth and events may
		// outrun the load, so promote to insert instead of erroring
		s.upsert(ev.Order)
	case orders.ChangeDelete:
		s.remove(ev.Order.ID)
	default:
		s.log.Warn("unknown change kind", zap.String("kind", string(ev.Kind)), zap.String("order_id", ev.Order.ID))
	}
}

// upsert merges into the existing entry or prepends a new one. Prepending
// keeps "most recent first" only when inserts arrive in creation order; an
// accepted approximation, the next Load restores exact order.
func (s *Store) upsert(rec orders.ChangeRecord) {
	if rec.ID == "" {
		return
	}
	if i, ok := s.find(rec.ID); ok {
		rec.MergeInto(&s.list[i])
		return
	}
	s.list = append([]orders.Order{rec.ToOrder()}, s.list...)
}

func (s *Store) remove(id string) {
	i, ok := s.find(id)
	if !ok {
		return
	}
	s.list = append(s.list[:i], s.list[i+1:]...)
	if s.selected == id {
		s.selected = ""
	}
}

func (s *Store) find(id string) (int, bool) {
	for i := range s.list {
		if s.list[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// Snapshot returns a copy of the cached list for rendering.
func (s *Store) Snapshot() []orders.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]orders.Order, len(s.list))
	copy(out, s.list)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list)
}

// Get returns the cached order with the given id.
func (s *Store) Get(id string) (orders.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.find(id); ok {
		return s.list[i], true
	}
	return orders.Order{}, false
}

// Select marks an order as the one currently being viewed. A Delete event
// for the selected id clears the selection.
func (s *Store) Select(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.find(id); !ok {
		return false
	}
	s.selected = id
	return true
}

func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = ""
}

// Selected returns the currently viewed order, if any.
func (s *Store) Selected() (orders.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == "" {
		return orders.Order{}, false
	}
	if i, ok := s.find(s.selected); ok {
		return s.list[i], true
	}
	return orders.Order{}, false
}
