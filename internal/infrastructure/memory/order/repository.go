package order

import (
	"context"
	"sort"
	"sync"

	orderv1 "github.com/propshare/exchange/internal/domain/order/v1"
)

// repository is an in-memory order store. It keeps its own copies of the
// orders it is given, so callers can keep mutating their instances the way
// they would with a database-backed repository.
type repository struct {
	mu     sync.RWMutex
	orders map[string]*orderv1.Order
}

// NewRepository creates a new in-memory order repository.
func NewRepository() *repository {
	return &repository{
		orders: make(map[string]*orderv1.Order),
	}
}

// Insert stores a newly created order.
func (r *repository) Insert(ctx context.Context, order *orderv1.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders[order.ID] = clone(order)
	return nil
}

// Update persists fill progress and status transitions.
func (r *repository) Update(ctx context.Context, order *orderv1.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.orders[order.ID] = clone(order)
	return nil
}

// GetByID returns the order with the given id, or nil if absent.
func (r *repository) GetByID(ctx context.Context, id string) (*orderv1.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	return clone(order), nil
}

// ListOpenByInstrument returns all pending/partial orders for an instrument.
func (r *repository) ListOpenByInstrument(ctx context.Context, instrumentID string) ([]*orderv1.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []*orderv1.Order
	for _, order := range r.orders {
		if order.InstrumentID == instrumentID && order.IsOpen() {
			orders = append(orders, clone(order))
		}
	}
	sortBySequence(orders)
	return orders, nil
}

// ListOpenByUser returns the user's pending/partial orders for an instrument.
func (r *repository) ListOpenByUser(ctx context.Context, userID, instrumentID string) ([]*orderv1.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []*orderv1.Order
	for _, order := range r.orders {
		if order.UserID == userID && order.InstrumentID == instrumentID && order.IsOpen() {
			orders = append(orders, clone(order))
		}
	}
	sortBySequence(orders)
	return orders, nil
}

// ListOpen returns all pending/partial orders across instruments.
func (r *repository) ListOpen(ctx context.Context) ([]*orderv1.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []*orderv1.Order
	for _, order := range r.orders {
		if order.IsOpen() {
			orders = append(orders, clone(order))
		}
	}
	sortBySequence(orders)
	return orders, nil
}

func sortBySequence(orders []*orderv1.Order) {
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].Sequence < orders[j].Sequence
		}
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})
}

func clone(order *orderv1.Order) *orderv1.Order {
	cp := *order
	cp.FillIDs = append([]string(nil), order.FillIDs...)
	return &cp
}
