package trade

import (
	"context"
	"sync"

	tradev1 "github.com/propshare/exchange/internal/domain/trade/v1"
)

// repository is an in-memory fill store. Fills are immutable, so the
// stored instances are returned directly.
type repository struct {
	mu      sync.RWMutex
	ordered []*tradev1.Fill // insertion order, oldest first
}

// NewRepository creates a new in-memory fill repository.
func NewRepository() *repository {
	return &repository{}
}

// Insert stores a fill.
func (r *repository) Insert(ctx context.Context, fill *tradev1.Fill) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.ordered = append(r.ordered, fill)
	return nil
}

// ListByInstrument returns the most recent fills for an instrument,
// newest first, capped at limit.
func (r *repository) ListByInstrument(ctx context.Context, instrumentID string, limit int) ([]*tradev1.Fill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var fills []*tradev1.Fill
	for i := len(r.ordered) - 1; i >= 0; i-- {
		if r.ordered[i].InstrumentID != instrumentID {
			continue
		}
		fills = append(fills, r.ordered[i])
		if limit > 0 && len(fills) == limit {
			break
		}
	}
	return fills, nil
}

// ListByOrder returns all fills an order participated in, oldest first.
func (r *repository) ListByOrder(ctx context.Context, orderID string) ([]*tradev1.Fill, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var fills []*tradev1.Fill
	for _, fill := range r.ordered {
		if fill.BuyOrderID == orderID || fill.SellOrderID == orderID {
			fills = append(fills, fill)
		}
	}
	return fills, nil
}
