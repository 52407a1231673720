package orderv1

import "context"

// Repository defines the persistence contract for orders. The order table
// is append-mostly: rows are inserted once and updated only on fills and
// lifecycle transitions.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=orderv1_mock
type Repository interface {
	// Insert stores a newly created order.
	Insert(ctx context.Context, order *Order) error
	// Update persists fill progress and status transitions.
	Update(ctx context.Context, order *Order) error
	// GetByID returns the order with the given id, or nil if absent.
	GetByID(ctx context.Context, id string) (*Order, error)
	// ListOpenByInstrument returns all pending/partial orders for an instrument.
	ListOpenByInstrument(ctx context.Context, instrumentID string) ([]*Order, error)
	// ListOpenByUser returns the user's pending/partial orders for an instrument.
	ListOpenByUser(ctx context.Context, userID, instrumentID string) ([]*Order, error)
	// ListOpen returns all pending/partial orders across instruments.
	ListOpen(ctx context.Context) ([]*Order, error)
}
