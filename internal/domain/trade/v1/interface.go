package tradev1

import "context"

// Repository defines the persistence contract for fills. The fill table
// is append-only: settlement records a fill as its final step, so a
// stored fill is always fully settled and is never updated or removed.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=tradev1_mock
type Repository interface {
	// Insert stores a fill. Called exactly once per match event.
	Insert(ctx context.Context, fill *Fill) error
	// ListByInstrument returns the most recent fills for an instrument,
	// newest first, capped at limit.
	ListByInstrument(ctx context.Context, instrumentID string, limit int) ([]*Fill, error)
	// ListByOrder returns all fills an order participated in.
	ListByOrder(ctx context.Context, orderID string) ([]*Fill, error)
}
