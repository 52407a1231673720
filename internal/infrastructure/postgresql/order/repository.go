package order

import (
	"context"

	orderv1 "github.com/propshare/exchange/internal/domain/order/v1"
	"github.com/propshare/exchange/pkg/errors"
	"github.com/propshare/exchange/pkg/logger"
	"github.com/propshare/exchange/pkg/postgresql"
)

type repository struct {
	db     postgresql.PostgreSQLClient
	logger logger.Interface
}

// NewRepository creates a new order repository.
func NewRepository(db postgresql.PostgreSQLClient, logger logger.Interface) *repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

const orderColumns = `id, user_id, instrument_id, side, kind, quantity, price, filled, remaining, status, fill_ids, created_at, expires_at, sequence`

// Insert stores a newly created order.
func (r *repository) Insert(ctx context.Context, order *orderv1.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

	cmd, err := r.db.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.InstrumentID,
		order.Side,
		order.Kind,
		order.Quantity,
		order.Price,
		order.Filled,
		order.Remaining,
		order.Status,
		order.FillIDs,
		order.CreatedAt,
		order.ExpiresAt,
		order.Sequence,
	)
	if err != nil {
		return errors.TracerFromError(err)
	}

	r.logger.Info("Inserted order", logger.Field{
		Key:   "commandTag",
		Value: cmd.String(),
	})

	return nil
}

// Update persists fill progress, status transitions and the book
// sequence, which is assigned only when the order comes to rest.
func (r *repository) Update(ctx context.Context, order *orderv1.Order) error {
	query := `UPDATE orders SET filled = $1, remaining = $2, status = $3, fill_ids = $4, sequence = $5 WHERE id = $6`

	cmd, err := r.db.Exec(ctx, query,
		order.Filled,
		order.Remaining,
		order.Status,
		order.FillIDs,
		order.Sequence,
		order.ID,
	)
	if err != nil {
		return errors.TracerFromError(err)
	}

	r.logger.Info("Updated order", logger.Field{
		Key:   "commandTag",
		Value: cmd.String(),
	})

	return nil
}

// GetByID returns the order with the given id, or nil if absent.
func (r *repository) GetByID(ctx context.Context, id string) (*orderv1.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order := &orderv1.Order{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.InstrumentID,
		&order.Side,
		&order.Kind,
		&order.Quantity,
		&order.Price,
		&order.Filled,
		&order.Remaining,
		&order.Status,
		&order.FillIDs,
		&order.CreatedAt,
		&order.ExpiresAt,
		&order.Sequence,
	)
	if err != nil {
		if postgresql.IsNoRows(err) {
			return nil, nil
		}
		return nil, errors.TracerFromError(err)
	}

	return order, nil
}

// ListOpenByInstrument returns all pending/partial orders for an instrument.
func (r *repository) ListOpenByInstrument(ctx context.Context, instrumentID string) ([]*orderv1.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE instrument_id = $1 AND status IN ('pending', 'partial') ORDER BY created_at, sequence`

	return r.list(ctx, query, instrumentID)
}

// ListOpenByUser returns the user's pending/partial orders for an instrument.
func (r *repository) ListOpenByUser(ctx context.Context, userID, instrumentID string) ([]*orderv1.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 AND instrument_id = $2 AND status IN ('pending', 'partial') ORDER BY created_at, sequence`

	return r.list(ctx, query, userID, instrumentID)
}

// ListOpen returns all pending/partial orders across instruments.
func (r *repository) ListOpen(ctx context.Context) ([]*orderv1.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status IN ('pending', 'partial') ORDER BY created_at, sequence`

	return r.list(ctx, query)
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]*orderv1.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	orders := []*orderv1.Order{}
	for rows.Next() {
		order := &orderv1.Order{}
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.InstrumentID,
			&order.Side,
			&order.Kind,
			&order.Quantity,
			&order.Price,
			&order.Filled,
			&order.Remaining,
			&order.Status,
			&order.FillIDs,
			&order.CreatedAt,
			&order.ExpiresAt,
			&order.Sequence,
		)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		orders = append(orders, order)
	}

	return orders, nil
}
