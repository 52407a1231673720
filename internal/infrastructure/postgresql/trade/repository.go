package trade

import (
	"context"

	tradev1 "github.com/propshare/exchange/internal/domain/trade/v1"
	"github.com/propshare/exchange/pkg/errors"
	"github.com/propshare/exchange/pkg/logger"
	"github.com/propshare/exchange/pkg/postgresql"
)

type repository struct {
	db     postgresql.PostgreSQLClient
	logger logger.Interface
}

// NewRepository creates a new fill repository.
func NewRepository(db postgresql.PostgreSQLClient, logger logger.Interface) *repository {
	return &repository{
		db:     db,
		logger: logger,
	}
}

const fillColumns = `id, instrument_id, buy_order_id, sell_order_id, buyer_id, seller_id, quantity, price, gross_value, buyer_fee, seller_fee, executed_at`

// Insert stores a fill.
func (r *repository) Insert(ctx context.Context, fill *tradev1.Fill) error {
	query := `INSERT INTO fills (` + fillColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	cmd, err := r.db.Exec(ctx, query,
		fill.ID,
		fill.InstrumentID,
		fill.BuyOrderID,
		fill.SellOrderID,
		fill.BuyerID,
		fill.SellerID,
		fill.Quantity,
		fill.Price,
		fill.GrossValue,
		fill.BuyerFee,
		fill.SellerFee,
		fill.ExecutedAt,
	)
	if err != nil {
		return errors.TracerFromError(err)
	}

	r.logger.Info("Inserted fill", logger.Field{
		Key:   "commandTag",
		Value: cmd.String(),
	})

	return nil
}

// ListByInstrument returns the most recent fills for an instrument,
// newest first, capped at limit.
func (r *repository) ListByInstrument(ctx context.Context, instrumentID string, limit int) ([]*tradev1.Fill, error) {
	query := `SELECT ` + fillColumns + ` FROM fills WHERE instrument_id = $1 ORDER BY executed_at DESC`
	args := []any{instrumentID}

	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	return r.list(ctx, query, args...)
}

// ListByOrder returns all fills an order participated in, oldest first.
func (r *repository) ListByOrder(ctx context.Context, orderID string) ([]*tradev1.Fill, error) {
	query := `SELECT ` + fillColumns + ` FROM fills WHERE buy_order_id = $1 OR sell_order_id = $1 ORDER BY executed_at`

	return r.list(ctx, query, orderID)
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]*tradev1.Fill, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	defer rows.Close()

	fills := []*tradev1.Fill{}
	for rows.Next() {
		fill := &tradev1.Fill{}
		err := rows.Scan(
			&fill.ID,
			&fill.InstrumentID,
			&fill.BuyOrderID,
			&fill.SellOrderID,
			&fill.BuyerID,
			&fill.SellerID,
			&fill.Quantity,
			&fill.Price,
			&fill.GrossValue,
			&fill.BuyerFee,
			&fill.SellerFee,
			&fill.ExecutedAt,
		)
		if err != nil {
			return nil, errors.TracerFromError(err)
		}
		fills = append(fills, fill)
	}

	return fills, nil
}
