package order

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	orderv1 "github.com/propshare/exchange/internal/domain/order/v1"
	"github.com/propshare/exchange/pkg/logger"
	postgresql_mock "github.com/propshare/exchange/pkg/postgresql/mock"
)

// The book assigns an order's sequence only when it comes to rest, after
// the initial insert. Update must write it back or equal-timestamp orders
// lose their time priority when the books are rebuilt on startup.
func TestRepository_Update_PersistsSequence(t *testing.T) {
	ctrl := gomock.NewController(t)
	log, err := logger.NewLogger()
	require.NoError(t, err)

	db := postgresql_mock.NewMockPostgreSQLClient(ctrl)
	repo := NewRepository(db, log)

	order := orderv1.NewOrder("alice", "PROP-1", orderv1.SideBuy, orderv1.KindLimit, 10,
		decimal.RequireFromString("10.00"), time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC))
	order.Sequence = 7

	ctx := context.Background()
	query := `UPDATE orders SET filled = $1, remaining = $2, status = $3, fill_ids = $4, sequence = $5 WHERE id = $6`
	db.EXPECT().
		Exec(ctx, query, order.Filled, order.Remaining, order.Status, order.FillIDs, int64(7), order.ID).
		Return(pgconn.NewCommandTag("UPDATE 1"), nil)

	require.NoError(t, repo.Update(ctx, order))
}
