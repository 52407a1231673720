package trade

import (
	"context"
	"fmt"
	"testing"
	"time"

	tradev1 "github.com/propshare/exchange/internal/domain/trade/v1"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFill(instrumentID, buyOrderID string, i int) *tradev1.Fill {
	price := decimal.NewFromInt(10)
	return tradev1.NewFill(
		instrumentID,
		buyOrderID, fmt.Sprintf("sell-%d", i),
		"alice", "bob",
		10, price, price.Mul(decimal.NewFromInt(10)),
		decimal.Zero, decimal.Zero,
		time.Now().Add(time.Duration(i)*time.Second),
	)
}

func TestRepository_ListByInstrument(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Insert(ctx, newFill("PROP-1", "buy-1", i)))
	}
	require.NoError(t, repo.Insert(ctx, newFill("PROP-2", "buy-2", 5)))

	// Newest first, capped at limit, other instruments excluded.
	fills, err := repo.ListByInstrument(ctx, "PROP-1", 3)
	require.NoError(t, err)
	require.Len(t, fills, 3)
	assert.Equal(t, "sell-4", fills[0].SellOrderID)
	assert.Equal(t, "sell-2", fills[2].SellOrderID)

	// Zero limit means everything.
	fills, err = repo.ListByInstrument(ctx, "PROP-1", 0)
	require.NoError(t, err)
	assert.Len(t, fills, 5)
}

func TestRepository_ListByOrder(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	mine := newFill("PROP-1", "buy-1", 0)
	other := newFill("PROP-1", "buy-2", 1)
	require.NoError(t, repo.Insert(ctx, mine))
	require.NoError(t, repo.Insert(ctx, other))

	fills, err := repo.ListByOrder(ctx, "buy-1")
	require.NoError(t, err)
	require.Len(t, fills, 1)
	assert.Equal(t, mine.ID, fills[0].ID)

	// Matches the sell side too.
	fills, err = repo.ListByOrder(ctx, mine.SellOrderID)
	require.NoError(t, err)
	require.Len(t, fills, 1)
}
