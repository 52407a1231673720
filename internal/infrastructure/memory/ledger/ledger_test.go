package ledger

import (
	"context"
	"testing"
	"time"

	ledgerv1 "github.com/propshare/exchange/internal/domain/ledger/v1"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenLedger_Debit_FIFO(t *testing.T) {
	ledger := NewTokenLedger()
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// Two unlocked lots, acquired 90 and 60 days ago.
	oldID, err := ledger.Credit(ctx, "alice", "PROP-1", 30, decimal.NewFromInt(8), now.Add(-90*24*time.Hour))
	require.NoError(t, err)
	newID, err := ledger.Credit(ctx, "alice", "PROP-1", 30, decimal.NewFromInt(9), now.Add(-60*24*time.Hour))
	require.NoError(t, err)

	receipt, err := ledger.Debit(ctx, "alice", "PROP-1", 40, now)
	require.NoError(t, err)
	require.Len(t, receipt, 2)

	// The oldest lot is consumed in full, the newer one partially.
	assert.Equal(t, oldID, receipt[0].LotID)
	assert.Equal(t, int64(30), receipt[0].Quantity)
	assert.Equal(t, newID, receipt[1].LotID)
	assert.Equal(t, int64(10), receipt[1].Quantity)

	lots, err := ledger.LotsByUser(ctx, "alice", "PROP-1")
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, newID, lots[0].ID)
	assert.Equal(t, int64(20), lots[0].Quantity)
}

func TestTokenLedger_Debit_SkipsLockedLots(t *testing.T) {
	ledger := NewTokenLedger()
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	// One unlocked lot and one still inside its lock-up.
	unlockedID, err := ledger.Credit(ctx, "alice", "PROP-1", 20, decimal.NewFromInt(8), now.Add(-60*24*time.Hour))
	require.NoError(t, err)
	lockedID, err := ledger.Credit(ctx, "alice", "PROP-1", 50, decimal.NewFromInt(9), now.Add(-24*time.Hour))
	require.NoError(t, err)

	// Only the 20 unlocked tokens count.
	_, err = ledger.Debit(ctx, "alice", "PROP-1", 21, now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "20 unlocked tokens, 21 required")

	receipt, err := ledger.Debit(ctx, "alice", "PROP-1", 20, now)
	require.NoError(t, err)
	require.Len(t, receipt, 1)
	assert.Equal(t, unlockedID, receipt[0].LotID)

	lots, err := ledger.LotsByUser(ctx, "alice", "PROP-1")
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, lockedID, lots[0].ID)
}

func TestTokenLedger_Restore(t *testing.T) {
	ledger := NewTokenLedger()
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	acquiredAt := now.Add(-90 * 24 * time.Hour)
	lotID, err := ledger.Credit(ctx, "alice", "PROP-1", 30, decimal.NewFromInt(8), acquiredAt)
	require.NoError(t, err)

	// Consume the lot entirely, then restore from the receipt.
	receipt, err := ledger.Debit(ctx, "alice", "PROP-1", 30, now)
	require.NoError(t, err)

	lots, err := ledger.LotsByUser(ctx, "alice", "PROP-1")
	require.NoError(t, err)
	require.Empty(t, lots)

	require.NoError(t, ledger.Restore(ctx, "alice", "PROP-1", receipt))

	lots, err = ledger.LotsByUser(ctx, "alice", "PROP-1")
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.Equal(t, lotID, lots[0].ID)
	assert.Equal(t, int64(30), lots[0].Quantity)
	assert.Equal(t, acquiredAt, lots[0].AcquiredAt)
	assert.Equal(t, acquiredAt.Add(ledgerv1.LockupDuration), lots[0].UnlockAt)
}

func TestTokenLedger_RevokeLot(t *testing.T) {
	ledger := NewTokenLedger()
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	lotID, err := ledger.Credit(ctx, "alice", "PROP-1", 30, decimal.NewFromInt(8), now)
	require.NoError(t, err)

	require.NoError(t, ledger.RevokeLot(ctx, "alice", lotID))
	assert.Error(t, ledger.RevokeLot(ctx, "alice", lotID))

	lots, err := ledger.LotsByUser(ctx, "alice", "PROP-1")
	require.NoError(t, err)
	assert.Empty(t, lots)
}

func TestCashLedger_ReservationLifecycle(t *testing.T) {
	ledger := NewCashLedger()
	ctx := context.Background()

	require.NoError(t, ledger.Credit(ctx, "alice", decimal.NewFromInt(1000)))

	// Reserve 400 for an order.
	require.NoError(t, ledger.Reserve(ctx, "alice", "order-1", decimal.NewFromInt(400)))

	balance, err := ledger.AvailableBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "600.00", balance.StringFixed(2))

	// A second reservation beyond the available balance fails.
	err = ledger.Reserve(ctx, "alice", "order-2", decimal.NewFromInt(601))
	require.Error(t, err)

	// Consume part of the reservation, release the rest.
	require.NoError(t, ledger.ConsumeReservation(ctx, "alice", "order-1", decimal.NewFromInt(150)))
	require.NoError(t, ledger.ReleaseReservation(ctx, "alice", "order-1"))

	balance, err = ledger.AvailableBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "850.00", balance.StringFixed(2))

	// Releasing again is a no-op.
	require.NoError(t, ledger.ReleaseReservation(ctx, "alice", "order-1"))
	balance, err = ledger.AvailableBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "850.00", balance.StringFixed(2))
}

func TestCashLedger_ConsumeReservation_DrawsShortfallFromBalance(t *testing.T) {
	ledger := NewCashLedger()
	ctx := context.Background()

	require.NoError(t, ledger.Credit(ctx, "alice", decimal.NewFromInt(100)))
	require.NoError(t, ledger.Reserve(ctx, "alice", "order-1", decimal.RequireFromString("4.05")))

	// Per-fill fee rounding asks for a cent more than was reserved; the
	// cent comes from the available balance.
	require.NoError(t, ledger.ConsumeReservation(ctx, "alice", "order-1", decimal.RequireFromString("2.03")))
	require.NoError(t, ledger.ConsumeReservation(ctx, "alice", "order-1", decimal.RequireFromString("2.03")))

	balance, err := ledger.AvailableBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "95.94", balance.StringFixed(2))

	// The reservation is fully spent; releasing returns nothing.
	require.NoError(t, ledger.ReleaseReservation(ctx, "alice", "order-1"))
	balance, err = ledger.AvailableBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "95.94", balance.StringFixed(2))
}

func TestCashLedger_ConsumeReservation_Overdraw(t *testing.T) {
	ledger := NewCashLedger()
	ctx := context.Background()

	require.NoError(t, ledger.Credit(ctx, "alice", decimal.NewFromInt(100)))
	require.NoError(t, ledger.Reserve(ctx, "alice", "order-1", decimal.NewFromInt(100)))

	assert.Error(t, ledger.ConsumeReservation(ctx, "alice", "order-1", decimal.NewFromInt(101)))
	assert.Error(t, ledger.ConsumeReservation(ctx, "alice", "missing", decimal.NewFromInt(1)))

	// Full consumption removes the reservation.
	require.NoError(t, ledger.ConsumeReservation(ctx, "alice", "order-1", decimal.NewFromInt(100)))
	require.NoError(t, ledger.ReleaseReservation(ctx, "alice", "order-1"))

	balance, err := ledger.AvailableBalance(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestCashLedger_Debit(t *testing.T) {
	ledger := NewCashLedger()
	ctx := context.Background()

	require.NoError(t, ledger.Credit(ctx, "alice", decimal.NewFromInt(50)))
	assert.Error(t, ledger.Debit(ctx, "alice", decimal.NewFromInt(51)))
	require.NoError(t, ledger.Debit(ctx, "alice", decimal.NewFromInt(50)))

	balance, err := ledger.AvailableBalance(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}
