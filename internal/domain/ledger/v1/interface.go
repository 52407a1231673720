package ledgerv1

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TokenLedger is the source of truth for which user owns how many tokens
// of which instrument. The matching engine consumes it through this
// interface only.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=ledgerv1_mock
type TokenLedger interface {
	// LotsByUser returns the user's lots for an instrument, oldest first.
	LotsByUser(ctx context.Context, userID, instrumentID string) ([]*TokenLot, error)
	// Debit consumes quantity tokens from the user's unlocked lots,
	// oldest lot first, and returns a receipt of what was consumed.
	Debit(ctx context.Context, userID, instrumentID string, quantity int64, now time.Time) ([]DebitedLot, error)
	// Credit creates a lot of quantity tokens for the user at the given
	// cost basis and returns the new lot's id. The lot unlocks after the
	// ledger's lock-up period.
	Credit(ctx context.Context, userID, instrumentID string, quantity int64, costBasis decimal.Decimal, acquiredAt time.Time) (string, error)
	// RevokeLot removes a lot created by Credit. Only used to compensate
	// a partially applied settlement.
	RevokeLot(ctx context.Context, userID, lotID string) error
	// Restore puts debited quantity back into the lots a Debit receipt
	// names. Only used to compensate a partially applied settlement.
	Restore(ctx context.Context, userID, instrumentID string, lots []DebitedLot) error
}

// DebitedLot records how much of which lot a Debit consumed, so a failed
// settlement can restore the exact lots.
type DebitedLot struct {
	LotID      string
	Quantity   int64
	CostBasis  decimal.Decimal
	AcquiredAt time.Time
	UnlockAt   time.Time
}

// CashLedger holds available balances, reserves funds for buy orders and
// credits sale proceeds.
type CashLedger interface {
	// AvailableBalance returns the user's unreserved balance.
	AvailableBalance(ctx context.Context, userID string) (decimal.Decimal, error)
	// Reserve moves amount from available balance into a named reservation.
	Reserve(ctx context.Context, userID, reservationID string, amount decimal.Decimal) error
	// ConsumeReservation spends amount out of a reservation. When the
	// reservation holds less than amount, the shortfall is drawn from the
	// user's available balance; the call fails only if reservation and
	// balance together cannot cover amount.
	ConsumeReservation(ctx context.Context, userID, reservationID string, amount decimal.Decimal) error
	// ReleaseReservation returns whatever remains of a reservation to the
	// user's available balance.
	ReleaseReservation(ctx context.Context, userID, reservationID string) error
	// Credit adds amount to the user's available balance.
	Credit(ctx context.Context, userID string, amount decimal.Decimal) error
	// Debit removes amount from the user's available balance. Used only to
	// compensate a partially applied settlement.
	Debit(ctx context.Context, userID string, amount decimal.Decimal) error
}
