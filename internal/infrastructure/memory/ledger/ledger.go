package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	ledgerv1 "github.com/propshare/exchange/internal/domain/ledger/v1"
	"github.com/propshare/exchange/pkg/errors"
)

// TokenLedger is an in-memory lot-based token ledger. Lots are kept per
// user and instrument, oldest acquisition first.
type TokenLedger struct {
	mu   sync.Mutex
	lots map[string][]*ledgerv1.TokenLot // keyed by userID + "/" + instrumentID
}

// NewTokenLedger creates a new in-memory token ledger.
func NewTokenLedger() *TokenLedger {
	return &TokenLedger{
		lots: make(map[string][]*ledgerv1.TokenLot),
	}
}

func lotKey(userID, instrumentID string) string {
	return userID + "/" + instrumentID
}

// LotsByUser returns the user's lots for an instrument, oldest first.
func (l *TokenLedger) LotsByUser(ctx context.Context, userID, instrumentID string) ([]*ledgerv1.TokenLot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lots := l.lots[lotKey(userID, instrumentID)]
	out := make([]*ledgerv1.TokenLot, len(lots))
	for i, lot := range lots {
		cp := *lot
		out[i] = &cp
	}
	return out, nil
}

// Debit consumes quantity tokens from the user's unlocked lots, oldest
// lot first, and returns a receipt of what was consumed.
func (l *TokenLedger) Debit(ctx context.Context, userID, instrumentID string, quantity int64, now time.Time) ([]ledgerv1.DebitedLot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := lotKey(userID, instrumentID)
	lots := l.lots[key]

	var unlocked int64
	for _, lot := range lots {
		if lot.IsUnlocked(now) {
			unlocked += lot.Quantity
		}
	}
	if unlocked < quantity {
		return nil, errors.NewErrorDetails(
			fmt.Sprintf("User holds %d unlocked tokens, %d required", unlocked, quantity),
			string(errors.InsufficientTokensError),
			"quantity",
		)
	}

	var receipt []ledgerv1.DebitedLot
	remaining := quantity
	kept := lots[:0]
	for _, lot := range lots {
		if remaining == 0 || !lot.IsUnlocked(now) {
			kept = append(kept, lot)
			continue
		}
		take := min(lot.Quantity, remaining)
		receipt = append(receipt, ledgerv1.DebitedLot{
			LotID:      lot.ID,
			Quantity:   take,
			CostBasis:  lot.CostBasis,
			AcquiredAt: lot.AcquiredAt,
			UnlockAt:   lot.UnlockAt,
		})
		remaining -= take
		lot.Quantity -= take
		if lot.Quantity > 0 {
			kept = append(kept, lot)
		}
	}
	l.lots[key] = kept

	return receipt, nil
}

// Credit creates a lot of quantity tokens for the user at the given cost
// basis and returns the new lot's id.
func (l *TokenLedger) Credit(ctx context.Context, userID, instrumentID string, quantity int64, costBasis decimal.Decimal, acquiredAt time.Time) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lot := &ledgerv1.TokenLot{
		ID:           ulid.Make().String(),
		UserID:       userID,
		InstrumentID: instrumentID,
		Quantity:     quantity,
		CostBasis:    costBasis,
		AcquiredAt:   acquiredAt,
		UnlockAt:     acquiredAt.Add(ledgerv1.LockupDuration),
	}

	key := lotKey(userID, instrumentID)
	l.lots[key] = insertByAcquisition(l.lots[key], lot)

	return lot.ID, nil
}

// RevokeLot removes a lot created by Credit.
func (l *TokenLedger) RevokeLot(ctx context.Context, userID, lotID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, lots := range l.lots {
		for i, lot := range lots {
			if lot.UserID != userID || lot.ID != lotID {
				continue
			}
			l.lots[key] = append(lots[:i], lots[i+1:]...)
			return nil
		}
	}
	return errors.NewErrorDetails("Lot not found", string(errors.GeneralNotFoundError), "lotID")
}

// Restore puts debited quantity back into the lots a Debit receipt names.
// Fully consumed lots are recreated with their original acquisition and
// unlock times.
func (l *TokenLedger) Restore(ctx context.Context, userID, instrumentID string, debited []ledgerv1.DebitedLot) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := lotKey(userID, instrumentID)
	for _, d := range debited {
		restored := false
		for _, lot := range l.lots[key] {
			if lot.ID == d.LotID {
				lot.Quantity += d.Quantity
				restored = true
				break
			}
		}
		if restored {
			continue
		}
		l.lots[key] = insertByAcquisition(l.lots[key], &ledgerv1.TokenLot{
			ID:           d.LotID,
			UserID:       userID,
			InstrumentID: instrumentID,
			Quantity:     d.Quantity,
			CostBasis:    d.CostBasis,
			AcquiredAt:   d.AcquiredAt,
			UnlockAt:     d.UnlockAt,
		})
	}
	return nil
}

func insertByAcquisition(lots []*ledgerv1.TokenLot, lot *ledgerv1.TokenLot) []*ledgerv1.TokenLot {
	lots = append(lots, lot)
	sort.SliceStable(lots, func(i, j int) bool {
		return lots[i].AcquiredAt.Before(lots[j].AcquiredAt)
	})
	return lots
}

// CashLedger is an in-memory cash ledger with named reservations.
type CashLedger struct {
	mu           sync.Mutex
	balances     map[string]decimal.Decimal            // available, by userID
	reservations map[string]map[string]decimal.Decimal // by userID, then reservationID
}

// NewCashLedger creates a new in-memory cash ledger.
func NewCashLedger() *CashLedger {
	return &CashLedger{
		balances:     make(map[string]decimal.Decimal),
		reservations: make(map[string]map[string]decimal.Decimal),
	}
}

// AvailableBalance returns the user's unreserved balance.
func (l *CashLedger) AvailableBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.balances[userID], nil
}

// Reserve moves amount from available balance into a named reservation.
func (l *CashLedger) Reserve(ctx context.Context, userID, reservationID string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balances[userID]
	if balance.LessThan(amount) {
		return errors.NewErrorDetails(
			fmt.Sprintf("Available balance %s cannot cover %s", balance.StringFixed(2), amount.StringFixed(2)),
			string(errors.InsufficientCashError),
			"amount",
		)
	}

	l.balances[userID] = balance.Sub(amount)
	if l.reservations[userID] == nil {
		l.reservations[userID] = make(map[string]decimal.Decimal)
	}
	l.reservations[userID][reservationID] = l.reservations[userID][reservationID].Add(amount)

	return nil
}

// ConsumeReservation spends amount out of a reservation. Per-fill fee
// rounding can push a fill's cost a few cents past what was reserved;
// the shortfall comes out of the available balance so a rounding cent
// never fails a settlement the user can afford.
func (l *CashLedger) ConsumeReservation(ctx context.Context, userID, reservationID string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	reserved := l.reservations[userID][reservationID]
	if reserved.GreaterThanOrEqual(amount) {
		remaining := reserved.Sub(amount)
		if remaining.IsZero() {
			delete(l.reservations[userID], reservationID)
		} else {
			l.reservations[userID][reservationID] = remaining
		}
		return nil
	}

	shortfall := amount.Sub(reserved)
	balance := l.balances[userID]
	if balance.LessThan(shortfall) {
		return errors.NewErrorDetails(
			fmt.Sprintf("Reservation %s holds %s and balance %s cannot cover %s",
				reservationID, reserved.StringFixed(2), balance.StringFixed(2), amount.StringFixed(2)),
			string(errors.InsufficientCashError),
			"amount",
		)
	}

	l.balances[userID] = balance.Sub(shortfall)
	delete(l.reservations[userID], reservationID)

	return nil
}

// ReleaseReservation returns whatever remains of a reservation to the
// user's available balance. Releasing an absent reservation is a no-op.
func (l *CashLedger) ReleaseReservation(ctx context.Context, userID, reservationID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	reserved, ok := l.reservations[userID][reservationID]
	if !ok {
		return nil
	}
	delete(l.reservations[userID], reservationID)
	l.balances[userID] = l.balances[userID].Add(reserved)

	return nil
}

// Credit adds amount to the user's available balance.
func (l *CashLedger) Credit(ctx context.Context, userID string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[userID] = l.balances[userID].Add(amount)
	return nil
}

// Debit removes amount from the user's available balance.
func (l *CashLedger) Debit(ctx context.Context, userID string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	balance := l.balances[userID]
	if balance.LessThan(amount) {
		return errors.NewErrorDetails(
			fmt.Sprintf("Available balance %s cannot cover %s", balance.StringFixed(2), amount.StringFixed(2)),
			string(errors.InsufficientCashError),
			"amount",
		)
	}
	l.balances[userID] = balance.Sub(amount)

	return nil
}
