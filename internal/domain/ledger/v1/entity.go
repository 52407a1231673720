package ledgerv1

import (
	"time"

	"github.com/shopspring/decimal"
)

// LockupDuration is how long newly purchased tokens stay locked before
// they can be sold again.
const LockupDuration = 30 * 24 * time.Hour

// TokenLot is a quantity of an instrument's tokens owned by one user,
// with its own unlock date and cost basis. Lots are owned by the Token
// Ledger; the matching engine only reads them.
type TokenLot struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userID"`
	InstrumentID string          `json:"instrumentID"`
	Quantity     int64           `json:"quantity"`
	CostBasis    decimal.Decimal `json:"costBasis"`
	AcquiredAt   time.Time       `json:"acquiredAt"`
	UnlockAt     time.Time       `json:"unlockAt"`
}

// IsUnlocked reports whether the lot's tokens are sellable at the given time.
func (l *TokenLot) IsUnlocked(now time.Time) bool {
	return !now.Before(l.UnlockAt)
}
