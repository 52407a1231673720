package marketdatav1

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// HistoryRetention is how long price history points are kept.
	// Older points are pruned on write.
	HistoryRetention = 30 * 24 * time.Hour
	// Window24h is the short rolling statistics window.
	Window24h = 24 * time.Hour
	// Window7d is the long rolling statistics window.
	Window7d = 7 * 24 * time.Hour
)

// PricePoint is an append-only timestamped sample produced by one fill.
type PricePoint struct {
	Timestamp time.Time       `json:"timestamp"`
	Price     decimal.Decimal `json:"price"`
	Volume    int64           `json:"volume"`
	Open      decimal.Decimal `json:"open"`
	High      decimal.Decimal `json:"high"`
	Low       decimal.Decimal `json:"low"`
	Close     decimal.Decimal `json:"close"`
}

// WindowStats holds rolling aggregates over one time window. All values
// are re-derived in full from the price history, never patched.
type WindowStats struct {
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	Volume        int64           `json:"volume"`
	TradeCount    int64           `json:"tradeCount"`
	ChangePercent decimal.Decimal `json:"changePercent"`
}

// Snapshot is the per-instrument market data record, overwritten on each
// fill. A zero BestBid or BestAsk means that side of the book is empty;
// zero is never a legal price.
type Snapshot struct {
	InstrumentID  string          `json:"instrumentID"`
	CurrentPrice  decimal.Decimal `json:"currentPrice"`
	BestBid       decimal.Decimal `json:"bestBid"`
	BestAsk       decimal.Decimal `json:"bestAsk"`
	Spread        decimal.Decimal `json:"spread"`
	SpreadPercent decimal.Decimal `json:"spreadPercent"`
	Stats24h      WindowStats     `json:"stats24h"`
	Stats7d       WindowStats     `json:"stats7d"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
