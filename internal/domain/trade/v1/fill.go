package tradev1

import (
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Fill is an immutable record of one match event between exactly two
// orders. A fill is created exactly once and never mutated or deleted.
type Fill struct {
	ID           string          `json:"id"`
	InstrumentID string          `json:"instrumentID"`
	BuyOrderID   string          `json:"buyOrderID"`
	SellOrderID  string          `json:"sellOrderID"`
	BuyerID      string          `json:"buyerID"`
	SellerID     string          `json:"sellerID"`
	Quantity     int64           `json:"quantity"`
	Price        decimal.Decimal `json:"price"` // always the resting order's price
	GrossValue   decimal.Decimal `json:"grossValue"`
	BuyerFee     decimal.Decimal `json:"buyerFee"`
	SellerFee    decimal.Decimal `json:"sellerFee"`
	ExecutedAt   time.Time       `json:"executedAt"`
}

// NewFill creates a fill for a match of `quantity` tokens at `price`.
// Gross value and fees are computed by the caller so the fee policy
// stays in one place.
func NewFill(instrumentID, buyOrderID, sellOrderID, buyerID, sellerID string, quantity int64, price, grossValue, buyerFee, sellerFee decimal.Decimal, executedAt time.Time) *Fill {
	return &Fill{
		ID:           ulid.Make().String(),
		InstrumentID: instrumentID,
		BuyOrderID:   buyOrderID,
		SellOrderID:  sellOrderID,
		BuyerID:      buyerID,
		SellerID:     sellerID,
		Quantity:     quantity,
		Price:        price,
		GrossValue:   grossValue,
		BuyerFee:     buyerFee,
		SellerFee:    sellerFee,
		ExecutedAt:   executedAt,
	}
}
