package orderv1

import "github.com/shopspring/decimal"

// PlaceOrderRequest represents a request to place an order. The acting
// user's identity travels in the command context, not in the request.
type PlaceOrderRequest struct {
	InstrumentID string          `json:"instrumentID"`
	Side         Side            `json:"side"`
	Kind         Kind            `json:"kind"`
	Quantity     int64           `json:"quantity"`
	Price        decimal.Decimal `json:"price"` // required for limit orders only
}
