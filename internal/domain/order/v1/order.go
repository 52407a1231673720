package orderv1

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Side represents the side of an order.
type Side string

const (
	// SideBuy represents a buy order.
	SideBuy Side = "buy"
	// SideSell represents a sell order.
	SideSell Side = "sell"
)

// Kind represents the kind of order.
type Kind string

const (
	// KindMarket represents a market order.
	KindMarket Kind = "market"
	// KindLimit represents a limit order.
	KindLimit Kind = "limit"
)

// Status represents the lifecycle status of an order.
type Status string

const (
	// StatusPending is the status of an order with no fills yet.
	StatusPending Status = "pending"
	// StatusPartial is the status of an order with some quantity matched.
	StatusPartial Status = "partial"
	// StatusFilled is the terminal status of a fully matched order.
	StatusFilled Status = "filled"
	// StatusCancelled is the terminal status of a cancelled order.
	StatusCancelled Status = "cancelled"
	// StatusExpired is the terminal status of an order past its expiry.
	StatusExpired Status = "expired"
)

// Order represents a resting or historical instruction to buy or sell
// a quantity of tokens of one instrument.
type Order struct {
	ID           string          `json:"id"`
	UserID       string          `json:"userID"`
	InstrumentID string          `json:"instrumentID"`
	Side         Side            `json:"side"`
	Kind         Kind            `json:"kind"`
	Quantity     int64           `json:"quantity"`
	Price        decimal.Decimal `json:"price"` // zero for market orders
	Filled       int64           `json:"filled"`
	Remaining    int64           `json:"remaining"`
	Status       Status          `json:"status"`
	FillIDs      []string        `json:"fillIDs"`
	CreatedAt    time.Time       `json:"createdAt"`
	ExpiresAt    time.Time       `json:"expiresAt"`
	Sequence     int64           `json:"sequence"` // book arrival sequence, breaks equal-timestamp ties
}

// NewOrder creates a new pending order with the given parameters.
func NewOrder(userID, instrumentID string, side Side, kind Kind, quantity int64, price decimal.Decimal, now time.Time) *Order {
	return &Order{
		ID:           ulid.Make().String(),
		UserID:       userID,
		InstrumentID: instrumentID,
		Side:         side,
		Kind:         kind,
		Quantity:     quantity,
		Price:        price,
		Filled:       0,
		Remaining:    quantity,
		Status:       StatusPending,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ExpiryDuration),
	}
}

// IsBuy checks if the order is a buy order.
func (o *Order) IsBuy() bool {
	return o.Side == SideBuy
}

// IsSell checks if the order is a sell order.
func (o *Order) IsSell() bool {
	return o.Side == SideSell
}

// IsLimit checks if the order is a limit order.
func (o *Order) IsLimit() bool {
	return o.Kind == KindLimit
}

// IsMarket checks if the order is a market order.
func (o *Order) IsMarket() bool {
	return o.Kind == KindMarket
}

// IsOpen checks if the order is still matchable or cancellable.
func (o *Order) IsOpen() bool {
	return o.Status == StatusPending || o.Status == StatusPartial
}

// IsTerminal checks if the order reached a terminal status.
func (o *Order) IsTerminal() bool {
	return o.Status == StatusFilled || o.Status == StatusCancelled || o.Status == StatusExpired
}

// IsExpiredAt checks whether the order's expiry has elapsed at the given time.
func (o *Order) IsExpiredAt(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// ApplyFill records a matched quantity against the order, maintaining the
// invariant filled + remaining == quantity and advancing the status.
func (o *Order) ApplyFill(fillID string, quantity int64) error {
	if !o.IsOpen() {
		return fmt.Errorf("order %s is %s, cannot fill", o.ID, o.Status)
	}
	if quantity <= 0 || quantity > o.Remaining {
		return fmt.Errorf("fill quantity %d out of range for order %s (remaining %d)", quantity, o.ID, o.Remaining)
	}

	o.Filled += quantity
	o.Remaining -= quantity
	o.FillIDs = append(o.FillIDs, fillID)

	if o.Remaining == 0 {
		o.Status = StatusFilled
	} else {
		o.Status = StatusPartial
	}

	return nil
}

// UnapplyFill reverses a previously applied fill. Used when settlement of
// the fill fails and the match must be rolled back.
func (o *Order) UnapplyFill(fillID string, quantity int64) error {
	if quantity <= 0 || quantity > o.Filled {
		return fmt.Errorf("cannot unapply %d from order %s (filled %d)", quantity, o.ID, o.Filled)
	}

	o.Filled -= quantity
	o.Remaining += quantity

	for i := len(o.FillIDs) - 1; i >= 0; i-- {
		if o.FillIDs[i] == fillID {
			o.FillIDs = append(o.FillIDs[:i], o.FillIDs[i+1:]...)
			break
		}
	}

	if o.Filled == 0 {
		o.Status = StatusPending
	} else {
		o.Status = StatusPartial
	}

	return nil
}

// Cancel transitions the order to cancelled. Only legal from pending/partial.
func (o *Order) Cancel() error {
	if !o.IsOpen() {
		return fmt.Errorf("order %s is %s, cannot cancel", o.ID, o.Status)
	}
	o.Status = StatusCancelled
	return nil
}

// Expire transitions the order to expired. Only legal from pending/partial.
func (o *Order) Expire() error {
	if !o.IsOpen() {
		return fmt.Errorf("order %s is %s, cannot expire", o.ID, o.Status)
	}
	o.Status = StatusExpired
	return nil
}
