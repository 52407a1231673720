package orderbookv1

import (
	"errors"
	"sort"

	orderv1 "github.com/propshare/exchange/internal/domain/order/v1"
	"github.com/shopspring/decimal"
)

var (
	// ErrNilOrder is returned when a nil order is passed to a limit.
	ErrNilOrder = errors.New("order cannot be nil")
	// ErrOrderNotFound is returned when an order is not present at a limit.
	ErrOrderNotFound = errors.New("order not found in limit")
)

// Limit represents a price level in the order book with the open orders
// resting at that price. Concurrency control lives in the owning book;
// a Limit is never shared across instruments.
type Limit struct {
	Price  decimal.Decimal  `json:"price"`
	Orders []*orderv1.Order `json:"orders"`
}

// NewLimit creates a new Limit with the specified price.
func NewLimit(price decimal.Decimal) *Limit {
	return &Limit{
		Price:  price,
		Orders: make([]*orderv1.Order, 0),
	}
}

// AddOrder adds an order to the limit.
func (l *Limit) AddOrder(order *orderv1.Order) error {
	if order == nil {
		return ErrNilOrder
	}
	l.Orders = append(l.Orders, order)
	return nil
}

// RemoveOrder removes an order from the limit.
func (l *Limit) RemoveOrder(orderID string) error {
	for i, o := range l.Orders {
		if o.ID == orderID {
			l.Orders = append(l.Orders[:i], l.Orders[i+1:]...)
			return nil
		}
	}
	return ErrOrderNotFound
}

// IsEmpty checks if the limit has no orders.
func (l *Limit) IsEmpty() bool {
	return len(l.Orders) == 0
}

// OrderCount returns the number of orders at this limit.
func (l *Limit) OrderCount() int {
	return len(l.Orders)
}

// TotalRemaining returns the total open quantity resting at this limit.
func (l *Limit) TotalRemaining() int64 {
	var total int64
	for _, o := range l.Orders {
		total += o.Remaining
	}
	return total
}

// OrdersByPriority returns the limit's orders sorted by creation time,
// then by arrival sequence for ties. First in, first matched.
func (l *Limit) OrdersByPriority() []*orderv1.Order {
	orders := make([]*orderv1.Order, len(l.Orders))
	copy(orders, l.Orders)

	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].Sequence < orders[j].Sequence
		}
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})

	return orders
}
