package orderbook

import (
	"fmt"
	"sort"

	orderv1 "github.com/propshare/exchange/internal/domain/order/v1"
	orderbookv1 "github.com/propshare/exchange/internal/domain/orderbook/v1"
)

// Orderbook maintains the two ordered views over one instrument's open
// orders. Limits are keyed by the exact price string, so two decimals
// representing the same price always land on the same level.
type Orderbook struct {
	instrumentID string
	askLimits    map[string]*orderbookv1.Limit // price -> limit
	bidLimits    map[string]*orderbookv1.Limit // price -> limit
	orders       map[string]*orderv1.Order     // orderID -> order
	sequence     int64
}

var _ orderbookv1.Book = (*Orderbook)(nil)

// NewOrderbook creates a new orderbook for one instrument.
func NewOrderbook(instrumentID string) *Orderbook {
	return &Orderbook{
		instrumentID: instrumentID,
		askLimits:    make(map[string]*orderbookv1.Limit),
		bidLimits:    make(map[string]*orderbookv1.Limit),
		orders:       make(map[string]*orderv1.Order),
	}
}

// Insert adds an open order to its side of the book.
func (ob *Orderbook) Insert(order *orderv1.Order) error {
	if order == nil {
		return fmt.Errorf("order cannot be nil")
	}
	if !order.IsOpen() {
		return fmt.Errorf("order %s is %s, only open orders may rest", order.ID, order.Status)
	}
	if order.Price.Sign() <= 0 {
		return fmt.Errorf("order %s has no resting price", order.ID)
	}
	if _, exists := ob.orders[order.ID]; exists {
		return fmt.Errorf("order with ID %s already exists", order.ID)
	}

	limits := ob.askLimits
	if order.IsBuy() {
		limits = ob.bidLimits
	}

	key := order.Price.String()
	limit, exists := limits[key]
	if !exists {
		limit = orderbookv1.NewLimit(order.Price)
		limits[key] = limit
	}

	if err := limit.AddOrder(order); err != nil {
		return err
	}

	ob.sequence++
	order.Sequence = ob.sequence
	ob.orders[order.ID] = order

	return nil
}

// Remove takes an order out of the book.
func (ob *Orderbook) Remove(orderID string) error {
	order, exists := ob.orders[orderID]
	if !exists {
		return fmt.Errorf("order with ID %s does not exist", orderID)
	}

	limits := ob.askLimits
	if order.IsBuy() {
		limits = ob.bidLimits
	}

	key := order.Price.String()
	if limit, ok := limits[key]; ok {
		if err := limit.RemoveOrder(orderID); err != nil {
			return err
		}
		if limit.IsEmpty() {
			delete(limits, key)
		}
	}

	delete(ob.orders, orderID)

	return nil
}

// BestBid returns the highest-priced bid level, or nil if no bids rest.
func (ob *Orderbook) BestBid() *orderbookv1.Limit {
	var best *orderbookv1.Limit
	for _, limit := range ob.bidLimits {
		if best == nil || limit.Price.GreaterThan(best.Price) {
			best = limit
		}
	}
	return best
}

// BestAsk returns the lowest-priced ask level, or nil if no asks rest.
func (ob *Orderbook) BestAsk() *orderbookv1.Limit {
	var best *orderbookv1.Limit
	for _, limit := range ob.askLimits {
		if best == nil || limit.Price.LessThan(best.Price) {
			best = limit
		}
	}
	return best
}

// BestBidExcluding returns the highest-priced bid level holding at least
// one order not owned by userID, or nil if no such level exists.
func (ob *Orderbook) BestBidExcluding(userID string) *orderbookv1.Limit {
	for _, limit := range ob.BidsView() {
		for _, order := range limit.Orders {
			if order.UserID != userID {
				return limit
			}
		}
	}
	return nil
}

// BestAskExcluding returns the lowest-priced ask level holding at least
// one order not owned by userID, or nil if no such level exists.
func (ob *Orderbook) BestAskExcluding(userID string) *orderbookv1.Limit {
	for _, limit := range ob.AsksView() {
		for _, order := range limit.Orders {
			if order.UserID != userID {
				return limit
			}
		}
	}
	return nil
}

// BidsView returns bid levels sorted by price (descending).
func (ob *Orderbook) BidsView() orderbookv1.Limits {
	limits := make(orderbookv1.Limits, 0, len(ob.bidLimits))
	for _, limit := range ob.bidLimits {
		limits = append(limits, limit)
	}
	sort.Sort(orderbookv1.ByBestBid{Limits: limits})
	return limits
}

// AsksView returns ask levels sorted by price (ascending).
func (ob *Orderbook) AsksView() orderbookv1.Limits {
	limits := make(orderbookv1.Limits, 0, len(ob.askLimits))
	for _, limit := range ob.askLimits {
		limits = append(limits, limit)
	}
	sort.Sort(orderbookv1.ByBestAsk{Limits: limits})
	return limits
}

// CounterOrders returns the orders an incoming order of the given side
// would match against, in book priority order: asks cheapest first for a
// buy, bids highest first for a sell, ties by creation time.
func (ob *Orderbook) CounterOrders(incoming orderv1.Side) []*orderv1.Order {
	view := ob.AsksView()
	if incoming == orderv1.SideSell {
		view = ob.BidsView()
	}

	var orders []*orderv1.Order
	for _, limit := range view {
		orders = append(orders, limit.OrdersByPriority()...)
	}
	return orders
}

// Snapshot returns a read-only aggregate view of both sides.
func (ob *Orderbook) Snapshot() *orderbookv1.Snapshot {
	snapshot := &orderbookv1.Snapshot{
		InstrumentID: ob.instrumentID,
		Bids:         make([]orderbookv1.LevelSnapshot, 0, len(ob.bidLimits)),
		Asks:         make([]orderbookv1.LevelSnapshot, 0, len(ob.askLimits)),
	}

	for _, limit := range ob.BidsView() {
		snapshot.Bids = append(snapshot.Bids, orderbookv1.LevelSnapshot{
			Price:      limit.Price,
			Quantity:   limit.TotalRemaining(),
			OrderCount: limit.OrderCount(),
		})
	}
	for _, limit := range ob.AsksView() {
		snapshot.Asks = append(snapshot.Asks, orderbookv1.LevelSnapshot{
			Price:      limit.Price,
			Quantity:   limit.TotalRemaining(),
			OrderCount: limit.OrderCount(),
		})
	}

	return snapshot
}
