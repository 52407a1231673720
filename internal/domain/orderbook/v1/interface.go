package orderbookv1

import (
	orderv1 "github.com/propshare/exchange/internal/domain/order/v1"
	"github.com/shopspring/decimal"
)

// Book defines the contract of a per-instrument order book: two ordered
// views over the currently open orders. Bids sort by price descending,
// asks by price ascending; equal prices break ties by creation time.
//
// A Book is not safe for concurrent use on its own. The engine serializes
// all commands touching one instrument.
//
//go:generate mockgen -source interface.go -destination=mock/interface_mock.go -package=orderbookv1_mock
type Book interface {
	// Insert adds an open order to its side of the book.
	Insert(order *orderv1.Order) error
	// Remove takes an order out of the book, e.g. on cancel or expiry.
	Remove(orderID string) error
	// BestBid returns the highest-priced bid level, or nil if no bids rest.
	BestBid() *Limit
	// BestAsk returns the lowest-priced ask level, or nil if no asks rest.
	BestAsk() *Limit
	// BestBidExcluding returns the highest-priced bid level holding at
	// least one order not owned by userID. Self-trade prevention means a
	// user's own orders are not liquidity from their point of view.
	BestBidExcluding(userID string) *Limit
	// BestAskExcluding returns the lowest-priced ask level holding at
	// least one order not owned by userID.
	BestAskExcluding(userID string) *Limit
	// BidsView returns bid levels in priority order (price descending).
	BidsView() Limits
	// AsksView returns ask levels in priority order (price ascending).
	AsksView() Limits
	// CounterOrders returns the orders an incoming order of the given side
	// would match against, in book priority order.
	CounterOrders(incoming orderv1.Side) []*orderv1.Order
	// Snapshot returns a read-only aggregate view of both sides.
	Snapshot() *Snapshot
}

// LevelSnapshot is one aggregated price level of a read-only book snapshot.
type LevelSnapshot struct {
	Price      decimal.Decimal `json:"price"`
	Quantity   int64           `json:"quantity"`
	OrderCount int             `json:"orderCount"`
}

// Snapshot is a read-only view of both sides of a book.
type Snapshot struct {
	InstrumentID string          `json:"instrumentID"`
	Bids         []LevelSnapshot `json:"bids"`
	Asks         []LevelSnapshot `json:"asks"`
}
