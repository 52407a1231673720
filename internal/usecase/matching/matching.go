package matching

import (
	"context"
	"time"

	orderv1 "github.com/propshare/exchange/internal/domain/order/v1"
	orderbookv1 "github.com/propshare/exchange/internal/domain/orderbook/v1"
	tradev1 "github.com/propshare/exchange/internal/domain/trade/v1"
	"github.com/propshare/exchange/internal/usecase/fees"
	"github.com/propshare/exchange/pkg/errors"
	"github.com/propshare/exchange/pkg/logger"
	"github.com/shopspring/decimal"
)

// Settler applies one fill to the ledgers. A returned error means the
// fill was fully unwound and must not be treated as executed.
type Settler interface {
	Settle(ctx context.Context, fill *tradev1.Fill) error
}

// MarketData consumes committed fills to maintain per-instrument
// statistics.
type MarketData interface {
	OnFill(ctx context.Context, fill *tradev1.Fill, book orderbookv1.Book) error
}

// Matcher runs price-time priority matching of an incoming order against
// one instrument's book. The caller serializes all calls per instrument.
type Matcher struct {
	fees       *fees.Calculator
	settler    Settler
	marketData MarketData
	orders     orderv1.Repository
	logger     logger.Interface
	now        func() time.Time
}

// NewMatcher creates a matcher.
func NewMatcher(feeCalculator *fees.Calculator, settler Settler, marketData MarketData, orders orderv1.Repository, log logger.Interface) *Matcher {
	return &Matcher{
		fees:       feeCalculator,
		settler:    settler,
		marketData: marketData,
		orders:     orders,
		logger:     log,
		now:        time.Now,
	}
}

// WithClock overrides the matcher's clock. Tests only.
func (m *Matcher) WithClock(now func() time.Time) *Matcher {
	m.now = now
	return m
}

// Match iterates the counter side of the book in priority order and
// produces one fill per match. Each fill is settled and pushed to market
// data synchronously before the loop continues, so later iterations see
// settled state.
//
// On a settlement failure the in-progress fill is rolled back and the
// loop aborts; fills settled earlier in the same loop stay final.
func (m *Matcher) Match(ctx context.Context, book orderbookv1.Book, incoming *orderv1.Order) ([]*tradev1.Fill, error) {
	var fills []*tradev1.Fill

	for _, counter := range book.CounterOrders(incoming.Side) {
		if incoming.Remaining <= 0 {
			break
		}

		// Self-trade prevention: never match a user against their own
		// resting orders.
		if counter.UserID == incoming.UserID {
			continue
		}

		if incoming.IsLimit() && !priceAcceptable(incoming, counter.Price) {
			// Counter orders arrive in priority order, so the first
			// unacceptable price ends the walk.
			break
		}

		fill, err := m.executeMatch(ctx, book, incoming, counter)
		if err != nil {
			return fills, err
		}
		fills = append(fills, fill)
	}

	return fills, nil
}

// executeMatch produces, settles and publishes a single fill between the
// incoming order and one resting counter order.
func (m *Matcher) executeMatch(ctx context.Context, book orderbookv1.Book, incoming, counter *orderv1.Order) (*tradev1.Fill, error) {
	quantity := incoming.Remaining
	if counter.Remaining < quantity {
		quantity = counter.Remaining
	}

	// The resting order sets the price; price improvement always accrues
	// to the aggressor.
	price := counter.Price
	gross := price.Mul(decimal.NewFromInt(quantity)).Round(2)
	buyerFee, sellerFee := m.fees.Compute(gross)

	buy, sell := incoming, counter
	if incoming.IsSell() {
		buy, sell = counter, incoming
	}

	fill := tradev1.NewFill(
		incoming.InstrumentID,
		buy.ID, sell.ID,
		buy.UserID, sell.UserID,
		quantity, price, gross, buyerFee, sellerFee,
		m.now(),
	)

	if err := incoming.ApplyFill(fill.ID, quantity); err != nil {
		return nil, errors.TracerFromError(err)
	}
	if err := counter.ApplyFill(fill.ID, quantity); err != nil {
		// Undo the incoming side so the pair stays consistent.
		_ = incoming.UnapplyFill(fill.ID, quantity)
		return nil, errors.TracerFromError(err)
	}

	if err := m.settler.Settle(ctx, fill); err != nil {
		_ = incoming.UnapplyFill(fill.ID, quantity)
		_ = counter.UnapplyFill(fill.ID, quantity)
		return nil, err
	}

	// The fill is final from here on.
	if counter.Remaining == 0 {
		if err := book.Remove(counter.ID); err != nil {
			m.logger.ErrorContext(ctx, errors.TracerFromError(err),
				logger.Field{Key: "orderID", Value: counter.ID},
				logger.Field{Key: "action", Value: "remove_filled_counter"},
			)
		}
	}

	if err := m.orders.Update(ctx, counter); err != nil {
		m.logger.ErrorContext(ctx, errors.TracerFromError(err),
			logger.Field{Key: "orderID", Value: counter.ID},
			logger.Field{Key: "action", Value: "persist_counter_fill"},
		)
	}

	if err := m.marketData.OnFill(ctx, fill, book); err != nil {
		// Market data is re-derived in full on every fill, so a missed
		// update heals on the next one.
		m.logger.ErrorContext(ctx, errors.TracerFromError(err),
			logger.Field{Key: "fillID", Value: fill.ID},
			logger.Field{Key: "action", Value: "market_data_update"},
		)
	}

	return fill, nil
}

// priceAcceptable reports whether a limit order may trade at the counter
// price: a buy limit never lifts an ask above its limit, a sell limit
// never hits a bid below its limit.
func priceAcceptable(incoming *orderv1.Order, counterPrice decimal.Decimal) bool {
	if incoming.IsBuy() {
		return counterPrice.LessThanOrEqual(incoming.Price)
	}
	return counterPrice.GreaterThanOrEqual(incoming.Price)
}
