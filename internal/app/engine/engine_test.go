package engine

import (
	"context"
	"testing"
	"time"

	orderv1 "github.com/propshare/exchange/internal/domain/order/v1"
	tradev1 "github.com/propshare/exchange/internal/domain/trade/v1"
	memoryledger "github.com/propshare/exchange/internal/infrastructure/memory/ledger"
	memorymarketdata "github.com/propshare/exchange/internal/infrastructure/memory/marketdata"
	memoryorder "github.com/propshare/exchange/internal/infrastructure/memory/order"
	memorytrade "github.com/propshare/exchange/internal/infrastructure/memory/trade"
	"github.com/propshare/exchange/internal/usecase/fees"
	"github.com/propshare/exchange/internal/usecase/marketdata"
	"github.com/propshare/exchange/internal/usecase/matching"
	"github.com/propshare/exchange/internal/usecase/settlement"
	tradepublisher "github.com/propshare/exchange/internal/usecase/trade-publisher"
	"github.com/propshare/exchange/internal/usecase/validator"
	"github.com/propshare/exchange/pkg/config"
	"github.com/propshare/exchange/pkg/errors"
	"github.com/propshare/exchange/pkg/logger"
	"github.com/propshare/exchange/pkg/util"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type engineFixture struct {
	engine *Engine
	orders orderv1.Repository
	trades tradev1.Repository
	tokens *memoryledger.TokenLedger
	cash   *memoryledger.CashLedger
	now    time.Time
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	log, err := logger.NewLogger()
	require.NoError(t, err)

	f := &engineFixture{
		orders: memoryorder.NewRepository(),
		trades: memorytrade.NewRepository(),
		tokens: memoryledger.NewTokenLedger(),
		cash:   memoryledger.NewCashLedger(),
		now:    time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	history := memorymarketdata.NewHistoryRepository()
	snapshots := memorymarketdata.NewSnapshotRepository()

	feeCalculator := fees.NewCalculator()
	settler := settlement.NewAdapter(f.tokens, f.cash, f.trades, log)
	aggregator := marketdata.NewAggregator(history, snapshots)
	matcher := matching.NewMatcher(feeCalculator, settler, aggregator, f.orders, log).WithClock(clock)

	f.engine = NewEngine(
		validator.NewValidator(feeCalculator),
		matcher,
		feeCalculator,
		f.orders,
		f.trades,
		f.tokens,
		f.cash,
		snapshots,
		tradepublisher.NopPublisher{},
		log,
		&config.EngineConfig{ExpirySweepInterval: time.Minute},
	).WithClock(clock)

	return f
}

func (f *engineFixture) as(userID string) context.Context {
	return util.WithActorID(context.Background(), userID)
}

// seed gives a user cash and an already-unlocked token lot.
func (f *engineFixture) seed(t *testing.T, userID string, cash int64, tokens int64) {
	t.Helper()
	ctx := context.Background()
	if cash > 0 {
		require.NoError(t, f.cash.Credit(ctx, userID, decimal.NewFromInt(cash)))
	}
	if tokens > 0 {
		_, err := f.tokens.Credit(ctx, userID, "PROP-1", tokens, decimal.NewFromInt(8), f.now.Add(-60*24*time.Hour))
		require.NoError(t, err)
	}
}

func (f *engineFixture) balance(t *testing.T, userID string) string {
	t.Helper()
	balance, err := f.cash.AvailableBalance(context.Background(), userID)
	require.NoError(t, err)
	return balance.StringFixed(2)
}

func limitReq(side orderv1.Side, quantity int64, price string) orderv1.PlaceOrderRequest {
	return orderv1.PlaceOrderRequest{
		InstrumentID: "PROP-1",
		Side:         side,
		Kind:         orderv1.KindLimit,
		Quantity:     quantity,
		Price:        decimal.RequireFromString(price),
	}
}

func TestEngine_PlaceOrder_RequiresActor(t *testing.T) {
	f := newEngineFixture(t)

	_, err := f.engine.PlaceOrder(context.Background(), limitReq(orderv1.SideBuy, 10, "10.00"))
	require.Error(t, err)
	assert.True(t, errors.ErrorCodeEquals(err, string(errors.GeneralUnauthorizedError)))
}

func TestEngine_PlaceOrder_FullTrade(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", 1000, 0)
	f.seed(t, "bob", 0, 20)

	// Bob's ask rests first.
	sellResult, err := f.engine.PlaceOrder(f.as("bob"), limitReq(orderv1.SideSell, 20, "10.00"))
	require.NoError(t, err)
	assert.Empty(t, sellResult.Fills)
	assert.Equal(t, orderv1.StatusPending, sellResult.Order.Status)

	// Alice lifts it in full.
	buyResult, err := f.engine.PlaceOrder(f.as("alice"), limitReq(orderv1.SideBuy, 20, "10.00"))
	require.NoError(t, err)
	require.Len(t, buyResult.Fills, 1)
	assert.Equal(t, orderv1.StatusFilled, buyResult.Order.Status)

	// Cash moved: alice paid notional plus fee, bob received proceeds
	// minus fee, nothing stayed reserved.
	assert.Equal(t, "797.50", f.balance(t, "alice"))
	assert.Equal(t, "197.50", f.balance(t, "bob"))

	// Tokens moved: alice holds a fresh locked lot, bob holds nothing.
	aliceLots, err := f.tokens.LotsByUser(context.Background(), "alice", "PROP-1")
	require.NoError(t, err)
	require.Len(t, aliceLots, 1)
	assert.Equal(t, int64(20), aliceLots[0].Quantity)
	assert.Equal(t, "10.00", aliceLots[0].CostBasis.StringFixed(2))
	assert.False(t, aliceLots[0].IsUnlocked(f.now))

	bobLots, err := f.tokens.LotsByUser(context.Background(), "bob", "PROP-1")
	require.NoError(t, err)
	assert.Empty(t, bobLots)

	// The fill is recorded and drives the market snapshot.
	fills, err := f.trades.ListByInstrument(context.Background(), "PROP-1", 10)
	require.NoError(t, err)
	require.Len(t, fills, 1)

	snapshot, err := f.engine.GetMarketData(context.Background(), "PROP-1")
	require.NoError(t, err)
	require.NotNil(t, snapshot)
	assert.Equal(t, "10.00", snapshot.CurrentPrice.StringFixed(2))

	// Both order records are terminal.
	book, err := f.engine.GetOrderBook(context.Background(), "PROP-1")
	require.NoError(t, err)
	assert.Empty(t, book.Bids)
	assert.Empty(t, book.Asks)
}

func TestEngine_PlaceOrder_PriceImprovementReleasesExcess(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", 1000, 0)
	f.seed(t, "bob", 0, 20)

	_, err := f.engine.PlaceOrder(f.as("bob"), limitReq(orderv1.SideSell, 20, "9.80"))
	require.NoError(t, err)

	// Alice reserves against her own limit of 10.00 but executes at the
	// resting 9.80; the difference returns to her balance.
	result, err := f.engine.PlaceOrder(f.as("alice"), limitReq(orderv1.SideBuy, 20, "10.00"))
	require.NoError(t, err)
	require.Len(t, result.Fills, 1)
	assert.Equal(t, "9.80", result.Fills[0].Price.StringFixed(2))

	assert.Equal(t, "801.55", f.balance(t, "alice"))
	assert.Equal(t, "193.55", f.balance(t, "bob"))
}

func TestEngine_PlaceOrder_MarketBuyNoLiquidity(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", 1000, 0)

	_, err := f.engine.PlaceOrder(f.as("alice"), orderv1.PlaceOrderRequest{
		InstrumentID: "PROP-1",
		Side:         orderv1.SideBuy,
		Kind:         orderv1.KindMarket,
		Quantity:     10,
	})
	require.Error(t, err)

	// Rejected up front: no order record exists and no cash moved.
	open, listErr := f.orders.ListOpen(context.Background())
	require.NoError(t, listErr)
	assert.Empty(t, open)
	assert.Equal(t, "1000.00", f.balance(t, "alice"))
}

func TestEngine_PlaceOrder_MarketRemainderCancelled(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", 1000, 0)
	f.seed(t, "bob", 0, 5)

	_, err := f.engine.PlaceOrder(f.as("bob"), limitReq(orderv1.SideSell, 5, "10.00"))
	require.NoError(t, err)

	result, err := f.engine.PlaceOrder(f.as("alice"), orderv1.PlaceOrderRequest{
		InstrumentID: "PROP-1",
		Side:         orderv1.SideBuy,
		Kind:         orderv1.KindMarket,
		Quantity:     8,
	})
	require.NoError(t, err)
	require.Len(t, result.Fills, 1)

	// 5 filled, the unfillable 3 cancelled rather than rested.
	assert.Equal(t, orderv1.StatusCancelled, result.Order.Status)
	assert.Equal(t, int64(5), result.Order.Filled)
	assert.Equal(t, int64(3), result.Order.Remaining)

	book, err := f.engine.GetOrderBook(context.Background(), "PROP-1")
	require.NoError(t, err)
	assert.Empty(t, book.Bids)

	// Only the executed cost left the balance; the rest of the
	// reservation came back.
	assert.Equal(t, "949.37", f.balance(t, "alice"))
}

func TestEngine_PlaceOrder_FeeRoundingAcrossFills(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", 1000, 0)
	f.seed(t, "bob", 0, 2)

	// Two one-token asks at $2.00. Each fill's buyer fee rounds 0.025 up
	// to 0.03, so the fills together cost a cent more than the 4.05
	// reserved up front. The extra cent comes out of the balance instead
	// of failing the second settlement.
	_, err := f.engine.PlaceOrder(f.as("bob"), limitReq(orderv1.SideSell, 1, "2.00"))
	require.NoError(t, err)
	_, err = f.engine.PlaceOrder(f.as("bob"), limitReq(orderv1.SideSell, 1, "2.00"))
	require.NoError(t, err)

	result, err := f.engine.PlaceOrder(f.as("alice"), limitReq(orderv1.SideBuy, 2, "2.00"))
	require.NoError(t, err)
	require.Len(t, result.Fills, 2)
	assert.Equal(t, orderv1.StatusFilled, result.Order.Status)

	assert.Equal(t, "995.94", f.balance(t, "alice"))
	assert.Equal(t, "3.94", f.balance(t, "bob"))

	// Nothing rested: the book stayed uncrossed on both sides.
	book, err := f.engine.GetOrderBook(context.Background(), "PROP-1")
	require.NoError(t, err)
	assert.Empty(t, book.Bids)
	assert.Empty(t, book.Asks)
}

func TestEngine_PlaceOrder_MarketOrderAgainstOwnLiquidity(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", 1000, 10)

	sellResult, err := f.engine.PlaceOrder(f.as("alice"), limitReq(orderv1.SideSell, 5, "10.00"))
	require.NoError(t, err)

	// The only asks are alice's own, which self-trade prevention makes
	// unmatchable for her: the market buy is rejected up front and no
	// order record is created.
	_, err = f.engine.PlaceOrder(f.as("alice"), orderv1.PlaceOrderRequest{
		InstrumentID: "PROP-1",
		Side:         orderv1.SideBuy,
		Kind:         orderv1.KindMarket,
		Quantity:     5,
	})
	require.Error(t, err)

	open, err := f.orders.ListOpen(context.Background())
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, sellResult.Order.ID, open[0].ID)
	assert.Equal(t, "1000.00", f.balance(t, "alice"))

	// A different user still sees the ask as liquidity.
	f.seed(t, "carol", 1000, 0)
	result, err := f.engine.PlaceOrder(f.as("carol"), orderv1.PlaceOrderRequest{
		InstrumentID: "PROP-1",
		Side:         orderv1.SideBuy,
		Kind:         orderv1.KindMarket,
		Quantity:     5,
	})
	require.NoError(t, err)
	require.Len(t, result.Fills, 1)
}

func TestEngine_GetOrderFills(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", 1000, 0)
	f.seed(t, "bob", 0, 20)

	sellResult, err := f.engine.PlaceOrder(f.as("bob"), limitReq(orderv1.SideSell, 20, "10.00"))
	require.NoError(t, err)
	buyResult, err := f.engine.PlaceOrder(f.as("alice"), limitReq(orderv1.SideBuy, 20, "10.00"))
	require.NoError(t, err)
	require.Len(t, buyResult.Fills, 1)

	// Each side sees the fill through its own order.
	fills, err := f.engine.GetOrderFills(f.as("alice"), buyResult.Order.ID)
	require.NoError(t, err)
	require.Len(t, fills, 1)
	assert.Equal(t, buyResult.Fills[0].ID, fills[0].ID)

	fills, err = f.engine.GetOrderFills(f.as("bob"), sellResult.Order.ID)
	require.NoError(t, err)
	require.Len(t, fills, 1)

	// But not through the counterparty's order.
	_, err = f.engine.GetOrderFills(f.as("bob"), buyResult.Order.ID)
	require.Error(t, err)
	assert.True(t, errors.ErrorCodeEquals(err, string(errors.OrderNotOwnedError)))
}

func TestEngine_GetRecentTrades(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", 1000, 0)
	f.seed(t, "bob", 0, 20)

	_, err := f.engine.PlaceOrder(f.as("bob"), limitReq(orderv1.SideSell, 20, "10.00"))
	require.NoError(t, err)
	_, err = f.engine.PlaceOrder(f.as("alice"), limitReq(orderv1.SideBuy, 5, "10.00"))
	require.NoError(t, err)
	_, err = f.engine.PlaceOrder(f.as("alice"), limitReq(orderv1.SideBuy, 5, "10.00"))
	require.NoError(t, err)

	// Newest first, capped at limit.
	fills, err := f.engine.GetRecentTrades(context.Background(), "PROP-1", 10)
	require.NoError(t, err)
	require.Len(t, fills, 2)

	fills, err = f.engine.GetRecentTrades(context.Background(), "PROP-1", 1)
	require.NoError(t, err)
	require.Len(t, fills, 1)
}

func TestEngine_CancelOrder(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", 1000, 0)
	f.seed(t, "bob", 0, 10)

	_, err := f.engine.PlaceOrder(f.as("bob"), limitReq(orderv1.SideSell, 10, "10.00"))
	require.NoError(t, err)

	// Alice's buy for 30 fills 10 and rests the remaining 20.
	result, err := f.engine.PlaceOrder(f.as("alice"), limitReq(orderv1.SideBuy, 30, "10.00"))
	require.NoError(t, err)
	require.Len(t, result.Fills, 1)
	assert.Equal(t, orderv1.StatusPartial, result.Order.Status)

	cancelled, err := f.engine.CancelOrder(f.as("alice"), result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, orderv1.StatusCancelled, cancelled.Status)
	assert.Equal(t, int64(10), cancelled.Filled)
	assert.Equal(t, int64(20), cancelled.Remaining)

	// The filled part stays paid for; the remainder's reservation is
	// released.
	assert.Equal(t, "898.75", f.balance(t, "alice"))

	book, err := f.engine.GetOrderBook(context.Background(), "PROP-1")
	require.NoError(t, err)
	assert.Empty(t, book.Bids)
}

func TestEngine_CancelOrder_Rejections(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", 1000, 0)

	result, err := f.engine.PlaceOrder(f.as("alice"), limitReq(orderv1.SideBuy, 10, "10.00"))
	require.NoError(t, err)

	// Unknown order.
	_, err = f.engine.CancelOrder(f.as("alice"), "no-such-order")
	require.Error(t, err)
	assert.True(t, errors.ErrorCodeEquals(err, string(errors.OrderNotFoundError)))

	// Someone else's order.
	_, err = f.engine.CancelOrder(f.as("bob"), result.Order.ID)
	require.Error(t, err)
	assert.True(t, errors.ErrorCodeEquals(err, string(errors.OrderNotOwnedError)))

	// Cancelling twice.
	_, err = f.engine.CancelOrder(f.as("alice"), result.Order.ID)
	require.NoError(t, err)
	_, err = f.engine.CancelOrder(f.as("alice"), result.Order.ID)
	require.Error(t, err)
	assert.True(t, errors.ErrorCodeEquals(err, string(errors.OrderTerminalError)))
}

func TestEngine_SellNettedAgainstOpenSells(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", 0, 20)

	_, err := f.engine.PlaceOrder(f.as("alice"), limitReq(orderv1.SideSell, 15, "10.00"))
	require.NoError(t, err)

	// Only 5 of the 20 unlocked tokens are still unpromised.
	_, err = f.engine.PlaceOrder(f.as("alice"), limitReq(orderv1.SideSell, 10, "10.00"))
	require.Error(t, err)

	_, err = f.engine.PlaceOrder(f.as("alice"), limitReq(orderv1.SideSell, 5, "10.00"))
	require.NoError(t, err)
}

func TestEngine_ExpiryReleasesReservation(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", 1000, 0)

	result, err := f.engine.PlaceOrder(f.as("alice"), limitReq(orderv1.SideBuy, 10, "10.00"))
	require.NoError(t, err)
	assert.Equal(t, "898.75", f.balance(t, "alice"))

	// Past the expiry the next book access sweeps the order out.
	f.now = f.now.Add(orderv1.ExpiryDuration + time.Minute)

	book, err := f.engine.GetOrderBook(context.Background(), "PROP-1")
	require.NoError(t, err)
	assert.Empty(t, book.Bids)

	expired, err := f.engine.GetOrder(f.as("alice"), result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, orderv1.StatusExpired, expired.Status)
	assert.Equal(t, "1000.00", f.balance(t, "alice"))
}

func TestEngine_GetOrder_OwnershipCheck(t *testing.T) {
	f := newEngineFixture(t)
	f.seed(t, "alice", 1000, 0)

	result, err := f.engine.PlaceOrder(f.as("alice"), limitReq(orderv1.SideBuy, 10, "10.00"))
	require.NoError(t, err)

	got, err := f.engine.GetOrder(f.as("alice"), result.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, result.Order.ID, got.ID)

	_, err = f.engine.GetOrder(f.as("bob"), result.Order.ID)
	require.Error(t, err)
	assert.True(t, errors.ErrorCodeEquals(err, string(errors.OrderNotOwnedError)))
}
