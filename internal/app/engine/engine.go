package engine

import (
	"context"
	"sync"
	"time"

	ledgerv1 "github.com/propshare/exchange/internal/domain/ledger/v1"
	marketdatav1 "github.com/propshare/exchange/internal/domain/marketdata/v1"
	orderv1 "github.com/propshare/exchange/internal/domain/order/v1"
	orderbookv1 "github.com/propshare/exchange/internal/domain/orderbook/v1"
	tradev1 "github.com/propshare/exchange/internal/domain/trade/v1"
	"github.com/propshare/exchange/internal/usecase/fees"
	"github.com/propshare/exchange/internal/usecase/matching"
	"github.com/propshare/exchange/internal/usecase/orderbook"
	tradepublisher "github.com/propshare/exchange/internal/usecase/trade-publisher"
	"github.com/propshare/exchange/internal/usecase/validator"
	"github.com/propshare/exchange/pkg/config"
	"github.com/propshare/exchange/pkg/errors"
	"github.com/propshare/exchange/pkg/logger"
	"github.com/propshare/exchange/pkg/util"
)

// PlaceOrderResult is what a placeOrder command returns: the order in its
// post-matching state and the fills produced while matching it.
type PlaceOrderResult struct {
	Order *orderv1.Order  `json:"order"`
	Fills []*tradev1.Fill `json:"fills"`
}

// instrumentBook pairs one instrument's live book with the mutex that
// serializes every command touching it.
type instrumentBook struct {
	mu   sync.Mutex
	book *orderbook.Orderbook
}

// Engine owns the command surface. Commands for the same instrument run
// one at a time; commands for different instruments run in parallel.
type Engine struct {
	validator *validator.Validator
	matcher   *matching.Matcher
	fees      *fees.Calculator
	orders    orderv1.Repository
	trades    tradev1.Repository
	tokens    ledgerv1.TokenLedger
	cash      ledgerv1.CashLedger
	snapshots marketdatav1.SnapshotRepository
	publisher tradepublisher.Publisher
	logger    logger.Interface
	config    *config.EngineConfig

	mu    sync.Mutex
	books map[string]*instrumentBook

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	now func() time.Time
}

// NewEngine creates an engine over the given collaborators.
func NewEngine(
	v *validator.Validator,
	matcher *matching.Matcher,
	feeCalculator *fees.Calculator,
	orders orderv1.Repository,
	trades tradev1.Repository,
	tokens ledgerv1.TokenLedger,
	cash ledgerv1.CashLedger,
	snapshots marketdatav1.SnapshotRepository,
	publisher tradepublisher.Publisher,
	log logger.Interface,
	cfg *config.EngineConfig,
) *Engine {
	return &Engine{
		validator: v,
		matcher:   matcher,
		fees:      feeCalculator,
		orders:    orders,
		trades:    trades,
		tokens:    tokens,
		cash:      cash,
		snapshots: snapshots,
		publisher: publisher,
		logger:    log,
		config:    cfg,
		books:     make(map[string]*instrumentBook),
		now:       time.Now,
	}
}

// WithClock overrides the engine's clock. Tests only.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Start rebuilds the books from persisted open orders and launches the
// expiry sweeper.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.rebuildBooks(ctx); err != nil {
		return err
	}

	e.ctx, e.cancel = context.WithCancel(context.Background())
	e.wg.Add(1)
	go e.runExpirySweeper()

	e.logger.Info("Engine started", logger.Field{
		Key:   "sweepInterval",
		Value: e.config.ExpirySweepInterval.String(),
	})

	return nil
}

// Stop shuts down the sweeper and waits for it to finish.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("Engine stopped")
		return nil
	case <-ctx.Done():
		e.logger.Warn("Engine stop timeout exceeded")
		return ctx.Err()
	}
}

// rebuildBooks reloads every open order into its instrument's book,
// oldest first so book priority matches original arrival order.
func (e *Engine) rebuildBooks(ctx context.Context) error {
	open, err := e.orders.ListOpen(ctx)
	if err != nil {
		return errors.TracerFromError(err)
	}

	for _, order := range open {
		ib := e.instrument(order.InstrumentID)
		if err := ib.book.Insert(order); err != nil {
			e.logger.ErrorContext(ctx, errors.TracerFromError(err), logger.Field{
				Key:   "orderID",
				Value: order.ID,
			})
		}
	}

	e.logger.Info("Rebuilt order books", logger.Field{
		Key:   "openOrders",
		Value: len(open),
	})

	return nil
}

// instrument returns the live book for an instrument, creating it on
// first use.
func (e *Engine) instrument(instrumentID string) *instrumentBook {
	e.mu.Lock()
	defer e.mu.Unlock()

	ib, ok := e.books[instrumentID]
	if !ok {
		ib = &instrumentBook{book: orderbook.NewOrderbook(instrumentID)}
		e.books[instrumentID] = ib
	}
	return ib
}

// PlaceOrder validates, reserves, matches and possibly rests an order.
// On a validation failure nothing is mutated and no order record exists.
func (e *Engine) PlaceOrder(ctx context.Context, req orderv1.PlaceOrderRequest) (*PlaceOrderResult, error) {
	actorID := util.GetActorID(ctx)
	if actorID == "" {
		return nil, errors.NewErrorDetails("Missing acting user", string(errors.GeneralUnauthorizedError), "userID")
	}

	ib := e.instrument(req.InstrumentID)
	ib.mu.Lock()
	defer ib.mu.Unlock()

	now := e.now()
	e.expireDue(ctx, ib, now)

	market, err := e.marketSnapshot(ctx, ib, req.InstrumentID, actorID)
	if err != nil {
		return nil, err
	}
	ledger, err := e.ledgerSnapshot(ctx, actorID, req.InstrumentID, now)
	if err != nil {
		return nil, err
	}

	if violations := e.validator.Validate(req, market, ledger); violations != nil {
		return nil, violations
	}

	order := orderv1.NewOrder(actorID, req.InstrumentID, req.Side, req.Kind, req.Quantity, req.Price, now)

	if order.IsBuy() {
		// Cash is set aside up front so settlement never finds the buyer
		// short; per-fill fee rounding can exceed the reserved fee by
		// cents, which the ledger tops up from the available balance.
		// Market buys reserve against the best counter price the order
		// could actually execute at.
		reservePrice := order.Price
		if order.IsMarket() {
			reservePrice = market.BestAsk
		}
		amount := e.fees.BuyerNotional(reservePrice, order.Quantity)
		if err := e.cash.Reserve(ctx, actorID, order.ID, amount); err != nil {
			return nil, err
		}
	}

	if err := e.orders.Insert(ctx, order); err != nil {
		if order.IsBuy() {
			e.releaseReservation(ctx, order)
		}
		return nil, errors.TracerFromError(err)
	}

	fills, matchErr := e.matcher.Match(ctx, ib.book, order)

	// Market orders never rest: whatever could not fill is cancelled.
	if order.IsOpen() && order.IsMarket() {
		if err := order.Cancel(); err != nil {
			e.logger.ErrorContext(ctx, errors.TracerFromError(err), logger.Field{
				Key:   "orderID",
				Value: order.ID,
			})
		}
	}

	if order.IsOpen() && order.IsLimit() {
		if err := ib.book.Insert(order); err != nil {
			e.logger.ErrorContext(ctx, errors.TracerFromError(err), logger.Field{
				Key:   "orderID",
				Value: order.ID,
			})
		}
	}

	if order.IsTerminal() && order.IsBuy() {
		// Price improvement and cancelled remainders both leave cash in
		// the reservation; return it once the order cannot fill further.
		e.releaseReservation(ctx, order)
	}

	if err := e.orders.Update(ctx, order); err != nil {
		e.logger.ErrorContext(ctx, errors.TracerFromError(err), logger.Field{
			Key:   "orderID",
			Value: order.ID,
		})
	}

	for _, fill := range fills {
		if err := e.publisher.PublishFill(ctx, fill); err != nil {
			e.logger.ErrorContext(ctx, errors.TracerFromError(err), logger.Field{
				Key:   "fillID",
				Value: fill.ID,
			})
		}
	}

	result := &PlaceOrderResult{Order: order, Fills: fills}
	if matchErr != nil {
		// Fills settled before the failure stay final; the caller learns
		// the loop aborted.
		return result, matchErr
	}

	return result, nil
}

// CancelOrder cancels the caller's open order and releases whatever the
// unmatched remainder still reserves.
func (e *Engine) CancelOrder(ctx context.Context, orderID string) (*orderv1.Order, error) {
	actorID := util.GetActorID(ctx)
	if actorID == "" {
		return nil, errors.NewErrorDetails("Missing acting user", string(errors.GeneralUnauthorizedError), "userID")
	}

	order, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	if order == nil {
		return nil, errors.NewErrorDetails("Order not found", string(errors.OrderNotFoundError), "orderID")
	}
	if order.UserID != actorID {
		return nil, errors.NewErrorDetails("Order belongs to another user", string(errors.OrderNotOwnedError), "orderID")
	}

	ib := e.instrument(order.InstrumentID)
	ib.mu.Lock()
	defer ib.mu.Unlock()

	now := e.now()
	e.expireDue(ctx, ib, now)

	// Re-read under the instrument lock; a concurrent match or the sweep
	// above may have advanced the order.
	order, err = e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	if !order.IsOpen() {
		return nil, errors.NewErrorDetails("Order is already "+string(order.Status), string(errors.OrderTerminalError), "orderID")
	}

	if err := ib.book.Remove(order.ID); err != nil {
		e.logger.ErrorContext(ctx, errors.TracerFromError(err), logger.Field{
			Key:   "orderID",
			Value: order.ID,
		})
	}

	if err := order.Cancel(); err != nil {
		return nil, errors.TracerFromError(err)
	}

	if order.IsBuy() {
		e.releaseReservation(ctx, order)
	}

	if err := e.orders.Update(ctx, order); err != nil {
		return nil, errors.TracerFromError(err)
	}

	return order, nil
}

// GetOrderBook returns a read-only aggregated snapshot of one
// instrument's book.
func (e *Engine) GetOrderBook(ctx context.Context, instrumentID string) (*orderbookv1.Snapshot, error) {
	ib := e.instrument(instrumentID)
	ib.mu.Lock()
	defer ib.mu.Unlock()

	e.expireDue(ctx, ib, e.now())

	return ib.book.Snapshot(), nil
}

// GetMarketData returns the instrument's market data snapshot, or nil if
// no fill has ever occurred.
func (e *Engine) GetMarketData(ctx context.Context, instrumentID string) (*marketdatav1.Snapshot, error) {
	return e.snapshots.Get(ctx, instrumentID)
}

// GetUserTokenLots returns the acting user's token lots for an instrument.
func (e *Engine) GetUserTokenLots(ctx context.Context, instrumentID string) ([]*ledgerv1.TokenLot, error) {
	actorID := util.GetActorID(ctx)
	if actorID == "" {
		return nil, errors.NewErrorDetails("Missing acting user", string(errors.GeneralUnauthorizedError), "userID")
	}

	return e.tokens.LotsByUser(ctx, actorID, instrumentID)
}

// GetOrder returns one order if the acting user owns it.
func (e *Engine) GetOrder(ctx context.Context, orderID string) (*orderv1.Order, error) {
	actorID := util.GetActorID(ctx)
	if actorID == "" {
		return nil, errors.NewErrorDetails("Missing acting user", string(errors.GeneralUnauthorizedError), "userID")
	}

	order, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	if order == nil {
		return nil, errors.NewErrorDetails("Order not found", string(errors.OrderNotFoundError), "orderID")
	}
	if order.UserID != actorID {
		return nil, errors.NewErrorDetails("Order belongs to another user", string(errors.OrderNotOwnedError), "orderID")
	}

	return order, nil
}

// GetOrderFills returns every fill one of the acting user's orders
// participated in, oldest first.
func (e *Engine) GetOrderFills(ctx context.Context, orderID string) ([]*tradev1.Fill, error) {
	order, err := e.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	fills, err := e.trades.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	return fills, nil
}

// GetRecentTrades returns an instrument's most recent fills, newest
// first, capped at limit.
func (e *Engine) GetRecentTrades(ctx context.Context, instrumentID string, limit int) ([]*tradev1.Fill, error) {
	fills, err := e.trades.ListByInstrument(ctx, instrumentID, limit)
	if err != nil {
		return nil, errors.TracerFromError(err)
	}
	return fills, nil
}

// marketSnapshot assembles the validator's view of the market from the
// latest fill-derived snapshot and the live book. Best prices exclude
// the acting user's own resting orders, which self-trade prevention
// makes unmatchable for them.
func (e *Engine) marketSnapshot(ctx context.Context, ib *instrumentBook, instrumentID, actorID string) (validator.MarketSnapshot, error) {
	market := validator.MarketSnapshot{}

	snapshot, err := e.snapshots.Get(ctx, instrumentID)
	if err != nil {
		return market, errors.TracerFromError(err)
	}
	if snapshot != nil {
		market.CurrentPrice = snapshot.CurrentPrice
	}

	if ask := ib.book.BestAskExcluding(actorID); ask != nil {
		market.BestAsk = ask.Price
	}
	if bid := ib.book.BestBidExcluding(actorID); bid != nil {
		market.BestBid = bid.Price
	}

	return market, nil
}

// ledgerSnapshot assembles the validator's view of the acting user's
// balances. Unlocked tokens are netted against the user's own open sell
// orders so the same lot is never promised twice.
func (e *Engine) ledgerSnapshot(ctx context.Context, userID, instrumentID string, now time.Time) (validator.LedgerSnapshot, error) {
	ledger := validator.LedgerSnapshot{}

	cash, err := e.cash.AvailableBalance(ctx, userID)
	if err != nil {
		return ledger, errors.TracerFromError(err)
	}
	ledger.AvailableCash = cash

	lots, err := e.tokens.LotsByUser(ctx, userID, instrumentID)
	if err != nil {
		return ledger, errors.TracerFromError(err)
	}
	for _, lot := range lots {
		if lot.IsUnlocked(now) {
			ledger.UnlockedTokens += lot.Quantity
		}
	}

	open, err := e.orders.ListOpenByUser(ctx, userID, instrumentID)
	if err != nil {
		return ledger, errors.TracerFromError(err)
	}
	for _, order := range open {
		if order.IsSell() {
			ledger.UnlockedTokens -= order.Remaining
		}
	}
	if ledger.UnlockedTokens < 0 {
		ledger.UnlockedTokens = 0
	}

	return ledger, nil
}

// releaseReservation returns a buy order's remaining reserved cash.
func (e *Engine) releaseReservation(ctx context.Context, order *orderv1.Order) {
	if err := e.cash.ReleaseReservation(ctx, order.UserID, order.ID); err != nil {
		e.logger.ErrorContext(ctx, errors.TracerFromError(err), logger.Field{
			Key:   "orderID",
			Value: order.ID,
		})
	}
}

// expireDue expires every open order in the book whose expiry has
// elapsed. Callers hold the instrument lock.
func (e *Engine) expireDue(ctx context.Context, ib *instrumentBook, now time.Time) {
	var due []*orderv1.Order
	for _, limit := range ib.book.BidsView() {
		for _, order := range limit.Orders {
			if order.IsExpiredAt(now) {
				due = append(due, order)
			}
		}
	}
	for _, limit := range ib.book.AsksView() {
		for _, order := range limit.Orders {
			if order.IsExpiredAt(now) {
				due = append(due, order)
			}
		}
	}

	for _, order := range due {
		if err := ib.book.Remove(order.ID); err != nil {
			e.logger.ErrorContext(ctx, errors.TracerFromError(err), logger.Field{
				Key:   "orderID",
				Value: order.ID,
			})
			continue
		}
		if err := order.Expire(); err != nil {
			e.logger.ErrorContext(ctx, errors.TracerFromError(err), logger.Field{
				Key:   "orderID",
				Value: order.ID,
			})
			continue
		}
		if order.IsBuy() {
			e.releaseReservation(ctx, order)
		}
		if err := e.orders.Update(ctx, order); err != nil {
			e.logger.ErrorContext(ctx, errors.TracerFromError(err), logger.Field{
				Key:   "orderID",
				Value: order.ID,
			})
		}

		e.logger.InfoContext(ctx, "Expired order", logger.Field{
			Key:   "orderID",
			Value: order.ID,
		})
	}
}

// runExpirySweeper periodically expires due orders across all
// instruments, so books without traffic still shed stale orders.
func (e *Engine) runExpirySweeper() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.config.ExpirySweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			e.sweepExpired()
		}
	}
}

func (e *Engine) sweepExpired() {
	e.mu.Lock()
	books := make([]*instrumentBook, 0, len(e.books))
	for _, ib := range e.books {
		books = append(books, ib)
	}
	e.mu.Unlock()

	now := e.now()
	for _, ib := range books {
		ib.mu.Lock()
		e.expireDue(e.ctx, ib, now)
		ib.mu.Unlock()
	}
}
