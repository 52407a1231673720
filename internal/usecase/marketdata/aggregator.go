package marketdata

import (
	"context"

	marketdatav1 "github.com/propshare/exchange/internal/domain/marketdata/v1"
	orderbookv1 "github.com/propshare/exchange/internal/domain/orderbook/v1"
	tradev1 "github.com/propshare/exchange/internal/domain/trade/v1"
	"github.com/propshare/exchange/pkg/errors"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Aggregator maintains per-instrument market statistics as a side effect
// of fills. Every update is a full re-derivation from the price history
// and the live book, never an incremental patch, so the statistics heal
// themselves after any missed update.
type Aggregator struct {
	history   marketdatav1.HistoryRepository
	snapshots marketdatav1.SnapshotRepository
}

// NewAggregator creates an aggregator over the given repositories.
func NewAggregator(history marketdatav1.HistoryRepository, snapshots marketdatav1.SnapshotRepository) *Aggregator {
	return &Aggregator{
		history:   history,
		snapshots: snapshots,
	}
}

// OnFill appends a price history point for the fill, prunes history
// beyond retention and overwrites the instrument's snapshot with freshly
// derived statistics. The book is read after the fill was applied, so
// best bid/ask reflect the post-fill state.
func (a *Aggregator) OnFill(ctx context.Context, fill *tradev1.Fill, book orderbookv1.Book) error {
	now := fill.ExecutedAt

	point := marketdatav1.PricePoint{
		Timestamp: now,
		Price:     fill.Price,
		Volume:    fill.Quantity,
		Open:      fill.Price,
		High:      fill.Price,
		Low:       fill.Price,
		Close:     fill.Price,
	}
	if err := a.history.Append(ctx, fill.InstrumentID, point); err != nil {
		return errors.TracerFromError(err)
	}
	if err := a.history.PruneBefore(ctx, fill.InstrumentID, now.Add(-marketdatav1.HistoryRetention)); err != nil {
		return errors.TracerFromError(err)
	}

	snapshot := &marketdatav1.Snapshot{
		InstrumentID: fill.InstrumentID,
		CurrentPrice: fill.Price,
		UpdatedAt:    now,
	}

	if bid := book.BestBid(); bid != nil {
		snapshot.BestBid = bid.Price
	}
	if ask := book.BestAsk(); ask != nil {
		snapshot.BestAsk = ask.Price
	}
	if snapshot.BestBid.Sign() > 0 && snapshot.BestAsk.Sign() > 0 {
		snapshot.Spread = snapshot.BestAsk.Sub(snapshot.BestBid)
		snapshot.SpreadPercent = snapshot.Spread.Div(snapshot.BestAsk).Mul(oneHundred).Round(2)
	}

	points24, err := a.history.Range(ctx, fill.InstrumentID, now.Add(-marketdatav1.Window24h), now)
	if err != nil {
		return errors.TracerFromError(err)
	}
	snapshot.Stats24h = deriveWindow(points24, fill.Price)

	points7d, err := a.history.Range(ctx, fill.InstrumentID, now.Add(-marketdatav1.Window7d), now)
	if err != nil {
		return errors.TracerFromError(err)
	}
	snapshot.Stats7d = deriveWindow(points7d, fill.Price)

	if err := a.snapshots.Upsert(ctx, snapshot); err != nil {
		return errors.TracerFromError(err)
	}

	return nil
}

// deriveWindow recomputes one rolling window from scratch: open is the
// earliest point's open, high/low the extrema, volume and trade count
// the sums over the window.
func deriveWindow(points []marketdatav1.PricePoint, current decimal.Decimal) marketdatav1.WindowStats {
	if len(points) == 0 {
		return marketdatav1.WindowStats{}
	}

	stats := marketdatav1.WindowStats{
		Open:       points[0].Open,
		High:       points[0].High,
		Low:        points[0].Low,
		TradeCount: int64(len(points)),
	}

	for _, p := range points {
		if p.High.GreaterThan(stats.High) {
			stats.High = p.High
		}
		if p.Low.LessThan(stats.Low) {
			stats.Low = p.Low
		}
		stats.Volume += p.Volume
	}

	if stats.Open.Sign() > 0 {
		stats.ChangePercent = current.Sub(stats.Open).Div(stats.Open).Mul(oneHundred).Round(2)
	}

	return stats
}
