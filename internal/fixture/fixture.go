package fixture

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"

	"github.com/propshare/exchange/internal/bootstrap"
	marketdatav1 "github.com/propshare/exchange/internal/domain/marketdata/v1"
	orderv1 "github.com/propshare/exchange/internal/domain/order/v1"
	"github.com/propshare/exchange/pkg/config"
	"github.com/propshare/exchange/pkg/logger"
	"github.com/propshare/exchange/pkg/util"
)

// demo users and instruments seeded by Load.
var (
	demoUsers       = []string{"alice", "bob", "carol", "dave"}
	demoInstruments = []string{"PROP-MAPLE-01", "PROP-HARBOR-02"}
)

// Loader seeds a demo market: funded users, unlocked token lots, thirty
// days of price history and a small resting book. All randomness comes
// from the configured seed, so restarts with the same seed produce the
// same market.
type Loader struct {
	boot   *bootstrap.Bootstrap
	logger logger.Interface
	rng    *rand.Rand
}

// NewLoader creates a fixture loader.
func NewLoader(boot *bootstrap.Bootstrap, cfg config.FixtureConfig, log logger.Interface) *Loader {
	return &Loader{
		boot:   boot,
		logger: log,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Load seeds ledgers, history and resting orders. Must run after the
// engine started, so placed orders flow through the normal command path.
func (l *Loader) Load(ctx context.Context) error {
	now := time.Now()

	for _, user := range demoUsers {
		if err := l.boot.Repository.CashLedger.Credit(ctx, user, decimal.NewFromInt(250_000)); err != nil {
			return err
		}
	}

	for _, instrument := range demoInstruments {
		base := decimal.NewFromInt(int64(50 + l.rng.Intn(150)))

		// Lots acquired well before the lock-up window, so sellers can
		// trade immediately.
		for _, user := range demoUsers {
			acquired := now.Add(-time.Duration(45+l.rng.Intn(90)) * 24 * time.Hour)
			if _, err := l.boot.Repository.TokenLedger.Credit(ctx, user, instrument, int64(500+l.rng.Intn(1500)), base, acquired); err != nil {
				return err
			}
		}

		if err := l.seedHistory(ctx, instrument, base, now); err != nil {
			return err
		}
		if err := l.seedBook(ctx, instrument, base); err != nil {
			return err
		}
	}

	l.logger.Info("Fixture data loaded", logger.Field{
		Key:   "instruments",
		Value: demoInstruments,
	})

	return nil
}

// seedHistory writes one price point per day for the retention window
// following a bounded random walk, and derives the initial snapshot from
// the walk's last price.
func (l *Loader) seedHistory(ctx context.Context, instrument string, base decimal.Decimal, now time.Time) error {
	price := base
	days := int(marketdatav1.HistoryRetention / (24 * time.Hour))

	for day := days - 1; day >= 0; day-- {
		drift := decimal.NewFromFloat((l.rng.Float64() - 0.5) * 2).Round(2)
		price = price.Add(drift)
		if price.LessThan(orderv1.MinPrice) {
			price = orderv1.MinPrice
		}

		point := marketdatav1.PricePoint{
			Timestamp: now.Add(-time.Duration(day) * 24 * time.Hour),
			Price:     price,
			Volume:    int64(10 + l.rng.Intn(200)),
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
		}
		if err := l.boot.Repository.HistoryRepository.Append(ctx, instrument, point); err != nil {
			return err
		}
	}

	snapshot := &marketdatav1.Snapshot{
		InstrumentID: instrument,
		CurrentPrice: price,
		UpdatedAt:    now,
	}
	return l.boot.Repository.SnapshotRepository.Upsert(ctx, snapshot)
}

// seedBook places a few resting limit orders on both sides through the
// engine, spread around the seeded market price.
func (l *Loader) seedBook(ctx context.Context, instrument string, base decimal.Decimal) error {
	snapshot, err := l.boot.Repository.SnapshotRepository.Get(ctx, instrument)
	if err != nil {
		return err
	}
	mid := base
	if snapshot != nil {
		mid = snapshot.CurrentPrice
	}

	for i := 0; i < 3; i++ {
		seller := demoUsers[l.rng.Intn(len(demoUsers))]
		ask := mid.Add(decimal.NewFromInt(int64(i + 1))).Round(2)
		if err := l.place(ctx, seller, instrument, orderv1.SideSell, int64(20+l.rng.Intn(80)), ask); err != nil {
			return err
		}

		buyer := demoUsers[l.rng.Intn(len(demoUsers))]
		bid := mid.Sub(decimal.NewFromInt(int64(i + 1))).Round(2)
		if bid.LessThan(orderv1.MinPrice) {
			bid = orderv1.MinPrice
		}
		if err := l.place(ctx, buyer, instrument, orderv1.SideBuy, int64(20+l.rng.Intn(80)), bid); err != nil {
			return err
		}
	}

	return nil
}

func (l *Loader) place(ctx context.Context, user, instrument string, side orderv1.Side, quantity int64, price decimal.Decimal) error {
	_, err := l.boot.Engine.PlaceOrder(util.WithActorID(ctx, user), orderv1.PlaceOrderRequest{
		InstrumentID: instrument,
		Side:         side,
		Kind:         orderv1.KindLimit,
		Quantity:     quantity,
		Price:        price,
	})
	if err != nil {
		return fmt.Errorf("seed %s order for %s: %w", side, user, err)
	}
	return nil
}
