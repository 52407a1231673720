package bootstrap

import (
	"github.com/propshare/exchange/internal/usecase/fees"
	"github.com/propshare/exchange/internal/usecase/marketdata"
	"github.com/propshare/exchange/internal/usecase/matching"
	"github.com/propshare/exchange/internal/usecase/settlement"
	tradepublisher "github.com/propshare/exchange/internal/usecase/trade-publisher"
	"github.com/propshare/exchange/internal/usecase/validator"
)

// Usecase holds the engine's collaborating use cases.
type Usecase struct {
	Fees       *fees.Calculator
	Validator  *validator.Validator
	Settlement *settlement.Adapter
	MarketData *marketdata.Aggregator
	Matcher    *matching.Matcher
	Publisher  tradepublisher.Publisher
}

// registerUsecase registers the use cases.
func (b *Bootstrap) registerUsecase() {
	b.Usecase.Fees = fees.NewCalculator()
	b.Usecase.Validator = validator.NewValidator(b.Usecase.Fees)
	b.Usecase.Settlement = settlement.NewAdapter(
		b.Repository.TokenLedger,
		b.Repository.CashLedger,
		b.Repository.TradeRepository,
		b.Logger,
	)
	b.Usecase.MarketData = marketdata.NewAggregator(
		b.Repository.HistoryRepository,
		b.Repository.SnapshotRepository,
	)
	b.Usecase.Matcher = matching.NewMatcher(
		b.Usecase.Fees,
		b.Usecase.Settlement,
		b.Usecase.MarketData,
		b.Repository.OrderRepository,
		b.Logger,
	)

	if b.Config.TradeFeed.Enabled {
		b.Usecase.Publisher = tradepublisher.NewKafkaPublisher(b.Config.TradeFeed, b.Logger)
	} else {
		b.Usecase.Publisher = tradepublisher.NopPublisher{}
	}
}
