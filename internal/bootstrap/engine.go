package bootstrap

import (
	"github.com/propshare/exchange/internal/app/engine"
)

// registerEngine builds the engine over the wired dependencies.
func (b *Bootstrap) registerEngine() {
	b.Engine = engine.NewEngine(
		b.Usecase.Validator,
		b.Usecase.Matcher,
		b.Usecase.Fees,
		b.Repository.OrderRepository,
		b.Repository.TradeRepository,
		b.Repository.TokenLedger,
		b.Repository.CashLedger,
		b.Repository.SnapshotRepository,
		b.Usecase.Publisher,
		b.Logger,
		&b.Config.Engine,
	)
}
