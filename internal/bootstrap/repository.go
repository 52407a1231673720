package bootstrap

import (
	"context"

	ledgerv1 "github.com/propshare/exchange/internal/domain/ledger/v1"
	marketdatav1 "github.com/propshare/exchange/internal/domain/marketdata/v1"
	orderv1 "github.com/propshare/exchange/internal/domain/order/v1"
	tradev1 "github.com/propshare/exchange/internal/domain/trade/v1"
	ledgerMem "github.com/propshare/exchange/internal/infrastructure/memory/ledger"
	marketdataMem "github.com/propshare/exchange/internal/infrastructure/memory/marketdata"
	orderMem "github.com/propshare/exchange/internal/infrastructure/memory/order"
	tradeMem "github.com/propshare/exchange/internal/infrastructure/memory/trade"
	orderPg "github.com/propshare/exchange/internal/infrastructure/postgresql/order"
	tradePg "github.com/propshare/exchange/internal/infrastructure/postgresql/trade"
	marketdataRedis "github.com/propshare/exchange/internal/infrastructure/redis/marketdata"
	"github.com/propshare/exchange/pkg/postgresql"
	"github.com/propshare/exchange/pkg/redis"
)

// StorageDriverPostgres selects the PostgreSQL order/fill repositories.
const StorageDriverPostgres = "postgres"

// Repository holds every persistence dependency the engine consumes.
type Repository struct {
	OrderRepository    orderv1.Repository
	TradeRepository    tradev1.Repository
	SnapshotRepository marketdatav1.SnapshotRepository
	HistoryRepository  marketdatav1.HistoryRepository
	TokenLedger        ledgerv1.TokenLedger
	CashLedger         ledgerv1.CashLedger
}

// registerRepository selects and connects the storage backends.
func (b *Bootstrap) registerRepository(ctx context.Context) error {
	if b.Config.Storage.Driver == StorageDriverPostgres {
		db, err := postgresql.NewClient(ctx, b.Config.Postgres)
		if err != nil {
			return err
		}
		b.Repository.OrderRepository = orderPg.NewRepository(db, b.Logger)
		b.Repository.TradeRepository = tradePg.NewRepository(db, b.Logger)
		b.Health.AddProbe("postgresql", db.Ping)
	} else {
		b.Repository.OrderRepository = orderMem.NewRepository()
		b.Repository.TradeRepository = tradeMem.NewRepository()
	}

	// History stays in memory either way: it is capped at 30 days and
	// fully re-derivable from the fill table.
	b.Repository.HistoryRepository = marketdataMem.NewHistoryRepository()

	if b.Config.Redis.Enabled {
		client := redis.NewClient(b.Logger, &b.Config.Redis.Client)
		if err := client.Connect(ctx); err != nil {
			return err
		}
		b.Repository.SnapshotRepository = marketdataRedis.NewSnapshotRepository(client)
		b.Health.AddProbe("redis", client.Ping)
	} else {
		b.Repository.SnapshotRepository = marketdataMem.NewSnapshotRepository()
	}

	// The token and cash ledgers are external systems from the engine's
	// point of view; the in-memory implementations stand in for them.
	b.Repository.TokenLedger = ledgerMem.NewTokenLedger()
	b.Repository.CashLedger = ledgerMem.NewCashLedger()

	return nil
}
