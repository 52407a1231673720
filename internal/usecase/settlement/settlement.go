package settlement

import (
	"context"

	ledgerv1 "github.com/propshare/exchange/internal/domain/ledger/v1"
	tradev1 "github.com/propshare/exchange/internal/domain/trade/v1"
	"github.com/propshare/exchange/pkg/errors"
	"github.com/propshare/exchange/pkg/logger"
)

// Adapter applies one fill to the two ledgers and records the trade.
// Settlement is effectively atomic: if any step fails, every step already
// applied is compensated in reverse order and the fill is never recorded.
type Adapter struct {
	tokens ledgerv1.TokenLedger
	cash   ledgerv1.CashLedger
	trades tradev1.Repository
	logger logger.Interface
}

// NewAdapter creates a settlement adapter over the given ledgers and
// trade repository.
func NewAdapter(tokens ledgerv1.TokenLedger, cash ledgerv1.CashLedger, trades tradev1.Repository, log logger.Interface) *Adapter {
	return &Adapter{
		tokens: tokens,
		cash:   cash,
		trades: trades,
		logger: log,
	}
}

// Settle applies the fill:
//   - seller: fill.Quantity tokens debited from unlocked lots (FIFO),
//     grossValue − sellerFee credited in cash;
//   - buyer: a new token lot of fill.Quantity at cost basis = execution
//     price, grossValue + buyerFee consumed from the cash reserved at
//     order placement (the ledger draws any fee-rounding shortfall from
//     the available balance).
//
// Any failure unwinds the applied steps and returns a settlement error;
// no partially settled state survives.
func (a *Adapter) Settle(ctx context.Context, fill *tradev1.Fill) error {
	var undo []func() error
	fail := func(step string, err error) error {
		a.logger.ErrorContext(ctx, errors.TracerFromError(err),
			logger.Field{Key: "fillID", Value: fill.ID},
			logger.Field{Key: "step", Value: step},
		)
		a.unwind(ctx, fill, undo)
		return errors.NewErrorDetailsWithObject(
			"Settlement failed, please try again",
			string(errors.SettlementFailureError),
			"",
			fill.ID,
		)
	}

	debited, err := a.tokens.Debit(ctx, fill.SellerID, fill.InstrumentID, fill.Quantity, fill.ExecutedAt)
	if err != nil {
		return fail("debit_seller_tokens", err)
	}
	undo = append(undo, func() error {
		return a.tokens.Restore(ctx, fill.SellerID, fill.InstrumentID, debited)
	})

	lotID, err := a.tokens.Credit(ctx, fill.BuyerID, fill.InstrumentID, fill.Quantity, fill.Price, fill.ExecutedAt)
	if err != nil {
		return fail("credit_buyer_tokens", err)
	}
	undo = append(undo, func() error {
		return a.tokens.RevokeLot(ctx, fill.BuyerID, lotID)
	})

	buyerCost := fill.GrossValue.Add(fill.BuyerFee)
	if err := a.cash.ConsumeReservation(ctx, fill.BuyerID, fill.BuyOrderID, buyerCost); err != nil {
		return fail("consume_buyer_reservation", err)
	}
	undo = append(undo, func() error {
		if err := a.cash.Credit(ctx, fill.BuyerID, buyerCost); err != nil {
			return err
		}
		return a.cash.Reserve(ctx, fill.BuyerID, fill.BuyOrderID, buyerCost)
	})

	sellerProceeds := fill.GrossValue.Sub(fill.SellerFee)
	if err := a.cash.Credit(ctx, fill.SellerID, sellerProceeds); err != nil {
		return fail("credit_seller_cash", err)
	}
	undo = append(undo, func() error {
		return a.cash.Debit(ctx, fill.SellerID, sellerProceeds)
	})

	if err := a.trades.Insert(ctx, fill); err != nil {
		return fail("record_fill", err)
	}

	return nil
}

// unwind runs compensations in reverse order. A compensation failure is
// logged but does not stop the remaining ones.
func (a *Adapter) unwind(ctx context.Context, fill *tradev1.Fill, undo []func() error) {
	for i := len(undo) - 1; i >= 0; i-- {
		if err := undo[i](); err != nil {
			a.logger.ErrorContext(ctx, errors.TracerFromError(err),
				logger.Field{Key: "fillID", Value: fill.ID},
				logger.Field{Key: "action", Value: "settlement_unwind"},
			)
		}
	}
}
