package validator

import (
	"fmt"

	orderv1 "github.com/propshare/exchange/internal/domain/order/v1"
	"github.com/propshare/exchange/internal/usecase/fees"
	"github.com/propshare/exchange/pkg/errors"
	"github.com/shopspring/decimal"
)

// MarketSnapshot is the market state a validation runs against. A zero
// CurrentPrice means no trade has happened yet. BestAsk and BestBid are
// the best counter prices the acting user could actually trade with,
// their own resting orders excluded; zero means no such counter order
// rests on that side.
type MarketSnapshot struct {
	CurrentPrice decimal.Decimal
	BestAsk      decimal.Decimal
	BestBid      decimal.Decimal
}

// LedgerSnapshot is the acting user's ledger state. UnlockedTokens is
// already net of tokens reserved by the user's own open sell orders.
type LedgerSnapshot struct {
	AvailableCash  decimal.Decimal
	UnlockedTokens int64
}

// Validator rejects malformed or out-of-policy orders before they touch
// the book. Validate is a pure function of its three inputs and collects
// every violated rule, not just the first.
type Validator struct {
	fees *fees.Calculator
}

// NewValidator creates a validator.
func NewValidator(feeCalculator *fees.Calculator) *Validator {
	return &Validator{fees: feeCalculator}
}

// Validate returns nil when the request is valid, otherwise a BaseError
// carrying one ErrorDetails per violated rule.
func (v *Validator) Validate(req orderv1.PlaceOrderRequest, market MarketSnapshot, ledger LedgerSnapshot) *errors.BaseError {
	violations := errors.NewBaseError()

	if req.Kind == orderv1.KindLimit {
		v.checkPriceBand(req, violations)
		v.checkPriceDeviation(req, market, violations)
	}
	v.checkQuantity(req, violations)

	switch req.Side {
	case orderv1.SideBuy:
		v.checkCash(req, market, ledger, violations)
	case orderv1.SideSell:
		v.checkTokens(req, ledger, violations)
		if req.Kind == orderv1.KindMarket && market.BestBid.Sign() <= 0 {
			// Market orders never rest, so an empty counter side means the
			// order could not fill at all.
			violations.AddErrorDetails(errors.NewErrorDetails(
				"Insufficient liquidity: no buy orders available",
				string(errors.InsufficientLiquidityError),
				"side",
			))
		}
	}

	if !violations.HasDetails() {
		return nil
	}
	return violations
}

func (v *Validator) checkPriceBand(req orderv1.PlaceOrderRequest, violations *errors.BaseError) {
	if req.Price.LessThan(orderv1.MinPrice) {
		violations.AddErrorDetails(errors.NewErrorDetails(
			fmt.Sprintf("Minimum price is $%s", orderv1.MinPrice.StringFixed(2)),
			string(errors.PriceOutOfRangeError),
			"price",
		))
	}
	if req.Price.GreaterThan(orderv1.MaxPrice) {
		violations.AddErrorDetails(errors.NewErrorDetails(
			fmt.Sprintf("Maximum price is $%s", orderv1.MaxPrice.StringFixed(2)),
			string(errors.PriceOutOfRangeError),
			"price",
		))
	}
}

func (v *Validator) checkPriceDeviation(req orderv1.PlaceOrderRequest, market MarketSnapshot, violations *errors.BaseError) {
	// No reference price yet, nothing to deviate from.
	if market.CurrentPrice.Sign() <= 0 {
		return
	}

	deviation := req.Price.Sub(market.CurrentPrice).Abs().Div(market.CurrentPrice)
	if deviation.GreaterThan(orderv1.MaxPriceDeviation) {
		violations.AddErrorDetails(errors.NewErrorDetails(
			fmt.Sprintf("Price may not deviate more than %s%% from the market price of $%s",
				orderv1.MaxPriceDeviation.Mul(decimal.NewFromInt(100)).StringFixed(0),
				market.CurrentPrice.StringFixed(2)),
			string(errors.PriceDeviationError),
			"price",
		))
	}
}

func (v *Validator) checkQuantity(req orderv1.PlaceOrderRequest, violations *errors.BaseError) {
	if req.Quantity < orderv1.MinQuantity || req.Quantity > orderv1.MaxQuantity {
		violations.AddErrorDetails(errors.NewErrorDetails(
			fmt.Sprintf("Quantity must be between %d and %d tokens", orderv1.MinQuantity, orderv1.MaxQuantity),
			string(errors.QuantityOutOfRangeError),
			"quantity",
		))
	}
}

func (v *Validator) checkCash(req orderv1.PlaceOrderRequest, market MarketSnapshot, ledger LedgerSnapshot, violations *errors.BaseError) {
	price := req.Price
	if req.Kind == orderv1.KindMarket {
		// A market buy's price is unknown until matched; the best resting
		// ask is the price the first fill would execute at.
		if market.BestAsk.Sign() <= 0 {
			violations.AddErrorDetails(errors.NewErrorDetails(
				"Insufficient liquidity: no sell orders available",
				string(errors.InsufficientLiquidityError),
				"side",
			))
			return
		}
		price = market.BestAsk
	}

	if price.Sign() <= 0 || req.Quantity <= 0 {
		// Other rules already flag these; a cash check would be noise.
		return
	}

	required := v.fees.BuyerNotional(price, req.Quantity)
	if required.GreaterThan(ledger.AvailableCash) {
		violations.AddErrorDetails(errors.NewErrorDetails(
			fmt.Sprintf("Insufficient cash balance: $%s required, $%s available",
				required.StringFixed(2), ledger.AvailableCash.StringFixed(2)),
			string(errors.InsufficientCashError),
			"quantity",
		))
	}
}

func (v *Validator) checkTokens(req orderv1.PlaceOrderRequest, ledger LedgerSnapshot, violations *errors.BaseError) {
	if req.Quantity > 0 && ledger.UnlockedTokens < req.Quantity {
		violations.AddErrorDetails(errors.NewErrorDetails(
			fmt.Sprintf("Insufficient unlocked tokens: %d requested, %d available",
				req.Quantity, ledger.UnlockedTokens),
			string(errors.InsufficientTokensError),
			"quantity",
		))
	}
}
