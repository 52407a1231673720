package fees

import (
	orderv1 "github.com/propshare/exchange/internal/domain/order/v1"
	"github.com/shopspring/decimal"
)

// Calculator computes the deterministic buyer/seller fee split for a
// trade. The rates are policy, not per-trade negotiable.
type Calculator struct {
	buyerRate  decimal.Decimal
	sellerRate decimal.Decimal
}

// NewCalculator creates a calculator using the policy fee rates.
func NewCalculator() *Calculator {
	return &Calculator{
		buyerRate:  orderv1.BuyerFeeRate,
		sellerRate: orderv1.SellerFeeRate,
	}
}

// Compute returns the buyer and seller fees for a gross trade value,
// each rounded to cents.
func (c *Calculator) Compute(grossValue decimal.Decimal) (buyerFee, sellerFee decimal.Decimal) {
	buyerFee = grossValue.Mul(c.buyerRate).Round(2)
	sellerFee = grossValue.Mul(c.sellerRate).Round(2)
	return buyerFee, sellerFee
}

// BuyerNotional returns the total cash a buyer needs for quantity tokens
// at price: gross value plus the buyer fee on top.
func (c *Calculator) BuyerNotional(price decimal.Decimal, quantity int64) decimal.Decimal {
	gross := price.Mul(decimal.NewFromInt(quantity)).Round(2)
	buyerFee, _ := c.Compute(gross)
	return gross.Add(buyerFee)
}

// SellerProceeds returns the cash credited to the seller for a gross
// value: gross minus the seller fee.
func (c *Calculator) SellerProceeds(grossValue decimal.Decimal) decimal.Decimal {
	_, sellerFee := c.Compute(grossValue)
	return grossValue.Sub(sellerFee)
}
