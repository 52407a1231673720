package orderv1

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trading policy constants. These are part of the external contract and
// must not silently change.
var (
	// MinPrice is the lowest acceptable limit price.
	MinPrice = decimal.RequireFromString("1.00")
	// MaxPrice is the highest acceptable limit price.
	MaxPrice = decimal.RequireFromString("10000.00")
	// MaxPriceDeviation is the maximum allowed deviation of a limit price
	// from the current market price.
	MaxPriceDeviation = decimal.RequireFromString("0.20")
	// BuyerFeeRate is the fee rate charged to the buyer on gross value.
	BuyerFeeRate = decimal.RequireFromString("0.0125")
	// SellerFeeRate is the fee rate charged to the seller on gross value.
	SellerFeeRate = decimal.RequireFromString("0.0125")
)

const (
	// MinQuantity is the smallest acceptable order quantity.
	MinQuantity int64 = 1
	// MaxQuantity is the largest acceptable order quantity.
	MaxQuantity int64 = 10000
	// ExpiryDays is the number of days before an open order expires.
	ExpiryDays = 30
	// ExpiryDuration is ExpiryDays as a duration.
	ExpiryDuration = ExpiryDays * 24 * time.Hour
)
