package booking

import (
	"math"

	"github.com/GearShare/service-rental/internal/domain/money"
)

// PricingStrategy defines the interface for calculating booking prices.
type PricingStrategy interface {
	// Calculate returns the total price for the given parameters.
	Calculate(params PricingParams) (money.Cents, error)
}

// PricingParams holds the inputs for price calculation.
type PricingParams struct {
	Days        int64
	PricePerDay money.Cents
	Deposit     money.Cents
}

// DailyRatePricing charges the daily rate for every inclusive day plus a
// flat deposit.
type DailyRatePricing struct{}

// NewDailyRatePricing creates a DailyRatePricing.
func NewDailyRatePricing() *DailyRatePricing {
	return &DailyRatePricing{}
}

// Calculate computes days * pricePerDay + deposit.
func (DailyRatePricing) Calculate(params PricingParams) (money.Cents, error) {
	if params.Days < 1 {
		return 0, ErrInvalidRange.WithMessage("booking must span at least one day")
	}
	if params.PricePerDay <= 0 {
		return 0, ErrListingUnavailable.WithMessage("listing has no valid daily price")
	}
	if params.Deposit < 0 {
		return 0, ErrListingUnavailable.WithMessage("listing has a negative deposit")
	}
	if int64(params.PricePerDay) > (math.MaxInt64-int64(params.Deposit))/params.Days {
		return 0, ErrPriceOutOfRange
	}
	return params.PricePerDay.Mul(params.Days) + params.Deposit, nil
}
