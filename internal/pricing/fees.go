package pricing

// CategoryFeeSchedule holds the marketplace fees for one listing category.
type CategoryFeeSchedule struct {
	Category     string  `json:"category"`
	InsertionFee float64 `json:"insertionFee"` // flat, settlement currency
	FVFRate      float64 `json:"fvfRate"`      // final-value-fee rate on total revenue
	FeeCap       float64 `json:"feeCap"`       // absolute cap on the FVF amount; 0 = uncapped
}

// CategoryFeeTable maps categories to fee schedules with a documented
// fallback for unmatched categories (never a silent zero).
type CategoryFeeTable struct {
	Schedules map[string]CategoryFeeSchedule `json:"schedules"`
	Default   CategoryFeeSchedule            `json:"default"`
}

// resolve looks up the schedule for a category. The second return reports
// whether the fallback schedule was applied.
func (t CategoryFeeTable) resolve(category string) (CategoryFeeSchedule, bool) {
	if s, ok := t.Schedules[category]; ok {
		return s, false
	}
	return t.Default, true
}

// FeeConfig holds the revenue-proportional cost rates and the DDP service fee
// parameters. These are marketplace policy constants, configurable but fixed
// for one calculation.
type FeeConfig struct {
	ProcessingRate       float64 `json:"processingRate"`       // payment processing, × revenue
	FXLossRate           float64 `json:"fxLossRate"`           // currency-conversion provision, × revenue
	InternationalFeeRate float64 `json:"internationalFeeRate"` // cross-border program fee, × revenue

	DDPFixedFee float64 `json:"ddpFixedFee"` // flat component of the DDP service fee
	DDPRate     float64 `json:"ddpRate"`     // × CIF price
	DDPCap      float64 `json:"ddpCap"`      // absolute cap on the DDP fee

	// TierDiscounts are subtracted from the category's base FVF rate.
	TierDiscounts map[SellerTier]float64 `json:"tierDiscounts"`
}

// effectiveFVFRate applies the seller-tier discount to the category base
// rate, floored at zero.
func (c FeeConfig) effectiveFVFRate(base float64, tier SellerTier) float64 {
	rate := base - c.TierDiscounts[tier]
	if rate < 0 {
		return 0
	}
	return rate
}

// variableRate is the total revenue-proportional cost load excluding margin.
func (c FeeConfig) variableRate(fvfRate float64) float64 {
	return fvfRate + c.ProcessingRate + c.FXLossRate + c.InternationalFeeRate
}

// ddpFee is the marketplace's duty-prepayment service fee. Only DDP zones
// incur it; the fee is a flat charge plus a share of the CIF price, capped.
func (c FeeConfig) ddpFee(mode DeliveryMode, cifPrice float64) float64 {
	if mode != ModeDDP {
		return 0
	}
	fee := c.DDPFixedFee + cifPrice*c.DDPRate
	if c.DDPCap > 0 && fee > c.DDPCap {
		fee = c.DDPCap
	}
	return fee
}

// capFVF clamps the revenue-based final-value fee amount to the category cap.
func capFVF(amount, cap float64) float64 {
	if cap > 0 && amount > cap {
		return cap
	}
	return amount
}
