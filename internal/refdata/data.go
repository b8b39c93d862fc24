package refdata

import "github.com/AKI-NANA/ebay-price-solver/internal/pricing"

// Built-in reference tables. These are the operator-maintained defaults; a
// deployment can replace any of them by editing this table or supplying its
// own snapshot, but each calculation sees one immutable copy.

// DefaultPolicy is the shipping policy in force: Japan-origin economy air
// bands per destination, with the buyer-facing display figures.
var DefaultPolicy = pricing.ShippingPolicy{
	Name: "jp-economy-air-2026",
	Zones: []pricing.ShippingZone{
		{
			Name:            "US light",
			Countries:       []string{"US"},
			Mode:            pricing.ModeDDU,
			ActualCost:      12.00,
			DisplayShipping: 8.00,
			HandlingDDP:     4.00,
			HandlingDDU:     2.00,
			MinWeightKg:     0,
			MaxWeightKg:     2.0,
		},
		{
			Name:            "US standard",
			Countries:       []string{"US"},
			Mode:            pricing.ModeDDU,
			ActualCost:      24.00,
			DisplayShipping: 14.00,
			HandlingDDP:     5.00,
			HandlingDDU:     3.00,
			MinWeightKg:     2.0,
			MaxWeightKg:     5.0,
		},
		{
			Name:            "US heavy",
			Countries:       []string{"US"},
			Mode:            pricing.ModeDDU,
			ActualCost:      48.00,
			DisplayShipping: 28.00,
			HandlingDDP:     6.00,
			HandlingDDU:     4.00,
			MinWeightKg:     5.0,
			MaxWeightKg:     20.0,
		},
		{
			Name:            "UK light DDP",
			Countries:       []string{"GB"},
			Mode:            pricing.ModeDDP,
			ActualCost:      14.50,
			DisplayShipping: 10.00,
			HandlingDDP:     4.00,
			HandlingDDU:     2.00,
			MinWeightKg:     0,
			MaxWeightKg:     2.0,
		},
		{
			Name:            "UK standard DDP",
			Countries:       []string{"GB"},
			Mode:            pricing.ModeDDP,
			ActualCost:      29.00,
			DisplayShipping: 18.00,
			HandlingDDP:     5.00,
			HandlingDDU:     3.00,
			MinWeightKg:     2.0,
			MaxWeightKg:     5.0,
		},
		{
			Name:            "EU light DDP",
			Countries:       []string{"DE", "FR", "IT", "ES", "NL"},
			Mode:            pricing.ModeDDP,
			ActualCost:      16.00,
			DisplayShipping: 11.00,
			HandlingDDP:     4.50,
			HandlingDDU:     2.50,
			MinWeightKg:     0,
			MaxWeightKg:     2.0,
		},
		{
			Name:            "EU standard DDP",
			Countries:       []string{"DE", "FR", "IT", "ES", "NL"},
			Mode:            pricing.ModeDDP,
			ActualCost:      32.00,
			DisplayShipping: 20.00,
			HandlingDDP:     5.50,
			HandlingDDU:     3.50,
			MinWeightKg:     2.0,
			MaxWeightKg:     5.0,
		},
		{
			Name:            "AU light",
			Countries:       []string{"AU"},
			Mode:            pricing.ModeDDU,
			ActualCost:      13.00,
			DisplayShipping: 9.00,
			HandlingDDP:     4.00,
			HandlingDDU:     2.00,
			MinWeightKg:     0,
			MaxWeightKg:     2.0,
		},
		{
			Name:            "AU standard",
			Countries:       []string{"AU"},
			Mode:            pricing.ModeDDU,
			ActualCost:      26.00,
			DisplayShipping: 16.00,
			HandlingDDP:     5.00,
			HandlingDDU:     3.00,
			MinWeightKg:     2.0,
			MaxWeightKg:     5.0,
		},
	},
}

// DefaultCategoryFees mirrors the marketplace category fee schedule.
// The default entry is the documented fallback for unlisted categories.
var DefaultCategoryFees = pricing.CategoryFeeTable{
	Schedules: map[string]pricing.CategoryFeeSchedule{
		"collectibles": {Category: "collectibles", InsertionFee: 0.30, FVFRate: 0.13},
		"cameras":      {Category: "cameras", InsertionFee: 0.30, FVFRate: 0.1235},
		"watches":      {Category: "watches", InsertionFee: 0.30, FVFRate: 0.15, FeeCap: 1000},
		"video_games":  {Category: "video_games", InsertionFee: 0.30, FVFRate: 0.1325},
		"audio":        {Category: "audio", InsertionFee: 0.30, FVFRate: 0.1235},
		"trading_cards": {
			Category: "trading_cards", InsertionFee: 0.30, FVFRate: 0.1325, FeeCap: 750,
		},
	},
	Default: pricing.CategoryFeeSchedule{
		Category:     "default",
		InsertionFee: 0.35,
		FVFRate:      0.1325,
	},
}

// DefaultTariffs is the destination duty table keyed by HS chapter prefix.
// The default rate is deliberately conservative for unclassified codes.
var DefaultTariffs = pricing.TariffTable{
	SurchargeOrigin: "CN",
	DefaultRate:     0.15,
	Classifications: map[string]pricing.TariffClassification{
		"9503": {Code: "9503", BaseRate: 0.00, SurchargeFlag: true, SurchargeRate: 0.25, Description: "toys and models"},
		"9504": {Code: "9504", BaseRate: 0.00, SurchargeFlag: true, SurchargeRate: 0.25, Description: "video game consoles"},
		"8525": {Code: "8525", BaseRate: 0.00, SurchargeFlag: false, Description: "cameras"},
		"9101": {Code: "9101", BaseRate: 0.051, SurchargeFlag: false, Description: "wrist-watches, precious metal"},
		"9102": {Code: "9102", BaseRate: 0.04, SurchargeFlag: false, Description: "wrist-watches"},
		"8518": {Code: "8518", BaseRate: 0.049, SurchargeFlag: true, SurchargeRate: 0.075, Description: "headphones and speakers"},
		"4202": {Code: "4202", BaseRate: 0.08, SurchargeFlag: true, SurchargeRate: 0.25, Description: "bags and cases"},
		"6404": {Code: "6404", BaseRate: 0.09, SurchargeFlag: true, SurchargeRate: 0.25, Description: "footwear, textile upper"},
	},
}

// DefaultFeeConfig holds the revenue-proportional provisions and the DDP
// service fee parameters.
var DefaultFeeConfig = pricing.FeeConfig{
	ProcessingRate:       0.030,
	FXLossRate:           0.015,
	InternationalFeeRate: 0.0135,
	DDPFixedFee:          2.00,
	DDPRate:              0.02,
	DDPCap:               15.00,
	TierDiscounts: map[pricing.SellerTier]float64{
		pricing.TierStandard:      0,
		pricing.TierAboveStandard: 0.005,
		pricing.TierTopRated:      0.013,
	},
}

// DefaultSolverConfig: listing prices round to $5 increments; band-selection
// estimate is cost x3, a deliberate overshoot so price bands resolve against
// a sale-price-like figure rather than raw cost.
var DefaultSolverConfig = pricing.SolverConfig{
	RoundingUnit:             5,
	EstimatedPriceMultiplier: 3.0,
}

// DefaultTax is the Japanese consumption tax rate for export refunds.
var DefaultTax = pricing.ConsumptionTax{Rate: 0.10}

// marginPolicyKey resolves margin policies per category/destination/condition.
type marginPolicyKey struct {
	Category    string
	Destination string
	Condition   string
}

// marginPolicies lists the specific overrides; unmatched combinations use
// defaultMarginPolicy.
var marginPolicies = map[marginPolicyKey]pricing.MarginPolicy{
	{Category: "watches", Destination: "US", Condition: "used"}: {
		TargetMargin: 0.25, MinMargin: 0.15, MinProfitAmount: 20.00,
	},
	{Category: "trading_cards", Destination: "US", Condition: "used"}: {
		TargetMargin: 0.22, MinMargin: 0.12, MinProfitAmount: 3.00,
	},
	{Category: "cameras", Destination: "US", Condition: "used"}: {
		TargetMargin: 0.20, MinMargin: 0.10, MinProfitAmount: 10.00,
	},
}

var defaultMarginPolicy = pricing.MarginPolicy{
	TargetMargin:    0.20,
	MinMargin:       0.10,
	MinProfitAmount: 5.00,
}

// ResolveMarginPolicy returns the margin policy for a
// (category, destination, condition) triple, falling back to the default.
func ResolveMarginPolicy(category, destination, condition string) pricing.MarginPolicy {
	if p, ok := marginPolicies[marginPolicyKey{category, destination, condition}]; ok {
		return p
	}
	return defaultMarginPolicy
}
