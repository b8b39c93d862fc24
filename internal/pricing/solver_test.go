package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRefData is a minimal single-zone snapshot used across solver tests.
func testRefData() RefData {
	return RefData{
		Policy: ShippingPolicy{
			Name: "test",
			Zones: []ShippingZone{
				{
					Name:            "US all",
					Countries:       []string{"US"},
					Mode:            ModeDDU,
					ActualCost:      12.00,
					DisplayShipping: 8.00,
					HandlingDDP:     4.00,
					HandlingDDU:     2.00,
					MinWeightKg:     0,
					MaxWeightKg:     20.0,
				},
			},
		},
		Margin: MarginPolicy{TargetMargin: 0.20, MinMargin: 0.10, MinProfitAmount: 5.00},
		Fees: CategoryFeeTable{
			Schedules: map[string]CategoryFeeSchedule{
				"watches": {Category: "watches", InsertionFee: 0.30, FVFRate: 0.13},
			},
			Default: CategoryFeeSchedule{Category: "default", InsertionFee: 0.35, FVFRate: 0.1325},
		},
		Rates: ExchangeRateSnapshot{Spot: 149.35, Safe: 145.0},
		Tariffs: TariffTable{
			DefaultRate:     0.15,
			SurchargeOrigin: "CN",
			Classifications: map[string]TariffClassification{
				"9102": {Code: "9102", BaseRate: 0.04, Description: "wrist-watches"},
			},
		},
		FeeCfg: FeeConfig{
			ProcessingRate:       0.030,
			FXLossRate:           0.015,
			InternationalFeeRate: 0.0135,
			DDPFixedFee:          2.00,
			DDPRate:              0.02,
			DDPCap:               15.00,
			TierDiscounts: map[SellerTier]float64{
				TierStandard: 0,
				TierTopRated: 0.013,
			},
		},
		Solver: SolverConfig{RoundingUnit: 5, EstimatedPriceMultiplier: 3.0},
		Tax:    ConsumptionTax{Rate: 0.10},
	}
}

func testInputs() CostInputs {
	return CostInputs{
		SourceCost:     15000,
		ActualWeightKg: 1.0,
		LengthCm:       40,
		WidthCm:        30,
		HeightCm:       20,
		Destination:    "US",
		Origin:         "JP",
		TariffCode:     "9102",
		Category:       "watches",
		Condition:      "used",
		SellerTier:     TierStandard,
	}
}

func TestCalculateScenario(t *testing.T) {
	result := Calculate(testInputs(), testRefData())

	require.True(t, result.Success, "expected success, got %s: %s", result.Error, result.Message)

	// 40x30x20 / 5000 = 4.8, above the 1.0 kg actual weight
	assert.Equal(t, 4.8, result.VolumetricWeight)
	assert.Equal(t, 4.8, result.EffectiveWeight)

	// 15000 JPY at the 145 safety rate
	assert.InDelta(t, 103.45, result.Fees.CostSettlement, 0.01)

	// fixed costs 120.37 / denominator 0.6115 gives revenue 196.84;
	// minus 8 shipping and 2 handling, rounded down to the 5-unit grid
	assert.Equal(t, 185.0, result.ProductPrice)
	assert.Equal(t, 8.0, result.DisplayShipping)
	assert.Equal(t, 2.0, result.DisplayHandling)
	assert.Equal(t, 195.0, result.TotalRevenue)
	assert.Equal(t, 193.0, result.SearchTotal)

	// duty on CIF 115.45 at 4%
	assert.InDelta(t, 4.62, result.Fees.Duty, 0.01)
	assert.Equal(t, 0.0, result.Fees.DDPFee) // DDU zone

	// all post-rounding figures derive from the recomputed 195 revenue
	assert.InDelta(t, 25.35, result.Fees.FinalValueFee, 0.001)
	assert.InDelta(t, 5.85, result.Fees.ProcessingFee, 0.001)

	assert.InDelta(t, 37.88, result.ProfitNoRefund, 0.01)
	assert.GreaterOrEqual(t, result.ProfitMarginNoRefund, 0.10)

	// refund: 15000 * 0.1/1.1 = 1363.64 JPY, 9.40 USD at the safety rate
	assert.InDelta(t, 1363.64, result.RefundAmountSource, 0.01)
	assert.InDelta(t, 9.40, result.RefundAmount, 0.01)
	assert.InDelta(t, result.ProfitNoRefund+result.RefundAmount, result.ProfitWithRefund, 0.01)

	assert.False(t, result.TariffFallback)
	assert.False(t, result.CategoryFeeFallback)
	assert.NotEmpty(t, result.AuditTrail)
}

func TestCalculateDeterminism(t *testing.T) {
	inputs := testInputs()
	ref := testRefData()

	first := Calculate(inputs, ref)
	second := Calculate(inputs, ref)

	require.Equal(t, first, second)
}

func TestCalculateRevenueConsistency(t *testing.T) {
	result := Calculate(testInputs(), testRefData())
	require.True(t, result.Success)

	assert.Equal(t, result.ProductPrice+result.DisplayShipping+result.DisplayHandling, result.TotalRevenue)
}

func TestCalculateTargetMarginMonotonicity(t *testing.T) {
	inputs := testInputs()

	low := testRefData()
	low.Margin = MarginPolicy{TargetMargin: 0.10, MinMargin: 0.05, MinProfitAmount: 5.00}
	low.Solver.RoundingUnit = 1 // finer grid so the price ordering survives rounding

	high := testRefData()
	high.Margin = MarginPolicy{TargetMargin: 0.30, MinMargin: 0.05, MinProfitAmount: 5.00}
	high.Solver.RoundingUnit = 1

	lowResult := Calculate(inputs, low)
	highResult := Calculate(inputs, high)
	require.True(t, lowResult.Success)
	require.True(t, highResult.Success)

	assert.Greater(t, highResult.ProductPrice, lowResult.ProductPrice)
}

func TestCalculateDenominatorCollapse(t *testing.T) {
	ref := testRefData()
	ref.Margin.TargetMargin = 0.90 // 90% margin plus 18.85% fee load exceeds revenue

	result := Calculate(testInputs(), ref)

	require.False(t, result.Success)
	assert.Equal(t, ErrInsufficientMargin, result.Error)
	require.NotNil(t, result.Diagnostics)
	assert.Equal(t, ref.Margin.MinMargin, result.Diagnostics.RequiredMargin)
	assert.Equal(t, ref.Margin.MinProfitAmount, result.Diagnostics.RequiredProfit)
	assert.NotEmpty(t, result.AuditTrail, "partial audit trail must survive failure")
}

func TestCalculateMarginFloor(t *testing.T) {
	ref := testRefData()
	// Target only just above the floor; a high floor then rejects the result.
	ref.Margin = MarginPolicy{TargetMargin: 0.05, MinMargin: 0.30, MinProfitAmount: 5.00}

	result := Calculate(testInputs(), ref)

	require.False(t, result.Success)
	assert.Equal(t, ErrInsufficientMargin, result.Error)
	require.NotNil(t, result.Diagnostics)
	assert.Less(t, result.Diagnostics.AchievedMargin, result.Diagnostics.RequiredMargin)
	assert.NotZero(t, result.Diagnostics.AchievedProfit)
}

func TestCalculateRefundNeverRescuesMargin(t *testing.T) {
	ref := testRefData()
	ref.Margin = MarginPolicy{TargetMargin: 0.05, MinMargin: 0.30, MinProfitAmount: 5.00}

	inputs := testInputs()
	inputs.RefundableFees = 500000 // enormous refund, must not pass the gate

	result := Calculate(inputs, ref)

	require.False(t, result.Success)
	assert.Equal(t, ErrInsufficientMargin, result.Error)
}

func TestCalculateNoMatchingZone(t *testing.T) {
	inputs := testInputs()
	inputs.Destination = "BR"

	result := Calculate(inputs, testRefData())

	require.False(t, result.Success)
	assert.Equal(t, ErrNoMatchingShippingPolicy, result.Error)
	assert.NotEmpty(t, result.AuditTrail)
}

func TestCalculateExcessiveCostRejected(t *testing.T) {
	ref := testRefData()
	// Display figures exceed the required revenue for a cheap item,
	// driving the rounded price below zero.
	ref.Policy.Zones[0].DisplayShipping = 30
	ref.Policy.Zones[0].HandlingDDU = 5
	inputs := testInputs()
	inputs.SourceCost = 100

	result := Calculate(inputs, ref)

	require.False(t, result.Success)
	assert.Equal(t, ErrInvalidInput, result.Error)
}

func TestCalculateTariffFallbackSucceeds(t *testing.T) {
	inputs := testInputs()
	inputs.TariffCode = "0000"

	result := Calculate(inputs, testRefData())

	require.True(t, result.Success)
	assert.True(t, result.TariffFallback)
	assert.Equal(t, "unclassified", result.TariffDescription)
}

func TestCalculateCategoryFallback(t *testing.T) {
	inputs := testInputs()
	inputs.Category = "furniture"

	result := Calculate(inputs, testRefData())

	require.True(t, result.Success)
	assert.True(t, result.CategoryFeeFallback)
	assert.Equal(t, 0.35, result.Fees.InsertionFee)
}

func TestCalculateInvalidRates(t *testing.T) {
	ref := testRefData()
	ref.Rates.Safe = 0

	result := Calculate(testInputs(), ref)

	require.False(t, result.Success)
	assert.Equal(t, ErrInvalidInput, result.Error)
}

func TestCalculateDDPFeeApplied(t *testing.T) {
	ref := testRefData()
	ref.Policy.Zones[0].Mode = ModeDDP

	result := Calculate(testInputs(), ref)

	require.True(t, result.Success)
	// min(2.00 + 115.45*0.02, 15.00) = 4.31
	assert.InDelta(t, 4.31, result.Fees.DDPFee, 0.01)
	assert.Equal(t, "DDP", result.DeliveryMode)
	assert.Equal(t, 4.0, result.DisplayHandling) // DDP handling figure
}

func TestRoundToUnit(t *testing.T) {
	assert.Equal(t, 185.0, roundToUnit(186.84, 5))
	assert.Equal(t, 190.0, roundToUnit(187.5, 5))
	assert.Equal(t, 0.0, roundToUnit(2.4, 5))
	assert.Equal(t, 42.0, roundToUnit(42.2, 1))
	assert.Equal(t, 42.2, roundToUnit(42.2, 0)) // disabled rounding passes through
}
