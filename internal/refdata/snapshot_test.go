package refdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AKI-NANA/ebay-price-solver/internal/pricing"
)

func TestLoadExchangeRateFromEnv(t *testing.T) {
	t.Setenv("FX_RATE", "150")

	rates, err := LoadExchangeRate("does-not-exist.json")
	require.NoError(t, err)

	assert.Equal(t, 150.0, rates.Spot)
	assert.InDelta(t, 145.63, rates.Safe, 0.01, "safety rate is spot discounted by the buffer")
	assert.Less(t, rates.Safe, rates.Spot)
}

func TestLoadExchangeRateRejectsBadEnv(t *testing.T) {
	t.Setenv("FX_RATE", "not-a-number")

	_, err := LoadExchangeRate("does-not-exist.json")
	assert.Error(t, err)
}

func TestLoadExchangeRateFromFile(t *testing.T) {
	t.Setenv("FX_RATE", "")
	path := filepath.Join(t.TempDir(), "rates.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"spot": 149.35, "safetyBuffer": 0.03}`), 0o600))

	rates, err := LoadExchangeRate(path)
	require.NoError(t, err)

	assert.Equal(t, 149.35, rates.Spot)
	assert.InDelta(t, 145.0, rates.Safe, 0.01)
}

func TestLoadExchangeRateMissingEverywhere(t *testing.T) {
	t.Setenv("FX_RATE", "")

	_, err := LoadExchangeRate(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err, "the engine must never run on a guessed rate")
}

func TestLoadExchangeRateRejectsNonPositiveSpot(t *testing.T) {
	t.Setenv("FX_RATE", "")
	path := filepath.Join(t.TempDir(), "rates.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"spot": 0}`), 0o600))

	_, err := LoadExchangeRate(path)
	assert.Error(t, err)
}

func TestResolveMarginPolicy(t *testing.T) {
	p := ResolveMarginPolicy("watches", "US", "used")
	assert.Equal(t, 0.25, p.TargetMargin)

	// Unlisted combination falls back to the default policy.
	p = ResolveMarginPolicy("watches", "DE", "used")
	assert.Equal(t, defaultMarginPolicy, p)
}

func TestSnapshotAssembly(t *testing.T) {
	rates := pricing.ExchangeRateSnapshot{Spot: 150, Safe: 145}

	ref := Snapshot(rates, "cameras", "US", "used")

	assert.Equal(t, rates, ref.Rates)
	assert.Equal(t, 0.20, ref.Margin.TargetMargin)
	assert.NotEmpty(t, ref.Policy.Zones)
	assert.Equal(t, 5.0, ref.Solver.RoundingUnit)
	assert.Equal(t, 0.10, ref.Tax.Rate)
}

// Guard the built-in tables against obviously broken edits.
func TestDefaultTablesSane(t *testing.T) {
	for _, z := range DefaultPolicy.Zones {
		assert.NotEmpty(t, z.Countries, "zone %s has no countries", z.Name)
		assert.Greater(t, z.ActualCost, 0.0, "zone %s", z.Name)
		assert.Greater(t, z.MaxWeightKg, z.MinWeightKg, "zone %s", z.Name)
	}

	assert.Greater(t, DefaultTariffs.DefaultRate, 0.0,
		"unclassified fallback must overestimate, never zero")
	assert.Greater(t, DefaultCategoryFees.Default.FVFRate, 0.0)
	assert.Greater(t, DefaultCategoryFees.Default.InsertionFee, 0.0)

	// The whole-snapshot path must produce a priceable default scenario.
	ref := Snapshot(pricing.ExchangeRateSnapshot{Spot: 150, Safe: 145}, "watches", "US", "used")
	result := pricing.Calculate(pricing.CostInputs{
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
		SellerTier:     pricing.TierStandard,
	}, ref)
	require.True(t, result.Success, "default tables failed: %s %s", result.Error, result.Message)
	assert.Greater(t, result.ProductPrice, 0.0)
}
