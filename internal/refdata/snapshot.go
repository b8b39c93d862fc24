package refdata

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/AKI-NANA/ebay-price-solver/internal/pricing"
)

// DefaultSafetyBuffer widens the spot rate so cost conversions stay
// conservative against intraday moves (rates are source units per
// settlement unit, so a weaker safe rate means a higher converted cost).
const DefaultSafetyBuffer = 0.03

// rateFile is the on-disk shape of an exchange-rate snapshot, written by the
// external rate-feed poller.
type rateFile struct {
	Spot         float64 `json:"spot"`
	SafetyBuffer float64 `json:"safetyBuffer"`
}

// LoadExchangeRate builds the rate snapshot for a calculation. Order of
// precedence: the FX_RATE env var, then the snapshot file, then an error —
// the engine must never run on a guessed rate.
func LoadExchangeRate(path string) (pricing.ExchangeRateSnapshot, error) {
	if v := os.Getenv("FX_RATE"); v != "" {
		spot, err := strconv.ParseFloat(v, 64)
		if err != nil || spot <= 0 {
			return pricing.ExchangeRateSnapshot{}, fmt.Errorf("invalid FX_RATE %q", v)
		}
		return withBuffer(spot, DefaultSafetyBuffer), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return pricing.ExchangeRateSnapshot{}, fmt.Errorf("no exchange rate available: %w", err)
	}
	var f rateFile
	if err := json.Unmarshal(data, &f); err != nil {
		return pricing.ExchangeRateSnapshot{}, fmt.Errorf("failed to parse rate snapshot %s: %w", path, err)
	}
	if f.Spot <= 0 {
		return pricing.ExchangeRateSnapshot{}, fmt.Errorf("rate snapshot %s has non-positive spot rate", path)
	}
	buffer := f.SafetyBuffer
	if buffer == 0 {
		buffer = DefaultSafetyBuffer
	}
	return withBuffer(f.Spot, buffer), nil
}

// withBuffer derives the safety rate. Rates are quoted as source currency
// per settlement unit; dividing the spot by (1+buffer) makes each settlement
// unit cost more source currency, which overstates the converted cost.
func withBuffer(spot, buffer float64) pricing.ExchangeRateSnapshot {
	return pricing.ExchangeRateSnapshot{
		Spot: spot,
		Safe: spot / (1 + buffer),
	}
}

// Snapshot assembles the full immutable reference-data bundle for one
// calculation against the built-in tables and the given rates.
func Snapshot(rates pricing.ExchangeRateSnapshot, category, destination, condition string) pricing.RefData {
	return pricing.RefData{
		Policy:  DefaultPolicy,
		Margin:  ResolveMarginPolicy(category, destination, condition),
		Fees:    DefaultCategoryFees,
		Rates:   rates,
		Tariffs: DefaultTariffs,
		FeeCfg:  DefaultFeeConfig,
		Solver:  DefaultSolverConfig,
		Tax:     DefaultTax,
	}
}
