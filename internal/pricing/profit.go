package pricing

// MarginPolicy is the margin the solver aims for plus the hard floors a
// result must clear. Resolved per (category, destination, condition).
type MarginPolicy struct {
	TargetMargin    float64 `json:"targetMargin"`    // fraction of total revenue
	MinMargin       float64 `json:"minMargin"`       // hard floor, fraction
	MinProfitAmount float64 `json:"minProfitAmount"` // hard floor, settlement currency
}

// ConsumptionTax parameterizes the export tax-refund scenario.
type ConsumptionTax struct {
	Rate float64 `json:"rate"` // e.g. 0.10 for Japanese consumption tax
}

// refundSource extracts the recoverable consumption tax from the
// tax-inclusive gross of sourcing cost plus refund-eligible fees
// (reverse-VAT extraction), in source currency.
func (t ConsumptionTax) refundSource(sourceCost, refundableFees float64) float64 {
	if t.Rate <= 0 {
		return 0
	}
	return (sourceCost + refundableFees) * t.Rate / (1 + t.Rate)
}

// checkMargin gates on the no-refund scenario only. The refund is a
// tax-timing benefit, not guaranteed margin, so it must never rescue a
// calculation that fails the floor without it.
func (p MarginPolicy) checkMargin(profit, margin float64) *MarginDiagnostics {
	if margin < p.MinMargin || profit < p.MinProfitAmount {
		return &MarginDiagnostics{
			AchievedMargin: margin,
			RequiredMargin: p.MinMargin,
			AchievedProfit: profit,
			RequiredProfit: p.MinProfitAmount,
		}
	}
	return nil
}
