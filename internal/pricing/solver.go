package pricing

import (
	"fmt"
	"math"
)

// ExchangeRateSnapshot is a read-only spot/safety rate pair between the
// source currency and the settlement currency (units of source currency per
// settlement unit). The safety rate carries a conservative buffer and is the
// one all cost conversions use.
type ExchangeRateSnapshot struct {
	Spot float64 `json:"spot"`
	Safe float64 `json:"safe"`
}

func (r ExchangeRateSnapshot) valid() bool {
	return r.Spot > 0 && r.Safe > 0
}

// SolverConfig holds the price-shaping constants.
type SolverConfig struct {
	// RoundingUnit is the increment the listing price is rounded to.
	// The marketplace convention is 5 settlement-currency units.
	RoundingUnit float64 `json:"roundingUnit"`
	// EstimatedPriceMultiplier scales the converted cost into the rough
	// price used for zone band selection only, never for the final price.
	EstimatedPriceMultiplier float64 `json:"estimatedPriceMultiplier"`
}

// RefData bundles the immutable reference-data snapshot one calculation runs
// against. The engine never refreshes any of it mid-calculation; snapshot
// lifecycle belongs to the caller.
type RefData struct {
	Policy  ShippingPolicy       `json:"policy"`
	Margin  MarginPolicy         `json:"margin"`
	Fees    CategoryFeeTable     `json:"fees"`
	Rates   ExchangeRateSnapshot `json:"rates"`
	Tariffs TariffTable          `json:"tariffs"`
	FeeCfg  FeeConfig            `json:"feeConfig"`
	Solver  SolverConfig         `json:"solver"`
	Tax     ConsumptionTax       `json:"tax"`
}

// roundToUnit rounds to the nearest multiple of unit.
func roundToUnit(v, unit float64) float64 {
	if unit <= 0 {
		return v
	}
	return math.Round(v/unit) * unit
}

// round2 rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func failure(kind ErrorKind, msg string, trail *auditTrail) *CalculationResult {
	return &CalculationResult{
		Success:    false,
		Error:      kind,
		Message:    msg,
		AuditTrail: trail.steps,
	}
}

// Calculate reverse-solves the listing price that nets the target margin on
// total buyer revenue after marketplace fees, customs duty and remittance
// provisions. It is a pure function of its arguments: no state survives the
// call and it is safe for concurrent use.
func Calculate(inputs CostInputs, ref RefData) *CalculationResult {
	trail := &auditTrail{}

	if !ref.Rates.valid() {
		return failure(ErrInvalidInput, "exchange rates must be positive", trail)
	}

	norm, err := normalize(inputs)
	if err != nil {
		return failure(ErrInvalidInput, err.Error(), trail)
	}
	trail.add("volumetric weight", "%.1f x %.1f x %.1f / %.0f",
		[]any{inputs.LengthCm, inputs.WidthCm, inputs.HeightCm, VolumetricDivisor},
		norm.VolumetricWeight)
	trail.add("effective weight", "max(%.3f, %.3f)",
		[]any{inputs.ActualWeightKg, norm.VolumetricWeight},
		norm.EffectiveWeight)

	costSettlement := inputs.SourceCost / ref.Rates.Safe
	trail.add("cost in settlement currency", "%.0f / %.2f",
		[]any{inputs.SourceCost, ref.Rates.Safe}, costSettlement)

	// Rough price for zone band selection only; the real price comes from
	// the solver below.
	estimatedPrice := costSettlement * ref.Solver.EstimatedPriceMultiplier
	trail.add("estimated price (band selection)", "%.2f x %.2f",
		[]any{costSettlement, ref.Solver.EstimatedPriceMultiplier}, estimatedPrice)

	zone, ambiguous, err := ref.Policy.resolveZone(inputs.Destination, norm.EffectiveWeight, estimatedPrice)
	if err != nil {
		return failure(ErrNoMatchingShippingPolicy, err.Error(), trail)
	}
	if ambiguous {
		trail.note("zone tie-break", fmt.Sprintf(
			"multiple zones matched; picked %q with the tightest weight band", zone.Name))
	}
	trail.add("zone actual shipping cost", "zone %q (%s)",
		[]any{zone.Name, zone.Mode}, zone.ActualCost)

	tariff := ref.Tariffs.resolveTariff(inputs.TariffCode, inputs.Origin)
	if tariff.Fallback {
		trail.note("tariff fallback", fmt.Sprintf(
			"code %q not classified; conservative default rate %.2f applied", inputs.TariffCode, tariff.Rate))
	}
	if tariff.SurchargeApplied {
		trail.note("tariff surcharge", fmt.Sprintf(
			"trade-program surcharge applied for origin %s", inputs.Origin))
	}

	cifPrice := costSettlement + zone.ActualCost
	trail.add("CIF price", "%.2f + %.2f", []any{costSettlement, zone.ActualCost}, cifPrice)

	duty := cifPrice * tariff.Rate
	trail.add("customs duty", "%.2f x %.4f", []any{cifPrice, tariff.Rate}, duty)

	ddpFee := ref.FeeCfg.ddpFee(zone.Mode, cifPrice)
	if zone.Mode == ModeDDP {
		trail.add("DDP service fee", "min(%.2f + %.2f x %.4f, %.2f)",
			[]any{ref.FeeCfg.DDPFixedFee, cifPrice, ref.FeeCfg.DDPRate, ref.FeeCfg.DDPCap}, ddpFee)
	}

	feeSchedule, feeFallback := ref.Fees.resolve(inputs.Category)
	if feeFallback {
		trail.note("category fee fallback", fmt.Sprintf(
			"category %q not in fee table; default schedule applied", inputs.Category))
	}

	fvfRate := ref.FeeCfg.effectiveFVFRate(feeSchedule.FVFRate, inputs.SellerTier)
	trail.add("effective FVF rate", "max(0, %.4f - %.4f)",
		[]any{feeSchedule.FVFRate, ref.FeeCfg.TierDiscounts[inputs.SellerTier]}, fvfRate)

	fixedCosts := costSettlement + zone.ActualCost + duty + ddpFee + feeSchedule.InsertionFee
	trail.add("fixed costs", "%.2f + %.2f + %.2f + %.2f + %.2f",
		[]any{costSettlement, zone.ActualCost, duty, ddpFee, feeSchedule.InsertionFee}, fixedCosts)

	variableRate := ref.FeeCfg.variableRate(fvfRate)
	trail.add("variable cost rate", "%.4f + %.4f + %.4f + %.4f",
		[]any{fvfRate, ref.FeeCfg.ProcessingRate, ref.FeeCfg.FXLossRate, ref.FeeCfg.InternationalFeeRate},
		variableRate)

	denominator := 1 - variableRate - ref.Margin.TargetMargin
	trail.add("solver denominator", "1 - %.4f - %.4f",
		[]any{variableRate, ref.Margin.TargetMargin}, denominator)
	if denominator <= 0 {
		res := failure(ErrInsufficientMargin,
			fmt.Sprintf("fee load plus target margin is %.1f%% of revenue; nothing left for costs",
				(variableRate+ref.Margin.TargetMargin)*100), trail)
		res.Diagnostics = &MarginDiagnostics{
			RequiredMargin: ref.Margin.MinMargin,
			RequiredProfit: ref.Margin.MinProfitAmount,
		}
		return res
	}

	requiredRevenue := fixedCosts / denominator
	trail.add("required revenue", "%.2f / %.4f", []any{fixedCosts, denominator}, requiredRevenue)

	displayShipping := zone.DisplayShipping
	displayHandling := zone.Handling()

	rawPrice := requiredRevenue - displayShipping - displayHandling
	trail.add("raw product price", "%.2f - %.2f - %.2f",
		[]any{requiredRevenue, displayShipping, displayHandling}, rawPrice)

	productPrice := roundToUnit(rawPrice, ref.Solver.RoundingUnit)
	trail.add("rounded product price", "round(%.2f, %.0f)",
		[]any{rawPrice, ref.Solver.RoundingUnit}, productPrice)
	if productPrice <= 0 {
		return failure(ErrInvalidInput,
			fmt.Sprintf("rounded product price is %.2f; cost too high for this policy/category", productPrice),
			trail)
	}

	// Rounding perturbed the solver equality, so every downstream figure
	// must come from the recomputed revenue, not requiredRevenue.
	totalRevenue := productPrice + displayShipping + displayHandling
	trail.add("total revenue (recomputed)", "%.2f + %.2f + %.2f",
		[]any{productPrice, displayShipping, displayHandling}, totalRevenue)

	fvfAmount := capFVF(totalRevenue*fvfRate, feeSchedule.FeeCap)
	if feeSchedule.FeeCap > 0 {
		trail.add("final value fee", "min(%.2f x %.4f, %.2f)",
			[]any{totalRevenue, fvfRate, feeSchedule.FeeCap}, fvfAmount)
	} else {
		trail.add("final value fee", "%.2f x %.4f", []any{totalRevenue, fvfRate}, fvfAmount)
	}

	processingFee := totalRevenue * ref.FeeCfg.ProcessingRate
	fxProvision := totalRevenue * ref.FeeCfg.FXLossRate
	internationalFee := totalRevenue * ref.FeeCfg.InternationalFeeRate
	variableCosts := fvfAmount + processingFee + fxProvision + internationalFee
	trail.add("variable costs", "%.2f + %.2f + %.2f + %.2f",
		[]any{fvfAmount, processingFee, fxProvision, internationalFee}, variableCosts)

	totalCosts := fixedCosts + variableCosts
	trail.add("total costs", "%.2f + %.2f", []any{fixedCosts, variableCosts}, totalCosts)

	profitNoRefund := totalRevenue - totalCosts
	profitMargin := profitNoRefund / totalRevenue
	trail.add("profit (no refund)", "%.2f - %.2f", []any{totalRevenue, totalCosts}, profitNoRefund)
	trail.add("profit margin (no refund)", "%.2f / %.2f", []any{profitNoRefund, totalRevenue}, profitMargin)

	if diag := ref.Margin.checkMargin(profitNoRefund, profitMargin); diag != nil {
		res := failure(ErrInsufficientMargin,
			fmt.Sprintf("margin %.1f%% / profit %.2f below policy floor (%.1f%% / %.2f)",
				profitMargin*100, profitNoRefund, ref.Margin.MinMargin*100, ref.Margin.MinProfitAmount),
			trail)
		res.Diagnostics = diag
		return res
	}

	refundSource := ref.Tax.refundSource(inputs.SourceCost, inputs.RefundableFees)
	refundSettlement := refundSource / ref.Rates.Safe
	trail.add("consumption-tax refund", "(%.0f + %.0f) x %.2f / %.2f",
		[]any{inputs.SourceCost, inputs.RefundableFees, ref.Tax.Rate, 1 + ref.Tax.Rate}, refundSource)

	profitWithRefund := profitNoRefund + refundSettlement
	trail.add("profit (with refund)", "%.2f + %.2f", []any{profitNoRefund, refundSettlement}, profitWithRefund)

	return &CalculationResult{
		Success:          true,
		ProductPrice:     productPrice,
		DisplayShipping:  displayShipping,
		DisplayHandling:  displayHandling,
		TotalRevenue:     totalRevenue,
		SearchTotal:      productPrice + displayShipping,
		DeliveryMode:     string(zone.Mode),
		ShippingZoneName: zone.Name,

		ProfitNoRefund:         round2(profitNoRefund),
		ProfitMarginNoRefund:   profitMargin,
		ProfitNoRefundSource:   round2(profitNoRefund * ref.Rates.Safe),
		ProfitWithRefund:       round2(profitWithRefund),
		ProfitWithRefundSource: round2(profitWithRefund * ref.Rates.Safe),
		RefundAmount:           round2(refundSettlement),
		RefundAmountSource:     round2(refundSource),

		EffectiveWeight:  norm.EffectiveWeight,
		VolumetricWeight: norm.VolumetricWeight,

		Fees: FeeBreakdown{
			Duty:              round2(duty),
			DDPFee:            round2(ddpFee),
			InsertionFee:      feeSchedule.InsertionFee,
			FinalValueFee:     round2(fvfAmount),
			ProcessingFee:     round2(processingFee),
			FXLossProvision:   round2(fxProvision),
			InternationalFee:  round2(internationalFee),
			ActualShipping:    zone.ActualCost,
			CostSettlement:    round2(costSettlement),
			FinalValueFeeRate: fvfRate,
		},

		TariffFallback:      tariff.Fallback,
		TariffDescription:   tariff.Description,
		CategoryFeeFallback: feeFallback,

		AuditTrail: trail.steps,
	}
}
