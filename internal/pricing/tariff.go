package pricing

// TariffClassification is one HS-code entry of the duty table.
type TariffClassification struct {
	Code           string  `json:"code"`
	BaseRate       float64 `json:"baseRate"`
	SurchargeFlag  bool    `json:"surchargeFlag"` // trade-program surcharge applies to this code
	SurchargeRate  float64 `json:"surchargeRate"`
	Description    string  `json:"description"`
}

// TariffTable maps HS codes to duty rates for one destination.
type TariffTable struct {
	Classifications map[string]TariffClassification `json:"classifications"`
	// SurchargeOrigin is the origin country that triggers the punitive
	// trade-program surcharge on flagged classifications.
	SurchargeOrigin string `json:"surchargeOrigin"`
	// DefaultRate is the conservative duty rate applied to unclassified
	// codes. Deliberately high: overestimating duty beats stalling the
	// calculation on missing reference data.
	DefaultRate float64 `json:"defaultRate"`
}

// tariffResult is the resolved duty rate for one calculation.
type tariffResult struct {
	Rate             float64
	Description      string
	SurchargeApplied bool
	Fallback         bool
}

// resolveTariff computes the applicable duty rate. An unknown classification
// is non-fatal: it falls back to the table's conservative default and is
// marked "unclassified" so the audit trail surfaces it.
func (t TariffTable) resolveTariff(code, origin string) tariffResult {
	cls, ok := t.Classifications[code]
	if !ok {
		return tariffResult{
			Rate:        t.DefaultRate,
			Description: "unclassified",
			Fallback:    true,
		}
	}

	rate := cls.BaseRate
	surcharge := cls.SurchargeFlag && origin == t.SurchargeOrigin
	if surcharge {
		rate += cls.SurchargeRate
	}
	return tariffResult{
		Rate:             rate,
		Description:      cls.Description,
		SurchargeApplied: surcharge,
	}
}
