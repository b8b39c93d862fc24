package pricing

import "fmt"

// SellerTier is the marketplace subscription level; it grants a discount on
// the final-value-fee rate.
type SellerTier string

const (
	TierStandard      SellerTier = "standard"
	TierAboveStandard SellerTier = "above_standard"
	TierTopRated      SellerTier = "top_rated"
)

// VolumetricDivisor is the industry-standard cm³-to-kg divisor. Kept as a
// named constant so it can be overridden per carrier later.
const VolumetricDivisor = 5000.0

// CostInputs are the raw per-item parameters supplied by the operator.
// The engine never mutates them.
type CostInputs struct {
	SourceCost     float64    `json:"sourceCost"` // source currency, e.g. JPY
	ActualWeightKg float64    `json:"actualWeightKg"`
	LengthCm       float64    `json:"lengthCm"`
	WidthCm        float64    `json:"widthCm"`
	HeightCm       float64    `json:"heightCm"`
	Destination    string     `json:"destination"` // ISO country code
	Origin         string     `json:"origin"`
	TariffCode     string     `json:"tariffCode"` // HS classification
	Category       string     `json:"category"`
	Condition      string     `json:"condition"`
	SellerTier     SellerTier `json:"sellerTier"`
	RefundableFees float64    `json:"refundableFees"` // source currency, tax-refund eligible
}

// normalizedInputs carries the derived weights used by zone resolution.
type normalizedInputs struct {
	VolumetricWeight float64
	EffectiveWeight  float64
}

// normalize validates the raw inputs and computes volumetric and effective
// weight. Carriers charge on whichever of actual and volumetric weight is
// larger.
func normalize(in CostInputs) (normalizedInputs, error) {
	if in.SourceCost <= 0 {
		return normalizedInputs{}, fmt.Errorf("source cost must be positive, got %.2f", in.SourceCost)
	}
	if in.ActualWeightKg <= 0 {
		return normalizedInputs{}, fmt.Errorf("actual weight must be positive, got %.3f", in.ActualWeightKg)
	}
	if in.LengthCm <= 0 || in.WidthCm <= 0 || in.HeightCm <= 0 {
		return normalizedInputs{}, fmt.Errorf("dimensions must be positive, got %.1fx%.1fx%.1f",
			in.LengthCm, in.WidthCm, in.HeightCm)
	}
	if in.RefundableFees < 0 {
		return normalizedInputs{}, fmt.Errorf("refundable fees must not be negative, got %.2f", in.RefundableFees)
	}

	volumetric := in.LengthCm * in.WidthCm * in.HeightCm / VolumetricDivisor
	effective := in.ActualWeightKg
	if volumetric > effective {
		effective = volumetric
	}

	return normalizedInputs{
		VolumetricWeight: volumetric,
		EffectiveWeight:  effective,
	}, nil
}
