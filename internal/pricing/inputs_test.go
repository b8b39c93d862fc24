package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInputs() CostInputs {
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
		SellerTier:     TierStandard,
	}
}

func TestNormalizeVolumetricWeight(t *testing.T) {
	norm, err := normalize(validInputs())
	require.NoError(t, err)

	assert.Equal(t, 4.8, norm.VolumetricWeight)
	assert.Equal(t, 4.8, norm.EffectiveWeight, "volumetric exceeds actual 1.0 kg")
}

func TestNormalizeActualWeightWins(t *testing.T) {
	in := validInputs()
	in.ActualWeightKg = 6.0

	norm, err := normalize(in)
	require.NoError(t, err)

	assert.Equal(t, 6.0, norm.EffectiveWeight)
	assert.Equal(t, 4.8, norm.VolumetricWeight)
}

func TestNormalizeWeightMonotonicity(t *testing.T) {
	in := validInputs()
	prev := 0.0
	for _, w := range []float64{0.5, 1.0, 4.8, 5.0, 10.0} {
		in.ActualWeightKg = w
		norm, err := normalize(in)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, norm.EffectiveWeight, prev,
			"effective weight must not decrease as actual weight grows")
		prev = norm.EffectiveWeight
	}
}

func TestNormalizeRejectsBadInputs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CostInputs)
	}{
		{"zero cost", func(in *CostInputs) { in.SourceCost = 0 }},
		{"negative cost", func(in *CostInputs) { in.SourceCost = -100 }},
		{"zero weight", func(in *CostInputs) { in.ActualWeightKg = 0 }},
		{"zero length", func(in *CostInputs) { in.LengthCm = 0 }},
		{"negative width", func(in *CostInputs) { in.WidthCm = -5 }},
		{"zero height", func(in *CostInputs) { in.HeightCm = 0 }},
		{"negative refundable fees", func(in *CostInputs) { in.RefundableFees = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInputs()
			tt.mutate(&in)
			_, err := normalize(in)
			assert.Error(t, err)
		})
	}
}
