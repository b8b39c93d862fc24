package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefundSourceExtraction(t *testing.T) {
	tax := ConsumptionTax{Rate: 0.10}

	// 15000 tax-inclusive at 10%: the tax component is 15000/11
	assert.InDelta(t, 1363.636, tax.refundSource(15000, 0), 0.001)
	assert.InDelta(t, 1454.545, tax.refundSource(15000, 1000), 0.001)
}

func TestRefundSourceZeroRate(t *testing.T) {
	tax := ConsumptionTax{}

	assert.Equal(t, 0.0, tax.refundSource(15000, 1000))
}

func TestCheckMarginPasses(t *testing.T) {
	p := MarginPolicy{TargetMargin: 0.20, MinMargin: 0.10, MinProfitAmount: 5.00}

	assert.Nil(t, p.checkMargin(37.88, 0.194))
	assert.Nil(t, p.checkMargin(5.00, 0.10), "floors are inclusive")
}

func TestCheckMarginFailsOnLowMargin(t *testing.T) {
	p := MarginPolicy{TargetMargin: 0.20, MinMargin: 0.10, MinProfitAmount: 5.00}

	diag := p.checkMargin(50.0, 0.05)
	require.NotNil(t, diag)
	assert.Equal(t, 0.05, diag.AchievedMargin)
	assert.Equal(t, 0.10, diag.RequiredMargin)
}

func TestCheckMarginFailsOnLowProfit(t *testing.T) {
	p := MarginPolicy{TargetMargin: 0.20, MinMargin: 0.10, MinProfitAmount: 5.00}

	// Margin clears the floor but the absolute profit does not.
	diag := p.checkMargin(2.00, 0.25)
	require.NotNil(t, diag)
	assert.Equal(t, 2.00, diag.AchievedProfit)
	assert.Equal(t, 5.00, diag.RequiredProfit)
}
