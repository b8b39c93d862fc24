package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bandedPolicy() ShippingPolicy {
	return ShippingPolicy{
		Name: "banded",
		Zones: []ShippingZone{
			{Name: "light", Countries: []string{"US"}, ActualCost: 12, MinWeightKg: 0, MaxWeightKg: 2},
			{Name: "standard", Countries: []string{"US"}, ActualCost: 24, MinWeightKg: 2, MaxWeightKg: 5},
			{Name: "heavy", Countries: []string{"US"}, ActualCost: 48, MinWeightKg: 5, MaxWeightKg: 20},
		},
	}
}

func TestResolveZoneSelectsBand(t *testing.T) {
	p := bandedPolicy()

	zone, ambiguous, err := p.resolveZone("US", 1.0, 100)
	require.NoError(t, err)
	assert.False(t, ambiguous)
	assert.Equal(t, "light", zone.Name)

	zone, _, err = p.resolveZone("US", 4.8, 100)
	require.NoError(t, err)
	assert.Equal(t, "standard", zone.Name)
}

func TestResolveZoneUpperBoundInclusive(t *testing.T) {
	p := bandedPolicy()

	// A weight exactly on a band's upper bound belongs to that band.
	zone, _, err := p.resolveZone("US", 2.0, 100)
	require.NoError(t, err)
	assert.Equal(t, "light", zone.Name)

	zone, _, err = p.resolveZone("US", 20.0, 100)
	require.NoError(t, err)
	assert.Equal(t, "heavy", zone.Name)
}

func TestResolveZoneAboveAllBands(t *testing.T) {
	p := bandedPolicy()

	_, _, err := p.resolveZone("US", 21.0, 100)
	assert.Error(t, err)
}

func TestResolveZoneUnknownCountry(t *testing.T) {
	p := bandedPolicy()

	_, _, err := p.resolveZone("BR", 1.0, 100)
	assert.Error(t, err)
}

func TestResolveZonePriceBand(t *testing.T) {
	p := ShippingPolicy{
		Zones: []ShippingZone{
			{Name: "cheap", Countries: []string{"US"}, MinWeightKg: 0, MaxWeightKg: 20, MinPrice: 0, MaxPrice: 100},
			{Name: "dear", Countries: []string{"US"}, MinWeightKg: 0, MaxWeightKg: 20, MinPrice: 100.01},
		},
	}

	zone, _, err := p.resolveZone("US", 1.0, 50)
	require.NoError(t, err)
	assert.Equal(t, "cheap", zone.Name)

	zone, _, err = p.resolveZone("US", 1.0, 500)
	require.NoError(t, err)
	assert.Equal(t, "dear", zone.Name)
}

func TestResolveZoneTieBreakTightestBand(t *testing.T) {
	p := ShippingPolicy{
		Zones: []ShippingZone{
			{Name: "wide", Countries: []string{"US"}, MinWeightKg: 0, MaxWeightKg: 20},
			{Name: "tight", Countries: []string{"US"}, MinWeightKg: 0, MaxWeightKg: 2},
		},
	}

	zone, ambiguous, err := p.resolveZone("US", 1.0, 100)
	require.NoError(t, err)
	assert.True(t, ambiguous)
	assert.Equal(t, "tight", zone.Name)

	// Order independence: same winner with the zones swapped.
	p.Zones[0], p.Zones[1] = p.Zones[1], p.Zones[0]
	zone, ambiguous, err = p.resolveZone("US", 1.0, 100)
	require.NoError(t, err)
	assert.True(t, ambiguous)
	assert.Equal(t, "tight", zone.Name)
}

func TestZoneHandlingByMode(t *testing.T) {
	z := ShippingZone{Mode: ModeDDU, HandlingDDP: 4, HandlingDDU: 2}
	assert.Equal(t, 2.0, z.Handling())

	z.Mode = ModeDDP
	assert.Equal(t, 4.0, z.Handling())
}
