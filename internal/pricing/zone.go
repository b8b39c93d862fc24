package pricing

import "fmt"

// DeliveryMode says who pays destination-country import duty.
type DeliveryMode string

const (
	// ModeDDP (delivered duty paid): the seller prepays duty, and the
	// marketplace charges a DDP service fee on top.
	ModeDDP DeliveryMode = "DDP"
	// ModeDDU (delivered duty unpaid): the buyer settles duty on arrival.
	ModeDDU DeliveryMode = "DDU"
)

// ShippingZone is one row of a shipping policy: the carrier cost and the
// buyer-facing display figures valid for a destination and a weight/price band.
type ShippingZone struct {
	Name            string       `json:"name"`
	Countries       []string     `json:"countries"`
	Mode            DeliveryMode `json:"mode"`
	ActualCost      float64      `json:"actualCost"`      // settlement currency, what the carrier charges us
	DisplayShipping float64      `json:"displayShipping"` // shown to the buyer
	HandlingDDP     float64      `json:"handlingDDP"`
	HandlingDDU     float64      `json:"handlingDDU"`
	MinWeightKg     float64      `json:"minWeightKg"` // exclusive; 0 for the first band
	MaxWeightKg     float64      `json:"maxWeightKg"` // inclusive
	MinPrice        float64      `json:"minPrice"`    // settlement currency band, inclusive
	MaxPrice        float64      `json:"maxPrice"`    // 0 = unbounded
}

// Handling returns the buyer-facing handling figure for the zone's mode.
func (z ShippingZone) Handling() float64 {
	if z.Mode == ModeDDP {
		return z.HandlingDDP
	}
	return z.HandlingDDU
}

func (z ShippingZone) weightBandWidth() float64 {
	return z.MaxWeightKg - z.MinWeightKg
}

func (z ShippingZone) matches(country string, weightKg, estimatedPrice float64) bool {
	found := false
	for _, c := range z.Countries {
		if c == country {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	if weightKg <= z.MinWeightKg || weightKg > z.MaxWeightKg {
		return false
	}
	if estimatedPrice < z.MinPrice {
		return false
	}
	if z.MaxPrice > 0 && estimatedPrice > z.MaxPrice {
		return false
	}
	return true
}

// ShippingPolicy is the immutable set of zones in force for one calculation.
type ShippingPolicy struct {
	Name  string         `json:"name"`
	Zones []ShippingZone `json:"zones"`
}

// resolveZone returns the single zone covering (country, weight, estimated
// price). When overlapping bands match (an upstream configuration error), the
// zone with the tightest weight band wins, deterministically; the caller
// records that choice in the audit trail.
func (p ShippingPolicy) resolveZone(country string, weightKg, estimatedPrice float64) (ShippingZone, bool, error) {
	var best ShippingZone
	matched := 0
	for _, z := range p.Zones {
		if !z.matches(country, weightKg, estimatedPrice) {
			continue
		}
		matched++
		if matched == 1 || z.weightBandWidth() < best.weightBandWidth() {
			best = z
		}
	}
	if matched == 0 {
		return ShippingZone{}, false, fmt.Errorf("no zone covers destination %s at %.2f kg / %.2f estimated price",
			country, weightKg, estimatedPrice)
	}
	return best, matched > 1, nil
}
