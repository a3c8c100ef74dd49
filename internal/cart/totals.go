package cart

// FeeConfig carries the merchant fee settings the totals derive from. The
// percentages come from the merchant profile; the packaging fee applies flat
// and only when the order mode enables it.
type FeeConfig struct {
	TaxPercent           float64 `json:"taxPercent"`
	ServiceChargePercent float64 `json:"serviceChargePercent"`
	PackagingFeeAmount   float64 `json:"packagingFeeAmount"`
	PackagingFeeApplies  bool    `json:"packagingFeeApplies"`
}

type Totals struct {
	Subtotal      float64 `json:"subtotal"`
	Tax           float64 `json:"tax"`
	ServiceCharge float64 `json:"serviceCharge"`
	PackagingFee  float64 `json:"packagingFee"`
	Total         float64 `json:"total"`
}

// ComputeTotals derives the order totals from the cart lines. Arithmetic
// stays in full precision; rounding to the currency's minor unit happens at
// formatting time only. An empty item list yields all zeros. Negative line
// prices are passed through unchanged; the edges that accept prices validate
// them instead.
func ComputeTotals(items []Item, fees FeeConfig) Totals {
	var totals Totals
	if len(items) == 0 {
		return totals
	}
	for _, item := range items {
		qty := float64(item.Quantity)
		lineTotal := item.UnitPrice * qty
		for _, addon := range item.Addons {
			lineTotal += addon.Price * qty
		}
		totals.Subtotal += lineTotal
	}

	if fees.TaxPercent > 0 {
		totals.Tax = totals.Subtotal * fees.TaxPercent / 100
	}
	if fees.ServiceChargePercent > 0 {
		totals.ServiceCharge = totals.Subtotal * fees.ServiceChargePercent / 100
	}
	if fees.PackagingFeeApplies {
		totals.PackagingFee = fees.PackagingFeeAmount
	}

	totals.Total = totals.Subtotal + totals.Tax + totals.ServiceCharge + totals.PackagingFee
	return totals
}
