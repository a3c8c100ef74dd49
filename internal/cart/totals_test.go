package cart

import "testing"

func TestComputeTotalsSubtotal(t *testing.T) {
	items := []Item{
		{MenuID: "1", UnitPrice: 15000, Quantity: 2},
		{MenuID: "2", UnitPrice: 8000, Quantity: 3},
	}

	noAddons := ComputeTotals(items, FeeConfig{})
	if noAddons.Subtotal != 54000 {
		t.Fatalf("expected subtotal 54000, got %v", noAddons.Subtotal)
	}

	items[0].Addons = []Addon{{Name: "Extra cheese", Price: 5000}}
	items[1].Addons = []Addon{{Name: "Large", Price: 2000}, {Name: "Spicy", Price: 1000}}

	withAddons := ComputeTotals(items, FeeConfig{})
	// addons add exactly addon.price * quantity per line
	expected := 54000 + 5000*2 + (2000+1000)*3
	if withAddons.Subtotal != float64(expected) {
		t.Fatalf("expected subtotal %d, got %v", expected, withAddons.Subtotal)
	}
}

func TestComputeTotalsZeroFees(t *testing.T) {
	items := []Item{{UnitPrice: 25000, Quantity: 1}}
	totals := ComputeTotals(items, FeeConfig{})
	if totals.Total != totals.Subtotal {
		t.Fatalf("expected total to equal subtotal, got %v vs %v", totals.Total, totals.Subtotal)
	}
	if totals.Tax != 0 || totals.ServiceCharge != 0 || totals.PackagingFee != 0 {
		t.Fatalf("expected zero fees, got %+v", totals)
	}
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(nil, FeeConfig{TaxPercent: 10, ServiceChargePercent: 5, PackagingFeeAmount: 2000, PackagingFeeApplies: true})
	if totals != (Totals{}) {
		t.Fatalf("expected all zeros for empty cart, got %+v", totals)
	}
}

func TestComputeTotalsTakeawayScenario(t *testing.T) {
	items := []Item{
		{
			UnitPrice: 50000,
			Quantity:  2,
			Addons:    []Addon{{Name: "Egg", Price: 5000}},
		},
	}
	fees := FeeConfig{
		TaxPercent:           10,
		ServiceChargePercent: 5,
		PackagingFeeAmount:   2000,
		PackagingFeeApplies:  true,
	}

	totals := ComputeTotals(items, fees)
	if totals.Subtotal != 110000 {
		t.Fatalf("expected subtotal 110000, got %v", totals.Subtotal)
	}
	if totals.Tax != 11000 {
		t.Fatalf("expected tax 11000, got %v", totals.Tax)
	}
	if totals.ServiceCharge != 5500 {
		t.Fatalf("expected service charge 5500, got %v", totals.ServiceCharge)
	}
	if totals.Total != 128500 {
		t.Fatalf("expected total 128500, got %v", totals.Total)
	}
}

func TestComputeTotalsPackagingFeeDisabled(t *testing.T) {
	items := []Item{{UnitPrice: 10000, Quantity: 1}}
	totals := ComputeTotals(items, FeeConfig{PackagingFeeAmount: 2000, PackagingFeeApplies: false})
	if totals.PackagingFee != 0 || totals.Total != 10000 {
		t.Fatalf("expected packaging fee skipped, got %+v", totals)
	}
}
