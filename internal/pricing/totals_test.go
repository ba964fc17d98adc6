package pricing

import "testing"

func TestComputeTotalsShippingThreshold(t *testing.T) {
	// At exactly the threshold the flat fee still applies; only above is free.
	atThreshold := ComputeTotals([]Line{{Qty: 1, UnitPrice: 1000}}, 0, 0, 0)
	if atThreshold.Shipping != DefaultShippingFlatFee {
		t.Fatalf("expected flat fee at threshold, got %d", atThreshold.Shipping)
	}
	above := ComputeTotals([]Line{{Qty: 1, UnitPrice: 1001}}, 0, 0, 0)
	if above.Shipping != 0 {
		t.Fatalf("expected free shipping above threshold, got %d", above.Shipping)
	}
	if above.Total != 1001 {
		t.Fatalf("expected total 1001, got %d", above.Total)
	}
}

func TestComputeTotalsDiscountSingleApplication(t *testing.T) {
	// 10% off a 1000 subtotal is exactly 100, applied once.
	s := ComputeTotals([]Line{{Qty: 2, UnitPrice: 500}}, 10, 0, 0)
	if s.Subtotal != 1000 {
		t.Fatalf("expected subtotal 1000, got %d", s.Subtotal)
	}
	if s.Discount != 100 {
		t.Fatalf("expected discount 100, got %d", s.Discount)
	}
	if s.Total != s.Subtotal+s.Shipping-s.Discount {
		t.Fatalf("total invariant broken: %+v", s)
	}
}

func TestComputeTotalsDiscountRounding(t *testing.T) {
	// 15% of 333 is 49.95, rounded half-up to 50.
	s := ComputeTotals([]Line{{Qty: 1, UnitPrice: 333}}, 15, 0, 0)
	if s.Discount != 50 {
		t.Fatalf("expected discount 50, got %d", s.Discount)
	}
}

func TestComputeTotalsFlooredAtZero(t *testing.T) {
	s := ComputeTotals(nil, 100, 0, 0)
	if s.Total != DefaultShippingFlatFee {
		t.Fatalf("empty cart pays shipping only, got %d", s.Total)
	}
	full := ComputeTotals([]Line{{Qty: 1, UnitPrice: 50}}, 100, 0, 0)
	if full.Discount != 50 {
		t.Fatalf("expected discount clamped to subtotal, got %d", full.Discount)
	}
	if full.Total != full.Shipping {
		t.Fatalf("expected total of shipping only, got %d", full.Total)
	}
	if full.Total < 0 {
		t.Fatal("total must never be negative")
	}
}

func TestComputeTotalsIgnoresInvalidLines(t *testing.T) {
	s := ComputeTotals([]Line{
		{Qty: 0, UnitPrice: 500},
		{Qty: -2, UnitPrice: 500},
		{Qty: 3, UnitPrice: 200},
	}, 0, 0, 0)
	if s.Subtotal != 600 {
		t.Fatalf("expected subtotal 600, got %d", s.Subtotal)
	}
}

func TestDiscountRange(t *testing.T) {
	if Discount(1000, 0) != 0 {
		t.Fatal("zero percent must not discount")
	}
	if Discount(1000, 101) != 0 {
		t.Fatal("out-of-range percent must not discount")
	}
	if Discount(0, 10) != 0 {
		t.Fatal("zero base must not discount")
	}
	if got := Discount(1000, 100); got != 1000 {
		t.Fatalf("expected full discount, got %d", got)
	}
}
