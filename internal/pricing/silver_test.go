package pricing

import (
	"math"
	"testing"
)

func TestQuoteSilverBreakdown(t *testing.T) {
	// 10g at 80/g with 15% making: 800 + 120 = 920, GST 27.6 -> 28, total 948.
	q := QuoteSilver(10, 80, 15)
	if q.SilverValue != 800 {
		t.Fatalf("silver value: expected 800, got %d", q.SilverValue)
	}
	if q.MakingCost != 120 {
		t.Fatalf("making cost: expected 120, got %d", q.MakingCost)
	}
	if q.GST != 28 {
		t.Fatalf("gst: expected 28, got %d", q.GST)
	}
	if q.FinalPrice != 948 {
		t.Fatalf("final price: expected 948, got %d", q.FinalPrice)
	}
}

func TestQuoteSilverDegenerateInputs(t *testing.T) {
	cases := []struct {
		name   string
		weight float64
		rate   float64
		making float64
	}{
		{"zero weight", 0, 80, 15},
		{"zero rate", 10, 0, 15},
		{"negative weight", -3, 80, 15},
		{"negative rate", 10, -80, 15},
		{"nan weight", math.NaN(), 80, 15},
		{"nan rate", 10, math.NaN(), 15},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := QuoteSilver(tc.weight, tc.rate, tc.making)
			if q != (Quote{}) {
				t.Fatalf("expected zero quote, got %+v", q)
			}
		})
	}
}

func TestQuoteSilverClampsMakingPct(t *testing.T) {
	base := QuoteSilver(10, 80, 0)
	if got := QuoteSilver(10, 80, -25); got != base {
		t.Fatalf("negative making pct should behave as zero: %+v vs %+v", got, base)
	}
	if got := QuoteSilver(10, 80, math.NaN()); got != base {
		t.Fatalf("NaN making pct should behave as zero: %+v vs %+v", got, base)
	}
}

func TestQuoteSilverMatchesClosedForm(t *testing.T) {
	cases := []struct {
		weight, rate, making float64
	}{
		{1, 1, 0},
		{2.5, 73.4, 12},
		{10, 80, 15},
		{0.3, 95.05, 8.5},
		{125, 82, 20},
	}
	for _, tc := range cases {
		q := QuoteSilver(tc.weight, tc.rate, tc.making)
		want := Money(math.Floor(tc.weight*tc.rate*(1+tc.making/100)*(1+GSTRate) + 0.5))
		if q.FinalPrice != want {
			t.Fatalf("QuoteSilver(%v,%v,%v) = %d, want %d", tc.weight, tc.rate, tc.making, q.FinalPrice, want)
		}
	}
}

func TestQuoteSilverIsPure(t *testing.T) {
	first := QuoteSilver(7.25, 81.3, 18)
	second := QuoteSilver(7.25, 81.3, 18)
	if first != second {
		t.Fatalf("identical inputs produced different quotes: %+v vs %+v", first, second)
	}
}

func TestQuoteSilverHalfUpRounding(t *testing.T) {
	// 5g at 10/g, no making: subtotal 50, GST 1.5 must round up to 2.
	q := QuoteSilver(5, 10, 0)
	if q.GST != 2 {
		t.Fatalf("expected half-up GST of 2, got %d", q.GST)
	}
	if q.FinalPrice != 52 {
		t.Fatalf("expected final price 52, got %d", q.FinalPrice)
	}
}
