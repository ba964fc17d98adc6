package pricing

import "math"

// Money represents a monetary value in whole rupees.
type Money = int64

// GSTRate is the fixed tax applied on top of silver value plus making cost.
const GSTRate = 0.03

// Quote is the chargeable unit price for a weighed product with its itemised
// breakdown. Components are rounded independently for display, so their sum
// may differ from FinalPrice by a rupee; FinalPrice is the amount charged.
type Quote struct {
	SilverValue Money `json:"silverValue"`
	MakingCost  Money `json:"makingCost"`
	GST         Money `json:"gst"`
	FinalPrice  Money `json:"finalPrice"`
}

// QuoteSilver derives the unit price of a silver product from its weight in
// grams, the live market rate per gram and the making-charge percentage.
// Non-positive or NaN weight/rate yields the zero quote; this is the defined
// degenerate case, not an error. Negative or NaN making percentages are
// clamped to zero.
func QuoteSilver(weightGrams, ratePerGram, makingPct float64) Quote {
	if !(weightGrams > 0) || !(ratePerGram > 0) {
		return Quote{}
	}
	if makingPct < 0 || math.IsNaN(makingPct) {
		makingPct = 0
	}
	silverValue := weightGrams * ratePerGram
	makingCost := silverValue * makingPct / 100
	subTotal := silverValue + makingCost
	gst := subTotal * GSTRate
	return Quote{
		SilverValue: roundRupees(silverValue),
		MakingCost:  roundRupees(makingCost),
		GST:         roundRupees(gst),
		FinalPrice:  roundRupees(subTotal + gst),
	}
}

// roundRupees rounds half-up to the nearest whole rupee, clamping
// non-finite and negative inputs to zero.
func roundRupees(v float64) Money {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return Money(math.Floor(v + 0.5))
}
