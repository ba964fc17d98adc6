package pricing

// Defaults for shipping when not overridden by configuration.
const (
	DefaultFreeShippingThreshold Money = 1000
	DefaultShippingFlatFee       Money = 100
)

// Line describes an order line entering total computation.
type Line struct {
	Qty       int
	UnitPrice Money
}

// Summary aggregates the computed order totals.
type Summary struct {
	Subtotal Money `json:"subtotal"`
	Shipping Money `json:"shipping"`
	Discount Money `json:"discount"`
	Total    Money `json:"total"`
}

// Discount applies a percentage discount to the given base, rounding half-up
// to the nearest rupee. Out-of-range percentages yield zero.
func Discount(base Money, pct int32) Money {
	if base <= 0 || pct < 1 || pct > 100 {
		return 0
	}
	return (base*Money(pct) + 50) / 100
}

// ComputeTotals derives the authoritative order summary. The discount base is
// the full item subtotal, both here and in the quote preview, so the two
// paths cannot drift. Shipping is free above the threshold and a flat fee
// otherwise. The total is floored at zero.
func ComputeTotals(lines []Line, discountPct int32, freeThreshold, flatFee Money) Summary {
	if freeThreshold <= 0 {
		freeThreshold = DefaultFreeShippingThreshold
	}
	if flatFee <= 0 {
		flatFee = DefaultShippingFlatFee
	}
	var subtotal Money
	for _, l := range lines {
		if l.Qty <= 0 || l.UnitPrice <= 0 {
			continue
		}
		subtotal += Money(l.Qty) * l.UnitPrice
	}
	shipping := flatFee
	if subtotal > freeThreshold {
		shipping = 0
	}
	discount := Discount(subtotal, discountPct)
	if discount > subtotal {
		discount = subtotal
	}
	total := subtotal + shipping - discount
	if total < 0 {
		total = 0
	}
	return Summary{
		Subtotal: subtotal,
		Shipping: shipping,
		Discount: discount,
		Total:    total,
	}
}
