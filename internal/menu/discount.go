package menu

import (
	"fmt"
	"math"
)

// DefaultRate is the multiplier applied to numeric prices (40% off).
const DefaultRate = 0.6

const discountSuffix = " (minus discount)"

// Discount maps a price to its discounted counterpart.
type Discount struct {
	Rate float64
}

// NewDiscount validates rate, which must satisfy 0 < rate <= 1.
func NewDiscount(rate float64) (Discount, error) {
	if math.IsNaN(rate) || rate <= 0 || rate > 1 {
		return Discount{}, fmt.Errorf("discount rate must be in (0, 1], got %v", rate)
	}
	return Discount{Rate: rate}, nil
}

// Apply discounts a single token. Numeric values are rounded to cents,
// half away from zero. Text tokens cannot be discounted and are annotated.
func (d Discount) Apply(t PriceToken) PriceToken {
	if t.IsNumeric() {
		return NumericPrice(roundCents(t.Value * d.Rate))
	}
	return TextPrice(t.Raw + discountSuffix)
}

// ApplyAll discounts every token, preserving order.
func (d Discount) ApplyAll(tokens []PriceToken) []PriceToken {
	out := make([]PriceToken, len(tokens))
	for i, t := range tokens {
		out[i] = d.Apply(t)
	}
	return out
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
