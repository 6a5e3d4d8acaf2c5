package menu

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Renderer formats menu sections as a Slack message.
type Renderer struct {
	Discount Discount
}

// NewRenderer returns a renderer applying d to every price.
func NewRenderer(d Discount) *Renderer {
	return &Renderer{Discount: d}
}

// Render emits, per section: the bold name, the entree, the optional
// ingredients and macros, and the struck-through original prices followed
// by the discounted ones. Each section ends with a blank line.
func (r *Renderer) Render(sections []MenuSection) string {
	var lines []string
	for _, s := range sections {
		lines = append(lines, "*"+s.Name+"*")
		lines = append(lines, s.Entree)
		if s.Ingredients != nil && *s.Ingredients != "" {
			lines = append(lines, *s.Ingredients)
		}
		if s.Macros != nil && *s.Macros != "" {
			lines = append(lines, *s.Macros)
		}
		discounted := r.Discount.ApplyAll(s.Prices)
		lines = append(lines, "~"+FormatPrices(s.Prices)+"~ "+FormatPrices(discounted))
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// FormatPrices joins tokens with "/".
func FormatPrices(tokens []PriceToken) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = FormatPrice(t)
	}
	return strings.Join(parts, "/")
}

// FormatPrice renders numeric tokens as dollars with thousands separators
// and two decimals ("$1,234.50"). Cents are rounded from the exact binary
// value, so 0.995 renders as "$0.99". Text tokens are returned as is.
func FormatPrice(t PriceToken) string {
	if !t.IsNumeric() {
		return t.Raw
	}
	sign, v := "", t.Value
	if v < 0 {
		sign, v = "-", -v
	}
	whole, cents, _ := strings.Cut(strconv.FormatFloat(v, 'f', 2, 64), ".")
	n, ok := new(big.Int).SetString(whole, 10)
	if !ok {
		return sign + "$" + whole + "." + cents
	}
	return sign + "$" + humanize.BigComma(n) + "." + cents
}
