package menu

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// PriceKind tags a PriceToken.
type PriceKind int

const (
	PriceNumeric PriceKind = iota
	PriceText
)

// PriceToken is a single entry of a slash-separated price list. Numeric
// tokens carry Value; text tokens (e.g. "MKT") carry Raw.
type PriceToken struct {
	Kind  PriceKind
	Value float64
	Raw   string
}

// NumericPrice returns a numeric token.
func NumericPrice(v float64) PriceToken {
	return PriceToken{Kind: PriceNumeric, Value: v}
}

// TextPrice returns an opaque text token.
func TextPrice(raw string) PriceToken {
	return PriceToken{Kind: PriceText, Raw: raw}
}

// IsNumeric reports whether t holds an amount.
func (t PriceToken) IsNumeric() bool {
	return t.Kind == PriceNumeric
}

func (t PriceToken) MarshalJSON() ([]byte, error) {
	if t.IsNumeric() {
		return json.Marshal(t.Value)
	}
	return json.Marshal(t.Raw)
}

// ParsePrices splits s on "/" and parses each part as a float. Parts that
// are not numbers are kept verbatim as text tokens.
func ParsePrices(s string) []PriceToken {
	parts := strings.Split(s, "/")
	tokens := make([]PriceToken, 0, len(parts))
	for _, part := range parts {
		tokens = append(tokens, parsePrice(part))
	}
	return tokens
}

func parsePrice(part string) PriceToken {
	v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return TextPrice(part)
	}
	return NumericPrice(v)
}
