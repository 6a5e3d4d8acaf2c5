package menu

import (
	"strings"
	"testing"
)

func TestRender_EndToEndFourFragmentBlock(t *testing.T) {
	ex, err := Extract(textBlock("Grill", "Burger", "Ingredients: beef, bun", "8.00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	r := NewRenderer(Discount{Rate: DefaultRate})
	got := r.Render(ex.Sections)

	want := strings.Join([]string{"*Grill*", "Burger", "beef, bun", "~$8.00~ $4.80", ""}, "\n")
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_MultipleSections(t *testing.T) {
	sections := []MenuSection{
		{Name: "Grill", Entree: "Burger", Prices: []PriceToken{NumericPrice(8), NumericPrice(10)}},
		{
			Name:        "Deli",
			Entree:      "Club",
			Ingredients: strPtr("turkey"),
			Macros:      strPtr("540 cal"),
			Prices:      []PriceToken{NumericPrice(9.25), TextPrice("MKT")},
		},
	}
	r := NewRenderer(Discount{Rate: DefaultRate})
	got := r.Render(sections)

	want := "*Grill*\nBurger\n~$8.00/$10.00~ $4.80/$6.00\n\n" +
		"*Deli*\nClub\nturkey\n540 cal\n~$9.25/MKT~ $5.55/MKT (minus discount)\n"
	if got != want {
		t.Errorf("expected:\n%q\ngot:\n%q", want, got)
	}
}

func TestRender_OmitsEmptyOptionalFields(t *testing.T) {
	sections := []MenuSection{
		{Name: "Soup", Entree: "Chili", Ingredients: strPtr(""), Prices: []PriceToken{NumericPrice(4)}},
	}
	got := NewRenderer(Discount{Rate: DefaultRate}).Render(sections)
	want := "*Soup*\nChili\n~$4.00~ $2.40\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRender_EmptyInput(t *testing.T) {
	if got := NewRenderer(Discount{Rate: DefaultRate}).Render(nil); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestRender_Deterministic(t *testing.T) {
	frags := []Fragment{
		TextFragment("Grill"), TextFragment("Burger"), TextFragment("8.00/MKT"),
		LineBreak(),
		TextFragment("Wok"), TextFragment("Pad Thai"), TextFragment("Ingredients: noodles"), TextFragment("9.00"),
	}
	r := NewRenderer(Discount{Rate: DefaultRate})

	render := func() string {
		ex, err := Extract(frags)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return r.Render(ex.Sections)
	}
	first, second := render(), render()
	if first != second {
		t.Errorf("expected identical output, got %q and %q", first, second)
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   PriceToken
		want string
	}{
		{NumericPrice(1234.5), "$1,234.50"},
		{NumericPrice(4.8), "$4.80"},
		{NumericPrice(6), "$6.00"},
		{NumericPrice(0.05), "$0.05"},
		{NumericPrice(1000000), "$1,000,000.00"},
		{NumericPrice(-2.5), "-$2.50"},
		{NumericPrice(0.995), "$0.99"},
		{NumericPrice(99.995), "$99.99"},
		{NumericPrice(0.125), "$0.12"},
		{NumericPrice(1e19), "$10,000,000,000,000,000,000.00"},
		{TextPrice("MKT (minus discount)"), "MKT (minus discount)"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.in); got != tt.want {
			t.Errorf("FormatPrice(%+v): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
