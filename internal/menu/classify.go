package menu

import (
	"errors"
	"strings"
)

var (
	// ErrNoFragments means the menu markup had nothing in it.
	ErrNoFragments = errors.New("menu: no fragments")
	// ErrNoSections means fragments were present but none formed a menu
	// item, which usually means the upstream page layout changed.
	ErrNoSections = errors.New("menu: no sections extracted")
)

const ingredientsPrefix = "Ingredients: "

type field int

const (
	fieldName field = iota
	fieldEntree
	fieldIngredients
	fieldMacros
	fieldPrices
)

// layouts maps a block's fragment count to the field each fragment holds.
var layouts = map[int][]field{
	3: {fieldName, fieldEntree, fieldPrices},
	4: {fieldName, fieldEntree, fieldIngredients, fieldPrices},
	5: {fieldName, fieldEntree, fieldIngredients, fieldMacros, fieldPrices},
}

// Classify turns a block into a MenuSection. It returns false for empty
// blocks and for blocks whose length has no layout.
func Classify(b Block) (MenuSection, bool) {
	layout, ok := layouts[len(b)]
	if !ok {
		return MenuSection{}, false
	}

	var s MenuSection
	for i, f := range layout {
		text := strings.TrimSpace(b[i].Text)
		switch f {
		case fieldName:
			s.Name = text
		case fieldEntree:
			s.Entree = text
		case fieldIngredients:
			ing := strings.TrimSpace(strings.TrimPrefix(text, ingredientsPrefix))
			s.Ingredients = &ing
		case fieldMacros:
			s.Macros = &text
		case fieldPrices:
			// Price substrings are kept verbatim, so parse untrimmed text.
			s.Prices = ParsePrices(b[i].Text)
		}
	}
	return s, true
}

// DroppedBlock records a non-empty block that matched no layout.
type DroppedBlock struct {
	Index  int `json:"index"`
	Length int `json:"length"`
}

// Extraction is the result of running the whole fragment stream through
// Sectionize and Classify.
type Extraction struct {
	Sections []MenuSection
	Dropped  []DroppedBlock
}

// Extract groups fragments into blocks and classifies each one. Empty
// blocks are skipped silently; blocks of any other unknown length are
// reported in Dropped.
func Extract(frags []Fragment) (Extraction, error) {
	if len(frags) == 0 {
		return Extraction{}, ErrNoFragments
	}

	var ex Extraction
	for i, b := range Sectionize(frags) {
		if len(b) == 0 {
			continue
		}
		s, ok := Classify(b)
		if !ok {
			ex.Dropped = append(ex.Dropped, DroppedBlock{Index: i, Length: len(b)})
			continue
		}
		ex.Sections = append(ex.Sections, s)
	}

	if len(ex.Sections) == 0 {
		return ex, ErrNoSections
	}
	return ex, nil
}
