package menu

// FragmentKind distinguishes text-bearing markup nodes from line breaks.
type FragmentKind int

const (
	KindText FragmentKind = iota
	KindBreak
)

// Fragment is one node of the menu markup, in document order.
type Fragment struct {
	Kind FragmentKind
	Text string // Empty for line breaks.
}

// TextFragment returns a text-bearing fragment.
func TextFragment(text string) Fragment {
	return Fragment{Kind: KindText, Text: text}
}

// LineBreak returns a line-break marker.
func LineBreak() Fragment {
	return Fragment{Kind: KindBreak}
}

// IsBreak reports whether f separates blocks.
func (f Fragment) IsBreak() bool {
	return f.Kind == KindBreak
}

// Block is the run of fragments between two line breaks. It may be empty.
type Block []Fragment

// MenuSection is one menu item, such as a station and its entree.
type MenuSection struct {
	Name        string       `json:"name"`
	Entree      string       `json:"entree"`
	Ingredients *string      `json:"ingredients,omitempty"` // Set for 4- and 5-fragment blocks.
	Macros      *string      `json:"macros,omitempty"`      // Set for 5-fragment blocks.
	Prices      []PriceToken `json:"prices"`
}
