package menu

// Sectionize splits fragments into blocks on line breaks. Empty blocks are
// kept, including a trailing one; callers decide what to skip.
func Sectionize(frags []Fragment) []Block {
	var blocks []Block
	current := Block{}

	for _, f := range frags {
		if f.IsBreak() {
			blocks = append(blocks, current)
			current = Block{}
			continue
		}
		current = append(current, f)
	}
	blocks = append(blocks, current)

	return blocks
}
