package menu

import "strings"

// MatchKeywords returns the keywords that occur in text, ignoring case.
// Results follow the order of keywords; duplicates and blanks are skipped.
func MatchKeywords(text string, keywords []string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]bool, len(keywords))
	var matched []string
	for _, kw := range keywords {
		k := strings.ToLower(strings.TrimSpace(kw))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		if strings.Contains(lower, k) {
			matched = append(matched, strings.TrimSpace(kw))
		}
	}
	return matched
}
