package chapter

import "strings"

// DuplicateGroup is a set of chapters sharing identical normalized
// content. Labels keep the chapters' original document order.
type DuplicateGroup struct {
	Labels  []string
	Content string
}

// FindDuplicates groups chapters by normalized body content and returns
// the groups with more than one member, in order of first appearance.
// The content key is the paragraph texts joined by newlines and trimmed;
// two empty chapters therefore match each other.
func FindDuplicates(chapters []Chapter) []DuplicateGroup {
	byContent := make(map[string][]string)
	var order []string

	for _, c := range chapters {
		key := strings.TrimSpace(strings.Join(c.Texts(), "\n"))
		if _, seen := byContent[key]; !seen {
			order = append(order, key)
		}
		byContent[key] = append(byContent[key], c.LabelText)
	}

	var groups []DuplicateGroup
	for _, key := range order {
		labels := byContent[key]
		if len(labels) < 2 {
			continue
		}
		groups = append(groups, DuplicateGroup{Labels: labels, Content: key})
	}
	return groups
}
