package chapter

// Segment groups a paragraph stream into chapters. A recognized heading
// closes the current chapter and opens the next one; paragraphs before
// the first heading never form a chapter. Paragraph order is preserved
// end to end and heading paragraphs are not part of any chapter body.
func Segment(paragraphs []Paragraph) []Chapter {
	var chapters []Chapter
	var current *Chapter

	for _, p := range paragraphs {
		if label := MatchHeading(p.Text); label != nil {
			if current != nil {
				chapters = append(chapters, *current)
			}
			current = &Chapter{LabelText: p.Text, Label: *label}
			continue
		}
		if current != nil {
			current.Paragraphs = append(current.Paragraphs, p)
		}
	}
	if current != nil {
		chapters = append(chapters, *current)
	}
	return chapters
}

// Labels extracts the parsed labels of segmented chapters in order.
func Labels(chapters []Chapter) []Label {
	out := make([]Label, len(chapters))
	for i, c := range chapters {
		out[i] = c.Label
	}
	return out
}
