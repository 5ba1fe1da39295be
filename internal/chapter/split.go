package chapter

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrTooShort marks a chapter that cannot be split in two: fewer than
// two paragraphs, or a split that would leave one half empty. Callers
// report such chapters as skipped and keep going.
var ErrTooShort = errors.New("chapter too short to split")

// SplitInTwo partitions a chapter's paragraphs into two halves of
// roughly equal character weight. Each paragraph weighs at least 1 so
// blank paragraphs cannot degenerate the split. The cut lands at the
// first paragraph where the running weight reaches half the total,
// clamped so neither half is empty.
//
// Character-weight bisection tracks reading length better than a plain
// paragraph-count midpoint when long and short paragraphs are unevenly
// distributed through a chapter.
func SplitInTwo(paragraphs []Paragraph) (first, second []Paragraph, err error) {
	if len(paragraphs) < 2 {
		return nil, nil, ErrTooShort
	}

	total := 0
	weights := make([]int, len(paragraphs))
	for i, p := range paragraphs {
		w := utf8.RuneCountInString(strings.TrimSpace(p.Text))
		if w < 1 {
			w = 1
		}
		weights[i] = w
		total += w
	}

	target := total / 2
	cut := 0
	acc := 0
	for i, w := range weights {
		acc += w
		if acc >= target {
			cut = i + 1
			break
		}
	}

	if cut < 1 {
		cut = 1
	}
	if cut > len(paragraphs)-1 {
		cut = len(paragraphs) - 1
	}

	return paragraphs[:cut], paragraphs[cut:], nil
}
