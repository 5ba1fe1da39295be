package chapter

import (
	"sort"
	"unicode"
)

// Position locates one occurrence of an artifact word: 1-based
// paragraph index and 1-based rune offset within the paragraph.
type Position struct {
	Paragraph int `json:"paragraph"`
	Offset    int `json:"offset"`
}

// WordOccurrences maps each artifact word to its occurrences in
// document order.
type WordOccurrences map[string][]Position

// Words returns the scanned words sorted lexicographically.
func (w WordOccurrences) Words() []string {
	out := make([]string, 0, len(w))
	for word := range w {
		out = append(out, word)
	}
	sort.Strings(out)
	return out
}

// ScanArtifacts finds words that look out of place in a Cyrillic
// manuscript: maximal runs of Latin letters, and maximal runs of mixed
// Latin and Cyrillic letters containing at least one of each script. A
// token satisfying both conditions is recorded once per rule; the
// occurrences accumulate in the same per-word list.
func ScanArtifacts(paragraphs []string) WordOccurrences {
	occ := make(WordOccurrences)
	for i, text := range paragraphs {
		scanRuns(occ, i+1, text, isLatinLetter, func(hasLatin, _ bool) bool {
			return hasLatin
		})
		scanRuns(occ, i+1, text, isLatinOrCyrillic, func(hasLatin, hasCyrillic bool) bool {
			return hasLatin && hasCyrillic
		})
	}
	return occ
}

// scanRuns walks a paragraph's runes collecting maximal runs of
// characters accepted by inRun, recording those the qualify function
// accepts. Offsets count runes, not bytes.
func scanRuns(occ WordOccurrences, paraIndex int, text string, inRun func(rune) bool, qualify func(hasLatin, hasCyrillic bool) bool) {
	var run []rune
	start := 0
	hasLatin, hasCyrillic := false, false

	flush := func() {
		if len(run) > 0 && qualify(hasLatin, hasCyrillic) {
			word := string(run)
			occ[word] = append(occ[word], Position{Paragraph: paraIndex, Offset: start})
		}
		run = run[:0]
		hasLatin, hasCyrillic = false, false
	}

	pos := 0
	for _, r := range text {
		pos++
		if !inRun(r) {
			flush()
			continue
		}
		if len(run) == 0 {
			start = pos
		}
		run = append(run, r)
		if isLatinLetter(r) {
			hasLatin = true
		}
		if isCyrillicLetter(r) {
			hasCyrillic = true
		}
	}
	flush()
}

func isLatinLetter(r rune) bool {
	return unicode.IsLetter(r) && unicode.Is(unicode.Latin, r)
}

func isCyrillicLetter(r rune) bool {
	return unicode.IsLetter(r) && unicode.Is(unicode.Cyrillic, r)
}

func isLatinOrCyrillic(r rune) bool {
	return isLatinLetter(r) || isCyrillicLetter(r)
}
