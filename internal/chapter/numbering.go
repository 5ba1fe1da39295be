package chapter

import "sort"

// NumberingIssues is the result of a numbering audit. Every entry is a
// full heading reference like "Глава 3" or "Глава 3.2".
type NumberingIssues struct {
	Missing    []string `json:"missing"`
	Duplicates []string `json:"duplicates"`
	Unexpected []string `json:"unexpected"`
}

// Audit inspects the ordered chapter labels of a manuscript and reports
// numbering problems. Two schemes exist: plain integer numbering
// ("Глава 1", "Глава 2", ...) and major.minor numbering ("Глава 1.1",
// "Глава 1.2", ...). The presence of any minor anywhere selects the
// decimal scheme, and labels without a minor are then dropped from the
// analysis.
//
// In the decimal scheme the maximum minor of the first major becomes
// the expected per-major pattern and is carried forward: later majors
// with a smaller maximum minor produce missing entries up to the
// carried maximum, and minors beyond it are reported as unexpected.
func Audit(labels []Label) NumberingIssues {
	issues := NumberingIssues{
		Missing:    []string{},
		Duplicates: []string{},
		Unexpected: []string{},
	}
	if len(labels) == 0 {
		return issues
	}

	decimal := false
	for _, l := range labels {
		if l.HasMinor() {
			decimal = true
			break
		}
	}
	if decimal {
		auditDecimal(labels, &issues)
	} else {
		auditInteger(labels, &issues)
	}
	return issues
}

func auditInteger(labels []Label, issues *NumberingIssues) {
	expected := labels[0].Major
	for _, l := range labels {
		for expected < l.Major {
			issues.Missing = append(issues.Missing, Label{Major: expected}.Heading())
			expected++
		}
		expected = l.Major + 1
	}
	issues.Duplicates = duplicateLabels(labels)
}

func auditDecimal(labels []Label, issues *NumberingIssues) {
	// Labels without a minor do not participate in the decimal scheme.
	var kept []Label
	for _, l := range labels {
		if l.HasMinor() {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		return
	}
	issues.Duplicates = duplicateLabels(kept)

	// Group minors by major, keeping first-seen order of distinct majors.
	var majors []int
	minorsByMajor := make(map[int][]int)
	for _, l := range kept {
		if _, seen := minorsByMajor[l.Major]; !seen {
			majors = append(majors, l.Major)
		}
		minorsByMajor[l.Major] = append(minorsByMajor[l.Major], l.Minor)
	}

	prevMax := 0
	for i, major := range majors {
		// Fill in majors skipped entirely between consecutive ones.
		if i > 0 && major > majors[i-1]+1 {
			for m := majors[i-1] + 1; m < major; m++ {
				for k := 1; k <= max(prevMax, 1); k++ {
					issues.Missing = append(issues.Missing, Label{Major: m, Minor: k}.Heading())
				}
			}
		}

		minors := dedupeSorted(minorsByMajor[major])
		expected := 1
		for _, v := range minors {
			for expected < v {
				issues.Missing = append(issues.Missing, Label{Major: major, Minor: expected}.Heading())
				expected++
			}
			expected = v + 1
		}
		curMax := minors[len(minors)-1]

		if i == 0 {
			prevMax = curMax
			continue
		}
		switch {
		case curMax < prevMax:
			for k := curMax + 1; k <= prevMax; k++ {
				issues.Missing = append(issues.Missing, Label{Major: major, Minor: k}.Heading())
			}
		case curMax > prevMax:
			for _, v := range minors {
				if v > prevMax {
					issues.Unexpected = append(issues.Unexpected, Label{Major: major, Minor: v}.Heading())
				}
			}
		}
	}
}

// duplicateLabels reports each exact label seen more than once, one
// entry per label, in order of first re-occurrence.
func duplicateLabels(labels []Label) []string {
	seen := make(map[Label]int)
	out := []string{}
	for _, l := range labels {
		seen[l]++
		if seen[l] == 2 {
			out = append(out, l.Heading())
		}
	}
	return out
}

// dedupeSorted sorts minors ascending and removes repeats.
func dedupeSorted(minors []int) []int {
	uniq := make(map[int]bool, len(minors))
	for _, v := range minors {
		uniq[v] = true
	}
	out := make([]int, 0, len(uniq))
	for v := range uniq {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
