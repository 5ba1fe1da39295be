package chapter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// HeadingWord is the literal marker that opens a chapter heading.
const HeadingWord = "Глава"

// headingPattern anchors at the start of the trimmed paragraph text.
// Trailing text after the numeric label does not affect matching.
var headingPattern = regexp.MustCompile(`(?i)^Глава\s+(\d+)(?:\.(\d+))?`)

// Label is a parsed chapter number: a major part and an optional minor
// part. A label without a minor is distinct from any label with one.
type Label struct {
	Major int
	Minor int // 0 means absent
}

// HasMinor reports whether the label carries a minor part.
func (l Label) HasMinor() bool { return l.Minor > 0 }

// String renders the label the way it appears in headings: "3" or "3.1".
func (l Label) String() string {
	if l.HasMinor() {
		return strconv.Itoa(l.Major) + "." + strconv.Itoa(l.Minor)
	}
	return strconv.Itoa(l.Major)
}

// Heading renders the label as a full heading reference, e.g. "Глава 3.1".
func (l Label) Heading() string {
	return fmt.Sprintf("%s %s", HeadingWord, l.String())
}

// Sub derives the label of the n-th part of an evenly split chapter:
// "3" becomes "3.1"/"3.2", "3.2" becomes "3.2.1"/"3.2.2". The result is
// a display string, not a Label, since nesting exceeds two levels.
func (l Label) Sub(n int) string {
	return l.String() + "." + strconv.Itoa(n)
}

// MatchHeading recognizes a chapter heading paragraph and extracts its
// label. Returns nil when the paragraph is not a heading. Majors and
// minors below 1 never occur: the pattern requires at least one digit
// and a parsed zero major is rejected.
func MatchHeading(text string) *Label {
	m := headingPattern.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return nil
	}
	major, err := strconv.Atoi(m[1])
	if err != nil || major < 1 {
		return nil
	}
	l := &Label{Major: major}
	if m[2] != "" {
		minor, err := strconv.Atoi(m[2])
		if err != nil || minor < 1 {
			return nil
		}
		l.Minor = minor
	}
	return l
}
