// Package chapter implements the segmentation and consistency analyses
// for serialized-fiction manuscripts: heading detection, splitting a
// paragraph stream into chapters, balanced bisection of a chapter,
// duplicate-content grouping, numbering audits and artifact-word scans.
//
// All functions here operate on extracted paragraph text plus an opaque
// formatting handle; nothing in this package inspects document markup.
package chapter

// Paragraph is one paragraph of a source document. Raw carries the
// paragraph's original markup verbatim so output documents can keep the
// source formatting; the analyses never look inside it.
type Paragraph struct {
	Text string
	Raw  []byte
}

// Paragraphs wraps plain strings as text-only paragraphs. Used by
// sources that carry no formatting (txt, md, html, pdf).
func Paragraphs(texts []string) []Paragraph {
	out := make([]Paragraph, len(texts))
	for i, t := range texts {
		out[i] = Paragraph{Text: t}
	}
	return out
}

// Chapter is a contiguous run of paragraphs introduced by a recognized
// heading. LabelText is the full heading paragraph text; Paragraphs
// never includes any heading paragraph.
type Chapter struct {
	LabelText  string
	Label      Label
	Paragraphs []Paragraph
}

// Texts returns the chapter's paragraph texts in document order.
func (c *Chapter) Texts() []string {
	out := make([]string, len(c.Paragraphs))
	for i, p := range c.Paragraphs {
		out[i] = p.Text
	}
	return out
}
