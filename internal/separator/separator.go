// Package separator detects decorative horizontal-rule paragraphs in
// DOCX markup and rewrites them as a plain-text divider.
//
// Two shapes of decoration occur in the wild: paragraph borders
// declared in <w:pBdr>, and an empty paragraph embedding a rule
// drawing, either a legacy VML shape flagged with o:hr or a modern
// <w:drawing> whose accessibility title or description names a
// horizontal line.
package separator

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ovoronin/glavtool/internal/chapter"
	"github.com/ovoronin/glavtool/internal/docxfile"
)

// Marker replaces a separator paragraph's content. The trailing
// zero-width space keeps some web renderers from collapsing the line;
// the bare "***" variant is deliberately not supported.
const Marker = "***​"

// borderEdges are the pBdr children that make a paragraph a rule.
var borderEdges = map[string]bool{
	"top":     true,
	"bottom":  true,
	"between": true,
	"bar":     true,
}

// ruleKeywords mark a drawing as a horizontal rule when found in its
// docPr title or description, case-insensitively.
var ruleKeywords = []string{
	"horizontal line",
	"horizontal rule",
	"separator",
	"горизонтальная линия",
	"разделитель",
	"линия",
}

// Found is one detected separator: the 1-based paragraph index and the
// paragraph itself.
type Found struct {
	Index     int
	Paragraph chapter.Paragraph
}

// Find scans a document's paragraphs and returns the separators in
// document order.
func Find(doc *docxfile.Document) []Found {
	var out []Found
	for i, p := range doc.Paragraphs() {
		if IsSeparator(p) {
			out = append(out, Found{Index: i + 1, Paragraph: p})
		}
	}
	return out
}

// IsSeparator reports whether a paragraph is a decorative rule: it
// either declares a border on a qualifying edge, or is blank and embeds
// a recognized rule shape. Unrecognized shape variants are simply not
// flagged.
func IsSeparator(p chapter.Paragraph) bool {
	if len(p.Raw) == 0 {
		return false
	}
	info := inspect(p.Raw)
	if info.hasBorder {
		return true
	}
	if strings.TrimSpace(p.Text) != "" {
		return false
	}
	return info.hasRuleShape
}

// Normalize rewrites a separator paragraph: borders and embedded
// shapes are removed and the content becomes the Marker text. The rest
// of the paragraph's properties are preserved. Normalizing an already
// normalized paragraph yields identical markup.
func Normalize(p chapter.Paragraph) chapter.Paragraph {
	if len(p.Raw) == 0 {
		return chapter.Paragraph{Text: Marker}
	}
	raw := rebuild(p.Raw)
	return chapter.Paragraph{Text: Marker, Raw: raw}
}

// NormalizeDocument applies Normalize to every detected separator and
// returns the indexes (1-based) that were rewritten.
func NormalizeDocument(doc *docxfile.Document) []int {
	var fixed []int
	for _, f := range Find(doc) {
		doc.Replace(f.Index-1, Normalize(f.Paragraph).Raw)
		fixed = append(fixed, f.Index)
	}
	return fixed
}

type paraInfo struct {
	hasBorder    bool
	hasRuleShape bool
}

// inspect parses a paragraph fragment. Namespace prefixes are unbound
// in a fragment, so elements are matched by local name only.
func inspect(raw []byte) paraInfo {
	var info paraInfo
	dec := fragmentDecoder(raw)
	inBdr := 0
	inDrawing := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return info
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "pBdr":
				inBdr++
			case inBdr > 0 && borderEdges[t.Name.Local]:
				info.hasBorder = true
			case t.Name.Local == "drawing":
				inDrawing++
			case inDrawing > 0 && t.Name.Local == "docPr":
				if docPrNamesRule(t) {
					info.hasRuleShape = true
				}
			case vmlShapeIsRule(t):
				info.hasRuleShape = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "pBdr":
				inBdr--
			case "drawing":
				inDrawing--
			}
		}
	}
}

// vmlShapeIsRule recognizes legacy VML shapes carrying the o:hr flag.
func vmlShapeIsRule(t xml.StartElement) bool {
	switch t.Name.Local {
	case "rect", "line", "shape", "oval", "roundrect":
	default:
		return false
	}
	for _, a := range t.Attr {
		if a.Name.Local == "hr" && truthy(a.Value) {
			return true
		}
	}
	return false
}

func docPrNamesRule(t xml.StartElement) bool {
	for _, a := range t.Attr {
		if a.Name.Local != "title" && a.Name.Local != "descr" && a.Name.Local != "name" {
			continue
		}
		v := strings.ToLower(a.Value)
		for _, kw := range ruleKeywords {
			if strings.Contains(v, kw) {
				return true
			}
		}
	}
	return false
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "t", "true", "1", "on":
		return true
	}
	return false
}

// rebuild assembles the normalized paragraph markup: the original start
// tag, the paragraph properties with any pBdr removed, and a single run
// holding the Marker.
func rebuild(raw []byte) []byte {
	startTag, rest := splitStartTag(raw)

	var buf bytes.Buffer
	buf.Write(startTag)
	if ppr := elementSpan(rest, "pPr"); ppr != nil {
		buf.Write(stripElement(ppr, "pBdr"))
	}
	buf.WriteString(`<w:r><w:t xml:space="preserve">`)
	xml.EscapeText(&buf, []byte(Marker))
	buf.WriteString(`</w:t></w:r></w:p>`)
	return buf.Bytes()
}

// splitStartTag cuts the paragraph's start tag off, normalizing a
// self-closing <w:p/> into an open tag.
func splitStartTag(raw []byte) (startTag, rest []byte) {
	dec := fragmentDecoder(raw)
	for {
		tok, err := dec.Token()
		if err != nil {
			return raw, nil
		}
		if _, ok := tok.(xml.StartElement); ok {
			end := dec.InputOffset()
			tag := raw[:end]
			if bytes.HasSuffix(bytes.TrimRight(tag, " \t"), []byte("/>")) {
				i := bytes.LastIndexByte(tag, '/')
				return append(append([]byte{}, tag[:i]...), '>'), nil
			}
			return tag, raw[end:]
		}
	}
}

// elementSpan returns the raw bytes of the first element with the given
// local name, or nil.
func elementSpan(raw []byte, local string) []byte {
	dec := fragmentDecoder(raw)
	for {
		pos := dec.InputOffset()
		tok, err := dec.Token()
		if err != nil {
			return nil
		}
		if t, ok := tok.(xml.StartElement); ok && t.Name.Local == local {
			if err := dec.Skip(); err != nil {
				return nil
			}
			return raw[pos:dec.InputOffset()]
		}
	}
}

// stripElement removes every element with the given local name from a
// fragment.
func stripElement(raw []byte, local string) []byte {
	var out bytes.Buffer
	cursor := int64(0)
	dec := fragmentDecoder(raw)
	for {
		pos := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return raw
		}
		if t, ok := tok.(xml.StartElement); ok && t.Name.Local == local {
			if err := dec.Skip(); err != nil {
				return raw
			}
			out.Write(raw[cursor:pos])
			cursor = dec.InputOffset()
		}
	}
	out.Write(raw[cursor:])
	return out.Bytes()
}

// fragmentDecoder builds a decoder tolerant of the unbound namespace
// prefixes that appear inside an extracted <w:p> fragment.
func fragmentDecoder(raw []byte) *xml.Decoder {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Strict = false
	return dec
}

// Describe renders a short status line for a detected separator, used
// by the CLI report.
func (f Found) Describe() string {
	text := strings.TrimSpace(f.Paragraph.Text)
	if text == "" {
		text = "(пустой абзац)"
	}
	return fmt.Sprintf("абзац %d: %s", f.Index, text)
}
