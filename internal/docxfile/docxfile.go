// Package docxfile reads and writes DOCX packages at the OOXML level.
//
// Unlike the text-only sources in internal/source, this layer keeps the
// verbatim <w:p> markup of every body paragraph, so documents derived
// from a manuscript (per-chapter files, bisected halves, separator
// fixes) preserve the source formatting byte for byte.
package docxfile

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ovoronin/glavtool/internal/chapter"
)

const documentPart = "word/document.xml"

// ErrNoDocumentPart is returned for archives without word/document.xml.
var ErrNoDocumentPart = errors.New("word/document.xml not found in archive")

// paraSpan is one body-level <w:p> element: its byte range within
// document.xml and its extracted plain text.
type paraSpan struct {
	start, end int64
	text       string
}

// Document is a parsed DOCX package. All archive parts are retained so
// derived documents keep styles, fonts and relationships intact.
type Document struct {
	parts    []part
	raw      []byte // word/document.xml
	spans    []paraSpan
	bodyOpen int64 // offset just past the <w:body> start tag
	bodyEnd  int64 // offset of the </w:body> end tag
	replaced map[int][]byte
}

type part struct {
	name string
	data []byte
}

// Open reads and parses a DOCX file.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return Parse(data)
}

// Parse parses a DOCX package from memory.
func Parse(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	d := &Document{replaced: make(map[int][]byte)}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open part %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read part %s: %w", f.Name, err)
		}
		if f.Name == documentPart {
			d.raw = content
		} else {
			d.parts = append(d.parts, part{name: f.Name, data: content})
		}
	}
	if d.raw == nil {
		return nil, ErrNoDocumentPart
	}
	if err := d.scanBody(); err != nil {
		return nil, err
	}
	return d, nil
}

// scanBody walks document.xml recording the byte span and plain text of
// every body-level paragraph. Paragraphs nested in tables are skipped,
// matching how word processors enumerate top-level content.
func (d *Document) scanBody() error {
	dec := xml.NewDecoder(bytes.NewReader(d.raw))
	depth := 0
	inBody := false
	for {
		pos := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("parse %s: %w", documentPart, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "body" && depth == 1:
				inBody = true
				d.bodyOpen = dec.InputOffset()
				depth++
			case t.Name.Local == "p" && inBody && depth == 2:
				span, err := capture(dec, pos)
				if err != nil {
					return err
				}
				d.spans = append(d.spans, span)
			default:
				depth++
			}
		case xml.EndElement:
			depth--
			if t.Name.Local == "body" && depth == 1 {
				inBody = false
				d.bodyEnd = pos
			}
		}
	}
	return nil
}

// capture consumes tokens through the paragraph's end element,
// collecting the text of its <w:t> runs on the way.
func capture(dec *xml.Decoder, start int64) (paraSpan, error) {
	var text strings.Builder
	depth := 1
	inT := false
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return paraSpan{}, fmt.Errorf("parse paragraph: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Local == "t" {
				inT = true
			}
		case xml.EndElement:
			depth--
			inT = false
		case xml.CharData:
			if inT {
				text.Write(t)
			}
		}
	}
	return paraSpan{start: start, end: dec.InputOffset(), text: text.String()}, nil
}

// Paragraphs returns the body paragraphs with their verbatim markup as
// the formatting handle.
func (d *Document) Paragraphs() []chapter.Paragraph {
	out := make([]chapter.Paragraph, len(d.spans))
	for i, s := range d.spans {
		if r, ok := d.replaced[i]; ok {
			out[i] = chapter.Paragraph{Text: extractText(r), Raw: r}
			continue
		}
		out[i] = chapter.Paragraph{Text: s.text, Raw: d.raw[s.start:s.end]}
	}
	return out
}

// extractText pulls the concatenated <w:t> content out of a paragraph
// fragment.
func extractText(raw []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Strict = false
	var text strings.Builder
	inT := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return text.String()
		}
		switch t := tok.(type) {
		case xml.StartElement:
			inT = t.Name.Local == "t"
		case xml.EndElement:
			inT = false
		case xml.CharData:
			if inT {
				text.Write(t)
			}
		}
	}
}

// Len returns the number of body paragraphs.
func (d *Document) Len() int { return len(d.spans) }

// Replace substitutes the markup of paragraph i. The change is applied
// when the document is written out.
func (d *Document) Replace(i int, raw []byte) {
	d.replaced[i] = raw
}

// documentXML assembles document.xml with any replaced paragraphs
// spliced in at their original positions.
func (d *Document) documentXML() []byte {
	if len(d.replaced) == 0 {
		return d.raw
	}
	var buf bytes.Buffer
	cursor := int64(0)
	for i, s := range d.spans {
		r, ok := d.replaced[i]
		if !ok {
			continue
		}
		buf.Write(d.raw[cursor:s.start])
		buf.Write(r)
		cursor = s.end
	}
	buf.Write(d.raw[cursor:])
	return buf.Bytes()
}

// WriteTo writes the package, including any paragraph replacements.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	return writePackage(w, d.parts, d.documentXML())
}

// Save writes the package to a file.
func (d *Document) Save(path string) error {
	return saveTo(path, d)
}

// Subset builds a derived document containing only the given
// paragraphs, in order. Every part of the source package except
// document.xml is carried over unchanged, so styles and fonts survive;
// paragraphs without markup (text-only sources) get a minimal run.
func (d *Document) Subset(paragraphs []chapter.Paragraph) *Derived {
	var body bytes.Buffer
	for _, p := range paragraphs {
		if len(p.Raw) > 0 {
			body.Write(p.Raw)
		} else {
			body.WriteString(TextParagraphXML(p.Text))
		}
	}

	var doc bytes.Buffer
	doc.Write(d.raw[:d.bodyOpen])
	doc.Write(body.Bytes())
	doc.Write(d.raw[d.bodyEnd:])

	return &Derived{parts: d.parts, doc: doc.Bytes()}
}

// Derived is a document assembled from a subset of a source package.
type Derived struct {
	parts []part
	doc   []byte
}

func (s *Derived) WriteTo(w io.Writer) (int64, error) {
	return writePackage(w, s.parts, s.doc)
}

func (s *Derived) Save(path string) error {
	return saveTo(path, s)
}

func saveTo(path string, wt io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func writePackage(w io.Writer, parts []part, docXML []byte) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return cw.n, fmt.Errorf("create part %s: %w", p.name, err)
		}
		if _, err := f.Write(p.data); err != nil {
			return cw.n, fmt.Errorf("write part %s: %w", p.name, err)
		}
	}
	f, err := zw.Create(documentPart)
	if err != nil {
		return cw.n, fmt.Errorf("create part %s: %w", documentPart, err)
	}
	if _, err := f.Write(docXML); err != nil {
		return cw.n, fmt.Errorf("write part %s: %w", documentPart, err)
	}
	if err := zw.Close(); err != nil {
		return cw.n, fmt.Errorf("close archive: %w", err)
	}
	return cw.n, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// TextParagraphXML renders a plain-text paragraph as minimal WordprocessingML.
func TextParagraphXML(text string) string {
	var esc bytes.Buffer
	xml.EscapeText(&esc, []byte(text))
	return `<w:p><w:r><w:t xml:space="preserve">` + esc.String() + `</w:t></w:r></w:p>`
}
