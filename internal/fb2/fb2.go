// Package fb2 converts chapter documents into FictionBook 2.0 files,
// the upload format some translation platforms prefer over DOCX.
package fb2

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ovoronin/glavtool/internal/docxfile"
)

// Namespace is the FictionBook 2.0 XML namespace.
const Namespace = "http://www.gribuser.ru/xml/fictionbook/2.0"

type fictionBook struct {
	XMLName xml.Name `xml:"FictionBook"`
	Xmlns   string   `xml:"xmlns,attr"`
	Body    fb2Body  `xml:"body"`
}

type fb2Body struct {
	Section fb2Section `xml:"section"`
}

type fb2Section struct {
	Paragraphs []string `xml:"p"`
}

// Convert writes the non-empty paragraphs as an FB2 file named after
// originalName, into destDir (created if missing). The output path
// follows the collision-suffix rule and is returned.
func Convert(paragraphs []string, destDir, originalName string) (string, error) {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("create destination: %w", err)
	}

	var kept []string
	for _, p := range paragraphs {
		if t := strings.TrimSpace(p); t != "" {
			kept = append(kept, t)
		}
	}

	book := fictionBook{
		Xmlns: Namespace,
		Body:  fb2Body{Section: fb2Section{Paragraphs: kept}},
	}
	data, err := xml.MarshalIndent(book, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal fb2: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	path := docxfile.UniquePath(destDir, base, ".fb2")

	content := append([]byte(xml.Header), data...)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
