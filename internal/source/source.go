// Package source extracts the ordered plain-text paragraph sequence of
// a manuscript. The consistency analyses (numbering audit, duplicate
// detection, artifact scan) only need text, so any supported format
// will do; operations that must preserve formatting go through
// internal/docxfile instead.
package source

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Reader extracts the paragraph texts of one document format.
type Reader interface {
	Read(r io.Reader, filename string) ([]string, error)
}

// SupportedExtensions lists the manuscript formats the analyses accept.
var SupportedExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
	".pdf":  true,
	".docx": true,
}

// ForFile returns the reader responsible for a filename.
func ForFile(filename string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextReader{}, nil
	case ".md", ".markdown":
		return &MarkdownReader{}, nil
	case ".html", ".htm":
		return &HTMLReader{}, nil
	case ".pdf":
		return &PDFReader{FallbackPdftotext: true}, nil
	case ".docx":
		return &DOCXReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// ReadFile opens a manuscript and extracts its paragraphs.
func ReadFile(path string) ([]string, error) {
	reader, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manuscript: %w", err)
	}
	defer f.Close()
	return reader.Read(f, filepath.Base(path))
}
