package docxfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// FallbackName replaces heading texts that sanitize down to nothing.
const FallbackName = "section"

// SanitizeName turns a heading text into a safe file base name: only
// letters, digits, underscores, whitespace, dots and dashes survive.
func SanitizeName(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
			b.WriteRune(r)
		case r == '_', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	name := strings.TrimSpace(b.String())
	if name == "" {
		return FallbackName
	}
	return name
}

// UniquePath returns dir/base+ext, appending " (N)" with N starting at
// 2 until the name does not collide with an existing file. Existing
// files are never overwritten silently.
func UniquePath(dir, base, ext string) string {
	candidate := filepath.Join(dir, base+ext)
	for n := 2; ; n++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, n, ext))
	}
}
