// Package generate creates batches of empty chapter documents for
// editors to fill in, one file per chapter part.
package generate

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fumiama/go-docx"
)

// dirPrefix names the timestamped batch subdirectory.
const dirPrefix = "Генерация_"

// Batch creates chapters×parts minimal documents named
// "Глава <c>.<p>.docx" inside a new timestamped subdirectory of dest.
// Returns the subdirectory and the number of files written.
func Batch(dest string, chapters, parts, workers int) (string, int, error) {
	if chapters < 1 {
		return "", 0, fmt.Errorf("chapter count must be at least 1, got %d", chapters)
	}
	if parts < 1 {
		return "", 0, fmt.Errorf("parts per chapter must be at least 1, got %d", parts)
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", 0, fmt.Errorf("create destination: %w", err)
	}

	dir := filepath.Join(dest, dirPrefix+time.Now().Format("2006-01-02_15-04-05"))
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create batch directory: %w", err)
	}

	var paths []string
	for c := 1; c <= chapters; c++ {
		for p := 1; p <= parts; p++ {
			paths = append(paths, filepath.Join(dir, fmt.Sprintf("Глава %d.%d.docx", c, p)))
		}
	}

	if err := writeEmptyDocs(paths, workers); err != nil {
		return dir, 0, err
	}
	return dir, len(paths), nil
}

// writeEmptyDocs fans file creation out to a bounded pool; the files
// are independent, so order does not matter.
func writeEmptyDocs(paths []string, workers int) error {
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	queue := make(chan string)
	errCh := make(chan error, len(paths))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range queue {
				if err := writeEmptyDoc(path); err != nil {
					errCh <- err
				}
			}
		}()
	}
	for _, p := range paths {
		queue <- p
	}
	close(queue)
	wg.Wait()
	close(errCh)

	return <-errCh
}

// writeEmptyDoc writes a document holding a single space, the minimal
// content some platforms require for an uploadable chapter.
func writeEmptyDoc(path string) error {
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().AddText(" ")

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := w.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
