// Package emit writes analysis results back to disk: one DOCX per
// segmented chapter, or two per evenly split chapter. Output names are
// resolved up front so concurrent writers cannot race on the
// collision-suffix rule.
package emit

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ovoronin/glavtool/internal/chapter"
	"github.com/ovoronin/glavtool/internal/docxfile"
)

// Ext is the output document extension.
const Ext = ".docx"

// Result is one written chapter file.
type Result struct {
	Label string `json:"label"`
	Path  string `json:"path"`
}

// Chapters writes every segmented chapter of a source document into
// dir, named by its sanitized heading text. Returns the written files
// in chapter order.
func Chapters(doc *docxfile.Document, chapters []chapter.Chapter, dir string, workers int) ([]Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	names := newNamer()
	results := make([]Result, len(chapters))
	jobs := make([]writeJob, len(chapters))
	for i, c := range chapters {
		path := names.unique(dir, docxfile.SanitizeName(c.LabelText), Ext)
		results[i] = Result{Label: c.LabelText, Path: path}
		jobs[i] = writeJob{path: path, content: doc.Subset(c.Paragraphs)}
	}

	if err := writeAll(jobs, workers); err != nil {
		return nil, err
	}
	return results, nil
}

// Bisect splits each chapter in two balanced halves and writes them as
// "Глава <label>.1" / "Глава <label>.2". Chapters too short to split
// are returned in skipped by label and produce no files.
func Bisect(doc *docxfile.Document, chapters []chapter.Chapter, dir string, workers int) (results []Result, skipped []string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create output dir: %w", err)
	}

	names := newNamer()
	var jobs []writeJob
	for _, c := range chapters {
		first, second, err := chapter.SplitInTwo(c.Paragraphs)
		if errors.Is(err, chapter.ErrTooShort) {
			skipped = append(skipped, c.LabelText)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		for n, half := range [][]chapter.Paragraph{first, second} {
			label := chapter.HeadingWord + " " + c.Label.Sub(n+1)
			path := names.unique(dir, docxfile.SanitizeName(label), Ext)
			results = append(results, Result{Label: label, Path: path})
			jobs = append(jobs, writeJob{path: path, content: doc.Subset(half)})
		}
	}

	if err := writeAll(jobs, workers); err != nil {
		return nil, nil, err
	}
	return results, skipped, nil
}

type writeJob struct {
	path    string
	content io.WriterTo
}

// writeAll fans the jobs out to a bounded pool. Every job runs even if
// another fails; the first errors are joined and reported together.
func writeAll(jobs []writeJob, workers int) error {
	if workers < 1 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}
	if len(jobs) == 0 {
		return nil
	}

	queue := make(chan writeJob)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				if err := writeOne(j); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			}
		}()
	}
	for _, j := range jobs {
		queue <- j
	}
	close(queue)
	wg.Wait()

	return errors.Join(errs...)
}

func writeOne(j writeJob) error {
	f, err := os.Create(j.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", j.path, err)
	}
	if _, err := j.content.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", j.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", j.path, err)
	}
	return nil
}

// namer resolves unique output paths, tracking names it has already
// handed out in addition to what exists on disk.
type namer struct {
	taken map[string]bool
}

func newNamer() *namer {
	return &namer{taken: make(map[string]bool)}
}

func (n *namer) unique(dir, base, ext string) string {
	candidate := filepath.Join(dir, base+ext)
	for i := 2; ; i++ {
		if !n.taken[candidate] {
			if _, err := os.Stat(candidate); os.IsNotExist(err) {
				n.taken[candidate] = true
				return candidate
			}
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, i, ext))
	}
}
