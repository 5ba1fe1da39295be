package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/ovoronin/glavtool/internal/chapter"
	"github.com/ovoronin/glavtool/internal/source"
)

// readManuscript pulls the uploaded file out of the multipart form and
// extracts its paragraph texts.
func (s *Server) readManuscript(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	reader, err := source.ForFile(filename)
	if err != nil {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return nil, false
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return nil, false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return nil, false
	}

	texts, err := reader.Read(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "failed to parse document: "+err.Error(), http.StatusUnprocessableEntity)
		return nil, false
	}
	return texts, true
}

func (s *Server) handleNumbering(w http.ResponseWriter, r *http.Request) {
	texts, ok := s.readManuscript(w, r)
	if !ok {
		return
	}
	chapters := chapter.Segment(chapter.Paragraphs(texts))
	issues := chapter.Audit(chapter.Labels(chapters))

	writeJSON(w, http.StatusOK, map[string]any{
		"chapters": len(chapters),
		"issues":   issues,
	})
}

func (s *Server) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	texts, ok := s.readManuscript(w, r)
	if !ok {
		return
	}
	chapters := chapter.Segment(chapter.Paragraphs(texts))
	groups := chapter.FindDuplicates(chapters)

	type dupGroup struct {
		Labels []string `json:"labels"`
	}
	out := make([]dupGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, dupGroup{Labels: g.Labels})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"chapters":   len(chapters),
		"duplicates": out,
	})
}

func (s *Server) handleArtifacts(w http.ResponseWriter, r *http.Request) {
	texts, ok := s.readManuscript(w, r)
	if !ok {
		return
	}
	occ := chapter.ScanArtifacts(texts)

	type hit struct {
		Paragraph int `json:"paragraph"`
		Offset    int `json:"offset"`
	}
	out := make(map[string][]hit, len(occ))
	for _, word := range occ.Words() {
		positions := occ[word]
		hits := make([]hit, len(positions))
		for i, p := range positions {
			hits[i] = hit{Paragraph: p.Paragraph, Offset: p.Offset}
		}
		out[word] = hits
	}

	writeJSON(w, http.StatusOK, map[string]any{"artifacts": out})
}

func (s *Server) handleSplit(w http.ResponseWriter, r *http.Request) {
	texts, ok := s.readManuscript(w, r)
	if !ok {
		return
	}
	chapters := chapter.Segment(chapter.Paragraphs(texts))

	type chapterInfo struct {
		Label      string `json:"label"`
		Paragraphs int    `json:"paragraphs"`
	}
	out := make([]chapterInfo, len(chapters))
	for i, c := range chapters {
		out[i] = chapterInfo{
			Label:      c.LabelText,
			Paragraphs: len(c.Paragraphs),
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"chapters": out,
		"count":    len(out),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
