package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ovoronin/glavtool/internal/config"
)

func testServer(apiKey string) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		APIKey:         apiKey,
		MaxUploadBytes: 1 << 20,
		Workers:        2,
	}
	return NewServer(log, cfg)
}

func uploadRequest(t *testing.T, path, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := io.WriteString(fw, content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	s := testServer("")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	s := testServer("secret")

	req := uploadRequest(t, "/api/split", "book.txt", "Глава 1\n\nТекст.")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", rec.Code)
	}

	req = uploadRequest(t, "/api/split", "book.txt", "Глава 1\n\nТекст.")
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", rec.Code)
	}

	req = uploadRequest(t, "/api/split", "book.txt", "Глава 1\n\nТекст.")
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("good token: status = %d, want 200", rec.Code)
	}
}

func TestAuthDisabledWithoutKey(t *testing.T) {
	s := testServer("")
	req := uploadRequest(t, "/api/split", "book.txt", "Глава 1\n\nТекст.")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestSplit(t *testing.T) {
	s := testServer("")
	manuscript := "Вступление.\n\nГлава 1\n\nПервый абзац.\n\nВторой абзац.\n\nГлава 2\n\nТретий абзац."
	req := uploadRequest(t, "/api/split", "book.txt", manuscript)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Count    int `json:"count"`
		Chapters []struct {
			Label      string `json:"label"`
			Paragraphs int    `json:"paragraphs"`
		} `json:"chapters"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2", resp.Count)
	}
	if resp.Chapters[0].Label != "Глава 1" || resp.Chapters[0].Paragraphs != 2 {
		t.Errorf("chapter 0 = %+v", resp.Chapters[0])
	}
	if resp.Chapters[1].Label != "Глава 2" || resp.Chapters[1].Paragraphs != 1 {
		t.Errorf("chapter 1 = %+v", resp.Chapters[1])
	}
}

func TestNumbering(t *testing.T) {
	s := testServer("")
	manuscript := "Глава 1\n\nТекст.\n\nГлава 3\n\nТекст."
	req := uploadRequest(t, "/api/analyze/numbering", "book.txt", manuscript)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Chapters int `json:"chapters"`
		Issues   struct {
			Missing []string `json:"missing"`
		} `json:"issues"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Chapters != 2 {
		t.Errorf("chapters = %d, want 2", resp.Chapters)
	}
	if len(resp.Issues.Missing) != 1 || resp.Issues.Missing[0] != "Глава 2" {
		t.Errorf("missing = %v, want [Глава 2]", resp.Issues.Missing)
	}
}

func TestDuplicates(t *testing.T) {
	s := testServer("")
	manuscript := "Глава 1\n\nОдин и тот же текст.\n\nГлава 2\n\nОдин и тот же текст.\n\nГлава 3\n\nДругой текст."
	req := uploadRequest(t, "/api/analyze/duplicates", "book.txt", manuscript)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Duplicates []struct {
			Labels []string `json:"labels"`
		} `json:"duplicates"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Duplicates) != 1 {
		t.Fatalf("duplicate groups = %d, want 1", len(resp.Duplicates))
	}
	want := []string{"Глава 1", "Глава 2"}
	if len(resp.Duplicates[0].Labels) != 2 ||
		resp.Duplicates[0].Labels[0] != want[0] ||
		resp.Duplicates[0].Labels[1] != want[1] {
		t.Errorf("labels = %v, want %v", resp.Duplicates[0].Labels, want)
	}
}

func TestArtifacts(t *testing.T) {
	s := testServer("")
	manuscript := "Привет Hello мир.\n\nЧистый абзац."
	req := uploadRequest(t, "/api/analyze/artifacts", "book.txt", manuscript)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Artifacts map[string][]struct {
			Paragraph int `json:"paragraph"`
			Offset    int `json:"offset"`
		} `json:"artifacts"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	hits, ok := resp.Artifacts["Hello"]
	if !ok || len(hits) != 1 {
		t.Fatalf("artifacts = %v, want Hello hit", resp.Artifacts)
	}
	if hits[0].Paragraph != 1 || hits[0].Offset != 8 {
		t.Errorf("hit = %+v, want paragraph 1 offset 8", hits[0])
	}
}

func TestUnsupportedFileType(t *testing.T) {
	s := testServer("")
	req := uploadRequest(t, "/api/split", "book.exe", "data")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMissingFile(t *testing.T) {
	s := testServer("")
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("other", "value")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/split", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
