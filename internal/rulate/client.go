// Package rulate uploads chapter files to a rulate-style translation
// platform over plain HTTP. Success of an upload is judged the way an
// editor would: the chapter name shows up on the book page returned
// after submitting the form.
package rulate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Client talks to one platform instance, holding the session cookie
// between calls.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
}

// Options tune how uploaded chapters are published.
type Options struct {
	Deferred     bool   // draft mode
	Subscription bool   // readable by subscribers only
	Volume       int    // 0 means unset
	PublishAt    string // optional scheduled publication time
}

func NewClient(baseURL, username, password string, timeout time.Duration) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		httpClient: &http.Client{
			Timeout: timeout,
			Jar:     jar,
		},
	}, nil
}

// Login authenticates and stores the session cookie. Callers without
// credentials may skip it for books that accept anonymous uploads.
func (c *Client) Login(ctx context.Context) error {
	form := url.Values{
		"login":    {c.username},
		"password": {c.password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode >= 400 {
		return fmt.Errorf("login: status %d", resp.StatusCode)
	}
	return nil
}

// UploadChapter posts one chapter file to <bookURL>/chapter/new and
// reports whether the chapter appeared on the resulting page.
func (c *Client) UploadChapter(ctx context.Context, bookURL, path string, opts Options) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read chapter: %w", err)
	}
	name := filepath.Base(path)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return false, fmt.Errorf("build form: %w", err)
	}
	if _, err := fw.Write(data); err != nil {
		return false, fmt.Errorf("build form: %w", err)
	}
	if opts.Volume > 0 {
		mw.WriteField("volume", strconv.Itoa(opts.Volume))
	}
	if opts.Deferred {
		mw.WriteField("deferred", "1")
	}
	if opts.Subscription {
		mw.WriteField("subscription", "1")
	}
	if opts.PublishAt != "" {
		mw.WriteField("publish_at", opts.PublishAt)
	}
	if err := mw.Close(); err != nil {
		return false, fmt.Errorf("build form: %w", err)
	}

	endpoint := strings.TrimRight(bookURL, "/") + "/chapter/new"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()

	page, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return false, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return false, fmt.Errorf("upload %s: status %d", name, resp.StatusCode)
	}
	return bytes.Contains(page, []byte(name)), nil
}

// UploadChapters uploads the files sequentially and maps each path to
// its outcome. One failed chapter does not stop the batch; only a
// cancelled context does.
func (c *Client) UploadChapters(ctx context.Context, bookURL string, files []string, opts Options) (map[string]bool, error) {
	results := make(map[string]bool, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		ok, err := c.UploadChapter(ctx, bookURL, f, opts)
		if err != nil {
			results[f] = false
			continue
		}
		results[f] = ok
	}
	return results, nil
}
