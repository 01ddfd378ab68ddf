package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tu "github.com/desertthunder/movierec/internal/testing"
)

func TestDatasetFetcher(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Nil Client", func(t *testing.T) {
			f := NewDatasetFetcher(nil, "")

			if f.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
			if f.maxBytes != DefaultMaxBytes {
				t.Errorf("expected default limit, got %d", f.maxBytes)
			}
		})
	})

	t.Run("Fetch", func(t *testing.T) {
		t.Run("Successful Download", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				w.Write([]byte("movie_title\nAvatar\n"))
			}))
			defer server.Close()

			dir := t.TempDir()
			path, err := NewDatasetFetcher(server.Client(), dir).Fetch(context.Background(), server.URL+"/data/movie_metadata.csv")
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}

			if filepath.Dir(path) != dir || filepath.Ext(path) != ".csv" {
				t.Errorf("unexpected path %s", path)
			}
			if got := tu.MustReadFile(t, path); got != "movie_title\nAvatar\n" {
				t.Errorf("unexpected content %q", got)
			}
		})

		t.Run("Zip Content Type", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/zip")
				w.Write([]byte("PK"))
			}))
			defer server.Close()

			path, err := NewDatasetFetcher(server.Client(), t.TempDir()).Fetch(context.Background(), server.URL+"/download")
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if filepath.Ext(path) != ".zip" {
				t.Errorf("expected .zip extension, got %s", path)
			}
		})

		t.Run("Non-200 Status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			}))
			defer server.Close()

			dir := t.TempDir()
			_, err := NewDatasetFetcher(server.Client(), dir).Fetch(context.Background(), server.URL+"/missing.csv")
			if err == nil || !strings.Contains(err.Error(), "status 404") {
				t.Errorf("expected status error, got %v", err)
			}

			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Errorf("expected no files left behind, got %d", len(entries))
			}
		})

		t.Run("Too Large", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(strings.Repeat("x", 64)))
			}))
			defer server.Close()

			dir := t.TempDir()
			_, err := NewDatasetFetcher(server.Client(), dir).WithMaxBytes(16).Fetch(context.Background(), server.URL+"/big.csv")
			if err == nil || !strings.Contains(err.Error(), "exceeds") {
				t.Errorf("expected size error, got %v", err)
			}

			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Errorf("expected partial file to be removed, got %d", len(entries))
			}
		})

		t.Run("Invalid URL", func(t *testing.T) {
			for _, raw := range []string{"ftp://example.com/data.csv", "::"} {
				if _, err := NewDatasetFetcher(nil, t.TempDir()).Fetch(context.Background(), raw); err == nil {
					t.Errorf("expected error for %q", raw)
				}
			}
		})

		t.Run("Transport Error", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}

			_, err := NewDatasetFetcher(client, t.TempDir()).Fetch(context.Background(), "https://example.com/data.csv")
			if err == nil || !strings.Contains(err.Error(), "connection refused") {
				t.Errorf("expected transport error, got %v", err)
			}
		})

		t.Run("Body Read Error", func(t *testing.T) {
			resp := &http.Response{StatusCode: http.StatusOK, Body: &tu.FCloser{}, Header: http.Header{}}
			client := &http.Client{Transport: tu.NewMockRoundTripper(resp, nil)}

			dir := t.TempDir()
			_, err := NewDatasetFetcher(client, dir).Fetch(context.Background(), "https://example.com/data.csv")
			if err == nil || !strings.Contains(err.Error(), "read failed") {
				t.Errorf("expected read error, got %v", err)
			}

			entries, _ := os.ReadDir(dir)
			if len(entries) != 0 {
				t.Errorf("expected partial file to be removed, got %d", len(entries))
			}
		})
	})
}

func TestExtension(t *testing.T) {
	tests := []struct {
		name        string
		rawURL      string
		contentType string
		want        string
	}{
		{name: "csv path", rawURL: "https://example.com/movie_metadata.csv", want: ".csv"},
		{name: "zip path", rawURL: "https://example.com/IMDB.ZIP", want: ".zip"},
		{name: "zip content type", rawURL: "https://example.com/dl", contentType: "application/zip", want: ".zip"},
		{name: "text content type", rawURL: "https://example.com/dl", contentType: "text/csv; charset=utf-8", want: ".csv"},
		{name: "unknown", rawURL: "https://example.com/dl", want: ".csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.rawURL)
			if err != nil {
				t.Fatal(err)
			}
			if got := extension(u, tt.contentType); got != tt.want {
				t.Errorf("extension() = %q, want %q", got, tt.want)
			}
		})
	}
}
