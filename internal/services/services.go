package services

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
)

// DefaultMaxBytes bounds a download. The IMDB 5000 dataset is about 1.5 MB.
const DefaultMaxBytes int64 = 256 << 20

// DatasetFetcher downloads remote datasets to temporary files.
type DatasetFetcher struct {
	httpClient *http.Client
	dir        string
	maxBytes   int64
}

// NewDatasetFetcher creates a fetcher that writes into dir (the system temp dir when empty).
func NewDatasetFetcher(client *http.Client, dir string) *DatasetFetcher {
	if client == nil {
		client = http.DefaultClient
	}

	return &DatasetFetcher{
		httpClient: client,
		dir:        dir,
		maxBytes:   DefaultMaxBytes,
	}
}

// WithMaxBytes overrides the download size limit.
func (f *DatasetFetcher) WithMaxBytes(n int64) *DatasetFetcher {
	f.maxBytes = n
	return f
}

// Fetch performs a GET request for rawURL and stores the body in a new temporary file, returning its path.
//
// Any status other than 200 is an error. The partial file is removed when the download fails.
func (f *DatasetFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("invalid dataset url %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed (status %d): %s", resp.StatusCode, rawURL)
	}

	out, err := os.CreateTemp(f.dir, "movierec-dataset-*"+extension(u, resp.Header.Get("Content-Type")))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	n, err := io.Copy(out, io.LimitReader(resp.Body, f.maxBytes+1))
	if err == nil && n > f.maxBytes {
		err = fmt.Errorf("dataset exceeds %d bytes", f.maxBytes)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(out.Name())
		return "", fmt.Errorf("failed to download %s: %w", rawURL, err)
	}

	return out.Name(), nil
}

func extension(u *url.URL, contentType string) string {
	if ext := strings.ToLower(path.Ext(u.Path)); ext == ".zip" || ext == ".csv" {
		return ext
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ".csv"
	}

	switch mediaType {
	case "application/zip", "application/x-zip-compressed":
		return ".zip"
	default:
		return ".csv"
	}
}
