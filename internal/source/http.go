package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"purchase-dashboard/internal/models"
)

const maxDownloadBytes = 64 << 20

// HTTPReader downloads a workbook or CSV file and parses it in memory.
type HTTPReader struct {
	URL    string
	Sheet  string
	Client *http.Client
	// MaxBytes caps the download size. Zero means maxDownloadBytes.
	MaxBytes int64
}

func (r *HTTPReader) limit() int64 {
	if r.MaxBytes > 0 {
		return r.MaxBytes
	}
	return maxDownloadBytes
}

func (r *HTTPReader) Read(ctx context.Context) ([]models.Row, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := r.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", r.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", r.URL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, r.limit()+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > r.limit() {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrSourceTooLarge, r.URL, r.limit())
	}

	if isCSV(r.URL, resp.Header.Get("Content-Type")) {
		return readCSV(ctx, bytes.NewReader(body))
	}
	return readWorkbookFrom(ctx, bytes.NewReader(body), r.Sheet)
}

func isCSV(rawURL, contentType string) bool {
	if strings.HasPrefix(contentType, "text/csv") {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(path.Ext(u.Path), ".csv")
}
