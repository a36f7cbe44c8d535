package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Fetcher retrieves stored objects (page images) by reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// HTTPFetcher pulls objects over HTTP. A ref is either a full URL
// or a key resolved against the configured endpoint (e.g. an R2/S3
// public bucket or an internal asset server).
type HTTPFetcher struct {
	Endpoint  string
	AuthToken string
	Client    *http.Client

	// MaxBytes caps a single object download. 0 means no cap.
	MaxBytes int64
}

var _ Fetcher = &HTTPFetcher{}

func NewHTTPFetcher(endpoint, authToken string, timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPFetcher{
		Endpoint:  strings.TrimRight(endpoint, "/"),
		AuthToken: authToken,
		Client: &http.Client{
			Timeout: timeout,
		},
		MaxBytes: 20 << 20, // 20 MiB
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	url := ref
	if !strings.HasPrefix(ref, "http://") && !strings.HasPrefix(ref, "https://") {
		url = f.Endpoint + "/" + strings.TrimLeft(ref, "/")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if f.AuthToken != "" {
		req.Header.Set("Authorization", "Bearer "+f.AuthToken)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch object %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch object %s: status %d", ref, resp.StatusCode)
	}

	var reader io.Reader = resp.Body
	if f.MaxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.MaxBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read object %s: %w", ref, err)
	}
	if f.MaxBytes > 0 && int64(len(data)) > f.MaxBytes {
		return nil, fmt.Errorf("object %s exceeds %d bytes", ref, f.MaxBytes)
	}
	return data, nil
}
