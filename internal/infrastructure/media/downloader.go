// Package media downloads feed media files and stores them in object
// storage.
package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Downloaded holds the bytes and content type of one fetched media file
type Downloaded struct {
	Body        []byte
	ContentType string
}

// Downloader fetches media files over HTTP. Downloads share a rate limiter
// so a large feed cannot hammer the vendor's CDN, and bodies are capped at
// maxBytes.
type Downloader struct {
	client   *http.Client
	limiter  *rate.Limiter
	maxBytes int64
}

// NewDownloader creates a downloader with the given per-request timeout,
// request rate and body size cap
func NewDownloader(timeout time.Duration, perSecond float64, burst int, maxBytes int64) *Downloader {
	return &Downloader{
		client:   &http.Client{Timeout: timeout},
		limiter:  rate.NewLimiter(rate.Limit(perSecond), burst),
		maxBytes: maxBytes,
	}
}

// Download fetches one URL, honoring the shared rate limit
func (d *Downloader) Download(ctx context.Context, url string) (*Downloaded, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build media request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download media: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, d.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read media body: %w", err)
	}
	if int64(len(body)) > d.maxBytes {
		return nil, fmt.Errorf("download media: body exceeds %d bytes", d.maxBytes)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	return &Downloaded{Body: body, ContentType: contentType}, nil
}
