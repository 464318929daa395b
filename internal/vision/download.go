package vision

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultDownloadTimeout bounds a single image download.
	DefaultDownloadTimeout = 30 * time.Second
	// DefaultMaxImageSize is the largest image accepted for inline analysis (10MB).
	DefaultMaxImageSize = 10 * 1024 * 1024
)

// Downloader fetches images by URL so they can be sent to providers inline.
type Downloader struct {
	client  *http.Client
	timeout time.Duration
	maxSize int64
}

// NewDownloader creates a Downloader. Zero values fall back to the defaults.
func NewDownloader(timeout time.Duration, maxSize int64) *Downloader {
	if timeout <= 0 {
		timeout = DefaultDownloadTimeout
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxImageSize
	}
	return &Downloader{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
		maxSize: maxSize,
	}
}

// Fetch downloads the image at imageURL and returns it as an inline Image.
// The MIME type comes from the response header, sniffed content, or the URL
// extension, in that order.
func (d *Downloader) Fetch(ctx context.Context, imageURL string) (Image, error) {
	reqCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, imageURL, nil)
	if err != nil {
		return Image{}, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return Image{}, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return Image{}, fmt.Errorf("invalid content type: expected image/*, got %s", contentType)
	}
	if resp.ContentLength > d.maxSize {
		return Image{}, fmt.Errorf("image too large: %d bytes exceeds limit of %d bytes", resp.ContentLength, d.maxSize)
	}

	// Content-Length may be missing or wrong
	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxSize+1))
	if err != nil {
		return Image{}, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > d.maxSize {
		return Image{}, fmt.Errorf("image too large: exceeds limit of %d bytes", d.maxSize)
	}
	if len(data) == 0 {
		return Image{}, fmt.Errorf("download returned empty body")
	}

	mimeType, _, _ := strings.Cut(contentType, ";")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = MIMETypeFromPath(imageURL)
	}

	return Image{URL: imageURL, Content: data, MIMEType: strings.TrimSpace(mimeType)}, nil
}
