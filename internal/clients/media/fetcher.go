// Package media downloads evidence bytes from their storage URL.
package media

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/gabriel-vasile/mimetype"

	"evidence-service/internal/domain/analysis"
)

const defaultMIMEType = "image/jpeg"

type Fetcher struct {
	http     *http.Client
	maxBytes int64
}

func NewFetcher(httpClient *http.Client, maxBytes int64) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Fetcher{http: httpClient, maxBytes: maxBytes}
}

// Fetch downloads the media at mediaURL. Every failure wraps analysis.ErrMediaUnavailable.
func (f *Fetcher) Fetch(ctx context.Context, mediaURL string) (*analysis.Media, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrMediaUnavailable, err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrMediaUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: http %d", analysis.ErrMediaUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", analysis.ErrMediaUnavailable, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: exceeds %d bytes", analysis.ErrMediaUnavailable, f.maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", analysis.ErrMediaUnavailable)
	}

	return &analysis.Media{
		Data:     data,
		MIMEType: detectMIMEType(resp.Header.Get("Content-Type"), data),
	}, nil
}

func detectMIMEType(header string, data []byte) string {
	if mt, _, err := mime.ParseMediaType(header); err == nil && mt != "application/octet-stream" && mt != "binary/octet-stream" {
		return mt
	}
	detected := mimetype.Detect(data)
	if detected.Is("application/octet-stream") {
		return defaultMIMEType
	}
	return detected.String()
}
