package render

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"net/http"
	"sync"
	"time"
)

// maxLogoBytes bounds a single logo download.
const maxLogoBytes = 4 << 20

// LogoSource resolves an overlay source into an image.
type LogoSource interface {
	Logo(ctx context.Context, source string) (image.Image, error)
}

// HTTPLogoSource downloads logos once per source and keeps them in memory.
type HTTPLogoSource struct {
	client *http.Client

	mu     sync.Mutex
	images map[string]image.Image
}

// NewHTTPLogoSource creates a logo source with the given request timeout.
func NewHTTPLogoSource(timeout time.Duration) *HTTPLogoSource {
	return &HTTPLogoSource{
		client: &http.Client{Timeout: timeout},
		images: make(map[string]image.Image),
	}
}

// Logo implements LogoSource.
func (s *HTTPLogoSource) Logo(ctx context.Context, source string) (image.Image, error) {
	s.mu.Lock()
	img, ok := s.images[source]
	s.mu.Unlock()
	if ok {
		return img, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("non-2xx status code: %d %s", resp.StatusCode, resp.Status)
	}
	img, _, err = image.Decode(io.LimitReader(resp.Body, maxLogoBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to decode logo: %w", err)
	}

	s.mu.Lock()
	s.images[source] = img
	s.mu.Unlock()
	return img, nil
}
