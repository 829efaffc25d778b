package imageurl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
)

// Checker reports whether an asset URL is reachable.
type Checker interface {
	Exists(ctx context.Context, assetURL string) (bool, error)
}

// CheckerFunc adapts a function to the Checker interface.
type CheckerFunc func(ctx context.Context, assetURL string) (bool, error)

// Exists calls f.
func (f CheckerFunc) Exists(ctx context.Context, assetURL string) (bool, error) {
	return f(ctx, assetURL)
}

// HTTPChecker checks existence with a HEAD request. Any 2xx status counts as
// present, 404 and 410 as absent; other statuses are errors.
type HTTPChecker struct {
	client *http.Client
}

// NewHTTPChecker returns a checker using client, or a client with timeout when nil.
func NewHTTPChecker(client *http.Client, timeout time.Duration) *HTTPChecker {
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPChecker{client: client}
}

func (p *HTTPChecker) Exists(ctx context.Context, assetURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, assetURL, nil)
	if err != nil {
		return false, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		return true, nil
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return false, nil
	}
	return false, fmt.Errorf("imageurl: check status %d", resp.StatusCode)
}

// GCSChecker checks existence through the Cloud Storage API instead of the
// public download endpoint. Non-storage URLs are reported as missing.
type GCSChecker struct {
	client *storage.Client
}

// NewGCSChecker wraps a storage client.
func NewGCSChecker(client *storage.Client) *GCSChecker {
	return &GCSChecker{client: client}
}

func (p *GCSChecker) Exists(ctx context.Context, assetURL string) (bool, error) {
	if p == nil || p.client == nil {
		return false, errors.New("imageurl: storage client not configured")
	}
	bucket, object, ok := ObjectPath(assetURL)
	if !ok {
		return false, fmt.Errorf("imageurl: not a storage url: %q", assetURL)
	}
	_, err := p.client.Bucket(bucket).Object(object).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
