/*
	fetcher package retrieves the full text of a document over HTTP. A fetch is
	a single blocking GET request. Transport, status and decode failures are
	all reported as errors wrapping ErrFetch so that callers can decide on a
	retry policy. The fetcher itself never retries and never caches.
*/

package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

// ErrFetch is wrapped by every error returned from Fetch.
var ErrFetch = errors.New("fetch failed")

// URLGetter should be implemented by objects that perform HTTP requests.
// *http.Client satisfies it.
type URLGetter interface {
	Do(req *http.Request) (*http.Response, error)
}

// PrivateNetworkDetector should be implemented by objects that can detect
// whether a host resolves to a private network address.
type PrivateNetworkDetector interface {
	IsNetworkPrivate(address string) (bool, error)
}

// Config serves as a configuration object for the fetcher.
type Config struct {
	// An API for performing HTTP requests. If not specified,
	// http.DefaultClient will be used instead.
	URLGetter URLGetter

	// An API for detecting private network addresses. When set, documents
	// hosted on private networks are refused.
	PrivateNetworkDetector PrivateNetworkDetector

	// The maximum accepted body size in bytes. Larger documents are reported
	// as failed fetches instead of being truncated. Zero disables the limit.
	MaxContentBytes int64
}

// Fetcher retrieves document contents by URL.
type Fetcher struct {
	urlGetter   URLGetter
	netDetector PrivateNetworkDetector
	maxBytes    int64
}

// New returns a fetcher configured with cfg.
func New(cfg Config) *Fetcher {
	if cfg.URLGetter == nil {
		cfg.URLGetter = http.DefaultClient
	}

	return &Fetcher{
		urlGetter:   cfg.URLGetter,
		netDetector: cfg.PrivateNetworkDetector,
		maxBytes:    cfg.MaxContentBytes,
	}
}

// Fetch performs a GET request for rawURL and returns the response body as a
// string. Only 2xx responses with a textual (or absent) content type and a
// valid UTF-8 body are accepted.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}

	if f.netDetector != nil {
		isPrivate, err := f.netDetector.IsNetworkPrivate(parsed.Hostname())
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrFetch, rawURL, err)
		}

		if isPrivate {
			return "", fmt.Errorf("%w: %s: host resolves to a private network", ErrFetch, rawURL)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := f.urlGetter.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetch, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s: unexpected status %d", ErrFetch, rawURL, resp.StatusCode)
	}

	if contentType := resp.Header.Get("Content-Type"); !isTextual(contentType) {
		return "", fmt.Errorf("%w: %s: unsupported content type %q", ErrFetch, rawURL, contentType)
	}

	body, err := f.readBody(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFetch, rawURL, err)
	}

	if !utf8.Valid(body) {
		return "", fmt.Errorf("%w: %s: body is not valid UTF-8", ErrFetch, rawURL)
	}

	return string(body), nil
}

func (f *Fetcher) readBody(r io.Reader) ([]byte, error) {
	if f.maxBytes <= 0 {
		return io.ReadAll(r)
	}

	body, err := io.ReadAll(io.LimitReader(r, f.maxBytes+1))
	if err != nil {
		return nil, err
	}

	if int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("body exceeds %d bytes", f.maxBytes)
	}

	return body, nil
}

// isTextual reports whether a Content-Type header describes a document the
// term extraction can work with.
func isTextual(contentType string) bool {
	if contentType == "" {
		return true
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return strings.HasPrefix(mediaType, "text/") || strings.HasSuffix(mediaType, "html")
}
