// Package fetch downloads barcode images referenced by a URL.
package fetch

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"github.com/bashhack/otpimport/internal/constants"
	"github.com/bashhack/otpimport/internal/failure"
	"github.com/bashhack/otpimport/internal/secure"
)

// Fetcher performs a single bounded GET for an image
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxBytes  int64
	strict    bool
}

// Option configures a Fetcher
type Option func(*Fetcher)

// WithTimeout overrides the overall request timeout
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.client.Timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxBytes bounds the response body; zero or less disables the bound
func WithMaxBytes(n int64) Option {
	return func(f *Fetcher) { f.maxBytes = n }
}

// WithTransport replaces the underlying round tripper. It is still wrapped
// for transparent gzip/zstd decoding.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) {
		if rt != nil {
			f.client.Transport = gzhttp.Transport(rt)
		}
	}
}

// WithStrictAccepted only accepts 202 Accepted responses. Some older
// integrations expect that narrower check; any other 2xx is refused.
func WithStrictAccepted() Option {
	return func(f *Fetcher) { f.strict = true }
}

// New returns a Fetcher with the default timeout, user agent and size limit
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout:       constants.FetchTimeout,
			Transport:     gzhttp.Transport(http.DefaultTransport),
			CheckRedirect: limitRedirects,
		},
		userAgent: constants.FetchUserAgent,
		maxBytes:  constants.MaxImageBytes,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func limitRedirects(req *http.Request, via []*http.Request) error {
	if len(via) >= constants.MaxRedirects {
		return fmt.Errorf("stopped after %d redirects", constants.MaxRedirects)
	}
	return nil
}

// Fetch downloads rawURL and returns the body when the response is a success
// with an image/* content type. Every other outcome, including timeouts and
// cancellation, is a NetworkFailure carrying the underlying cause. An empty
// body is returned as is and left for the decoder to reject.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	msg := "Cannot load QR code image from " + rawURL

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, failure.Wrap(failure.NetworkFailure, err, msg)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, failure.Wrap(failure.NetworkFailure, err, msg)
	}
	defer resp.Body.Close()

	if err := f.checkStatus(resp.StatusCode); err != nil {
		return nil, failure.Wrap(failure.NetworkFailure, err, msg)
	}

	contentType := resp.Header.Get("Content-Type")
	if !IsImageContentType(contentType) {
		return nil, failure.Wrap(failure.NetworkFailure, &ContentTypeError{ContentType: contentType}, msg)
	}

	data, err := secure.ReadBounded(resp.Body, f.maxBytes)
	if err != nil {
		return nil, failure.Wrap(failure.NetworkFailure, err, msg)
	}
	return data, nil
}

func (f *Fetcher) checkStatus(code int) error {
	if f.strict {
		if code != http.StatusAccepted {
			return &StatusError{Code: code}
		}
		return nil
	}
	if code < 200 || code > 299 {
		return &StatusError{Code: code}
	}
	return nil
}

// IsImageContentType reports whether a Content-Type header names an image.
// Parameters are ignored and the comparison is case-insensitive.
func IsImageContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(contentType)
	}
	return strings.HasPrefix(strings.ToLower(mediaType), "image/")
}

// StatusError is returned for responses outside the accepted status range
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d %s", e.Code, http.StatusText(e.Code))
}

// ContentTypeError is returned when the response is not an image
type ContentTypeError struct {
	ContentType string
}

func (e *ContentTypeError) Error() string {
	if e.ContentType == "" {
		return "response has no content type, expected an image"
	}
	return fmt.Sprintf("response content type %q is not an image", e.ContentType)
}
