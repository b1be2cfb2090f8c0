// Package totp validates resolved secrets and keeps the clock estimate used to
// show codes for them.
package totp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/bashhack/otpimport/internal/constants"
)

// Enroller accepts a resolved secret. Enroll must be called before Synchronize.
type Enroller interface {
	// Enroll checks that secret can drive an authenticator
	Enroll(secret string) error

	// Synchronize aligns the enroller's clock with a trusted time source
	Synchronize(ctx context.Context) error
}

// DefaultEnroller validates secrets with pquerna/otp and estimates clock drift
// from the Date header of a HEAD request.
type DefaultEnroller struct {
	client  *http.Client
	syncURL string
	enabled bool
	offset  atomic.Int64
	now     func() time.Time
}

// Ensure DefaultEnroller implements Enroller interface
var _ Enroller = (*DefaultEnroller)(nil)

// EnrollerOption configures a DefaultEnroller
type EnrollerOption func(*DefaultEnroller)

// WithSyncURL sets the time source queried by Synchronize
func WithSyncURL(url string) EnrollerOption {
	return func(e *DefaultEnroller) { e.syncURL = url }
}

// WithSyncTimeout bounds the time source request
func WithSyncTimeout(d time.Duration) EnrollerOption {
	return func(e *DefaultEnroller) {
		if d > 0 {
			e.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the client used by Synchronize
func WithHTTPClient(c *http.Client) EnrollerOption {
	return func(e *DefaultEnroller) {
		if c != nil {
			e.client = c
		}
	}
}

// WithoutSync turns Synchronize into a no-op
func WithoutSync() EnrollerOption {
	return func(e *DefaultEnroller) { e.enabled = false }
}

// NewDefaultEnroller creates a new DefaultEnroller
func NewDefaultEnroller(opts ...EnrollerOption) *DefaultEnroller {
	e := &DefaultEnroller{
		client:  &http.Client{Timeout: constants.TimeSyncTimeout},
		syncURL: constants.TimeSyncURL,
		enabled: true,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enroll generates a code for secret at the corrected time and discards it.
// Secrets that are not valid base32 are rejected.
func (e *DefaultEnroller) Enroll(secret string) error {
	if secret == "" {
		return errors.New("empty secret")
	}
	if _, err := GenerateForTime(secret, e.Now()); err != nil {
		return err
	}
	return nil
}

// Synchronize estimates the offset between the local clock and syncURL.
// The request round trip is split evenly when computing the offset.
func (e *DefaultEnroller) Synchronize(ctx context.Context) error {
	if !e.enabled {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, e.syncURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build time sync request: %w", err)
	}

	sent := e.now()
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("time sync request failed: %w", err)
	}
	defer resp.Body.Close()
	received := e.now()

	date := resp.Header.Get("Date")
	if date == "" {
		return errors.New("time source sent no Date header")
	}
	serverTime, err := http.ParseTime(date)
	if err != nil {
		return fmt.Errorf("invalid Date header %q: %w", date, err)
	}

	midpoint := sent.Add(received.Sub(sent) / 2)
	e.offset.Store(int64(serverTime.Sub(midpoint)))
	return nil
}

// Offset is the last measured server time minus local time
func (e *DefaultEnroller) Offset() time.Duration {
	return time.Duration(e.offset.Load())
}

// Now is the local time corrected by Offset
func (e *DefaultEnroller) Now() time.Time {
	return e.now().Add(e.Offset())
}

// Codes returns the current and next code for secret at the corrected time
func (e *DefaultEnroller) Codes(secret string) (current string, next string, err error) {
	return GenerateConsecutiveCodes(secret, e.Now())
}
