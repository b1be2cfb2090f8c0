package constants

import "time"

const (
	// FetchTimeout bounds a single remote image download, redirects included
	FetchTimeout = 20 * time.Second

	// FetchUserAgent is sent with every image request. Some QR hosting pages
	// only serve the image to what looks like a desktop browser.
	FetchUserAgent = "Mozilla/4.0 (compatible; MSIE 8.0; Windows NT 6.1; Trident/4.0)"

	// MaxRedirects mirrors net/http's default redirect policy
	MaxRedirects = 10

	// MaxImageBytes caps how much of a remote or local image is read
	MaxImageBytes int64 = 10 << 20

	// DefaultAlgorithm is used when the input carries no provisioning URI
	DefaultAlgorithm = "totp"

	// ConfirmationSize is the default width and height of the confirmation QR in pixels
	ConfirmationSize = 256

	// ConfirmationMargin is the quiet zone around the confirmation QR, in modules
	ConfirmationMargin = 0

	// TimeSyncURL answers HEAD requests with a Date header used to estimate clock drift
	TimeSyncURL = "https://www.google.com"

	// TimeSyncTimeout bounds the enrollment clock synchronization request
	TimeSyncTimeout = 10 * time.Second

	// MaxParallelResolutions limits concurrent resolutions when several inputs are given
	MaxParallelResolutions = 4

	// EnvPrefix namespaces all configuration environment variables
	EnvPrefix = "OTPIMPORT_"
)
