// Package classify decides which of the supported input shapes a raw string is.
//
// Rules are tested in a fixed order and the first match wins:
//
//  1. absolute http(s) URL        -> RemoteImageURL
//  2. data:image/...;base64,...   -> DataURIImage
//  3. existing local file         -> LocalImageFile
//  4. otpauth://type/label?query  -> OtpAuthURI
//  5. anything else               -> RawSecret
//
// The file check runs before the otpauth check, so a string that is both an
// existing filename and a valid provisioning URI is treated as a file.
package classify

import (
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/bashhack/otpimport/internal/otpauth"
)

// Kind is the shape of a raw input
type Kind int

const (
	RemoteImageURL Kind = iota
	DataURIImage
	LocalImageFile
	OtpAuthURI
	RawSecret
)

func (k Kind) String() string {
	switch k {
	case RemoteImageURL:
		return "remote_image_url"
	case DataURIImage:
		return "data_uri_image"
	case LocalImageFile:
		return "local_image_file"
	case OtpAuthURI:
		return "otpauth_uri"
	case RawSecret:
		return "raw_secret"
	default:
		return "unknown"
	}
}

// IsImage reports whether the kind carries a barcode image that must be decoded
func (k Kind) IsImage() bool {
	return k == RemoteImageURL || k == DataURIImage || k == LocalImageFile
}

var (
	httpPattern    = regexp.MustCompile(`^https?://.*`)
	dataURIPattern = regexp.MustCompile(`(?is)data:image/([^;]+);base64,(.*)`)
)

// Rule is a single classification predicate
type Rule struct {
	Kind  Kind
	Match func(c *Classifier, raw string) bool
}

// Rules is the ordered predicate list. RawSecret has no rule; it is the fallthrough.
var Rules = []Rule{
	{Kind: RemoteImageURL, Match: func(_ *Classifier, raw string) bool { return IsRemoteURL(raw) }},
	{Kind: DataURIImage, Match: func(_ *Classifier, raw string) bool { return IsDataURI(raw) }},
	{Kind: LocalImageFile, Match: func(c *Classifier, raw string) bool { return c.fileExists(raw) }},
	{Kind: OtpAuthURI, Match: func(_ *Classifier, raw string) bool { return otpauth.Match(raw) }},
}

// Classifier applies Rules. FileExists is the only predicate doing I/O and may
// be replaced; nil means DefaultFileExists.
type Classifier struct {
	FileExists func(path string) bool
}

// New returns a Classifier backed by the real filesystem
func New() *Classifier {
	return &Classifier{FileExists: DefaultFileExists}
}

// Classify returns the first matching Kind, or RawSecret
func (c *Classifier) Classify(raw string) Kind {
	for _, r := range Rules {
		if r.Match(c, raw) {
			return r.Kind
		}
	}
	return RawSecret
}

func (c *Classifier) fileExists(path string) bool {
	if c == nil || c.FileExists == nil {
		return DefaultFileExists(path)
	}
	return c.FileExists(path)
}

// IsRemoteURL reports an absolute http or https URL with a host
func IsRemoteURL(raw string) bool {
	if !httpPattern.MatchString(raw) {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return u.IsAbs() && u.Host != ""
}

// IsDataURI reports an inline base64 image
func IsDataURI(raw string) bool {
	return dataURIPattern.MatchString(raw)
}

// For testing
var (
	osStat = os.Stat
	osOpen = os.Open
)

// DefaultFileExists reports whether path names an existing regular file the
// process can open for reading. Paths that cannot be valid filenames simply
// report false.
func DefaultFileExists(path string) bool {
	if path == "" || strings.ContainsRune(path, 0) {
		return false
	}
	info, err := osStat(path)
	if err != nil {
		return false
	}
	if !info.Mode().IsRegular() {
		return false
	}
	f, err := osOpen(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
