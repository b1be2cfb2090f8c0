package classify

import (
	"encoding/base64"
	"strings"

	"github.com/bashhack/otpimport/internal/failure"
)

// DataURI is the decoded form of a data:image/...;base64 input
type DataURI struct {
	Subtype string
	Data    []byte
}

// ParseDataURI extracts and base64-decodes the image payload. Whitespace that
// survives copy/paste line wrapping is removed, and unpadded payloads are
// accepted.
func ParseDataURI(raw string) (DataURI, error) {
	m := dataURIPattern.FindStringSubmatch(raw)
	if m == nil {
		return DataURI{}, failure.New(failure.DecodeFailure, "Not an inline image")
	}

	payload := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, m[2])

	enc := base64.StdEncoding
	if !strings.HasSuffix(payload, "=") && len(payload)%4 != 0 {
		enc = base64.RawStdEncoding
	}

	data, err := enc.DecodeString(payload)
	if err != nil {
		return DataURI{}, failure.Wrap(failure.DecodeFailure, err, "Cannot read the inline QR code image")
	}
	if len(data) == 0 {
		return DataURI{}, failure.New(failure.DecodeFailure, "The inline QR code image is empty")
	}

	return DataURI{Subtype: strings.ToLower(m[1]), Data: data}, nil
}
