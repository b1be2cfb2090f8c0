// Package confirm renders the barcode shown after a secret has been enrolled.
package confirm

import (
	"fmt"
	"io"

	"github.com/pquerna/otp"

	"github.com/bashhack/otpimport/internal/constants"
	"github.com/bashhack/otpimport/internal/provision"
	"github.com/bashhack/otpimport/internal/qrcode"
)

// Encoder builds the canonical provisioning URI for a Result and draws it
type Encoder struct {
	qr *qrcode.Encoder
}

// New returns an Encoder backed by the QR code writer
func New() *Encoder {
	return &Encoder{qr: qrcode.NewEncoder()}
}

// Encode returns a width x height PNG of
// otpauth://{type}/{label}?secret={secret} together with the URI itself.
// The code is drawn without a quiet zone.
func (e *Encoder) Encode(r provision.Result, width, height int) ([]byte, string, error) {
	uri := r.URI()

	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return nil, "", fmt.Errorf("invalid provisioning URI: %w", err)
	}
	if key.Type() != r.AlgorithmType() || key.Secret() != r.SecretKey() {
		return nil, "", fmt.Errorf("provisioning URI does not round-trip")
	}

	png, err := e.qr.EncodePNG(uri, width, height, constants.ConfirmationMargin)
	if err != nil {
		return nil, "", fmt.Errorf("failed to render confirmation QR code: %w", err)
	}
	return png, uri, nil
}

// WriteTerminal draws the confirmation code for r as text on w
func (e *Encoder) WriteTerminal(w io.Writer, r provision.Result) error {
	return e.qr.WriteTerminal(w, r.URI())
}
