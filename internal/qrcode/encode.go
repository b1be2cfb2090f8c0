package qrcode

import (
	"bytes"
	"fmt"
	"image/png"
	"io"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	skip2 "github.com/skip2/go-qrcode"
)

// Encoder renders text as a QR code image
type Encoder struct{}

// NewEncoder returns an Encoder
func NewEncoder() *Encoder {
	return &Encoder{}
}

// EncodePNG renders text as a width x height PNG with a quiet zone of margin
// modules. The code is scaled by whole modules and centred, so a size smaller
// than the symbol grows to fit it.
func (e *Encoder) EncodePNG(text string, width, height, margin int) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("failed to encode QR code: empty content")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("failed to encode QR code: invalid size %dx%d", width, height)
	}
	if margin < 0 {
		margin = 0
	}

	matrix, err := zxqr.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, width, height,
		map[gozxing.EncodeHintType]interface{}{
			gozxing.EncodeHintType_MARGIN: margin,
		})
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, matrix); err != nil {
		return nil, fmt.Errorf("failed to write QR code image: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteTerminal draws text as a QR code using half-block characters, for
// showing the confirmation code directly in a terminal
func (e *Encoder) WriteTerminal(w io.Writer, text string) error {
	q, err := skip2.New(text, skip2.Medium)
	if err != nil {
		return fmt.Errorf("failed to encode QR code: %w", err)
	}

	_, err = io.WriteString(w, q.ToSmallString(false))
	return err
}
