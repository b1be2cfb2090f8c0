// Package qrcode reads and writes the QR barcodes that carry provisioning URIs.
package qrcode

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"

	"github.com/bashhack/otpimport/internal/constants"
	"github.com/bashhack/otpimport/internal/failure"
	"github.com/bashhack/otpimport/internal/secure"
)

// Decoder turns image bytes into the text of the QR code they contain
type Decoder struct {
	// MaxBytes bounds DecodeFile reads; zero means constants.MaxImageBytes
	MaxBytes int64
}

// NewDecoder returns a Decoder with default limits
func NewDecoder() *Decoder {
	return &Decoder{MaxBytes: constants.MaxImageBytes}
}

type decodeResult struct {
	text string
	err  error
}

// Decode reads a png, jpeg or gif image and returns the QR payload.
// Unreadable images and images without a QR code are DecodeFailure.
// Decoding runs on its own goroutine over a private copy of data, so a
// cancelled ctx returns immediately and the caller may zero data right away.
func (d *Decoder) Decode(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", failure.Wrap(failure.DecodeFailure, err, "QR code decoding cancelled")
	}
	if len(data) == 0 {
		return "", failure.New(failure.DecodeFailure, "failed to decode image: no image data")
	}

	buf := bytes.Clone(data)
	done := make(chan decodeResult, 1)
	go func() {
		defer secure.SecureZeroBytes(buf)
		text, err := decodeBytes(buf)
		done <- decodeResult{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", failure.Wrap(failure.DecodeFailure, ctx.Err(), "QR code decoding cancelled")
	case r := <-done:
		return r.text, r.err
	}
}

// DecodeFile reads the image at path and decodes it. The file handle and the
// image bytes are released on every return path.
func (d *Decoder) DecodeFile(ctx context.Context, path string) (string, error) {
	data, err := d.ReadFile(ctx, path)
	if err != nil {
		return "", err
	}
	defer secure.SecureZeroBytes(data)

	return d.Decode(ctx, data)
}

// ReadFile reads an image file, bounded by MaxBytes
func (d *Decoder) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, failure.Wrap(failure.DecodeFailure, err, "reading image file cancelled")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, failure.Wrap(failure.DecodeFailure, err, "failed to open image file")
	}
	defer f.Close()

	limit := d.MaxBytes
	if limit == 0 {
		limit = constants.MaxImageBytes
	}

	data, err := secure.ReadBounded(f, limit)
	if err != nil {
		return nil, failure.Wrap(failure.DecodeFailure, err, "failed to read image file")
	}
	return data, nil
}

func decodeBytes(data []byte) (string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", failure.Wrap(failure.DecodeFailure, err, "failed to decode image")
	}
	return DecodeImage(img)
}

// DecodeImage finds a QR code in img. Generated codes often come without a
// quiet zone, so a white border is added before binarization; a second pass
// treats the image as a pure, unrotated barcode.
func DecodeImage(img image.Image) (string, error) {
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return "", failure.Newf(failure.DecodeFailure, "failed to decode image: invalid dimensions %dx%d", b.Dx(), b.Dy())
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(withQuietZone(img))
	if err != nil {
		return "", failure.Wrap(failure.DecodeFailure, err, "failed to process image for QR reading")
	}

	reader := zxqr.NewQRCodeReader()

	result, err := reader.Decode(bmp, map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	})
	if err != nil {
		var pureErr error
		result, pureErr = reader.Decode(bmp, map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_PURE_BARCODE: true,
		})
		if pureErr != nil {
			return "", failure.Wrap(failure.DecodeFailure, err, "failed to decode QR code")
		}
	}

	text := result.GetText()
	if text == "" {
		return "", failure.New(failure.DecodeFailure, "failed to decode QR code: empty payload")
	}
	return text, nil
}

// withQuietZone copies img onto a white canvas with a border of roughly a
// tenth of its longest side
func withQuietZone(img image.Image) image.Image {
	b := img.Bounds()
	pad := max(b.Dx(), b.Dy())/10 + 8

	canvas := image.NewGray(image.Rect(0, 0, b.Dx()+2*pad, b.Dy()+2*pad))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(canvas, image.Rect(pad, pad, pad+b.Dx(), pad+b.Dy()), img, b.Min, draw.Over)

	return canvas
}
