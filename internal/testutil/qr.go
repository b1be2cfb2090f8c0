package testutil

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"
)

// QRCodePNG renders text as a size x size PNG QR code with the standard quiet
// zone. It is produced independently of the package under test so decoders
// can be checked against a known-good image.
func QRCodePNG(text string, size int) ([]byte, error) {
	return qrcode.Encode(text, qrcode.Medium, size)
}

// QRCodeDataURI returns QRCodePNG wrapped as a data:image/png;base64 URI
func QRCodeDataURI(text string, size int) (string, error) {
	data, err := QRCodePNG(text, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

// CheckerPNG returns a valid PNG that contains no barcode
func CheckerPNG(size, cell int) []byte {
	img := image.NewGray(image.Rect(0, 0, size, size))
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			if (x/cell+y/cell)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}

	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
