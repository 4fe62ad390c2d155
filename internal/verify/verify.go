// Package verify reads a composited image back with a QR decoder to confirm
// a decorated symbol still scans.
package verify

import (
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"
)

var (
	// ErrUnreadable is returned when no QR symbol can be read from the image.
	ErrUnreadable = errors.New("no QR code found in image")
	// ErrMismatch is returned by Check when the decoded text differs from the payload.
	ErrMismatch = errors.New("decoded payload does not match")
)

// Decode returns the text of the QR symbol found in img. It tries the hybrid
// binarizer first and falls back to the global histogram one.
func Decode(img image.Image) (string, error) {
	src := gozxing.NewLuminanceSourceFromImage(img)
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}

	var lastErr error
	binarizers := []gozxing.Binarizer{
		gozxing.NewHybridBinarizer(src),
		gozxing.NewGlobalHistgramBinarizer(src),
	}
	for _, binarizer := range binarizers {
		bmp, err := gozxing.NewBinaryBitmap(binarizer)
		if err != nil {
			lastErr = err
			continue
		}
		result, err := qrcode.NewQRCodeReader().Decode(bmp, hints)
		if err != nil {
			lastErr = err
			continue
		}
		return result.GetText(), nil
	}
	return "", fmt.Errorf("%w: %v", ErrUnreadable, lastErr)
}

// Check decodes img and compares the result with payload.
func Check(img image.Image, payload string) error {
	text, err := Decode(img)
	if err != nil {
		return err
	}
	if text != payload {
		return fmt.Errorf("%w: got %q", ErrMismatch, text)
	}
	return nil
}
