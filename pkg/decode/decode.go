// Package decode finds and decodes a barcode or QR code in a camera frame.
package decode

import (
	"errors"
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"

	"easyfilter/pkg/log"
)

// ErrNoCode means the frame contains no readable code.
var ErrNoCode = errors.New("no code found")

// Decoder turns a frame into the text of the code it shows.
type Decoder interface {
	Decode(img image.Image) (string, error)
}

// namedReader pairs a gozxing reader with a name for logging.
type namedReader struct {
	name   string
	reader gozxing.Reader
}

// ZXing tries each retail symbology, then Code 128, then QR. UPC-A goes
// first so a 12-digit symbol is not read back as EAN-13 with a leading 0.
type ZXing struct {
	readers []namedReader
	hints   map[gozxing.DecodeHintType]interface{}
}

// NewZXing creates a decoder. tryHarder trades speed for accuracy on
// blurry or skewed frames.
func NewZXing(tryHarder bool) *ZXing {
	hints := make(map[gozxing.DecodeHintType]interface{})
	if tryHarder {
		hints[gozxing.DecodeHintType_TRY_HARDER] = true
	}
	return &ZXing{
		readers: []namedReader{
			{"UPC-A", oned.NewUPCAReader()},
			{"EAN-13", oned.NewEAN13Reader()},
			{"EAN-8", oned.NewEAN8Reader()},
			{"Code128", oned.NewCode128Reader()},
			{"QR", qrcode.NewQRCodeReader()},
		},
		hints: hints,
	}
}

// Decode returns the text of the first code any reader finds, or ErrNoCode.
func (z *ZXing) Decode(img image.Image) (string, error) {
	if img == nil {
		return "", ErrNoCode
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("gozxing.NewBinaryBitmapFromImage failed: %w", err)
	}

	for _, r := range z.readers {
		result, err := r.reader.Decode(bmp, z.hints)
		r.reader.Reset()
		if err != nil {
			continue
		}
		if text := result.GetText(); text != "" {
			log.Trace("Decoded %s code: %s", r.name, text)
			return text, nil
		}
	}
	return "", ErrNoCode
}
