// Package label prints a classification to a PDF label: the barcode symbol
// on top, the part or category details below it.
package label

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/jung-kurt/gofpdf"
	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"

	"easyfilter/pkg/catalog"
	"easyfilter/pkg/log"
	"easyfilter/pkg/metrics"
	"easyfilter/pkg/render"
)

const (
	symbolWidth  = 300
	symbolHeight = 100

	pageWidthMM  = 100.0
	marginMM     = 5.0
	symbolMM     = 25.0
	lineHeightMM = 4.5
	fontSize     = 9
)

// Writer renders labels. Without a UTF-8 font only the ASCII parts of the
// text can be printed, so Korean copy is replaced by English field names.
type Writer struct {
	fontPath string
	rec      *metrics.Recorder
}

// NewWriter creates a label writer. fontPath is an optional TrueType font.
func NewWriter(fontPath string, rec *metrics.Recorder) *Writer {
	return &Writer{fontPath: fontPath, rec: rec}
}

// WriteFile writes the label for res to path.
func (w *Writer) WriteFile(path string, res *catalog.Classification) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}
	if err := w.Write(file, res); err != nil {
		file.Close()
		return fmt.Errorf("failed to write label %s: %w", path, err)
	}
	return file.Close()
}

// Write renders the label for res as a single PDF page.
func (w *Writer) Write(out io.Writer, res *catalog.Classification) error {
	return w.rec.Record(metrics.MLabel, func() error {
		img, format, err := Symbol(res.Barcode)
		if err != nil {
			return err
		}
		log.Debug("Label for %s encoded as %s", res.Barcode, format)

		lines := w.lines(res)
		height := 2*marginMM + symbolMM + marginMM + float64(len(lines))*lineHeightMM
		pageSize := gofpdf.SizeType{Wd: pageWidthMM, Ht: height}

		pdf := gofpdf.NewCustom(&gofpdf.InitType{UnitStr: "mm", Size: pageSize})
		pdf.SetMargins(marginMM, marginMM, marginMM)
		pdf.SetAutoPageBreak(false, 0)
		pdf.AddPageFormat("P", pageSize)

		if err := placeSymbol(pdf, img); err != nil {
			return err
		}

		if w.fontPath != "" {
			pdf.AddUTF8Font("label", "", w.fontPath)
			pdf.SetFont("label", "", fontSize)
		} else {
			pdf.SetFont("Helvetica", "", fontSize)
		}
		pdf.SetXY(marginMM, marginMM+symbolMM+marginMM)
		for _, l := range lines {
			pdf.CellFormat(0, lineHeightMM, l, "", 1, "L", false, 0, "")
		}
		return pdf.Output(out)
	})
}

// lines picks the label text. Korean copy is only used with a UTF-8 font.
func (w *Writer) lines(res *catalog.Classification) []string {
	if w.fontPath != "" {
		return render.Lines(res)
	}
	lines := []string{"Barcode: " + res.Barcode}
	if res.Kind == catalog.KindKnown {
		lines = append(lines, "Models: "+asciiOnly(strings.Join(res.Record.ApplicableModels, ", ")))
		for _, v := range res.Record.Variants {
			lines = append(lines,
				"Part: "+asciiOnly(v.PartName),
				"Part No.: "+asciiOnly(v.PartNumber),
			)
		}
		return lines
	}
	return append(lines, "Category: "+res.Category.String())
}

// placeSymbol embeds the symbol as a JPEG across the top of the page.
func placeSymbol(pdf *gofpdf.Fpdf, img image.Image) error {
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 95}); err != nil {
		return fmt.Errorf("jpeg encoding failed: %w", err)
	}
	options := gofpdf.ImageOptions{ImageType: "JPEG"}
	pdf.RegisterImageOptionsReader("symbol.jpg", options, buf)
	pdf.ImageOptions("symbol.jpg", marginMM, marginMM, pageWidthMM-2*marginMM, symbolMM, false, options, 0, "")
	return pdf.Error()
}

// Symbol encodes a normalized barcode with the symbology matching its length.
// Codes that the retail symbologies reject, such as bad check digits or odd
// lengths, fall back to Code 128.
func Symbol(code string) (image.Image, gozxing.BarcodeFormat, error) {
	var encoder gozxing.Writer
	var format gozxing.BarcodeFormat
	switch len(code) {
	case 13:
		encoder, format = oned.NewEAN13Writer(), gozxing.BarcodeFormat_EAN_13
	case 12:
		encoder, format = oned.NewUPCAWriter(), gozxing.BarcodeFormat_UPC_A
	case 8:
		encoder, format = oned.NewEAN8Writer(), gozxing.BarcodeFormat_EAN_8
	}
	if encoder != nil {
		img, err := encoder.Encode(code, format, symbolWidth, symbolHeight, nil)
		if err == nil {
			return img, format, nil
		}
		log.Debug("Falling back to Code 128 for %s: %v", code, err)
	}

	img, err := oned.NewCode128Writer().Encode(code, gozxing.BarcodeFormat_CODE_128, symbolWidth, symbolHeight, nil)
	if err != nil {
		return nil, gozxing.BarcodeFormat_CODE_128, fmt.Errorf("failed to encode %s: %w", code, err)
	}
	return img, gozxing.BarcodeFormat_CODE_128, nil
}

func asciiOnly(s string) string {
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	return strings.ReplaceAll(s, "()", "")
}
