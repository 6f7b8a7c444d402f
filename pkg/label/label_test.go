package label

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/makiuchi-d/gozxing"

	"easyfilter/pkg/catalog"
	"easyfilter/pkg/decode"
	"easyfilter/pkg/hardware"
	"easyfilter/pkg/metrics"
)

func TestSymbolFormats(t *testing.T) {
	tests := []struct {
		code string
		want gozxing.BarcodeFormat
	}{
		{"8809591517872", gozxing.BarcodeFormat_EAN_13},
		{"8809591517873", gozxing.BarcodeFormat_CODE_128}, // bad check digit
		{"96385074", gozxing.BarcodeFormat_EAN_8},
		{"12345678901", gozxing.BarcodeFormat_CODE_128},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			img, format, err := Symbol(tt.code)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if format != tt.want {
				t.Errorf("format = %s, want %s", format, tt.want)
			}
			if img.Bounds().Dx() < symbolWidth {
				t.Errorf("symbol too narrow: %v", img.Bounds())
			}
		})
	}
}

func TestSymbolDecodes(t *testing.T) {
	for _, code := range []string{"8809841630962", "96385074", "12345678901"} {
		img, _, err := Symbol(code)
		if err != nil {
			t.Fatal(err)
		}
		got, err := decode.NewZXing(false).Decode(img)
		if err != nil {
			t.Fatalf("decode %s: %v", code, err)
		}
		if got != code {
			t.Errorf("decoded %s, want %s", got, code)
		}
	}
}

func TestWriteLabel(t *testing.T) {
	rec := metrics.NewRecorder(false)
	w := NewWriter("", rec)

	for _, code := range []string{"8809591517872", "8801234567890"} {
		res, err := catalog.Classify(code)
		if err != nil {
			t.Fatal(err)
		}
		var buf bytes.Buffer
		if err := w.Write(&buf, res); err != nil {
			t.Fatalf("write %s: %v", code, err)
		}
		if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
			t.Errorf("output for %s is not a PDF", code)
		}
	}
	if got := rec.Count(metrics.MLabel); got != 2 {
		t.Errorf("label samples = %d, want 2", got)
	}
}

func TestLabelScansBack(t *testing.T) {
	const code = "8809591514628"
	res, err := catalog.Classify(code)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "label.pdf")
	if err := NewWriter("", nil).WriteFile(path, res); err != nil {
		t.Fatal(err)
	}

	cam := hardware.NewDisk([]string{path})
	ctx := context.Background()
	if err := cam.Open(ctx); err != nil {
		t.Fatal(err)
	}
	defer cam.Close()
	frame, err := cam.Frame(ctx)
	if err != nil {
		t.Fatal(err)
	}
	got, err := decode.NewZXing(true).Decode(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != code {
		t.Errorf("decoded %s, want %s", got, code)
	}
}

func TestASCIILines(t *testing.T) {
	res, err := catalog.Classify("8809591519135")
	if err != nil {
		t.Fatal(err)
	}
	lines := NewWriter("", nil).lines(res)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "Models: M, U, AK, SS100") || strings.Contains(joined, "()") {
		t.Errorf("unexpected lines:\n%s", joined)
	}
	for _, l := range lines {
		for _, r := range l {
			if r > 127 {
				t.Fatalf("non-ASCII rune in %q", l)
			}
		}
	}

	res, err = catalog.Classify("123456789")
	if err != nil {
		t.Fatal(err)
	}
	if got := NewWriter("", nil).lines(res); got[len(got)-1] != "Category: Special" {
		t.Errorf("heuristic lines = %q", got)
	}
}
