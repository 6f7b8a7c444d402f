package hardware

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"easyfilter/pkg/config"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			if x%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	p := filepath.Join(dir, name)
	f, err := os.Create(p)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return p
}

// writePDF embeds img as a JPEG on a single page.
func writePDF(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatal(err)
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	opts := gofpdf.ImageOptions{ImageType: "JPEG"}
	pdf.RegisterImageOptionsReader("frame.jpg", opts, buf)
	pdf.ImageOptions("frame.jpg", 10, 10, 80, 40, false, opts, 0, "")

	p := filepath.Join(dir, name)
	if err := pdf.OutputFileAndClose(p); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCore(t *testing.T) {
	ctx := context.Background()
	frame := testImage(4, 4)
	c := NewCore(nil, frame)

	if _, err := c.Frame(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed before Open, got %v", err)
	}
	if err := c.Open(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Frame(ctx); !errors.Is(err, ErrNotReady) {
		t.Errorf("expected ErrNotReady for a nil frame, got %v", err)
	}
	got, err := c.Frame(ctx)
	if err != nil || got != frame {
		t.Errorf("expected the second frame, got %v, %v", got, err)
	}
	if _, err := c.Frame(ctx); !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}

	c.Close()
	c.Close()
	opens, closes, open := c.Stats()
	if opens != 1 || closes != 1 || open {
		t.Errorf("stats = %d opens, %d closes, open=%v", opens, closes, open)
	}
}

func TestCoreOpenError(t *testing.T) {
	denied := errors.New("permission denied")
	c := NewCore()
	c.OpenErr = denied
	if err := c.Open(context.Background()); !errors.Is(err, denied) {
		t.Errorf("expected %v, got %v", denied, err)
	}
}

func TestDisk(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	a := writePNG(t, dir, "a.png", testImage(20, 10))
	b := writePNG(t, dir, "b.png", testImage(30, 10))

	d := NewDisk([]string{a, b})
	if err := d.Open(ctx); err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	for _, wantWidth := range []int{20, 30} {
		img, err := d.Frame(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if img.Bounds().Dx() != wantWidth {
			t.Errorf("width = %d, want %d", img.Bounds().Dx(), wantWidth)
		}
	}
	if _, err := d.Frame(ctx); !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}

	t.Run("reopen rewinds", func(t *testing.T) {
		if err := d.Open(ctx); err != nil {
			t.Fatal(err)
		}
		if _, err := d.Frame(ctx); err != nil {
			t.Errorf("expected a frame after reopening, got %v", err)
		}
	})
}

func TestDiskPDF(t *testing.T) {
	ctx := context.Background()
	p := writePDF(t, t.TempDir(), "scan.pdf", testImage(64, 32))

	d := NewDisk([]string{p})
	if err := d.Open(ctx); err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	img, err := d.Frame(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 32 {
		t.Errorf("bounds = %v", img.Bounds())
	}
}

func TestDiskOpenErrors(t *testing.T) {
	ctx := context.Background()
	if err := NewDisk(nil).Open(ctx); err == nil {
		t.Error("expected error with no files")
	}
	if err := NewDisk([]string{"/does/not/exist.png"}).Open(ctx); err == nil {
		t.Error("expected error for a missing file")
	}
}

func TestDiskUndecodableFile(t *testing.T) {
	ctx := context.Background()
	p := filepath.Join(t.TempDir(), "notes.png")
	if err := os.WriteFile(p, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}
	d := NewDisk([]string{p})
	if err := d.Open(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Frame(ctx); err == nil {
		t.Error("expected a decode error")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		hw      config.HardwareType
		name    string
		wantErr bool
	}{
		{config.HWCore, "Core", false},
		{config.HWDisk, "Disk", false},
		{config.HWPeripheral, "Peripheral", false},
		{"Quantum", "", true},
	}
	for _, tt := range tests {
		t.Run(string(tt.hw), func(t *testing.T) {
			cam, err := New(&config.Config{HardwareType: tt.hw})
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && cam.Name() != tt.name {
				t.Errorf("name = %s, want %s", cam.Name(), tt.name)
			}
		})
	}
}

func TestPeripheralUnknownSystem(t *testing.T) {
	p := NewPeripheral(&config.Config{System: "Amiga", PicturePath: t.TempDir()})
	if err := p.Open(context.Background()); err == nil {
		t.Error("expected an error for an unsupported system")
	}
	if _, err := p.Frame(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}
