package hardware

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"easyfilter/pkg/log"
)

// Disk reads frames from image files. PDF files contribute every image
// embedded in them, in object order.
type Disk struct {
	paths []string

	mu      sync.Mutex
	next    int
	pending []image.Image
	open    bool
}

// NewDisk creates a camera over the given files.
func NewDisk(paths []string) *Disk {
	return &Disk{paths: paths}
}

func (d *Disk) Name() string { return "Disk" }

// Open checks that every file exists and rewinds to the first one.
func (d *Disk) Open(_ context.Context) error {
	if len(d.paths) == 0 {
		return errors.New("no image files given")
	}
	for _, p := range d.paths {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("cannot use %s as a frame: %w", p, err)
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next, d.pending, d.open = 0, nil, true
	return nil
}

func (d *Disk) Frame(_ context.Context) (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return nil, ErrClosed
	}

	for len(d.pending) == 0 {
		if d.next >= len(d.paths) {
			return nil, ErrExhausted
		}
		p := d.paths[d.next]
		d.next++

		imgs, err := readFrames(p)
		if err != nil {
			return nil, err
		}
		log.Debug("Read %d frame(s) from %s", len(imgs), p)
		d.pending = imgs
	}

	f := d.pending[0]
	d.pending = d.pending[1:]
	return f, nil
}

func (d *Disk) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open, d.pending = false, nil
	return nil
}

// readFrames decodes a single image file, or every image inside a PDF.
func readFrames(path string) ([]image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file %s: %w", path, err)
	}
	defer file.Close()

	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return readPDFFrames(file, path)
	}

	img, err := decodeImage(file)
	if err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", path, err)
	}
	return []image.Image{img}, nil
}

// readPDFFrames uses pdfcpu to pull raw images out of the PDF wrapper.
func readPDFFrames(file *os.File, path string) ([]image.Image, error) {
	extracted, err := api.ExtractImagesRaw(file, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("could not extract images from PDF %s: %w", path, err)
	}

	var frames []image.Image
	for _, page := range extracted {
		objNrs := make([]int, 0, len(page))
		for nr := range page {
			objNrs = append(objNrs, nr)
		}
		sort.Ints(objNrs)

		for _, nr := range objNrs {
			img, err := decodeImage(page[nr])
			if err != nil {
				log.Debug("Skipping image object %d in %s: %v", nr, path, err)
				continue
			}
			frames = append(frames, img)
		}
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no decodable images found in %s", path)
	}
	return frames, nil
}

func decodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("image.Decode failed: %w", err)
	}
	return img, nil
}
