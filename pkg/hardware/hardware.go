package hardware

import (
	"context"
	"errors"
	"fmt"
	"image"

	"easyfilter/pkg/config"
)

var (
	// ErrNotReady means the camera has no frame yet; try again on the next tick.
	ErrNotReady = errors.New("no frame available yet")
	// ErrExhausted means a finite frame source has nothing left to give.
	ErrExhausted = errors.New("no more frames")
	// ErrClosed is returned by Frame on a camera that is not open.
	ErrClosed = errors.New("camera is not open")
)

// Camera is a source of frames with explicit acquire and release.
type Camera interface {
	// Open acquires the device. A camera may be reopened after Close.
	Open(ctx context.Context) error
	// Frame returns the current frame.
	Frame(ctx context.Context) (image.Image, error)
	// Close releases the device. Closing a closed camera is a no-op.
	Close() error
	Name() string
}

// New selects and creates the appropriate camera based on config.
func New(cfg *config.Config) (Camera, error) {
	switch cfg.HardwareType {
	case config.HWCore:
		return NewCore(), nil
	case config.HWDisk:
		return NewDisk(cfg.Frames), nil
	case config.HWPeripheral:
		return NewPeripheral(cfg), nil
	default:
		return nil, fmt.Errorf("unknown hardware type specified: %s", cfg.HardwareType)
	}
}
