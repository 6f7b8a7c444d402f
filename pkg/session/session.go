// Package session runs a scan: it holds the camera open and decodes frames
// until a usable barcode shows up or the scan is stopped.
package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"easyfilter/pkg/catalog"
	"easyfilter/pkg/decode"
	"easyfilter/pkg/hardware"
	"easyfilter/pkg/log"
	"easyfilter/pkg/metrics"
)

var (
	// ErrCaptureUnavailable means the camera could not be acquired.
	ErrCaptureUnavailable = errors.New("camera unavailable")
	// ErrStopped is returned by Run when the scan was stopped before a code was found.
	ErrStopped = errors.New("scan stopped")
	// ErrAlreadyScanning is returned by Start during a scan.
	ErrAlreadyScanning = errors.New("already scanning")
)

// State of the controller.
type State int32

const (
	Idle State = iota
	Scanning
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Scanning:
		return "Scanning"
	default:
		return "Unknown"
	}
}

// Controller owns the camera for the duration of a scan.
type Controller struct {
	camera   hardware.Camera
	decoder  decode.Decoder
	rec      *metrics.Recorder
	interval time.Duration
	onReject func(raw string, err error)

	scanning atomic.Bool

	mu      sync.Mutex
	id      uuid.UUID
	release func()
}

// Option configures a Controller.
type Option func(*Controller)

// WithInterval paces the loop; zero polls as fast as frames arrive.
func WithInterval(d time.Duration) Option { return func(c *Controller) { c.interval = d } }

// WithRecorder records frame, decode and session timings.
func WithRecorder(r *metrics.Recorder) Option { return func(c *Controller) { c.rec = r } }

// WithRejectHandler is called for decoded codes with too few digits. Scanning continues.
func WithRejectHandler(f func(raw string, err error)) Option {
	return func(c *Controller) { c.onReject = f }
}

// New creates an idle controller.
func New(camera hardware.Camera, decoder decode.Decoder, opts ...Option) *Controller {
	c := &Controller{camera: camera, decoder: decoder}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State reports whether a scan is in progress.
func (c *Controller) State() State {
	if c.scanning.Load() {
		return Scanning
	}
	return Idle
}

// Start acquires the camera and enters Scanning. On failure the controller
// stays Idle and the error wraps ErrCaptureUnavailable.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.scanning.Load() {
		c.mu.Unlock()
		return ErrAlreadyScanning
	}
	c.scanning.Store(true)
	c.id = uuid.New()
	c.release = nil
	id := c.id
	c.mu.Unlock()

	if err := c.camera.Open(ctx); err != nil {
		c.mu.Lock()
		if c.id == id {
			c.scanning.Store(false)
		}
		c.mu.Unlock()
		return xerrors.Errorf("%s camera: %v: %w", c.camera.Name(), err, ErrCaptureUnavailable)
	}

	started := time.Now()
	var once sync.Once
	release := func() {
		once.Do(func() {
			if err := c.camera.Close(); err != nil {
				log.Warn("[%s] Releasing camera failed: %v", id, err)
			}
			c.rec.Add(metrics.MSession, time.Since(started))
			log.Debug("[%s] Camera released", id)
		})
	}

	c.mu.Lock()
	if c.id != id || !c.scanning.Load() {
		// Stopped while the camera was opening.
		c.mu.Unlock()
		release()
		return ErrStopped
	}
	c.release = release
	c.mu.Unlock()

	log.Info("[%s] Scanning with %s camera", id, c.camera.Name())
	return nil
}

// Stop leaves Scanning and releases the camera. A running Run returns ErrStopped.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.scanning.Store(false)
	release := c.release
	c.mu.Unlock()
	if release != nil {
		release()
	}
}

// active reports whether session id is still the running one.
func (c *Controller) active(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scanning.Load() && c.id == id
}

// finish ends session id. A newer session started after a Stop is left alone.
func (c *Controller) finish(id uuid.UUID, release func()) {
	if release != nil {
		release()
	}
	c.mu.Lock()
	if c.id == id {
		c.scanning.Store(false)
	}
	c.mu.Unlock()
}

// Run polls frames until one decodes to a barcode with at least
// catalog.MinDigits digits and returns it normalized. It returns ErrStopped
// after Stop, ctx.Err() on cancellation, or the camera error if frames run
// out or capture fails. Run only ever releases the session it started in.
func (c *Controller) Run(ctx context.Context) (string, error) {
	c.mu.Lock()
	id, release := c.id, c.release
	c.mu.Unlock()
	if release == nil {
		return "", ErrStopped
	}
	defer c.finish(id, release)

	for {
		if !c.active(id) {
			return "", ErrStopped
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code, err := c.attempt(ctx)
		if !c.active(id) {
			return "", ErrStopped
		}
		if err != nil {
			return "", err
		}
		if code != "" {
			log.Info("[%s] Found barcode %s", id, code)
			return code, nil
		}

		if c.interval > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(c.interval):
			}
		}
	}
}

// attempt grabs and decodes one frame. It returns "" with a nil error when
// the frame held nothing usable.
func (c *Controller) attempt(ctx context.Context) (string, error) {
	var frameErr error
	var raw string

	_ = c.rec.Record(metrics.MFrame, func() error {
		frame, err := c.camera.Frame(ctx)
		if err != nil {
			frameErr = err
			return err
		}
		return c.rec.Record(metrics.MDecode, func() error {
			raw, err = c.decoder.Decode(frame)
			return err
		})
	})

	switch {
	case errors.Is(frameErr, hardware.ErrNotReady):
		return "", nil
	case frameErr != nil:
		return "", xerrors.Errorf("capture failed: %w", frameErr)
	case raw == "":
		return "", nil
	}

	code, err := catalog.Normalize(raw)
	if err != nil {
		log.Debug("Ignoring short code %q", raw)
		if c.onReject != nil {
			c.onReject(raw, err)
		}
		return "", nil
	}
	return code, nil
}

// Scan is Start followed by Run.
func (c *Controller) Scan(ctx context.Context) (string, error) {
	if err := c.Start(ctx); err != nil {
		return "", err
	}
	return c.Run(ctx)
}
