package hardware

import (
	"context"
	"image"
	"sync"
)

// Core is an in-memory camera for testing the scan loop without I/O.
// It hands out its frames in order and then reports ErrExhausted.
type Core struct {
	// OpenErr, if set, is returned by Open to simulate a denied or missing device.
	OpenErr error

	mu     sync.Mutex
	frames []image.Image
	next   int
	open   bool
	opens  int
	closes int
}

// NewCore creates a camera that yields frames in order. A nil frame yields ErrNotReady.
func NewCore(frames ...image.Image) *Core {
	return &Core{frames: frames}
}

func (c *Core) Name() string { return "Core" }

// Push appends frames.
func (c *Core) Push(frames ...image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, frames...)
}

func (c *Core) Open(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.OpenErr != nil {
		return c.OpenErr
	}
	c.open = true
	c.opens++
	return nil
}

func (c *Core) Frame(_ context.Context) (image.Image, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return nil, ErrClosed
	}
	if c.next >= len(c.frames) {
		return nil, ErrExhausted
	}
	f := c.frames[c.next]
	c.next++
	if f == nil {
		return nil, ErrNotReady
	}
	return f, nil
}

func (c *Core) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open {
		c.open = false
		c.closes++
	}
	return nil
}

// Stats reports how often the camera was opened and closed, and whether it is open now.
func (c *Core) Stats() (opens, closes int, open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opens, c.closes, c.open
}
