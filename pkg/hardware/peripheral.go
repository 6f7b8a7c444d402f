package hardware

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"easyfilter/pkg/config"
	"easyfilter/pkg/log"
)

// Peripheral drives a physical camera through the platform's still-capture
// command (see config.GetImageCommand). Every frame is one still.
type Peripheral struct {
	cfg *config.Config

	mu   sync.Mutex
	open bool
	dir  string
}

func NewPeripheral(cfg *config.Config) *Peripheral {
	return &Peripheral{cfg: cfg}
}

func (p *Peripheral) Name() string { return "Peripheral" }

// Open checks that the capture command is installed and prepares the picture directory.
func (p *Peripheral) Open(_ context.Context) error {
	cmdName, _, err := p.cfg.GetImageCommand("")
	if err != nil {
		return err
	}
	if _, err := exec.LookPath(cmdName); err != nil {
		return fmt.Errorf("camera command %s not available: %w", cmdName, err)
	}
	dir, err := config.EnsureDirectory(p.cfg.PicturePath)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.dir, p.open = dir, true
	log.Debug("Camera ready: %s (facing %s)", cmdName, p.cfg.Facing)
	return nil
}

// Frame takes a picture, decodes it and removes the file.
func (p *Peripheral) Frame(ctx context.Context) (image.Image, error) {
	p.mu.Lock()
	open, dir := p.open, p.dir
	p.mu.Unlock()
	if !open {
		return nil, ErrClosed
	}

	scannedFile := filepath.Join(dir, fmt.Sprintf("frame_%d.jpg", time.Now().UnixNano()))
	defer os.Remove(scannedFile)

	cmdName, args, err := p.cfg.GetImageCommand(scannedFile)
	if err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, cmdName, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("failed to run camera command '%s': %w, output: %s", cmdName, err, string(output))
	}

	file, err := os.Open(scannedFile)
	if err != nil {
		return nil, fmt.Errorf("camera produced no picture: %w", err)
	}
	defer file.Close()
	return decodeImage(file)
}

func (p *Peripheral) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
	return nil
}
