package app

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// clipboardCommands are tried in order; the first installed one is used.
var clipboardCommands = [][]string{
	{"pbcopy"},
	{"wl-copy"},
	{"xclip", "-selection", "clipboard"},
	{"xsel", "--clipboard", "--input"},
}

// CommandClipboard pipes text into the platform's clipboard tool.
type CommandClipboard struct {
	argv []string
}

// NewCommandClipboard finds an installed clipboard tool.
func NewCommandClipboard() (*CommandClipboard, error) {
	for _, argv := range clipboardCommands {
		if _, err := exec.LookPath(argv[0]); err == nil {
			return &CommandClipboard{argv: argv}, nil
		}
	}
	return nil, errors.New("no clipboard tool found (pbcopy, wl-copy, xclip, xsel)")
}

func (c *CommandClipboard) WriteText(ctx context.Context, text string) error {
	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w, output: %s", c.argv[0], err, string(output))
	}
	return nil
}
