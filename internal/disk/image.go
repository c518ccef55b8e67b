// Package disk creates VM disk images with qemu-img.
package disk

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

// DefaultBinary is the disk-image utility used when none is configured.
const DefaultBinary = "qemu-img"

// Runner executes a command and returns its combined output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ExecRunner runs commands with os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).CombinedOutput()
}

// Imager creates qcow2 images.
type Imager struct {
	binary string
	run    Runner
}

// NewImager returns an Imager calling binary through run.
func NewImager(binary string, run Runner) *Imager {
	if binary == "" {
		binary = DefaultBinary
	}
	if run == nil {
		run = ExecRunner
	}
	return &Imager{binary: binary, run: run}
}

// CreateArgs returns the qemu-img arguments creating an empty image.
func (m *Imager) CreateArgs(path, size string) []string {
	return []string{m.binary, "create", "-f", "qcow2", path, size}
}

// CloneArgs returns the qemu-img arguments creating a copy-on-write image
// backed by base. qemu-img resolves a relative backing file against the
// new image's directory, so base is made absolute first.
func (m *Imager) CloneArgs(path, base string) ([]string, error) {
	expanded, err := homedir.Expand(base)
	if err != nil {
		return nil, fmt.Errorf("invalid backing file %s: %w", base, err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return nil, fmt.Errorf("invalid backing file %s: %w", base, err)
	}
	return []string{m.binary, "create", "-f", "qcow2", "-b", abs, "-F", "qcow2", path}, nil
}

// Create creates an empty qcow2 image of size at path.
func (m *Imager) Create(ctx context.Context, path, size string) error {
	return m.exec(ctx, path, m.CreateArgs(path, size))
}

// Clone creates a qcow2 image at path backed by base.
func (m *Imager) Clone(ctx context.Context, path, base string) error {
	args, err := m.CloneArgs(path, base)
	if err != nil {
		return err
	}
	return m.exec(ctx, path, args)
}

func (m *Imager) exec(ctx context.Context, path string, args []string) error {
	if output, err := m.run(ctx, args[0], args[1:]...); err != nil {
		return fmt.Errorf("failed to create disk %s: %w\nOutput: %s", path, err, string(output))
	}
	return nil
}
