package vm

import (
	"context"
)

// Status is the running state of a VM.
type Status struct {
	Name    string `json:"name" yaml:"name"`
	Running bool   `json:"running" yaml:"running"`
	PID     int    `json:"pid,omitempty" yaml:"pid,omitempty"`
}

// Spec describes an external command to start.
type Spec struct {
	Args []string
	// Detach starts the command in its own session with output sent to
	// LogPath; the caller does not wait for it.
	Detach  bool
	LogPath string
}

// Process is a started command.
type Process interface {
	Pid() int
	// Wait blocks until the process exits. It returns immediately for
	// detached processes.
	Wait() error
}

// Runner starts external commands.
type Runner interface {
	Start(ctx context.Context, spec Spec) (Process, error)
}

// Finder locates the process of a running VM.
type Finder interface {
	Find(ctx context.Context, vmName string) (int, bool, error)
}

// Imager creates disk images.
type Imager interface {
	CreateArgs(path, size string) []string
	CloneArgs(path, base string) ([]string, error)
	Create(ctx context.Context, path, size string) error
	Clone(ctx context.Context, path, base string) error
}
