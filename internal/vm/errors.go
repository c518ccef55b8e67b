package vm

import (
	"errors"

	"github.com/qvmctl/qvm/internal/proc"
	"github.com/qvmctl/qvm/internal/vmconfig"
)

var (
	// ErrAlreadyRunning is returned by start and install when the VM has a
	// live process.
	ErrAlreadyRunning = errors.New("already running")
	// ErrAlreadyExists is returned when create, clone or config would
	// overwrite a file.
	ErrAlreadyExists = vmconfig.ErrAlreadyExists
	// ErrMissingArgument is returned when a required argument is empty.
	ErrMissingArgument = errors.New("missing argument")
	// ErrProfileNotFound is returned for an unknown profile name.
	ErrProfileNotFound = vmconfig.ErrProfileNotFound
	// ErrNotRunning is returned by kill when no process is found.
	ErrNotRunning = errors.New("not running")
	// ErrInvalidPid is returned when the process list cannot be parsed.
	ErrInvalidPid = proc.ErrInvalidPid
)
