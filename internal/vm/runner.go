package vm

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/charmbracelet/log"
)

// ExecRunner starts commands with os/exec. Attached commands share the
// given stdio.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner attached to the terminal of this process.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ExecRunner) Start(ctx context.Context, spec Spec) (Process, error) {
	if len(spec.Args) == 0 {
		return nil, fmt.Errorf("%w: command", ErrMissingArgument)
	}

	if !spec.Detach {
		cmd := exec.CommandContext(ctx, spec.Args[0], spec.Args[1:]...)
		cmd.Stdin = r.Stdin
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr
		if err := cmd.Start(); err != nil {
			return nil, err
		}
		return &execProcess{cmd: cmd}, nil
	}

	// Detached children outlive this process, so they get their own
	// session and no context.
	cmd := exec.Command(spec.Args[0], spec.Args[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	var logFile *os.File
	if spec.LogPath != "" {
		f, err := os.OpenFile(spec.LogPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			log.Warn("Failed to open launch log", "path", spec.LogPath, "error", err)
		} else {
			logFile = f
			cmd.Stdout = f
			cmd.Stderr = f
		}
	}
	if logFile != nil {
		defer func() { _ = logFile.Close() }()
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	pid := cmd.Process.Pid
	if err := cmd.Process.Release(); err != nil {
		log.Warn("Failed to release process", "pid", pid, "error", err)
	}
	return detachedProcess(pid), nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Pid() int    { return p.cmd.Process.Pid }
func (p *execProcess) Wait() error { return p.cmd.Wait() }

type detachedProcess int

func (p detachedProcess) Pid() int    { return int(p) }
func (p detachedProcess) Wait() error { return nil }
