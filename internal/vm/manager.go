// Package vm drives the lifecycle of the QEMU process serving the VM of a
// working directory.
package vm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alessio/shellescape"
	"github.com/cenkalti/backoff/v4"
	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"

	"github.com/qvmctl/qvm/internal/config"
	"github.com/qvmctl/qvm/internal/guest"
	"github.com/qvmctl/qvm/internal/lock"
	"github.com/qvmctl/qvm/internal/render"
	"github.com/qvmctl/qvm/internal/session"
	"github.com/qvmctl/qvm/internal/vmconfig"
)

// installArgs boot the guest from the installer ISO once.
var installArgs = []string{"-boot", "d", "-no-reboot"}

var errStillRunning = errors.New("still running")

// Manager runs lifecycle operations for one VM. Every dependency is a
// field so tests can replace the external world.
type Manager struct {
	Config  *vmconfig.Config
	Tool    *config.Config
	WorkDir string

	Finder Finder
	Runner Runner
	Disk   Imager
	// Signal delivers sig to pid.
	Signal func(pid int, sig syscall.Signal) error
	// IsTTY reports whether stdin is a terminal.
	IsTTY func() bool
	// History records launches; nil disables it.
	History *session.Store
	// LockPath overrides the launch lock location.
	LockPath string

	// Out receives user-facing output.
	Out io.Writer
	// DryRun prints commands instead of running them.
	DryRun bool
}

func (m *Manager) name() string {
	return m.Config.Settings.Name
}

// Create creates an empty disk image of size.
func (m *Manager) Create(ctx context.Context, size string) error {
	if size == "" {
		return fmt.Errorf("%w: size", ErrMissingArgument)
	}
	path := m.Config.Settings.Disk
	if err := m.checkDiskAbsent(path); err != nil {
		return err
	}

	if m.DryRun {
		return m.print(m.Disk.CreateArgs(path, size))
	}

	log.Debug("Creating disk", "path", path, "size", size)
	if err := m.Disk.Create(ctx, path, size); err != nil {
		return err
	}
	_, err := fmt.Fprintf(m.Out, "Created %s (%s)\n", path, size)
	return err
}

// Clone creates a disk image backed by the image at base.
func (m *Manager) Clone(ctx context.Context, base string) error {
	if base == "" {
		return fmt.Errorf("%w: backing image", ErrMissingArgument)
	}
	path := m.Config.Settings.Disk
	if err := m.checkDiskAbsent(path); err != nil {
		return err
	}

	if m.DryRun {
		args, err := m.Disk.CloneArgs(path, base)
		if err != nil {
			return err
		}
		return m.print(args)
	}

	log.Debug("Cloning disk", "path", path, "base", base)
	if err := m.Disk.Clone(ctx, path, base); err != nil {
		return err
	}
	_, err := fmt.Fprintf(m.Out, "Created %s backed by %s\n", path, base)
	return err
}

func (m *Manager) checkDiskAbsent(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("disk %s %w", path, ErrAlreadyExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check disk %s: %w", path, err)
	}
	return nil
}

// Install boots profile with iso attached as a CD-ROM.
func (m *Manager) Install(ctx context.Context, profile, iso string) error {
	if profile == "" {
		return fmt.Errorf("%w: profile", ErrMissingArgument)
	}
	if iso == "" {
		return fmt.Errorf("%w: iso", ErrMissingArgument)
	}
	return m.launch(ctx, profile, iso)
}

// Start boots profile.
func (m *Manager) Start(ctx context.Context, profile string) error {
	if profile == "" {
		return fmt.Errorf("%w: profile", ErrMissingArgument)
	}
	return m.launch(ctx, profile, "")
}

// launch holds the launch lock from the running check until the process
// exits, or until it is started when it runs detached.
func (m *Manager) launch(ctx context.Context, profile, iso string) error {
	name := m.name()

	if !m.DryRun {
		lockPath := m.LockPath
		if lockPath == "" {
			lockPath = lock.PathFor(name)
		}
		l, err := lock.Acquire(lockPath)
		if errors.Is(err, lock.ErrLocked) {
			return fmt.Errorf("%s is %w (launch in progress)", name, ErrAlreadyRunning)
		}
		if err != nil {
			return err
		}
		defer func() { _ = l.Release() }()
	}

	pid, running, err := m.Finder.Find(ctx, name)
	if err != nil {
		return err
	}
	if running {
		return fmt.Errorf("%s is %w (PID %d)", name, ErrAlreadyRunning, pid)
	}

	template, err := m.Config.Profile(profile)
	if err != nil {
		return err
	}
	cmd, err := render.Render(template, m.Config.Settings.Environ())
	if err != nil {
		return fmt.Errorf("profile %s: %w", profile, err)
	}
	if iso != "" {
		cmd.Args = append(cmd.Args, "-cdrom", iso)
		cmd.Args = append(cmd.Args, installArgs...)
	}

	if m.DryRun {
		_, err := fmt.Fprintln(m.Out, cmd.String())
		return err
	}

	log.Debug("Launching VM", "name", name, "profile", profile, "command", cmd.String())
	spec := Spec{Args: cmd.Args, Detach: cmd.Background}
	if cmd.Background {
		spec.LogPath = filepath.Join(os.TempDir(), "qvm-"+name+".log")
	}
	p, err := m.Runner.Start(ctx, spec)
	if err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	launch := session.NewLaunch(name, profile, m.WorkDir, cmd.Args)
	launch.PID = p.Pid()
	launch.ISO = iso
	launch.Detached = cmd.Background
	m.record(launch)

	if cmd.Background {
		_, err := fmt.Fprintf(m.Out, "Started %s in the background. PID: %d (log: %s)\n", name, p.Pid(), spec.LogPath)
		return err
	}
	return p.Wait()
}

func (m *Manager) record(l *session.Launch) {
	if m.History == nil {
		return
	}
	if err := m.History.Save(l); err != nil {
		log.Warn("Failed to record launch", "id", l.ID, "error", err)
	}
}

// Stop asks the guest to power off over ssh. With wait it then polls the
// process table until the VM is gone or the configured timeout elapses.
func (m *Manager) Stop(ctx context.Context, wait bool) error {
	name := m.name()
	args := m.target().Args(false, m.Tool.SSH.StopCommand)
	log.Debug("Stopping VM", "name", name, "command", shellescape.QuoteCommand(args))

	if err := m.runAttached(ctx, args); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fmt.Errorf("failed to run ssh: %w", err)
		}
		// The guest usually drops the connection while powering off.
		log.Warn("ssh exited with an error", "name", name, "error", err)
	}

	if !wait {
		return nil
	}
	return m.waitForExit(ctx)
}

func (m *Manager) waitForExit(ctx context.Context) error {
	name := m.name()
	interval := m.Tool.Stop.PollInterval
	if interval <= 0 {
		interval = time.Second
	}
	timeout := m.Tool.Stop.WaitTimeout
	maxRetries := uint64(timeout / interval)

	err := backoff.Retry(func() error {
		_, running, err := m.Finder.Find(ctx, name)
		if err != nil {
			return backoff.Permanent(err)
		}
		if running {
			log.Debug("Waiting for VM to exit", "name", name)
			return errStillRunning
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(interval), maxRetries), ctx))
	if errors.Is(err, errStillRunning) {
		return fmt.Errorf("%s is still running after %s", name, timeout)
	}
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(m.Out, "%s stopped\n", name)
	return err
}

// Kill sends sig to the VM process.
func (m *Manager) Kill(ctx context.Context, sig syscall.Signal) error {
	name := m.name()
	pid, running, err := m.Finder.Find(ctx, name)
	if err != nil {
		return err
	}
	if !running {
		return fmt.Errorf("%s is %w", name, ErrNotRunning)
	}

	log.Debug("Sending signal", "name", name, "pid", pid, "signal", unix.SignalName(sig))
	if err := m.Signal(pid, sig); err != nil {
		return fmt.Errorf("failed to signal PID %d: %w", pid, err)
	}
	return nil
}

// Status reports whether the VM is running.
func (m *Manager) Status(ctx context.Context) (Status, error) {
	name := m.name()
	pid, running, err := m.Finder.Find(ctx, name)
	if err != nil {
		return Status{}, err
	}
	return Status{Name: name, Running: running, PID: pid}, nil
}

// SSH opens an interactive session on the guest.
func (m *Manager) SSH(ctx context.Context) error {
	tty := m.IsTTY != nil && m.IsTTY()
	return m.runAttached(ctx, m.target().Args(tty, ""))
}

// Run runs argv on the guest over ssh.
func (m *Manager) Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("%w: command", ErrMissingArgument)
	}
	return m.runAttached(ctx, m.target().Args(false, guest.RemoteCommand(argv)))
}

func (m *Manager) target() guest.Target {
	s := m.Config.Settings
	return guest.NewTarget(s.IP, s.Port, m.Tool.SSH.User, m.Tool.SSH.Identity, m.Tool.SSH.Options)
}

func (m *Manager) runAttached(ctx context.Context, args []string) error {
	p, err := m.Runner.Start(ctx, Spec{Args: args})
	if err != nil {
		return err
	}
	return p.Wait()
}

func (m *Manager) print(args []string) error {
	_, err := fmt.Fprintln(m.Out, shellescape.QuoteCommand(args))
	return err
}
