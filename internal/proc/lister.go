package proc

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// NewLister returns the process lister for hostOS: /proc on linux, `ps`
// output parsing elsewhere.
func NewLister(hostOS string) Lister {
	if hostOS == "linux" {
		if _, err := os.Stat("/proc/self/cmdline"); err == nil {
			return &ProcFS{Root: "/proc"}
		}
	}
	return &PS{HostOS: hostOS}
}

// ProcFS lists processes by reading <Root>/<pid>/cmdline.
type ProcFS struct {
	Root string
}

// List implements Lister.
func (p *ProcFS) List(ctx context.Context) ([]Process, error) {
	entries, err := os.ReadDir(p.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p.Root, err)
	}

	var procs []Process
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || !entry.IsDir() {
			continue
		}
		// Processes can exit between ReadDir and ReadFile.
		data, err := os.ReadFile(filepath.Join(p.Root, entry.Name(), "cmdline"))
		if err != nil || len(data) == 0 {
			continue
		}
		args := strings.Split(strings.TrimRight(string(data), "\x00"), "\x00")
		procs = append(procs, Process{PID: pid, Exe: filepath.Base(args[0]), Args: args})
	}
	return procs, nil
}

// PS lists processes by parsing the output of ps(1).
type PS struct {
	HostOS string
}

// List implements Lister.
func (p *PS) List(ctx context.Context) ([]Process, error) {
	args := psArgs(p.HostOS)
	out, err := exec.CommandContext(ctx, "ps", args...).Output()
	if err != nil {
		return nil, fmt.Errorf("ps %s failed: %w", strings.Join(args, " "), err)
	}
	return ParsePS(out, p.HostOS)
}

func psArgs(hostOS string) []string {
	if hostOS == "darwin" {
		return []string{"-ax"}
	}
	return []string{"aux"}
}

// ParsePS parses ps output. The layout differs per host: `ps aux` on linux
// puts the PID in the second column and the command from the eleventh on,
// `ps -ax` on darwin puts the PID first and the command from the fourth.
// Arguments are split on whitespace, so an argument containing spaces is
// seen as several.
func ParsePS(out []byte, hostOS string) ([]Process, error) {
	pidCol, cmdCol := 1, 10
	if hostOS == "darwin" {
		pidCol, cmdCol = 0, 3
	}

	var procs []Process
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	header := true
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if header {
			header = false
			if len(fields) > pidCol && fields[pidCol] == "PID" {
				continue
			}
		}
		if len(fields) <= cmdCol {
			continue
		}
		pid, err := strconv.Atoi(fields[pidCol])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPid, fields[pidCol])
		}
		args := fields[cmdCol:]
		procs = append(procs, Process{PID: pid, Exe: filepath.Base(args[0]), Args: args})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ps output: %w", err)
	}
	return procs, nil
}
