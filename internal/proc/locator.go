// Package proc locates the QEMU process serving a VM by inspecting the
// host process table.
package proc

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/samber/lo"
)

// ErrInvalidPid is returned when a process listing yields a PID that is
// not a number.
var ErrInvalidPid = errors.New("invalid pid")

// Process is one entry of the host process table.
type Process struct {
	PID  int
	Exe  string
	Args []string
}

// Lister enumerates the processes of the host.
type Lister interface {
	List(ctx context.Context) ([]Process, error)
}

// Locator finds the process of a VM among the processes returned by a
// Lister.
type Locator struct {
	lister Lister
	binary string
}

// NewLocator returns a Locator matching processes whose executable is
// binary.
func NewLocator(lister Lister, binary string) *Locator {
	return &Locator{lister: lister, binary: binary}
}

// Find returns the PID of the process running vmName. When several
// processes match, the lowest PID wins.
func (l *Locator) Find(ctx context.Context, vmName string) (int, bool, error) {
	procs, err := l.lister.List(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("failed to list processes: %w", err)
	}

	matches := lo.Filter(procs, func(p Process, _ int) bool {
		return Matches(p, l.binary, vmName)
	})
	if len(matches) == 0 {
		return 0, false, nil
	}

	pids := lo.Map(matches, func(p Process, _ int) int { return p.PID })
	return slices.Min(pids), true, nil
}

// Matches reports whether p is binary running with `-name vmName`. The
// QEMU forms `-name vmName,debug-threads=on` and `-name guest=vmName`
// are accepted too.
func Matches(p Process, binary, vmName string) bool {
	if vmName == "" || filepath.Base(p.Exe) != binary {
		return false
	}
	for i := 0; i+1 < len(p.Args); i++ {
		if p.Args[i] != "-name" {
			continue
		}
		if nameMatches(p.Args[i+1], vmName) {
			return true
		}
	}
	return false
}

func nameMatches(arg, vmName string) bool {
	value, _, _ := strings.Cut(arg, ",")
	value = strings.TrimPrefix(value, "guest=")
	return value == vmName
}
