package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

var killSignal string

var killCmd = &cobra.Command{
	Use:   "kill",
	Short: "Send a signal to the VM process",
	Long: `Send a signal to the QEMU process of the current directory's VM.

The guest is not shut down cleanly; prefer 'qvm stop'. Fails when the VM
is not running.

Examples:
  qvm kill
  qvm kill --signal KILL`,
	Args: cobra.NoArgs,
	RunE: runKill,
}

func init() {
	rootCmd.AddCommand(killCmd)
	killCmd.Flags().StringVarP(&killSignal, "signal", "s", "TERM", "signal name or number")
}

func runKill(cmd *cobra.Command, args []string) error {
	sig, err := parseSignal(killSignal)
	if err != nil {
		return err
	}

	manager, err := newManager(cmd)
	if err != nil {
		return err
	}
	return manager.Kill(cmd.Context(), sig)
}

// parseSignal accepts TERM, SIGTERM, sigterm or 15.
func parseSignal(s string) (syscall.Signal, error) {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return syscall.Signal(n), nil
	}
	name := strings.ToUpper(s)
	if !strings.HasPrefix(name, "SIG") {
		name = "SIG" + name
	}
	if sig := unix.SignalNum(name); sig != 0 {
		return sig, nil
	}
	return 0, fmt.Errorf("unknown signal: %s", s)
}
