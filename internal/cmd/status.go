package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qvmctl/qvm/internal/output"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the VM is running",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var pidCmd = &cobra.Command{
	Use:   "pid",
	Short: "Print the PID of the VM process",
	Long:  `Print the PID of the VM process. Nothing is printed when it is not running.`,
	Args:  cobra.NoArgs,
	RunE:  runPid,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(pidCmd)
	addOutputFlag(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, err := newManager(cmd)
	if err != nil {
		return err
	}

	status, err := manager.Status(cmd.Context())
	if err != nil {
		return err
	}
	return printFormatted(cmd, func(f output.Formatter) (string, error) {
		return f.FormatStatus(status)
	})
}

func runPid(cmd *cobra.Command, args []string) error {
	manager, err := newManager(cmd)
	if err != nil {
		return err
	}

	status, err := manager.Status(cmd.Context())
	if err != nil {
		return err
	}
	if status.Running {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), status.PID)
	}
	return nil
}
