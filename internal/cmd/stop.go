package cmd

import (
	"github.com/spf13/cobra"
)

var stopWait bool

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Power off the guest over ssh",
	Long: `Ask the guest to power off by running the configured stop command
(ssh.stop_command, default "sudo poweroff") over ssh.

With --wait, qvm then waits until the QEMU process has exited, up to
stop.wait_timeout.`,
	Args: cobra.NoArgs,
	RunE: runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
	stopCmd.Flags().BoolVarP(&stopWait, "wait", "w", false, "wait for the VM process to exit")
}

func runStop(cmd *cobra.Command, args []string) error {
	manager, err := newManager(cmd)
	if err != nil {
		return err
	}
	return manager.Stop(cmd.Context(), stopWait)
}
