package cmd

import (
	"github.com/spf13/cobra"
)

var sshCmd = &cobra.Command{
	Use:   "ssh",
	Short: "Open a shell on the guest",
	Long: `Open an ssh session on the guest. The guest is reached at $IP when set,
otherwise through the forwarded port $PORT on localhost.`,
	Args: cobra.NoArgs,
	RunE: runSSH,
}

var runCmd = &cobra.Command{
	Use:   "run <command> [args...]",
	Short: "Run a command on the guest",
	Long: `Run a command on the guest over ssh.

A single argument is handed to the remote shell as is, so it may contain
pipes or redirections. Several arguments are quoted one by one.

Examples:
  qvm run uptime
  qvm run 'dmesg | tail'
  qvm run ls -la /etc`,
	Args: cobra.ArbitraryArgs,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(sshCmd)
	rootCmd.AddCommand(runCmd)
	// Flags after the command belong to the remote command.
	runCmd.Flags().SetInterspersed(false)
}

func runSSH(cmd *cobra.Command, args []string) error {
	manager, err := newManager(cmd)
	if err != nil {
		return err
	}
	return manager.SSH(cmd.Context())
}

func runRun(cmd *cobra.Command, args []string) error {
	manager, err := newManager(cmd)
	if err != nil {
		return err
	}
	return manager.Run(cmd.Context(), args)
}
