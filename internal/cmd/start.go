package cmd

import (
	"github.com/spf13/cobra"
)

var launchDryRun bool

var startCmd = &cobra.Command{
	Use:   "start <profile>",
	Short: "Start the VM with a profile",
	Long: `Start the VM of the current directory with the named profile.

The profile template is expanded with the current settings and run in the
foreground. Templates ending in '&' start detached; templates using
-daemonize return once QEMU has forked.

Examples:
  qvm start default
  qvm start daemon
  qvm start bridge --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStart,
}

var installCmd = &cobra.Command{
	Use:   "install <profile> <iso>",
	Short: "Boot the VM from an installer ISO",
	Long: `Start the VM with the named profile, booting once from <iso>.

The ISO is attached as a CD-ROM and the VM does not reboot when the
installer finishes.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runInstall,
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(installCmd)
	for _, c := range []*cobra.Command{startCmd, installCmd} {
		c.Flags().BoolVarP(&launchDryRun, "dry-run", "n", false, "print the rendered command instead of running it")
	}
}

func runStart(cmd *cobra.Command, args []string) error {
	manager, err := newManager(cmd)
	if err != nil {
		return err
	}
	manager.DryRun = launchDryRun
	return manager.Start(cmd.Context(), firstArg(args))
}

func runInstall(cmd *cobra.Command, args []string) error {
	manager, err := newManager(cmd)
	if err != nil {
		return err
	}
	manager.DryRun = launchDryRun

	iso := ""
	if len(args) > 1 {
		iso = args[1]
	}
	return manager.Install(cmd.Context(), firstArg(args), iso)
}
