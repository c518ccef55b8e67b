package cmd

import (
	"github.com/spf13/cobra"
)

var diskDryRun bool

var createCmd = &cobra.Command{
	Use:   "create <size>",
	Short: "Create the VM disk image",
	Long: `Create an empty qcow2 disk image at $DISK.

Examples:
  qvm create 20G
  qvm create 512M --dry-run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

var cloneCmd = &cobra.Command{
	Use:   "clone <image>",
	Short: "Create the VM disk image backed by another image",
	Long: `Create a copy-on-write qcow2 disk image at $DISK that uses <image> as
its backing file. The backing image must stay in place.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClone,
}

func init() {
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(cloneCmd)
	for _, c := range []*cobra.Command{createCmd, cloneCmd} {
		c.Flags().BoolVarP(&diskDryRun, "dry-run", "n", false, "print the qemu-img command instead of running it")
	}
}

func runCreate(cmd *cobra.Command, args []string) error {
	manager, err := newManager(cmd)
	if err != nil {
		return err
	}
	manager.DryRun = diskDryRun
	return manager.Create(cmd.Context(), firstArg(args))
}

func runClone(cmd *cobra.Command, args []string) error {
	manager, err := newManager(cmd)
	if err != nil {
		return err
	}
	manager.DryRun = diskDryRun
	return manager.Clone(cmd.Context(), firstArg(args))
}

// firstArg returns args[0], or "" so the manager reports the missing
// argument itself.
func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
