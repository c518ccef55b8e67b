package cmd

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/qvmctl/qvm/internal/vmconfig"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Write a starter qvm.conf for this directory",
	Long: `Write a configuration file for the VM of the current directory.

Every setting is written commented out with its default, followed by the
starter profiles for this host. Edit the file, or use 'qvm set', to
override settings.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVarP(&configForce, "force", "f", false, "overwrite an existing config file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	path := vmConfigPath(cwd)
	if err := vmconfig.Generate(path, cwd, runtime.GOOS, configForce); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}
