package cmd

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/qvmctl/qvm/internal/vmconfig"
)

var setCmd = &cobra.Command{
	Use:   "set [name [value]]",
	Short: "Show or change settings",
	Long: `Without arguments, print every setting as KEY=value.

With a name, rewrite the first 'NAME=' or '#NAME=' line of the config file
to assign value (empty when omitted). Settings missing from the file are
left unchanged; run 'qvm config --force' to regenerate a complete file.

Examples:
  qvm set
  qvm set MEM 8G
  qvm set IP 192.168.122.10`,
	Args: cobra.MaximumNArgs(2),
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadVMConfig()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return cfg.Dump(cmd.OutOrStdout())
	}

	name := args[0]
	value := ""
	if len(args) > 1 {
		value = args[1]
	}
	if !vmconfig.IsKey(name) {
		log.Warn("Unknown setting", "name", name)
	}

	changed, err := vmconfig.Set(cfg.Path, name, value)
	if err != nil {
		return err
	}
	if !changed {
		log.Warn("Setting not changed: no matching line in config file", "name", name, "file", cfg.Path)
		return nil
	}
	log.Debug("Setting changed", "name", name, "value", value, "file", cfg.Path)
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", name, value)
	return nil
}
