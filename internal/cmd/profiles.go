package cmd

import (
	"github.com/spf13/cobra"

	"github.com/qvmctl/qvm/internal/output"
	"github.com/qvmctl/qvm/internal/vmconfig"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List profile names",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show [profile]",
	Short: "Show profile templates",
	Long: `Print the template of a profile exactly as stored, or every profile
when no name is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	addOutputFlag(listCmd)
	addOutputFlag(showCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadVMConfig()
	if err != nil {
		return err
	}
	return printFormatted(cmd, func(f output.Formatter) (string, error) {
		return f.FormatNames(cfg.Profiles())
	})
}

func runShow(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadVMConfig()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return printFormatted(cmd, func(f output.Formatter) (string, error) {
			return f.FormatProfiles(cfg.Templates())
		})
	}

	name := args[0]
	template, err := cfg.Profile(name)
	if err != nil {
		return err
	}
	return printFormatted(cmd, func(f output.Formatter) (string, error) {
		return f.FormatProfile(vmconfig.Profile{Name: name, Template: template})
	})
}
