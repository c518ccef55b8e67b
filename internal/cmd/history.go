package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qvmctl/qvm/internal/output"
	"github.com/qvmctl/qvm/internal/session"
)

var pruneAll bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded VM launches",
	Long: `List the launches recorded by 'qvm start' and 'qvm install', newest
first. Records are kept in ~/.qvm/launches and are informational only.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete recorded launches",
	Long: `Delete the launch records of the current directory's VM, or of every
VM with --all.`,
	Args: cobra.NoArgs,
	RunE: runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyPruneCmd)
	addOutputFlag(historyCmd)
	historyPruneCmd.Flags().BoolVarP(&pruneAll, "all", "a", false, "delete the records of every VM")
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := session.NewStore()
	if err != nil {
		return fmt.Errorf("failed to access launch history: %w", err)
	}

	launches, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list launches: %w", err)
	}
	return printFormatted(cmd, func(f output.Formatter) (string, error) {
		return f.FormatLaunches(launches)
	})
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	store, err := session.NewStore()
	if err != nil {
		return fmt.Errorf("failed to access launch history: %w", err)
	}

	name := ""
	if !pruneAll {
		cfg, _, err := loadVMConfig()
		if err != nil {
			return err
		}
		name = cfg.Settings.Name
	}

	removed, err := store.Prune(name)
	if err != nil {
		return fmt.Errorf("failed to prune launches: %w", err)
	}

	if removed == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No launches to remove.")
	} else {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed %d launch record(s).\n", removed)
	}
	return nil
}
