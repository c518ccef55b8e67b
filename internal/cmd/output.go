package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qvmctl/qvm/internal/output"
)

var outputFormat string

func addOutputFlag(c *cobra.Command) {
	c.Flags().StringVarP(&outputFormat, "output", "o", string(output.FormatTable), "output format (table, json, yaml)")
}

// printFormatted writes the result of format to the command's stdout.
func printFormatted(cmd *cobra.Command, format func(output.Formatter) (string, error)) error {
	if err := output.ValidateFormat(outputFormat); err != nil {
		return err
	}
	f, err := output.NewFormatter(output.Format(outputFormat))
	if err != nil {
		return err
	}

	out, err := format(f)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}
