package main

import (
	"fmt"
	"os"

	"github.com/javajack/xlexport"
	"github.com/spf13/cobra"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect file.xlsx",
		Short: "Print the sheets, drawings and charts of a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			pkg, err := xlexport.OpenPackage(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			out, err := xlexport.Describe(pkg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
}
