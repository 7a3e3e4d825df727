package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the field table of one or all structs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if cfg.Type != "" {
			ds, err := lookupStruct(reg)
			if err != nil {
				return err
			}
			fmt.Fprint(out, ds.Describe())
			return nil
		}
		for i, name := range reg.Names() {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprint(out, reg.MustLookup(name).Describe())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
}
