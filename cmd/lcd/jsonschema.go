package main

import (
	"fmt"

	"github.com/spf13/cobra"

	js "github.com/reoring/lcd/jsonschema"
)

var jsonschemaCmd = &cobra.Command{
	Use:   "jsonschema",
	Short: "Export a struct as JSON Schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := loadRegistry()
		if err != nil {
			return err
		}
		ds, err := lookupStruct(reg)
		if err != nil {
			return err
		}
		s, err := ds.JSONSchema()
		if err != nil {
			return err
		}
		b, err := js.MarshalIndent(s)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(jsonschemaCmd)
}
