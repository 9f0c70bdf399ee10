package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formdoc/pkg/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the form's values snapshot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfiguration(cmd.Context())
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(schema.ValuesSchema(cfg.Form), "", "  ")
		if err != nil {
			return fmt.Errorf("encode schema: %w", err)
		}
		return writeOutput(cmd.OutOrStdout(), "", append(data, '\n'))
	},
}

func init() {
	schemaCmd.Flags().StringVarP(&documentPath, "file", "f", "", "configuration document (JSON or YAML); defaults to the configured store")
	rootCmd.AddCommand(schemaCmd)
}
