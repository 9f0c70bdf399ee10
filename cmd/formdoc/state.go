package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formdoc/pkg/visibility"
)

var stateVisibleOnly bool

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the visibility and required flag of every section and field",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfiguration(cmd.Context())
		if err != nil {
			return err
		}
		vals, err := loadValues(cmd.InOrStdin())
		if err != nil {
			return err
		}

		var payload any = visibility.DeriveState(cfg.Form, vals)
		if stateVisibleOnly {
			names := []string{}
			for _, field := range visibility.VisibleFields(cfg.Form, vals) {
				names = append(names, field.Name)
			}
			payload = names
		}
		out, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("encode state: %w", err)
		}
		return writeOutput(cmd.OutOrStdout(), "", append(out, '\n'))
	},
}

func init() {
	addSourceFlags(stateCmd.Flags())
	stateCmd.Flags().BoolVar(&stateVisibleOnly, "visible", false, "list only the names of visible fields")
	rootCmd.AddCommand(stateCmd)
}
