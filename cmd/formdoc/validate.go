package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formdoc/pkg/schema"
)

var errInvalidValues = errors.New("values snapshot is incomplete")

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every visible required field has a value",
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

		res := schema.Validate(cfg.Form, vals)
		out := cmd.OutOrStdout()
		if res.Valid {
			fmt.Fprintln(out, "ok")
			return nil
		}
		for _, issue := range res.Issues {
			label := issue.Label
			if label == "" {
				label = issue.Field
			}
			fmt.Fprintf(out, "%s: %s\n", label, issue.Message)
		}
		return fmt.Errorf("%w: %d issue(s)", errInvalidValues, len(res.Issues))
	},
}

func init() {
	addSourceFlags(validateCmd.Flags())
	rootCmd.AddCommand(validateCmd)
}
