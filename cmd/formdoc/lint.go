package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formdoc/pkg/lint"
)

var (
	lintJSON   bool
	lintStrict bool
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Report authoring issues in the configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfiguration(cmd.Context())
		if err != nil {
			return err
		}
		report := lint.Check(cfg)
		out := cmd.OutOrStdout()

		if lintJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			fmt.Fprintln(out, string(data))
		} else {
			for _, issue := range report.Issues {
				fmt.Fprintf(out, "%-7s %s [%s] %s\n", issue.Severity, issue.Location, issue.Code, issue.Message)
			}
			if len(report.Issues) == 0 {
				fmt.Fprintln(out, "no issues")
			}
		}

		if lintStrict && report.HasErrors() {
			return report.Err()
		}
		return nil
	},
}

func init() {
	lintCmd.Flags().StringVarP(&documentPath, "file", "f", "", "configuration document (JSON or YAML); defaults to the configured store")
	lintCmd.Flags().BoolVar(&lintJSON, "json", false, "output the report as JSON")
	lintCmd.Flags().BoolVar(&lintStrict, "strict", false, "exit non-zero when errors are reported")
	rootCmd.AddCommand(lintCmd)
}
