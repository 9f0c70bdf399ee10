package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/renderers/tui"
)

var (
	fillFormat   string
	fillTemplate string
	fillOutput   string
	fillNoReview bool
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Fill the form interactively in the terminal",
	Long: `Asks every visible field in declaration order. Conditional sections
appear as soon as an answer satisfies their condition. A values snapshot
given with --values prefills the answers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfiguration(ctx)
		if err != nil {
			return err
		}
		vals, err := loadValues(cmd.InOrStdin())
		if err != nil {
			return err
		}

		renderer, err := tui.New(
			tui.WithPromptDriver(tui.NewSurveyDriver(cmd.ErrOrStderr())),
			tui.WithOutputFormat(tui.OutputFormat(fillFormat)),
			tui.WithReview(!fillNoReview),
			tui.WithTheme(tui.Theme{SectionPrefix: "■ ", ErrorPrefix: "! "}),
		)
		if err != nil {
			return err
		}
		out, err := renderer.Render(ctx, cfg, render.RenderOptions{
			Values:   vals,
			Template: fillTemplate,
		})
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), fillOutput, out)
	},
}

func init() {
	addSourceFlags(fillCmd.Flags())
	fillCmd.Flags().StringVar(&fillFormat, "format", string(tui.OutputFormatDocuments), "output: documents, values or json")
	fillCmd.Flags().StringVarP(&fillTemplate, "template", "t", "", "render only the template with this label")
	fillCmd.Flags().StringVarP(&fillOutput, "output", "o", "", "output file (stdout if empty)")
	fillCmd.Flags().BoolVar(&fillNoReview, "no-review", false, "skip the confirmation after the last prompt")
	rootCmd.AddCommand(fillCmd)
}
