package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formdoc/internal/logging"
	"github.com/goliatone/go-formdoc/pkg/orchestrator"
	"github.com/goliatone/go-formdoc/pkg/render"
)

var (
	renderRenderer string
	renderTemplate string
	renderOutput   string
	renderStrict   bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the documents produced by a values snapshot",
	Args:  cobra.NoArgs,
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

		opts := []orchestrator.Option{orchestrator.WithLogger(logging.WithModule("orchestrator"))}
		if renderStrict {
			opts = append(opts, orchestrator.WithStrictLint())
		}
		out, err := orchestrator.New(opts...).Generate(ctx, orchestrator.Request{
			Configuration: &cfg,
			Renderer:      renderRenderer,
			RenderOptions: render.RenderOptions{
				Values:   vals,
				Template: renderTemplate,
				Theme:    appConfig.Theme.RendererConfig(),
			},
		})
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), renderOutput, out)
	},
}

func init() {
	addSourceFlags(renderCmd.Flags())
	renderCmd.Flags().StringVarP(&renderRenderer, "renderer", "r", "text", "renderer to use (text, json or html)")
	renderCmd.Flags().StringVarP(&renderTemplate, "template", "t", "", "render only the template with this label")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "output file (stdout if empty)")
	renderCmd.Flags().BoolVar(&renderStrict, "strict", false, "fail when the configuration has lint errors")
	rootCmd.AddCommand(renderCmd)
}
