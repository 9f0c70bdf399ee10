package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/renderers/html"
	"github.com/goliatone/go-formdoc/pkg/schema"
)

var (
	previewOutput    string
	previewTitle     string
	previewTemplates string
	previewNoDocs    bool
	previewValidate  bool
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Write a static HTML preview of the form",
	Long: `Writes the form as HTML with visibility and required flags derived from
the values snapshot. Rendered documents are appended below the form unless
--no-documents is given.`,
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

		htmlOpts := []html.Option{html.WithDocuments(!previewNoDocs)}
		if previewTitle != "" {
			htmlOpts = append(htmlOpts, html.WithTitle(previewTitle))
		}
		if previewTemplates != "" {
			htmlOpts = append(htmlOpts, html.WithTemplatesDir(previewTemplates))
		}
		renderer, err := html.New(htmlOpts...)
		if err != nil {
			return err
		}

		opts := render.RenderOptions{
			Values: vals,
			Theme:  appConfig.Theme.RendererConfig(),
		}
		if previewValidate {
			opts.Errors = render.ErrorsFromResult(schema.Validate(cfg.Form, vals))
		}
		out, err := renderer.Render(ctx, cfg, opts)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), previewOutput, out)
	},
}

func init() {
	addSourceFlags(previewCmd.Flags())
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "output file (stdout if empty)")
	previewCmd.Flags().StringVar(&previewTitle, "title", "", "document title")
	previewCmd.Flags().StringVar(&previewTemplates, "templates", "", "directory overriding the embedded templates")
	previewCmd.Flags().BoolVar(&previewNoDocs, "no-documents", false, "omit the rendered documents")
	previewCmd.Flags().BoolVar(&previewValidate, "validate", false, "show required-field errors for the snapshot")
	rootCmd.AddCommand(previewCmd)
}
