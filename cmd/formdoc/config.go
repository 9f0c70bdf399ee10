package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formdoc/pkg/storage/sqlstore"
)

var (
	exportOutput   string
	showNormalized bool
	revisionsLimit int
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the stored configuration document",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, closer, err := openManager(cmd.Context())
		if err != nil {
			return err
		}
		defer closer.Close()

		var data []byte
		if showNormalized {
			data, err = json.MarshalIndent(manager.Current(), "", "  ")
		} else {
			data, err = manager.Export()
		}
		if err != nil {
			return fmt.Errorf("encode configuration: %w", err)
		}
		return writeOutput(cmd.OutOrStdout(), "", append(data, '\n'))
	},
}

var configExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored document as indented JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, closer, err := openManager(cmd.Context())
		if err != nil {
			return err
		}
		defer closer.Close()

		data, err := manager.Export()
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), exportOutput, append(data, '\n'))
	},
}

var configImportCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Validate a JSON or YAML document and make it the active configuration",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read document: %w", err)
		}

		manager, closer, err := openManager(cmd.Context())
		if err != nil {
			return err
		}
		defer closer.Close()

		cfg, err := manager.Import(cmd.Context(), data)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d section(s), %d template(s)\n", len(cfg.Form.Sections), len(cfg.Templates))
		return nil
	},
}

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the stored document and restore the default configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, closer, err := openManager(cmd.Context())
		if err != nil {
			return err
		}
		defer closer.Close()

		if _, err := manager.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "configuration reset to default")
		return nil
	},
}

var configRevisionsCmd = &cobra.Command{
	Use:   "revisions",
	Short: "List saved revisions (sqlite and postgres stores only)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closer, err := openStore(cmd.Context(), appConfig.Storage)
		if err != nil {
			return err
		}
		defer closer.Close()

		sqlStore, ok := store.(*sqlstore.Store)
		if !ok {
			return errors.New("revisions require the sqlite or postgres storage driver")
		}
		revisions, err := sqlStore.Revisions(cmd.Context(), revisionsLimit)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, rev := range revisions {
			fmt.Fprintf(out, "%s  %s\n", rev.ID, rev.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

var configRestoreCmd = &cobra.Command{
	Use:   "restore <revision>",
	Short: "Make a saved revision the active configuration again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		manager, closer, err := openManager(ctx)
		if err != nil {
			return err
		}
		defer closer.Close()

		sqlStore, ok := closer.(*sqlstore.Store)
		if !ok {
			return errors.New("restore requires the sqlite or postgres storage driver")
		}
		data, err := sqlStore.Revision(ctx, args[0])
		if err != nil {
			return err
		}
		if _, err := manager.Import(ctx, data); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "restored revision %s\n", args[0])
		return nil
	},
}

func init() {
	configShowCmd.Flags().BoolVar(&showNormalized, "normalized", false, "print the normalized configuration instead of the stored document")
	configExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (stdout if empty)")
	configRevisionsCmd.Flags().IntVar(&revisionsLimit, "limit", 20, "number of revisions to list")

	configCmd.AddCommand(configShowCmd, configExportCmd, configImportCmd, configResetCmd, configRevisionsCmd, configRestoreCmd)
	rootCmd.AddCommand(configCmd)
}
