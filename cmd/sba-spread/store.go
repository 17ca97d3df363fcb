package main

import (
	"errors"
	"fmt"

	"github.com/iwvelando/sba-spread/internal/config"
	"github.com/iwvelando/sba-spread/internal/store"
	"github.com/iwvelando/sba-spread/pkg/constants"
	"github.com/iwvelando/sba-spread/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type storeOptions struct {
	database string
	key      string
}

func (o *storeOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.database, "db", constants.DefaultDatabaseFile, "SQLite file holding saved deals")
	cmd.Flags().StringVar(&o.key, "key", "", "name the deal is saved under")
}

func newSaveCmd(root *rootOptions) *cobra.Command {
	opts := &storeOptions{}
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a deal file into the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.LoadConfiguration(root.configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration at %s: %w", root.configPath, err)
			}
			logger, err := initializeLogger(conf.Logging, root.logLevel)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() {
				_ = logger.Sync()
			}()

			key := opts.key
			if key == "" {
				key = conf.Deal.Name
			}
			for _, warning := range conf.ValidateConfiguration() {
				logger.Warn("Configuration warning: "+warning, zap.String("op", "main.save"))
			}

			db, err := store.Open(opts.database)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := db.Put(key, conf.Deal); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "saved %q to %s\n", key, opts.database)
			return err
		},
	}
	opts.bind(cmd)
	return cmd
}

func newLoadCmd() *cobra.Command {
	opts := &storeOptions{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Print a saved deal as a deal file, or list saved deals",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := store.Open(opts.database)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			out := cmd.OutOrStdout()
			if opts.key == "" {
				entries, err := db.List()
				if err != nil {
					return err
				}
				table := output.Table{Title: "Saved Deals", Headers: []string{"Key", "Deal", "Saved"}}
				for _, e := range entries {
					table.Rows = append(table.Rows, []string{e.Key, e.Name, e.SavedAt.Local().Format("2006-01-02 15:04")})
				}
				if len(table.Rows) == 0 {
					_, err = fmt.Fprintln(out, "no saved deals")
					return err
				}
				_, err = fmt.Fprint(out, output.RenderTable(table))
				return err
			}

			d, err := db.Get(opts.key)
			if err != nil {
				return err
			}
			data, err := config.ExportYAML(config.Configuration{
				Output: config.OutputConfig{Format: constants.OutputFormatPretty},
				Deal:   d,
			})
			if err != nil {
				return err
			}
			_, err = out.Write(data)
			return err
		},
	}
	opts.bind(cmd)
	return cmd
}

func newDeleteCmd() *cobra.Command {
	opts := &storeOptions{}
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove a saved deal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.key == "" {
				return errors.New("--key is required")
			}
			db, err := store.Open(opts.database)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			if err := db.Delete(opts.key); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %q from %s\n", opts.key, opts.database)
			return err
		},
	}
	opts.bind(cmd)
	return cmd
}
