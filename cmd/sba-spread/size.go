package main

import (
	"encoding/json"
	"fmt"

	"github.com/iwvelando/sba-spread/internal/config"
	"github.com/iwvelando/sba-spread/internal/optimizer"
	"github.com/iwvelando/sba-spread/pkg/constants"
	"github.com/iwvelando/sba-spread/pkg/output"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type sizeOptions struct {
	request optimizer.Request
	json    bool
}

func newSizeCmd(root *rootOptions) *cobra.Command {
	opts := &sizeOptions{}
	cmd := &cobra.Command{
		Use:   "size",
		Short: "Find the largest loan the deal supports at a target DSCR",
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

			for _, warning := range conf.ValidateConfiguration() {
				logger.Warn("Configuration warning: "+warning, zap.String("op", "main.size"))
			}

			runner, err := optimizer.NewRunner(logger, conf.Deal, nil)
			if err != nil {
				return err
			}
			summary, err := runner.Run(cmd.Context(), opts.request)
			if err != nil {
				return err
			}

			if opts.json {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			return output.SizingFormat(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().Float64Var(&opts.request.TargetDSCR, "target", constants.DefaultTargetDSCR, "minimum global DSCR")
	cmd.Flags().Float64Var(&opts.request.MaxAmount, "max", constants.MaxSBALoanAmount, "largest loan amount to consider")
	cmd.Flags().Float64Var(&opts.request.Tolerance, "tolerance", constants.DefaultSizingTolerance, "loan amount resolution in dollars")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")
	return cmd
}
