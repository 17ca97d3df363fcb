package main

import (
	"fmt"

	"github.com/iwvelando/sba-spread/internal/config"
	"github.com/iwvelando/sba-spread/pkg/constants"
	"github.com/iwvelando/sba-spread/pkg/dscr"
	"github.com/iwvelando/sba-spread/pkg/narrative"
	"github.com/iwvelando/sba-spread/pkg/output"
	"github.com/iwvelando/sba-spread/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSpreadCmd(opts *rootOptions) *cobra.Command {
	var withNarrative bool
	cmd := &cobra.Command{
		Use:   "spread",
		Short: "Spread a deal file and print the analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSpread(cmd, opts, withNarrative)
		},
	}
	cmd.Flags().StringVar(&opts.outputFormat, "output-format", "", "type of output override: pretty, csv, json")
	cmd.Flags().BoolVar(&withNarrative, "narrative", false, "print the credit memo prompt instead of the tables")
	return cmd
}

// resolveOutputFormat applies the CLI override over the deal file's setting.
func resolveOutputFormat(configured, override string) (string, error) {
	outputFormat := configured
	if override != "" {
		outputFormat = override
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	return validation.NormalizeOutputFormat(outputFormat)
}

func runSpread(cmd *cobra.Command, opts *rootOptions, withNarrative bool) error {
	conf, err := config.LoadConfiguration(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
	}

	logger, err := initializeLogger(conf.Logging, opts.logLevel)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	outputFormat, err := resolveOutputFormat(conf.Output.Format, opts.outputFormat)
	if err != nil {
		return err
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.runSpread"),
		)
	}

	analysis, err := dscr.NewAnalyzer(logger).Analyze(cmd.Context(), conf.Deal)
	if err != nil {
		logger.Fatal("failed to analyze deal",
			zap.String("op", "main.runSpread"),
			zap.Error(err),
		)
	}

	out := cmd.OutOrStdout()
	if withNarrative {
		prompt, err := narrative.Build(analysis)
		if err != nil {
			return fmt.Errorf("failed to build narrative: %w", err)
		}
		_, err = fmt.Fprintf(out, "%s\n\n%s", prompt.System, prompt.User)
		return err
	}

	switch outputFormat {
	case constants.OutputFormatCSV:
		return output.CsvFormat(out, analysis)
	case constants.OutputFormatJSON:
		return output.JSONFormat(out, analysis)
	default:
		return output.PrettyFormat(out, analysis)
	}
}
