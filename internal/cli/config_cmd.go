package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	appconfig "github.com/rustyeddy/marketinsight/config"
)

func newConfigCmd() *cobra.Command {
	var (
		output string
		path   string
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or validate configuration files",
		Long: `Manage marketinsight configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  marketinsight config init -o marketinsight.yaml
  marketinsight config validate -f marketinsight.yaml`,
		Annotations: map[string]string{"skipLoad": "true"},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := appconfig.Default()
			if err := cfg.SaveToFile(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Created default configuration: %s\n", output)
			fmt.Fprintln(out, "\nEdit the file and run with:")
			fmt.Fprintf(out, "  marketinsight --config %s fetch\n", output)
			return nil
		},
	}
	initCmd.Flags().StringVarP(&output, "output", "o", "marketinsight.yaml", "output config file path")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration valid: %s\n", path)
			fmt.Fprintf(out, "  API: %s (timeout %s)\n", cfg.API.BaseURL, cfg.API.Timeout)
			fmt.Fprintf(out, "  Symbol: %s\n", cfg.Client.Symbol)
			fmt.Fprintf(out, "  Log: %s/%s\n", cfg.Log.Level, cfg.Log.Format)
			fmt.Fprintf(out, "  Watch: %s (report: %t)\n", cfg.Watch.Schedule, cfg.Watch.GenerateReport)
			return nil
		},
	}
	validateCmd.Flags().StringVarP(&path, "file", "f", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("file")

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}
