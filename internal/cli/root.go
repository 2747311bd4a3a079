package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketinsight/internal/cli/config"
	"github.com/rustyeddy/marketinsight/internal/cli/data"
	"github.com/rustyeddy/marketinsight/internal/cli/report"
	"github.com/rustyeddy/marketinsight/internal/cli/ui"
	"github.com/rustyeddy/marketinsight/internal/cli/watch"
)

// Version is set at build time with -ldflags.
var Version = "dev"

func NewRootCmd() *cobra.Command {
	rc := &config.RootConfig{}

	cmd := &cobra.Command{
		Use:           "marketinsight",
		Short:         "MarketInsight market data and report client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global / persistent flags
	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file (optional)")
	cmd.PersistentFlags().StringVar(&rc.APIURL, "api-url", "", "Collaborator API base URL")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "info", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().StringVar(&rc.LogFormat, "log-format", "console", "Log format: console|json")
	cmd.PersistentFlags().DurationVar(&rc.Timeout, "timeout", 0, "Per-request timeout (0 = none)")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if skipLoad(cmd) {
			return nil
		}
		return rc.Load(cmd)
	}
	cmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return rc.Close()
	}

	// Subcommands
	cmd.AddCommand(
		data.NewFetchCmd(rc),
		data.NewHealthCmd(rc),
		data.NewDownloadCmd(rc),
		report.New(rc),
		ui.New(rc),
		watch.New(rc),
		newConfigCmd(),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "marketinsight %s\n", Version)
		},
	})

	return cmd
}

// skipLoad reports whether cmd works without a resolved config.
func skipLoad(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations["skipLoad"] == "true" {
			return true
		}
	}
	return cmd.Name() == "version"
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
