package report

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketinsight/internal/cli/config"
	"github.com/rustyeddy/marketinsight/internal/cli/data"
	"github.com/rustyeddy/marketinsight/session"
)

func New(rc *config.RootConfig) *cobra.Command {
	var (
		date     string
		download string
	)

	cmd := &cobra.Command{
		Use:   "report [symbol]",
		Short: "Generate an analysis report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var symbol string
			if len(args) == 1 {
				symbol = args[0]
			}

			client := rc.NewClient(nil)
			var opts []session.Option
			if date != "" {
				opts = append(opts, session.WithReportDate(date))
			}
			sess := rc.NewSession(client, symbol, opts...)

			err := sess.GenerateReport(cmd.Context())
			out := cmd.OutOrStdout()
			data.PrintState(out, sess.Snapshot())
			if err != nil {
				return err
			}

			res := sess.LastReport()
			if s := res.Summary; s != nil {
				if s.Trend != "" {
					fmt.Fprintf(out, "  Trend: %s\n", s.Trend)
				}
				if s.OverallSignal != "" {
					fmt.Fprintf(out, "  Signal: %s\n", s.OverallSignal)
				}
				if s.ActionPlan.Decision != "" {
					fmt.Fprintf(out, "  Decision: %s\n", s.ActionPlan.Decision)
				}
			}

			if download == "" {
				return nil
			}
			n, path, err := data.Download(cmd.Context(), client, res.ReportPath, download)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Saved %s (%d bytes)\n", path, n)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Report date YYYY-MM-DD (default: latest)")
	cmd.Flags().StringVar(&download, "download", "", "Also download the report to this path")
	return cmd
}
