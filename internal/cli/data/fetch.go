package data

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketinsight/internal/cli/config"
	"github.com/rustyeddy/marketinsight/market"
	"github.com/rustyeddy/marketinsight/session"
)

// NewFetchCmd fetches market data for one symbol and prints the preview.
func NewFetchCmd(rc *config.RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [symbol]",
		Short: "Fetch market data and print the last 5 candles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var symbol string
			if len(args) == 1 {
				symbol = args[0]
			}

			sess := rc.NewSession(rc.NewClient(nil), symbol)
			err := sess.FetchMarketData(cmd.Context())
			PrintState(cmd.OutOrStdout(), sess.Snapshot())
			return err
		},
	}
	return cmd
}

// PrintState writes the status line and, when present, the data preview.
func PrintState(w io.Writer, st session.State) {
	if st.Status != "" {
		fmt.Fprintln(w, st.Status)
	}
	if st.Data == nil {
		return
	}

	fmt.Fprintf(w, "Latest Close: %s\n", st.Data.PriceString())
	fmt.Fprintln(w, "Last 5 candles:")
	for _, line := range market.Preview(st.Data, market.PreviewSize) {
		fmt.Fprintf(w, "  %s\n", line)
	}
}
