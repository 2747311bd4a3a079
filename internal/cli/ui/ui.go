package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketinsight/internal/cli/config"
	"github.com/rustyeddy/marketinsight/internal/tui"
	"github.com/rustyeddy/marketinsight/session"
)

// stateBuffer sizes the observer channel; a burst longer than this is
// resynced when the operation finishes.
const stateBuffer = 32

func New(rc *config.RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "tui [symbol]",
		Short: "Interactive terminal client",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var symbol string
			if len(args) == 1 {
				symbol = args[0]
			}

			// Terminal log output would corrupt the screen; only a log file is kept.
			switch rc.Config.Log.Output {
			case "", "stderr", "stdout":
				rc.Log = zerolog.Nop()
			}

			ch := make(chan session.State, stateBuffer)
			sess := rc.NewSession(rc.NewClient(nil), symbol, session.WithObserver(tui.Observer(ch)))
			return tui.Run(cmd.Context(), sess, ch,
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
		},
	}
}
