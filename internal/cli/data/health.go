package data

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketinsight/internal/cli/config"
)

// NewHealthCmd checks that the collaborator API is up.
func NewHealthCmd(rc *config.RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the collaborator API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := rc.NewClient(nil)
			h, err := client.Health(cmd.Context())
			if err != nil {
				return fmt.Errorf("health %s: %w", client.BaseURL(), err)
			}

			out := cmd.OutOrStdout()
			if h.Service != "" {
				fmt.Fprintf(out, "%s: %s\n", h.Service, h.Status)
			} else {
				fmt.Fprintln(out, h.Status)
			}
			return nil
		},
	}
}
