package data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/marketinsight/insight"
	"github.com/rustyeddy/marketinsight/internal/cli/config"
)

// NewDownloadCmd saves a generated report to disk.
func NewDownloadCmd(rc *config.RootConfig) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <filename>",
		Short: "Download a generated report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, path, err := Download(cmd.Context(), rc.NewClient(nil), args[0], output)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Saved %s (%d bytes)\n", path, n)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default: the report's file name)")
	return cmd
}

// Download fetches the report named by reportPath into output. Only the
// base name of reportPath is requested; an empty output uses it as the
// local file name too. The report lands in a temp file beside output and
// replaces output only when complete; a failed download leaves it untouched.
func Download(ctx context.Context, client *insight.Client, reportPath, output string) (int64, string, error) {
	name := filepath.Base(reportPath)
	if output == "" {
		output = name
	}

	tmp, err := os.CreateTemp(filepath.Dir(output), ".marketinsight-*")
	if err != nil {
		return 0, "", fmt.Errorf("create temp file for %s: %w", output, err)
	}
	defer os.Remove(tmp.Name())
	_ = tmp.Chmod(0o644)

	n, err := client.DownloadReport(ctx, name, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, "", fmt.Errorf("download %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), output); err != nil {
		return 0, "", fmt.Errorf("save %s: %w", output, err)
	}
	return n, output, nil
}
