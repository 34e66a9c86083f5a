package cli

import (
	"os"

	"github.com/grantcarthew/storagectl/internal/cli/format"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var usageCmd = &cobra.Command{
	Use:   "usage <origin>...",
	Short: "Show storage usage and quota for origins",
	Long: `Reports usage, quota and per-type usage breakdown for each origin.
Origins are queried concurrently over one session.

Examples:
  usage https://example.com
  usage https://a.example https://b.example --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)
}

func runUsage(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	t, err := openTarget(ctx)
	if err != nil {
		return outputError(err.Error())
	}
	defer t.Close()

	reports := make([]format.OriginUsage, len(args))
	g, gctx := errgroup.WithContext(ctx)
	for i, origin := range args {
		g.Go(func() error {
			u, err := t.Storage.GetUsageAndQuota(gctx, origin)
			if err != nil {
				return err
			}
			reports[i] = format.OriginUsage{Origin: origin, Usage: u}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return outputError(err.Error())
	}

	if JSONOutput {
		return outputSuccess(reports)
	}
	return format.Usage(os.Stdout, reports, format.NewOutputOptions(JSONOutput, NoColor))
}
