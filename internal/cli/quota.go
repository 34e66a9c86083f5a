package cli

import (
	"github.com/grantcarthew/storagectl/internal/cdp"
	"github.com/spf13/cobra"
)

var quotaCmd = &cobra.Command{
	Use:   "quota <origin>",
	Short: "Override or reset the storage quota of an origin",
	Long: `Overrides the quota of an origin with --size (bytes). Without --size
any previous override is removed.

Examples:
  quota https://example.com --size 1048576
  quota https://example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runQuota,
}

func init() {
	quotaCmd.Flags().Float64("size", 0, "Quota in bytes")
	rootCmd.AddCommand(quotaCmd)
}

func runQuota(cmd *cobra.Command, args []string) error {
	size := cdp.None[float64]()
	if cmd.Flags().Changed("size") {
		v, _ := cmd.Flags().GetFloat64("size")
		if v < 0 {
			return outputError("--size must not be negative")
		}
		size = cdp.Some(v)
	}

	ctx, cancel := commandContext()
	defer cancel()

	t, err := openTarget(ctx)
	if err != nil {
		return outputError(err.Error())
	}
	defer t.Close()

	if err := t.Storage.OverrideQuotaForOrigin(ctx, args[0], size); err != nil {
		return outputError(err.Error())
	}
	return outputSuccess(nil)
}
