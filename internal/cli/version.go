package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the storagectl version",
	Args:  cobra.NoArgs,
	// Needs no config or endpoint.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		if JSONOutput {
			return outputSuccess(map[string]string{
				"version": Version,
				"go":      runtime.Version(),
			})
		}
		return outputSuccess(fmt.Sprintf("storagectl %s (%s)", Version, runtime.Version()))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
