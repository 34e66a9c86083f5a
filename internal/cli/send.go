package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <method> [params-json]",
	Short: "Send a raw DevTools command",
	Long: `Sends any DevTools command and prints its raw result. Params, when
given, must be a JSON object.

Examples:
  send Storage.getUsageAndQuota '{"origin":"https://example.com"}'
  send Browser.getVersion`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	var params json.RawMessage
	if len(args) == 2 {
		params = json.RawMessage(args[1])
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(params, &obj); err != nil {
			return outputError(fmt.Sprintf("params must be a JSON object: %v", err))
		}
	}

	ctx, cancel := commandContext()
	defer cancel()

	t, err := openTarget(ctx)
	if err != nil {
		return outputError(err.Error())
	}
	defer t.Close()

	var p any
	if params != nil {
		p = params
	}
	result, err := t.Session.SendContext(ctx, args[0], p)
	if err != nil {
		return outputError(err.Error())
	}

	if JSONOutput {
		return outputSuccess(result)
	}
	return outputJSON(os.Stdout, result)
}
