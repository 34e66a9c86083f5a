package cli

import (
	"os"

	"github.com/grantcarthew/storagectl/internal/cli/format"
	"github.com/spf13/cobra"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens",
	Short: "List trust tokens held per issuer",
	Args:  cobra.NoArgs,
	RunE:  runTokens,
}

var tokensClearCmd = &cobra.Command{
	Use:   "clear <issuer-origin>",
	Short: "Remove all trust tokens of an issuer",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokensClear,
}

var storageKeyCmd = &cobra.Command{
	Use:   "storage-key <frame-id>",
	Short: "Print the storage key of a frame",
	Args:  cobra.ExactArgs(1),
	RunE:  runStorageKey,
}

func init() {
	tokensCmd.AddCommand(tokensClearCmd)
	rootCmd.AddCommand(tokensCmd, storageKeyCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	t, err := openTarget(ctx)
	if err != nil {
		return outputError(err.Error())
	}
	defer t.Close()

	tokens, err := t.Storage.GetTrustTokens(ctx)
	if err != nil {
		return outputError(err.Error())
	}

	if JSONOutput {
		return outputSuccess(tokens)
	}
	return format.TrustTokens(os.Stdout, tokens)
}

func runTokensClear(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	t, err := openTarget(ctx)
	if err != nil {
		return outputError(err.Error())
	}
	defer t.Close()

	deleted, err := t.Storage.ClearTrustTokens(ctx, args[0])
	if err != nil {
		return outputError(err.Error())
	}
	if JSONOutput {
		return outputSuccess(map[string]bool{"didDeleteTokens": deleted})
	}
	if !deleted {
		return outputSuccess("no tokens to delete")
	}
	return outputSuccess(nil)
}

func runStorageKey(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	t, err := openTarget(ctx)
	if err != nil {
		return outputError(err.Error())
	}
	defer t.Close()

	key, err := t.Storage.GetStorageKeyForFrame(ctx, args[0])
	if err != nil {
		return outputError(err.Error())
	}
	if JSONOutput {
		return outputSuccess(map[string]string{"storageKey": key})
	}
	return outputSuccess(key)
}
