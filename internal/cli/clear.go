package cli

import (
	"fmt"
	"strings"

	"github.com/grantcarthew/storagectl/internal/storage"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear <origin>",
	Short: "Clear stored data for an origin",
	Long: `Clears the given storage types for an origin, or for a storage key
with --key. Types are comma separated; the default is "all".

Storage types:
  ` + storageTypeList() + `

Examples:
  clear https://example.com
  clear https://example.com --types cookies,local_storage
  clear https://example.com/ --key --types cache_storage`,
	Args: cobra.ExactArgs(1),
	RunE: runClear,
}

func init() {
	clearCmd.Flags().String("types", string(storage.StorageTypeAll), "Comma-separated storage types to clear")
	clearCmd.Flags().Bool("key", false, "Treat the argument as a storage key instead of an origin")
	rootCmd.AddCommand(clearCmd)
}

func storageTypeList() string {
	names := make([]string, len(storage.StorageTypes))
	for i, t := range storage.StorageTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// parseStorageTypes validates a comma-separated list of type names.
func parseStorageTypes(list string) ([]storage.StorageType, error) {
	raw := strings.Split(list, ",")
	types := make([]storage.StorageType, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		t, err := storage.ParseStorageType(r)
		if err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("no storage types given")
	}
	return types, nil
}

func runClear(cmd *cobra.Command, args []string) error {
	list, _ := cmd.Flags().GetString("types")
	types, err := parseStorageTypes(list)
	if err != nil {
		return outputError(err.Error())
	}
	byKey, _ := cmd.Flags().GetBool("key")

	ctx, cancel := commandContext()
	defer cancel()

	t, err := openTarget(ctx)
	if err != nil {
		return outputError(err.Error())
	}
	defer t.Close()

	if byKey {
		err = t.Storage.ClearDataForStorageKey(ctx, args[0], types)
	} else {
		err = t.Storage.ClearDataForOrigin(ctx, args[0], types)
	}
	if err != nil {
		return outputError(err.Error())
	}

	if JSONOutput {
		return outputSuccess(map[string]any{
			"target": args[0],
			"types":  types,
		})
	}
	return outputSuccess(nil)
}
